package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/core/domain"
)

func TestRBAC(t *testing.T) {
	tests := []struct {
		role     string
		wantCode int
	}{
		{"ADMIN", http.StatusOK},
		{"ROLE_ADMIN", http.StatusOK},
		{"admin", http.StatusOK},
		{"EMPLOYER", http.StatusForbidden},
		{"", http.StatusForbidden},
		{"SUPERUSER", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tt.role != "" {
				c.Set(CtxRole, tt.role)
			}

			h := RBAC(domain.RoleAdmin)(func(c echo.Context) error {
				return c.NoContent(http.StatusOK)
			})
			if err := h(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}
