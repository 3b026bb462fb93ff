package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/service"
	"github.com/jobhub/jobboard/internal/core/token"
)

// Context keys set by Auth.
const (
	CtxUserID = "user_id"
	CtxRole   = "role"
	CtxEmail  = "email"
)

const msgUnauthorized = "Phiên đăng nhập không hợp lệ hoặc đã hết hạn"

// AccountLookup resolves the subject of a client-minted admin token.
type AccountLookup interface {
	FindByID(ctx context.Context, id string) (*domain.Account, error)
}

// Auth validates the bearer token and injects the caller into context.
// Signed HS256 tokens are always accepted. Lightweight admin tokens are
// accepted only when admins is non-nil and the id names an ADMIN account.
func Auth(jwtSecret string, admins AccountLookup) echo.MiddlewareFunc {
	lightweight := service.NewSessionValidator(service.ClaimsLenient)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := bearer(c)
			if err != nil {
				return err
			}

			if token.DetectFormat(raw) == domain.FormatStandard {
				claims := jwt.MapClaims{}
				tkn, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
					if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
						return nil, jwt.ErrTokenSignatureInvalid
					}
					return []byte(jwtSecret), nil
				})
				if err != nil || !tkn.Valid {
					return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
				}
				sub, _ := claims["sub"].(string)
				if sub == "" {
					return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
				}
				role, _ := claims["role"].(string)
				email, _ := claims["email"].(string)
				c.Set(CtxUserID, sub)
				c.Set(CtxRole, string(domain.CanonicalRole(role)))
				c.Set(CtxEmail, email)
				return next(c)
			}

			if admins == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
			}
			claims, err := lightweight.Check(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
			}
			account, err := admins.FindByID(c.Request().Context(), claims.ID)
			if err != nil || account.Role != domain.RoleAdmin {
				return echo.NewHTTPError(http.StatusUnauthorized, msgUnauthorized)
			}
			c.Set(CtxUserID, account.ID)
			c.Set(CtxRole, string(domain.RoleAdmin))
			c.Set(CtxEmail, account.Email)
			return next(c)
		}
	}
}

// bearer reads the token from the Authorization header, falling back to
// the token query parameter for browser websocket upgrades.
func bearer(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if q := c.QueryParam("token"); q != "" {
			return q, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
