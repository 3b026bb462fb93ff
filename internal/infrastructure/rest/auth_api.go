package rest

import (
	"context"
	"net/url"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

// AuthAPI implements ports.AuthAPI over the backend's auth endpoints.
type AuthAPI struct {
	c *Client
}

func NewAuthAPI(c *Client) *AuthAPI {
	return &AuthAPI{c: c}
}

// authResponse covers both realms: standard answers carry token and user,
// admin answers carry admin only.
type authResponse struct {
	Token   string           `json:"token"`
	User    *domain.Identity `json:"user"`
	Admin   *domain.Identity `json:"admin"`
	Message string           `json:"message"`
}

func (r authResponse) result() *ports.AuthResult {
	identity := r.User
	if identity == nil {
		identity = r.Admin
	}
	return &ports.AuthResult{Token: r.Token, Identity: identity, Message: r.Message}
}

func realmPrefix(realm domain.Namespace) string {
	if realm == domain.NamespaceAdmin {
		return "/admin/auth"
	}
	return "/auth"
}

func (a *AuthAPI) Login(ctx context.Context, realm domain.Namespace, email, password string) (*ports.AuthResult, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := a.c.post(ctx, realmPrefix(realm)+"/login", body, &resp); err != nil {
		return nil, err
	}
	return resp.result(), nil
}

func (a *AuthAPI) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	var resp authResponse
	if err := a.c.post(ctx, "/auth/register", in, &resp); err != nil {
		return nil, err
	}
	return resp.result(), nil
}

func (a *AuthAPI) VerifyOTP(ctx context.Context, realm domain.Namespace, email, code string) (*ports.AuthResult, error) {
	var resp authResponse
	body := map[string]string{"email": email, "otp": code}
	if err := a.c.post(ctx, realmPrefix(realm)+"/verify-otp", body, &resp); err != nil {
		return nil, err
	}
	return resp.result(), nil
}

func (a *AuthAPI) ResendOTP(ctx context.Context, email string) error {
	return a.c.post(ctx, "/auth/resend-otp", map[string]string{"email": email}, nil)
}

func (a *AuthAPI) SetActive(ctx context.Context, userID string, active bool) error {
	return a.c.put(ctx, "/users/"+url.PathEscape(userID)+"/active", map[string]bool{"active": active}, nil)
}
