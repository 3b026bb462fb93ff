package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobhub/jobboard/internal/core/domain"
	"github.com/jobhub/jobboard/internal/core/ports"
)

type AuthHandler struct {
	accounts ports.AccountService
}

func NewAuthHandler(accounts ports.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=6"`
}

type resendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// authResponse carries token and user for the standard realm and admin
// only for the admin realm.
type authResponse struct {
	Token   string           `json:"token,omitempty"`
	User    *domain.Identity `json:"user,omitempty"`
	Admin   *domain.Identity `json:"admin,omitempty"`
	Message string           `json:"message,omitempty"`
}

const (
	msgRegistered = "Đăng ký thành công, vui lòng kiểm tra email để lấy mã xác thực"
	msgLoggedIn   = "Đăng nhập thành công"
	msgVerified   = "Xác thực thành công"
	msgOTPResent  = "Mã xác thực mới đã được gửi"
)

// Register creates an unverified account and issues a verification code.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  ErrorBody
// @Failure      409   {object}  ErrorBody
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	account, err := h.accounts.Register(c.Request().Context(), ports.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     domain.CanonicalRole(req.Role),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, authResponse{User: &account.Identity, Message: msgRegistered})
}

// Login authenticates a standard account and returns a signed token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorBody
// @Failure      401   {object}  ErrorBody
// @Failure      403   {object}  ErrorBody
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.login(c, domain.NamespaceStandard)
}

// AdminLogin authenticates an ADMIN account. No token is returned.
//
// @Summary      Admin login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      401   {object}  ErrorBody
// @Failure      403   {object}  ErrorBody
// @Router       /admin/auth/login [post]
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	return h.login(c, domain.NamespaceAdmin)
}

// VerifyOTP consumes a verification code and logs the account in.
//
// @Summary      Verify a one-time code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Email and code"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorBody
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	return h.verify(c, domain.NamespaceStandard)
}

// AdminVerifyOTP is VerifyOTP for the admin realm.
//
// @Summary      Verify a one-time code (admin)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Email and code"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  ErrorBody
// @Router       /admin/auth/verify-otp [post]
func (h *AuthHandler) AdminVerifyOTP(c echo.Context) error {
	return h.verify(c, domain.NamespaceAdmin)
}

// ResendOTP issues a fresh verification code.
//
// @Summary      Resend the verification code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resendRequest  true  "Email"
// @Success      200   {object}  authResponse
// @Failure      404   {object}  ErrorBody
// @Router       /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c echo.Context) error {
	var req resendRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if err := h.accounts.Resend(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{Message: msgOTPResent})
}

func (h *AuthHandler) login(c echo.Context, realm domain.Namespace) error {
	var req loginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tok, account, err := h.accounts.Login(c.Request().Context(), realm, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grantResponse(realm, tok, account, msgLoggedIn))
}

func (h *AuthHandler) verify(c echo.Context, realm domain.Namespace) error {
	var req verifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	tok, account, err := h.accounts.Verify(c.Request().Context(), realm, req.Email, req.OTP)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grantResponse(realm, tok, account, msgVerified))
}

func grantResponse(realm domain.Namespace, tok string, account *domain.Account, msg string) authResponse {
	if realm == domain.NamespaceAdmin {
		return authResponse{Admin: &account.Identity, Message: msg}
	}
	return authResponse{Token: tok, User: &account.Identity, Message: msg}
}
