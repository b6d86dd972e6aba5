package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/config"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

// TokenDuration is the session lifetime. An expired token requires a
// fresh login; tokens are not refreshed on use.
const TokenDuration = 24 * time.Hour

const cookieName = "auth_token"

// AuthInput carries the session cookie into protected huma operations.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
}

type AuthHandler struct {
	cfg   *config.Config
	users *UserRepository
}

func NewAuthHandler(cfg *config.Config, users *UserRepository) *AuthHandler {
	return &AuthHandler{cfg: cfg, users: users}
}

type LoginRequest struct {
	Body struct {
		Username string `json:"username" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

type LoginResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		Token       string   `json:"token"`
		Username    string   `json:"username"`
		FullName    string   `json:"full_name"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
}

// HandleLogin checks credentials and issues the session token both as
// an HttpOnly cookie and in the body for non-browser clients.
func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*LoginResponse, error) {
	user, err := h.users.GetByUsername(input.Body.Username)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid credentials")
	}
	if !user.IsActive {
		return nil, huma.Error401Unauthorized("Account is disabled")
	}
	if !CheckPassword(user.PasswordHash, input.Body.Password) {
		return nil, huma.Error401Unauthorized("Invalid credentials")
	}

	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := h.users.Save(user); err != nil {
		return nil, huma.Error500InternalServerError("Failed to record login")
	}

	cookie := &http.Cookie{
		Name:     cookieName,
		Value:    token,
		Expires:  now.Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}

	res := &LoginResponse{SetCookie: cookie.String()}
	res.Body.Token = token
	res.Body.Username = user.Username
	res.Body.FullName = user.FullName
	res.Body.Role = string(user.Role)
	res.Body.Permissions = user.Role.Permissions()
	return res, nil
}

func (h *AuthHandler) GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize resolves the cookie header to an active user. A valid
// token maps to exactly one {user, permissions} pair; everything else
// is a 401.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (*models.User, error) {
	if cookieHeader == "" {
		return nil, huma.Error401Unauthorized("No token found")
	}

	req := http.Request{Header: http.Header{"Cookie": {cookieHeader}}}
	cookie, err := req.Cookie(cookieName)
	if err != nil {
		return nil, huma.Error401Unauthorized("No token found")
	}

	token, err := jwt.Parse(cookie.Value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, huma.Error401Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, huma.Error401Unauthorized("Invalid token claims")
	}
	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, huma.Error401Unauthorized("Invalid token claims")
	}

	user, err := h.users.Get(userID)
	if err != nil {
		return nil, huma.Error401Unauthorized("Unknown user")
	}
	if !user.IsActive {
		return nil, huma.Error401Unauthorized("Account is disabled")
	}
	return user, nil
}

// RequirePermission authorizes and checks one permission string.
func (h *AuthHandler) RequirePermission(ctx context.Context, cookieHeader, perm string) (*models.User, error) {
	user, err := h.Authorize(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	if !user.Role.Has(perm) {
		return nil, huma.Error403Forbidden(fmt.Sprintf("Access denied: missing %s permission", perm))
	}
	return user, nil
}

type MeInput struct {
	AuthInput
}

type MeResponse struct {
	Body struct {
		ID          string   `json:"id"`
		Username    string   `json:"username"`
		FullName    string   `json:"full_name"`
		Email       string   `json:"email"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeInput) (*MeResponse, error) {
	user, err := h.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	res := &MeResponse{}
	res.Body.ID = user.ID
	res.Body.Username = user.Username
	res.Body.FullName = user.FullName
	res.Body.Email = user.Email
	res.Body.Role = string(user.Role)
	res.Body.Permissions = user.Role.Permissions()
	return res, nil
}
