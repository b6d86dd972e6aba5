package handlers

import (
	"context"
	"time"

	"github.com/alexzinovi/Skyparking-sub000/internal/auth"
	"github.com/alexzinovi/Skyparking-sub000/internal/models"
	"github.com/danielgtaylor/huma/v2"
)

type UserHandler struct {
	users       *auth.UserRepository
	authHandler *auth.AuthHandler
}

func NewUserHandler(users *auth.UserRepository, authHandler *auth.AuthHandler) *UserHandler {
	return &UserHandler{users: users, authHandler: authHandler}
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	CreatedBy string     `json:"created_by,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		CreatedBy: u.CreatedBy,
		LastLogin: u.LastLogin,
	}
}

type ListUsersRequest struct {
	auth.AuthInput
}

type ListUsersResponse struct {
	Body []UserResponse
}

func (h *UserHandler) HandleList(ctx context.Context, input *ListUsersRequest) (*ListUsersResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermManageUsers); err != nil {
		return nil, err
	}
	users, err := h.users.List()
	if err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return &ListUsersResponse{Body: out}, nil
}

type GetUserRequest struct {
	auth.AuthInput
	ID string `path:"id"`
}

func (h *UserHandler) HandleGet(ctx context.Context, input *GetUserRequest) (*SingleUserResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermManageUsers); err != nil {
		return nil, err
	}
	u, err := h.users.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("User not found")
	}
	return &SingleUserResponse{Body: toUserResponse(u)}, nil
}

type CreateUserRequest struct {
	auth.AuthInput
	Body struct {
		Username string `json:"username" required:"true"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password" required:"true" minLength:"8"`
		Role     string `json:"role" doc:"admin, manager or operator" required:"true"`
	}
}

type SingleUserResponse struct {
	Body UserResponse
}

func (h *UserHandler) HandleCreate(ctx context.Context, input *CreateUserRequest) (*SingleUserResponse, error) {
	actor, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermManageUsers)
	if err != nil {
		return nil, err
	}

	role := models.Role(input.Body.Role)
	if role != models.RoleAdmin && role != models.RoleManager && role != models.RoleOperator {
		return nil, huma.Error400BadRequest("Role must be admin, manager or operator")
	}
	if _, err := h.users.GetByUsername(input.Body.Username); err == nil {
		return nil, huma.Error409Conflict("Username already taken")
	}

	hash, err := auth.HashPassword(input.Body.Password)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	u := &models.User{
		ID:           auth.NewUserID(),
		Username:     input.Body.Username,
		FullName:     input.Body.FullName,
		Email:        input.Body.Email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		CreatedBy:    actor.Username,
	}
	if err := h.users.Save(u); err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	return &SingleUserResponse{Body: toUserResponse(u)}, nil
}

type UpdateUserRequest struct {
	auth.AuthInput
	ID   string `path:"id"`
	Body struct {
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Password string `json:"password,omitempty" doc:"Set to change"`
		Role     string `json:"role"`
		IsActive *bool  `json:"is_active,omitempty"`
	}
}

// HandleUpdate edits an account. The username is immutable once
// created.
func (h *UserHandler) HandleUpdate(ctx context.Context, input *UpdateUserRequest) (*SingleUserResponse, error) {
	if _, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermManageUsers); err != nil {
		return nil, err
	}

	u, err := h.users.Get(input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("User not found")
	}

	if input.Body.FullName != "" {
		u.FullName = input.Body.FullName
	}
	if input.Body.Email != "" {
		u.Email = input.Body.Email
	}
	if input.Body.Role != "" {
		role := models.Role(input.Body.Role)
		if role != models.RoleAdmin && role != models.RoleManager && role != models.RoleOperator {
			return nil, huma.Error400BadRequest("Role must be admin, manager or operator")
		}
		u.Role = role
	}
	if input.Body.IsActive != nil {
		u.IsActive = *input.Body.IsActive
	}
	if input.Body.Password != "" {
		hash, err := auth.HashPassword(input.Body.Password)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to hash password")
		}
		u.PasswordHash = hash
	}

	if err := h.users.Save(u); err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	return &SingleUserResponse{Body: toUserResponse(u)}, nil
}

type DeleteUserRequest struct {
	auth.AuthInput
	ID string `path:"id"`
}

func (h *UserHandler) HandleDelete(ctx context.Context, input *DeleteUserRequest) (*struct{}, error) {
	actor, err := h.authHandler.RequirePermission(ctx, input.Cookie, models.PermManageUsers)
	if err != nil {
		return nil, err
	}
	if actor.ID == input.ID {
		return nil, huma.Error409Conflict("Cannot delete your own account")
	}
	if _, err := h.users.Get(input.ID); err != nil {
		return nil, huma.Error404NotFound("User not found")
	}
	if err := h.users.Delete(input.ID); err != nil {
		return nil, huma.Error500InternalServerError("Storage error: " + err.Error())
	}
	return nil, nil
}
