package dto

import (
	"time"

	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/service"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateRoleRequest payload for admin role changes.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// UserResponse is the public view of an account. The password hash never leaves the service.
type UserResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// SessionResponse wraps the signed-in account.
type SessionResponse struct {
	User UserResponse `json:"user"`
}

// UserListResponse is one page of the admin user list.
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// SuccessResponse acknowledges an operation without a body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserListResponse maps a service page.
func NewUserListResponse(p *service.UserPage) UserListResponse {
	users := make([]UserResponse, 0, len(p.Users))
	for i := range p.Users {
		users = append(users, NewUserResponse(&p.Users[i]))
	}
	return UserListResponse{
		Users:      users,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}
