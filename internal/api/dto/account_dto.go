package dto

import (
	"time"

	"github.com/spec-kit/query-desk/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
	Email    string      `json:"email"`
}

// LoginRequest payload. Role is part of the credential check, not a hint.
type LoginRequest struct {
	Username string      `json:"username"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

// AccountResponse is the public view of an account. The password hash never
// leaves the service.
type AccountResponse struct {
	ID        int64       `json:"id"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	Email     string      `json:"email"`
	CreatedAt time.Time   `json:"created_at"`
}

// AuthResponse carries the session token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AccountView maps a domain account to its response form.
func AccountView(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Role:      account.Role,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}
