package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/service"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

// AccountsHandler exposes registration and login.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accountService}
}

// Register handles POST /auth/register.
func (h *AccountsHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}

	account, err := h.accounts.Register(c.UserContext(), req.Username, req.Password, req.Role, req.Email)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"account": dto.AccountView(account)},
	})
}

// Login handles POST /auth/login. The requested role is part of the
// credential check.
func (h *AccountsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("body", "username and password required")
	}

	account, token, exp, err := h.accounts.Authenticate(c.UserContext(), req.Username, req.Password, req.Role)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"account": dto.AccountView(account),
			"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}
