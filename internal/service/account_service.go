package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/config"
	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/repository"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

// AccountService coordinates registration and login flows.
type AccountService struct {
	accounts   repository.AccountRepository
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, accounts repository.AccountRepository, dispatcher events.Dispatcher) *AccountService {
	return &AccountService{
		accounts:   accounts,
		dispatcher: dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account. Usernames are case-sensitive and unique;
// only the bcrypt hash of the password is ever stored.
func (s *AccountService) Register(ctx context.Context, username, password string, role domain.Role, email string) (*domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperrors.NewValidationError("username", "must not be empty")
	}
	if password == "" {
		return nil, apperrors.NewValidationError("password", "must not be empty")
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("role", "must be Client or Support")
	}
	if !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("email", "must contain @")
	}

	if _, err := s.accounts.GetByUsername(ctx, username); err == nil {
		return nil, apperrors.NewDuplicateUsername(username)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Email:        email,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:  events.EventAccountRegistered,
		Actor: events.Actor{Username: account.Username, Role: account.Role},
		Payload: events.AccountRegisteredPayload{
			Username: account.Username,
			Role:     account.Role,
		},
	})
	return account, nil
}

// Authenticate applies the role-gate: username, password, and the requested
// role must jointly match one stored account. A wrong role with correct
// credentials fails exactly like a wrong password.
func (s *AccountService) Authenticate(ctx context.Context, username, password string, role domain.Role) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}
	if account.Role != role {
		return nil, "", time.Time{}, apperrors.NewInvalidCredentials()
	}

	token, exp, err := s.tokenMgr.GenerateToken(account)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AccountService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AccountService) publishEvent(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, event)
}
