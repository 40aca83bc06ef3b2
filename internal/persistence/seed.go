package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/domain"
)

type seedAccount struct {
	username string
	password string
	role     domain.Role
	email    string
}

// Default credentials for first-run bootstrapping only, not a security control.
var seedAccounts = []seedAccount{
	{username: "client1", password: "password123", role: domain.RoleClient, email: "client1@example.com"},
	{username: "support1", password: "password123", role: domain.RoleSupport, email: "support1@example.com"},
	{username: "admin", password: "admin123", role: domain.RoleSupport, email: "admin@example.com"},
}

// SeedDefaultAccounts inserts the documented bootstrap accounts. Existing
// usernames are left untouched, so re-running at every boot is safe.
func SeedDefaultAccounts(ctx context.Context, pool *pgxpool.Pool, bcryptCost int, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping account seed")
		return nil
	}

	const query = `
        INSERT INTO users (username, password_hash, role, email)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (username) DO NOTHING`

	for _, acc := range seedAccounts {
		hash, err := auth.HashPassword(acc.password, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash seed password for %s: %w", acc.username, err)
		}
		tag, err := pool.Exec(ctx, query, acc.username, hash, acc.role, acc.email)
		if err != nil {
			return fmt.Errorf("seed account %s: %w", acc.username, err)
		}
		if tag.RowsAffected() > 0 {
			logger.Info("seeded default account",
				zap.String("username", acc.username),
				zap.String("role", string(acc.role)))
		}
	}
	return nil
}
