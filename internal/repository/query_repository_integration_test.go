package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/repository"
)

// TestQueryRepositoryIntegration exercises the ledger repository against a
// live Postgres with the migrations applied.
func TestQueryRepositoryIntegration(t *testing.T) {
	if os.Getenv("RUN_REPOSITORY_INTEGRATION") != "true" {
		t.Skip("set RUN_REPOSITORY_INTEGRATION=true to run this integration test")
	}

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Fatal("POSTGRES_DSN is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	repo := repository.NewQueryRepository(pool)
	clientName := fmt.Sprintf("itest_%d", time.Now().UnixNano())

	submitted := &domain.Query{
		ClientName:   clientName,
		ContactEmail: "itest@example.com",
		MobileNumber: "9999999999",
		Heading:      "integration heading",
		Description:  "integration description",
		Status:       domain.QueryStatusOpen,
		Priority:     domain.QueryPriorityHigh,
	}
	if err := repo.Create(ctx, submitted); err != nil {
		t.Fatalf("create: %v", err)
	}
	if submitted.ID == 0 || submitted.Version != 1 {
		t.Fatalf("unexpected created record: id=%d version=%d", submitted.ID, submitted.Version)
	}

	fetched, err := repo.GetByID(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.ClientName != clientName || fetched.Status != domain.QueryStatusOpen || fetched.ClosedAt != nil {
		t.Fatalf("round-trip mismatch: %+v", fetched)
	}

	owned, err := repo.ListWithFilter(ctx, repository.QueryFilter{ClientName: &clientName})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != submitted.ID {
		t.Fatalf("ownership filter returned %d rows", len(owned))
	}

	now := time.Now()
	if err := repo.UpdateStatus(ctx, submitted.ID, domain.QueryStatusResolved, &now, 1); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// A second write with the consumed version must find no row.
	if err := repo.UpdateStatus(ctx, submitted.ID, domain.QueryStatusOpen, nil, 1); err == nil {
		t.Fatal("expected stale-version update to fail")
	}

	resolved, err := repo.GetByID(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("get resolved: %v", err)
	}
	if resolved.Status != domain.QueryStatusResolved || resolved.ClosedAt == nil || resolved.Version != 2 {
		t.Fatalf("unexpected resolved record: %+v", resolved)
	}

	counts, err := repo.StatusCounts(ctx, &clientName)
	if err != nil {
		t.Fatalf("status counts: %v", err)
	}
	if len(counts) != 1 || counts[0].Status != domain.QueryStatusResolved || counts[0].Count != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

// TestQueryRepositoryFilterCombination drives the generated SQL for the
// dashboard filter controls: the status and priority IN lists, the
// case-insensitive search, and their AND combination.
func TestQueryRepositoryFilterCombination(t *testing.T) {
	if os.Getenv("RUN_REPOSITORY_INTEGRATION") != "true" {
		t.Skip("set RUN_REPOSITORY_INTEGRATION=true to run this integration test")
	}

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Fatal("POSTGRES_DSN is required")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	repo := repository.NewQueryRepository(pool)
	clientName := fmt.Sprintf("ftest_%d", time.Now().UnixNano())

	seed := []struct {
		heading  string
		status   domain.QueryStatus
		priority domain.QueryPriority
	}{
		{"Billing invoice overdue", domain.QueryStatusOpen, domain.QueryPriorityLow},
		{"Billing payment failed", domain.QueryStatusOpen, domain.QueryPriorityHigh},
		{"Login page broken", domain.QueryStatusInProgress, domain.QueryPriorityHigh},
	}
	for _, s := range seed {
		q := &domain.Query{
			ClientName:   clientName,
			ContactEmail: "ftest@example.com",
			MobileNumber: "9999999999",
			Heading:      s.heading,
			Description:  "filter combination fixture",
			Status:       s.status,
			Priority:     s.priority,
		}
		if err := repo.Create(ctx, q); err != nil {
			t.Fatalf("create %q: %v", s.heading, err)
		}
	}

	// All three clauses at once; the search term's case must not matter.
	search := "BILLING"
	rows, err := repo.ListWithFilter(ctx, repository.QueryFilter{
		ClientName: &clientName,
		Statuses:   []domain.QueryStatus{domain.QueryStatusOpen},
		Priorities: []domain.QueryPriority{domain.QueryPriorityHigh},
		SearchTerm: &search,
	})
	if err != nil {
		t.Fatalf("combined filter: %v", err)
	}
	if len(rows) != 1 || rows[0].Heading != "Billing payment failed" {
		t.Fatalf("combined filter returned %d rows: %+v", len(rows), rows)
	}

	// Multi-value status list still intersects with the search clause.
	search = "billing"
	rows, err = repo.ListWithFilter(ctx, repository.QueryFilter{
		ClientName: &clientName,
		Statuses:   []domain.QueryStatus{domain.QueryStatusOpen, domain.QueryStatusInProgress},
		SearchTerm: &search,
	})
	if err != nil {
		t.Fatalf("multi-status filter: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("multi-status filter returned %d rows: %+v", len(rows), rows)
	}
	for _, row := range rows {
		if row.Status != domain.QueryStatusOpen {
			t.Fatalf("search clause should exclude the non-matching heading: %+v", row)
		}
	}
}
