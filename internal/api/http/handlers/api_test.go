package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/query-desk/internal/api/http"
	"github.com/spec-kit/query-desk/internal/api/http/handlers"
	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/config"
	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/events"
	"github.com/spec-kit/query-desk/internal/observability"
	"github.com/spec-kit/query-desk/internal/repository"
	"github.com/spec-kit/query-desk/internal/service"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
	nextID   int64
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	if _, exists := r.accounts[account.Username]; exists {
		return apperrors.NewDuplicateUsername(account.Username)
	}
	r.nextID++
	account.ID = r.nextID
	stored := *account
	r.accounts[account.Username] = &stored
	return nil
}

func (r *fakeAccountRepo) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	account, ok := r.accounts[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *account
	return &copied, nil
}

type fakeQueryRepo struct {
	queries map[int64]*domain.Query
	nextID  int64
}

func (r *fakeQueryRepo) Create(_ context.Context, query *domain.Query) error {
	r.nextID++
	query.ID = r.nextID
	query.CreatedAt = time.Now()
	query.Version = 1
	stored := *query
	r.queries[query.ID] = &stored
	return nil
}

func (r *fakeQueryRepo) GetByID(_ context.Context, id int64) (*domain.Query, error) {
	query, ok := r.queries[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *query
	return &copied, nil
}

func (r *fakeQueryRepo) ListWithFilter(_ context.Context, filter repository.QueryFilter) ([]domain.Query, error) {
	var result []domain.Query
	for _, query := range r.queries {
		if filter.ClientName != nil && query.ClientName != *filter.ClientName {
			continue
		}
		result = append(result, *query)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *fakeQueryRepo) UpdateStatus(_ context.Context, id int64, status domain.QueryStatus, closedAt *time.Time, version int64) error {
	query, ok := r.queries[id]
	if !ok || query.Version != version {
		return pgx.ErrNoRows
	}
	query.Status = status
	query.ClosedAt = closedAt
	query.Version++
	return nil
}

func (r *fakeQueryRepo) Assign(_ context.Context, id int64, assignedTo string, version int64) error {
	query, ok := r.queries[id]
	if !ok || query.Version != version {
		return pgx.ErrNoRows
	}
	query.AssignedTo = &assignedTo
	query.Version++
	return nil
}

func (r *fakeQueryRepo) StatusCounts(_ context.Context, clientName *string) ([]repository.StatusCount, error) {
	counts := make(map[domain.QueryStatus]int64)
	for _, query := range r.queries {
		if clientName != nil && query.ClientName != *clientName {
			continue
		}
		counts[query.Status]++
	}
	var result []repository.StatusCount
	for status, count := range counts {
		result = append(result, repository.StatusCount{Status: status, Count: count})
	}
	return result, nil
}

func (r *fakeQueryRepo) PriorityCounts(_ context.Context, clientName *string) ([]repository.PriorityCount, error) {
	counts := make(map[domain.QueryPriority]int64)
	for _, query := range r.queries {
		if clientName != nil && query.ClientName != *clientName {
			continue
		}
		counts[query.Priority]++
	}
	var result []repository.PriorityCount
	for priority, count := range counts {
		result = append(result, repository.PriorityCount{Priority: priority, Count: count})
	}
	return result, nil
}

func (r *fakeQueryRepo) DailyCounts(_ context.Context, clientName *string) ([]repository.DailyCount, error) {
	counts := make(map[time.Time]int64)
	for _, query := range r.queries {
		if clientName != nil && query.ClientName != *clientName {
			continue
		}
		counts[query.CreatedAt.Truncate(24*time.Hour)]++
	}
	var result []repository.DailyCount
	for day, count := range counts {
		result = append(result, repository.DailyCount{Day: day, Count: count})
	}
	return result, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	return newTestAppWithRepo(t, &fakeQueryRepo{queries: make(map[int64]*domain.Query)}, 0)
}

func newTestAppWithRepo(t *testing.T, queryRepo repository.QueryRepository, timeout time.Duration) *fiber.App {
	t.Helper()

	cfg := config.Config{}
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.AccessTokenTTLMinutes = 5
	cfg.Auth.BcryptCost = 4

	accountRepo := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}

	dispatcher := events.NewInMemoryDispatcher()
	accountService := service.NewAccountService(cfg, accountRepo, dispatcher)
	queryService := service.NewQueryService(queryRepo, dispatcher)
	reportService := service.NewReportService(queryRepo, nil, 0, zap.NewNop())

	app := fiber.New()
	logger := zap.NewNop()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), timeout)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("query-desk", "test", nil, nil),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Queries:        handlers.NewQueriesHandler(queryService),
		Support:        handlers.NewSupportHandler(queryService),
		Reports:        handlers.NewReportsHandler(reportService),
		AuthMiddleware: auth.NewAuthMiddleware(accountService.TokenManager(), accountRepo),
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, payload any) (*http.Response, map[string]any) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload: %v", err)
		}
	}
	req, err := http.NewRequest(method, path, &body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var decoded map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

func register(t *testing.T, app *fiber.App, username, password string, role domain.Role) {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"username": username,
		"password": password,
		"role":     role,
		"email":    username + "@example.com",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d body %v", username, resp.StatusCode, body)
	}
}

func login(t *testing.T, app *fiber.App, username, password string, role domain.Role) string {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"username": username,
		"password": password,
		"role":     role,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d body %v", username, resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	authData := data["auth"].(map[string]any)
	return authData["token"].(string)
}

func submitQuery(t *testing.T, app *fiber.App, token string) int64 {
	t.Helper()
	resp, body := doJSON(t, app, http.MethodPost, "/client/queries", token, map[string]any{
		"email":       "bob@x.com",
		"mobile":      "9999999999",
		"heading":     "Login issue",
		"description": "Cannot log in since yesterday",
		"priority":    "High",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit: status %d body %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	return int64(data["query_id"].(float64))
}

func TestLoginWrongRoleRejected(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)

	resp, body := doJSON(t, app, http.MethodPost, "/auth/login", "", map[string]any{
		"username": "bob",
		"password": "password123",
		"role":     domain.RoleSupport,
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body %v", resp.StatusCode, body)
	}
}

func TestSubmitResolveLifecycle(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)
	register(t, app, "support1", "password123", domain.RoleSupport)

	clientToken := login(t, app, "bob", "password123", domain.RoleClient)
	supportToken := login(t, app, "support1", "password123", domain.RoleSupport)

	queryID := submitQuery(t, app, clientToken)

	resp, body := doJSON(t, app, http.MethodPatch, fmt.Sprintf("/support/queries/%d/status", queryID), supportToken,
		map[string]any{"status": "Resolved"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status: %d body %v", resp.StatusCode, body)
	}
	data := body["data"].(map[string]any)
	if data["status"] != "Resolved" {
		t.Fatalf("expected Resolved, got %v", data["status"])
	}
	if data["closed_at"] == nil {
		t.Fatal("expected closed_at to be stamped")
	}
}

func TestClientCannotSeeOthersQueries(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)
	register(t, app, "alice", "password123", domain.RoleClient)

	bobToken := login(t, app, "bob", "password123", domain.RoleClient)
	aliceToken := login(t, app, "alice", "password123", domain.RoleClient)

	queryID := submitQuery(t, app, bobToken)

	resp, _ := doJSON(t, app, http.MethodGet, "/client/queries", aliceToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	_, listBody := doJSON(t, app, http.MethodGet, "/client/queries", aliceToken, nil)
	if rows, ok := listBody["data"].([]any); ok && len(rows) != 0 {
		t.Fatalf("alice must not see bob's queries, got %d rows", len(rows))
	}

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/client/queries/%d", queryID), aliceToken, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 fetching another client's query, got %d", resp.StatusCode)
	}
}

func TestClientForbiddenOnSupportRoutes(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)
	clientToken := login(t, app, "bob", "password123", domain.RoleClient)

	resp, _ := doJSON(t, app, http.MethodGet, "/support/queries", clientToken, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestUnauthenticatedRejected(t *testing.T) {
	app := newTestApp(t)
	resp, _ := doJSON(t, app, http.MethodGet, "/client/queries", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestDuplicateRegistrationConflict(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)

	resp, body := doJSON(t, app, http.MethodPost, "/auth/register", "", map[string]any{
		"username": "bob",
		"password": "other",
		"role":     domain.RoleSupport,
		"email":    "bob2@example.com",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d body %v", resp.StatusCode, body)
	}
}

func TestSubmitValidationSurfacesAsBadRequest(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)
	clientToken := login(t, app, "bob", "password123", domain.RoleClient)

	resp, body := doJSON(t, app, http.MethodPost, "/client/queries", clientToken, map[string]any{
		"email":       "bob@x.com",
		"mobile":      "12345",
		"heading":     "Short mobile",
		"description": "mobile below minimum length",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %v", resp.StatusCode, body)
	}
	errBody := body["error"].(map[string]any)
	if errBody["code"] != "VALIDATION_FAILED" {
		t.Fatalf("expected VALIDATION_FAILED, got %v", errBody["code"])
	}
}

// deadlineCapturingRepo records whether list calls arrive with a deadline set.
type deadlineCapturingRepo struct {
	*fakeQueryRepo
	sawDeadline bool
}

func (r *deadlineCapturingRepo) ListWithFilter(ctx context.Context, filter repository.QueryFilter) ([]domain.Query, error) {
	_, r.sawDeadline = ctx.Deadline()
	return r.fakeQueryRepo.ListWithFilter(ctx, filter)
}

func TestRequestTimeoutReachesRepository(t *testing.T) {
	repo := &deadlineCapturingRepo{fakeQueryRepo: &fakeQueryRepo{queries: make(map[int64]*domain.Query)}}
	app := newTestAppWithRepo(t, repo, 2*time.Second)

	register(t, app, "bob", "password123", domain.RoleClient)
	clientToken := login(t, app, "bob", "password123", domain.RoleClient)

	resp, _ := doJSON(t, app, http.MethodGet, "/client/queries", clientToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list: %d", resp.StatusCode)
	}
	if !repo.sawDeadline {
		t.Fatal("expected the configured request deadline to reach the repository")
	}
}

func TestSupportReportsEndpoint(t *testing.T) {
	app := newTestApp(t)
	register(t, app, "bob", "password123", domain.RoleClient)
	register(t, app, "support1", "password123", domain.RoleSupport)

	clientToken := login(t, app, "bob", "password123", domain.RoleClient)
	supportToken := login(t, app, "support1", "password123", domain.RoleSupport)

	submitQuery(t, app, clientToken)
	submitQuery(t, app, clientToken)

	resp, body := doJSON(t, app, http.MethodGet, "/support/reports/status", supportToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reports: %d body %v", resp.StatusCode, body)
	}
	rows := body["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected one status bucket, got %d", len(rows))
	}
	bucket := rows[0].(map[string]any)
	if bucket["status"] != "Open" || bucket["count"].(float64) != 2 {
		t.Fatalf("unexpected bucket: %v", bucket)
	}
}
