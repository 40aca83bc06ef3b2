package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/auth"
	"github.com/spec-kit/query-desk/internal/domain"
	"github.com/spec-kit/query-desk/internal/repository"
	"github.com/spec-kit/query-desk/internal/service"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

// QueriesHandler serves the client-facing ledger endpoints.
type QueriesHandler struct {
	queries *service.QueryService
}

// NewQueriesHandler constructs handler.
func NewQueriesHandler(queryService *service.QueryService) *QueriesHandler {
	return &QueriesHandler{queries: queryService}
}

// Submit handles POST /client/queries.
func (h *QueriesHandler) Submit(c *fiber.Ctx) error {
	account, err := principalAccount(c)
	if err != nil {
		return err
	}
	var req dto.SubmitQueryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}

	query, err := h.queries.Submit(c.UserContext(), account.Username, service.SubmitInput{
		ContactEmail: req.Email,
		MobileNumber: req.Mobile,
		Heading:      req.Heading,
		Description:  req.Description,
		Priority:     req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.QueryView(query)})
}

// ListOwn handles GET /client/queries. Only the caller's own rows come back.
func (h *QueriesHandler) ListOwn(c *fiber.Ctx) error {
	account, err := principalAccount(c)
	if err != nil {
		return err
	}
	filter := parseQueryFilter(c)
	queries, err := h.queries.ListForClient(c.UserContext(), account.Username, filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.QueryListView(queries)})
}

// GetOwn handles GET /client/queries/:id, enforcing ownership.
func (h *QueriesHandler) GetOwn(c *fiber.Ctx) error {
	account, err := principalAccount(c)
	if err != nil {
		return err
	}
	id, err := parseQueryID(c)
	if err != nil {
		return err
	}
	query, err := h.queries.GetForClient(c.UserContext(), account.Username, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.QueryView(query)})
}

func principalAccount(c *fiber.Ctx) (*domain.Account, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Account == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal.Account, nil
}

func parseQueryID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("query_id", "must be a positive integer")
	}
	return id, nil
}

func parseQueryFilter(c *fiber.Ctx) repository.QueryFilter {
	filter := repository.QueryFilter{}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.QueryStatus(strings.TrimSpace(part)))
		}
	}
	if priorities := c.Query("priority"); priorities != "" {
		for _, part := range strings.Split(priorities, ",") {
			filter.Priorities = append(filter.Priorities, domain.QueryPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if limit := c.QueryInt("limit"); limit > 0 {
		filter.Limit = limit
	}
	if offset := c.QueryInt("offset"); offset > 0 {
		filter.Offset = offset
	}
	return filter
}
