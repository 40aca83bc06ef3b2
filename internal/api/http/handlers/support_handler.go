package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/service"
	apperrors "github.com/spec-kit/query-desk/pkg/util"
)

// SupportHandler serves the support dashboard endpoints: the unrestricted
// listing and the status/assignment controls.
type SupportHandler struct {
	queries *service.QueryService
}

// NewSupportHandler constructs handler.
func NewSupportHandler(queryService *service.QueryService) *SupportHandler {
	return &SupportHandler{queries: queryService}
}

// ListAll handles GET /support/queries.
func (h *SupportHandler) ListAll(c *fiber.Ctx) error {
	filter := parseQueryFilter(c)
	queries, err := h.queries.ListAll(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.QueryListView(queries)})
}

// Get handles GET /support/queries/:id.
func (h *SupportHandler) Get(c *fiber.Ctx) error {
	id, err := parseQueryID(c)
	if err != nil {
		return err
	}
	query, err := h.queries.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.QueryView(query)})
}

// UpdateStatus handles PATCH /support/queries/:id/status.
func (h *SupportHandler) UpdateStatus(c *fiber.Ctx) error {
	account, err := principalAccount(c)
	if err != nil {
		return err
	}
	id, err := parseQueryID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}

	query, err := h.queries.UpdateStatus(c.UserContext(), account.Username, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.QueryView(query)})
}

// Assign handles PATCH /support/queries/:id/assignee.
func (h *SupportHandler) Assign(c *fiber.Ctx) error {
	account, err := principalAccount(c)
	if err != nil {
		return err
	}
	id, err := parseQueryID(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("body", "invalid payload")
	}

	query, err := h.queries.Assign(c.UserContext(), account.Username, id, req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.QueryView(query)})
}
