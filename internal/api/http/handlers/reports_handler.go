package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/query-desk/internal/api/dto"
	"github.com/spec-kit/query-desk/internal/service"
)

// ReportsHandler serves the aggregation views behind the dashboard charts.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reportService}
}

// StatusCounts handles GET /support/reports/status.
func (h *ReportsHandler) StatusCounts(c *fiber.Ctx) error {
	counts, err := h.reports.StatusCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusCountsView(counts)})
}

// PriorityCounts handles GET /support/reports/priority.
func (h *ReportsHandler) PriorityCounts(c *fiber.Ctx) error {
	counts, err := h.reports.PriorityCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PriorityCountsView(counts)})
}

// DailyCounts handles GET /support/reports/daily.
func (h *ReportsHandler) DailyCounts(c *fiber.Ctx) error {
	counts, err := h.reports.DailyCounts(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DailyCountsView(counts)})
}

// ClientStatusCounts handles GET /client/reports/status, scoped to the
// caller's own rows.
func (h *ReportsHandler) ClientStatusCounts(c *fiber.Ctx) error {
	account, err := principalAccount(c)
	if err != nil {
		return err
	}
	counts, err := h.reports.StatusCountsForClient(c.UserContext(), account.Username)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StatusCountsView(counts)})
}
