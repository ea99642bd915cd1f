package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/donation-service/internal/api/dto"
	"github.com/spec-kit/donation-service/internal/auth"
	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/internal/service"
	"github.com/spec-kit/donation-service/pkg/util"
)

// AlertsHandler exposes the emergency alert endpoints.
type AlertsHandler struct {
	alerts *service.AlertService
}

// NewAlertsHandler constructs handler.
func NewAlertsHandler(alerts *service.AlertService) *AlertsHandler {
	return &AlertsHandler{alerts: alerts}
}

// Create handles POST /alerts.
func (h *AlertsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.CreateAlertRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	alert, err := h.alerts.CreateAlert(c.UserContext(), &principal.Identity, service.CreateAlertInput{
		BloodType:      req.BloodType,
		OrganType:      req.OrganType,
		Urgency:        req.Urgency,
		TimeLimitHours: req.TimeLimitHours,
		Location:       req.Location,
		Notes:          req.Notes,
	})
	if err != nil {
		return err
	}
	view, err := h.alerts.GetAlert(alert.ID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewAlertResponse(*view)})
}

// List handles GET /alerts?status=PENDING.
func (h *AlertsHandler) List(c *fiber.Ctx) error {
	var status *domain.AlertStatus
	if raw := c.Query("status"); raw != "" {
		parsed := domain.AlertStatus(raw)
		switch parsed {
		case domain.AlertStatusPending, domain.AlertStatusResponded, domain.AlertStatusCompleted, domain.AlertStatusDeclined:
			status = &parsed
		default:
			return util.NewValidationError("unknown status", map[string]any{"status": raw})
		}
	}

	views := h.alerts.ListAlerts(status)
	out := make([]dto.AlertResponse, 0, len(views))
	for _, view := range views {
		out = append(out, dto.NewAlertResponse(view))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Get handles GET /alerts/:id.
func (h *AlertsHandler) Get(c *fiber.Ctx) error {
	view, err := h.alerts.GetAlert(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAlertResponse(*view)})
}

// Counts handles GET /alerts/counts.
func (h *AlertsHandler) Counts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{
		"by_urgency": h.alerts.CountsByUrgency(),
		"by_status":  h.alerts.CountsByStatus(),
	}})
}

// History handles GET /alerts/:id/history.
func (h *AlertsHandler) History(c *fiber.Ctx) error {
	entries, err := h.alerts.History(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewHistoryResponse(entries)})
}

// Cancel handles POST /alerts/:id/cancel.
func (h *AlertsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	alert, err := h.alerts.CancelAlert(c.UserContext(), &principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": alert.ID, "status": alert.Status}})
}

// Complete handles POST /alerts/:id/complete.
func (h *AlertsHandler) Complete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	alert, err := h.alerts.CompleteAlert(c.UserContext(), &principal.Identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"id": alert.ID, "status": alert.Status}})
}

// Feed handles GET /alerts/feed for donors.
func (h *AlertsHandler) Feed(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	views, err := h.alerts.DonorFeed(&principal.Identity)
	if err != nil {
		return err
	}
	out := make([]dto.AlertResponse, 0, len(views))
	for _, view := range views {
		out = append(out, dto.NewAlertResponse(view))
	}
	return c.JSON(fiber.Map{"data": out})
}

// Respond handles POST /alerts/:id/respond.
func (h *AlertsHandler) Respond(c *fiber.Ctx) error {
	return h.donorAction(c, h.alerts.Respond)
}

// Award handles POST /alerts/:id/award.
func (h *AlertsHandler) Award(c *fiber.Ctx) error {
	return h.donorAction(c, h.alerts.Award)
}

// Withdraw handles POST /alerts/:id/withdraw.
func (h *AlertsHandler) Withdraw(c *fiber.Ctx) error {
	return h.donorAction(c, h.alerts.Withdraw)
}

func (h *AlertsHandler) donorAction(c *fiber.Ctx, action func(ctx context.Context, donor *domain.Identity, alertID string) error) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	if err := action(c.UserContext(), &principal.Identity, c.Params("id")); err != nil {
		return err
	}
	view, err := h.alerts.GetAlert(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAlertResponse(*view)})
}
