package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/donation-service/internal/api/dto"
	"github.com/spec-kit/donation-service/internal/auth"
	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/internal/service"
	"github.com/spec-kit/donation-service/internal/session"
	"github.com/spec-kit/donation-service/pkg/util"
)

// SessionHandler exposes the authentication endpoints.
type SessionHandler struct {
	sessions  *service.SessionService
	directory *session.Directory
	tokens    *auth.TokenManager
}

// NewSessionHandler constructs handler.
func NewSessionHandler(sessions *service.SessionService, directory *session.Directory, tokens *auth.TokenManager) *SessionHandler {
	return &SessionHandler{sessions: sessions, directory: directory, tokens: tokens}
}

// Signup handles POST /auth/signup.
func (h *SessionHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	identity, err := h.sessions.Signup(c.UserContext(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return h.respondAuthenticated(c, http.StatusCreated, identity)
}

// Login handles POST /auth/login.
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	identity, err := h.sessions.Login(c.UserContext(), req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	return h.respondAuthenticated(c, http.StatusOK, identity)
}

// Logout handles POST /auth/logout. Idempotent.
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "logged_out"}})
}

// Me handles GET /auth/me, returning the caller's identity.
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"data": dto.NewIdentityResponse(principal.Identity)})
}

// UpdateDonorProfile handles PUT /donors/profile: the profile-editing surface
// setting the matching attributes and completing the profile.
func (h *SessionHandler) UpdateDonorProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return util.NewUnauthorized("authentication required")
	}
	var req dto.DonorProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	bloodType, err := domain.ParseBloodType(req.BloodType)
	if err != nil {
		return util.NewValidationError(err.Error(), map[string]any{"blood_type": req.BloodType})
	}
	if err := h.directory.UpdateDonorProfile(principal.Identity.Email, bloodType, req.AvailableForEmergency); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"status": "updated"}})
}

func (h *SessionHandler) respondAuthenticated(c *fiber.Ctx, status int, identity *domain.Identity) error {
	token, expiresAt, err := h.tokens.GenerateToken(*identity)
	if err != nil {
		return util.NewInternalError(err)
	}
	return c.Status(status).JSON(fiber.Map{
		"data": fiber.Map{
			"user": dto.NewIdentityResponse(*identity),
			"auth": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}
