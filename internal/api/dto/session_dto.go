package dto

import (
	"time"

	"github.com/spec-kit/donation-service/internal/domain"
)

// SignupRequest payload for new accounts.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IdentityResponse mirrors the persisted session record shape.
type IdentityResponse struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Email           string      `json:"email"`
	Role            domain.Role `json:"role"`
	ProfileComplete bool        `json:"profileComplete"`
}

// NewIdentityResponse maps an identity.
func NewIdentityResponse(identity domain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:              identity.ID,
		Name:            identity.Name,
		Email:           identity.Email,
		Role:            identity.Role,
		ProfileComplete: identity.ProfileComplete,
	}
}

// DonorProfileRequest payload for the profile-editing surface.
type DonorProfileRequest struct {
	BloodType             string `json:"blood_type"`
	AvailableForEmergency bool   `json:"available_for_emergency"`
}
