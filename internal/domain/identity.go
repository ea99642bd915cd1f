package domain

import "fmt"

// Role enumerates the four coordination roles.
type Role string

const (
	RoleHospital  Role = "hospital"
	RoleBloodBank Role = "bloodbank"
	RoleDonor     Role = "donor"
	RoleAdmin     Role = "admin"
)

// ParseRole validates a role string. Unknown roles are rejected rather than
// defaulted, so a misspelled role can never land on the donor dashboard.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleHospital, RoleBloodBank, RoleDonor, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanRequestAlerts reports whether the role may open emergency requests.
func (r Role) CanRequestAlerts() bool {
	return r == RoleHospital || r == RoleBloodBank
}

// Identity is an authenticated user's durable profile. JSON tags match the
// persisted session record shape.
type Identity struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            Role   `json:"role"`
	ProfileComplete bool   `json:"profileComplete"`
}

// DonorProfile extends an Identity with the matching attributes donors carry.
type DonorProfile struct {
	Identity
	BloodType             BloodType `json:"bloodType"`
	AvailableForEmergency bool      `json:"availableForEmergency"`
}
