package session

import (
	"strings"
	"sync"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

// Account pairs a registered identity with its password hash and, for donors,
// the matching attributes.
type Account struct {
	Identity     domain.Identity
	PasswordHash string

	BloodType             domain.BloodType
	AvailableForEmergency bool
}

// Directory is the in-process account registry backing signup and login. An
// email may hold one account per role.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewDirectory builds an empty directory.
func NewDirectory() *Directory {
	return &Directory{accounts: make(map[string]*Account)}
}

func accountKey(email string, role domain.Role) string {
	return strings.ToLower(email) + "|" + string(role)
}

// Register stores a new account. Fails when the email is already bound to an
// account of that role.
func (d *Directory) Register(account Account) error {
	key := accountKey(account.Identity.Email, account.Identity.Role)
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.accounts[key]; exists {
		return util.NewDuplicateAccount(account.Identity.Email)
	}
	stored := account
	d.accounts[key] = &stored
	return nil
}

// Lookup returns a copy of the account for email+role, if registered.
func (d *Directory) Lookup(email string, role domain.Role) (Account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	account, ok := d.accounts[accountKey(email, role)]
	if !ok {
		return Account{}, false
	}
	return *account, true
}

// UpdateDonorProfile sets a donor's matching attributes and marks the profile
// complete. Called by the profile-editing surface, never by login or signup.
func (d *Directory) UpdateDonorProfile(email string, bloodType domain.BloodType, available bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	account, ok := d.accounts[accountKey(email, domain.RoleDonor)]
	if !ok {
		return util.NewNotFound("donor account", map[string]any{"email": email})
	}
	account.BloodType = bloodType
	account.AvailableForEmergency = available
	account.Identity.ProfileComplete = true
	return nil
}

// Donors returns a snapshot of all donor profiles.
func (d *Directory) Donors() []domain.DonorProfile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	profiles := make([]domain.DonorProfile, 0)
	for _, account := range d.accounts {
		if account.Identity.Role != domain.RoleDonor {
			continue
		}
		profiles = append(profiles, domain.DonorProfile{
			Identity:              account.Identity,
			BloodType:             account.BloodType,
			AvailableForEmergency: account.AvailableForEmergency,
		})
	}
	return profiles
}

// DonorByID returns the donor profile for an identity id.
func (d *Directory) DonorByID(id string) (domain.DonorProfile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, account := range d.accounts {
		if account.Identity.Role == domain.RoleDonor && account.Identity.ID == id {
			return domain.DonorProfile{
				Identity:              account.Identity,
				BloodType:             account.BloodType,
				AvailableForEmergency: account.AvailableForEmergency,
			}, true
		}
	}
	return domain.DonorProfile{}, false
}
