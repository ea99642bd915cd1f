package domain

import "fmt"

// BloodType enumerates the eight ABO/Rh groups.
type BloodType string

const (
	BloodONeg  BloodType = "O-"
	BloodOPos  BloodType = "O+"
	BloodANeg  BloodType = "A-"
	BloodAPos  BloodType = "A+"
	BloodBNeg  BloodType = "B-"
	BloodBPos  BloodType = "B+"
	BloodABNeg BloodType = "AB-"
	BloodABPos BloodType = "AB+"
)

// ParseBloodType validates a blood type string.
func ParseBloodType(s string) (BloodType, error) {
	switch BloodType(s) {
	case BloodONeg, BloodOPos, BloodANeg, BloodAPos, BloodBNeg, BloodBPos, BloodABNeg, BloodABPos:
		return BloodType(s), nil
	}
	return "", fmt.Errorf("unknown blood type %q", s)
}

// redCellDonors maps a recipient type to the donor types it can receive. O- is
// the universal donor and AB+ the universal recipient.
var redCellDonors = map[BloodType][]BloodType{
	BloodONeg:  {BloodONeg},
	BloodOPos:  {BloodONeg, BloodOPos},
	BloodANeg:  {BloodONeg, BloodANeg},
	BloodAPos:  {BloodONeg, BloodOPos, BloodANeg, BloodAPos},
	BloodBNeg:  {BloodONeg, BloodBNeg},
	BloodBPos:  {BloodONeg, BloodOPos, BloodBNeg, BloodBPos},
	BloodABNeg: {BloodONeg, BloodANeg, BloodBNeg, BloodABNeg},
	BloodABPos: {BloodONeg, BloodOPos, BloodANeg, BloodAPos, BloodBNeg, BloodBPos, BloodABNeg, BloodABPos},
}

// CanDonateTo reports whether blood of type d is compatible with a recipient
// requiring type recipient.
func (d BloodType) CanDonateTo(recipient BloodType) bool {
	for _, donor := range redCellDonors[recipient] {
		if donor == d {
			return true
		}
	}
	return false
}
