// Package medical holds the donation compatibility rules used when matching
// donors to alerts.
package medical

import "lifelink/pkg/types"

// bloodRecipients maps a donor blood type to the recipient types it may supply.
var bloodRecipients = map[types.BloodType][]types.BloodType{
	types.BloodTypeONeg: {
		types.BloodTypeONeg, types.BloodTypeOPos,
		types.BloodTypeANeg, types.BloodTypeAPos,
		types.BloodTypeBNeg, types.BloodTypeBPos,
		types.BloodTypeABNeg, types.BloodTypeABPos,
	},
	types.BloodTypeOPos:  {types.BloodTypeOPos, types.BloodTypeAPos, types.BloodTypeBPos, types.BloodTypeABPos},
	types.BloodTypeANeg:  {types.BloodTypeANeg, types.BloodTypeAPos, types.BloodTypeABNeg, types.BloodTypeABPos},
	types.BloodTypeAPos:  {types.BloodTypeAPos, types.BloodTypeABPos},
	types.BloodTypeBNeg:  {types.BloodTypeBNeg, types.BloodTypeBPos, types.BloodTypeABNeg, types.BloodTypeABPos},
	types.BloodTypeBPos:  {types.BloodTypeBPos, types.BloodTypeABPos},
	types.BloodTypeABNeg: {types.BloodTypeABNeg, types.BloodTypeABPos},
	types.BloodTypeABPos: {types.BloodTypeABPos},
}

// CanDonateBlood reports whether a donor of type donor may supply a
// recipient of type recipient. Unknown donor types are never compatible.
func CanDonateBlood(donor, recipient types.BloodType) bool {
	for _, r := range bloodRecipients[donor] {
		if r == recipient {
			return true
		}
	}
	return false
}

// RecipientsFor returns a copy of the recipient types donor may supply.
func RecipientsFor(donor types.BloodType) []types.BloodType {
	out := make([]types.BloodType, len(bloodRecipients[donor]))
	copy(out, bloodRecipients[donor])
	return out
}

// CanDonateOrgan reports whether requested is among the offered organs.
// There is no cross-organ substitution.
func CanDonateOrgan(offered []types.Organ, requested types.Organ) bool {
	for _, o := range offered {
		if o == requested {
			return true
		}
	}
	return false
}

// Compatible reports whether the profile can supply need.
func Compatible(profile *types.DonorProfile, need types.AlertNeed) bool {
	if profile == nil {
		return false
	}
	switch n := need.(type) {
	case types.BloodNeed:
		return CanDonateBlood(profile.BloodType, n.BloodType)
	case types.OrganNeed:
		return CanDonateOrgan(profile.OrgansOffered, n.Organ)
	default:
		return false
	}
}
