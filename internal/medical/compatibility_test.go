package medical

import (
	"testing"

	"lifelink/pkg/types"

	"github.com/stretchr/testify/assert"
)

func TestCanDonateBlood_UniversalDonor(t *testing.T) {
	for _, recipient := range types.BloodTypes {
		assert.True(t, CanDonateBlood(types.BloodTypeONeg, recipient), "O- should supply %s", recipient)
	}
}

func TestCanDonateBlood_ABPositiveOnlyToItself(t *testing.T) {
	for _, recipient := range types.BloodTypes {
		want := recipient == types.BloodTypeABPos
		assert.Equal(t, want, CanDonateBlood(types.BloodTypeABPos, recipient), "AB+ -> %s", recipient)
	}
}

func TestCanDonateBlood_Table(t *testing.T) {
	cases := []struct {
		donor     types.BloodType
		recipient types.BloodType
		want      bool
	}{
		{types.BloodTypeAPos, types.BloodTypeBPos, false},
		{types.BloodTypeAPos, types.BloodTypeABPos, true},
		{types.BloodTypeOPos, types.BloodTypeONeg, false},
		{types.BloodTypeOPos, types.BloodTypeBPos, true},
		{types.BloodTypeANeg, types.BloodTypeABNeg, true},
		{types.BloodTypeBNeg, types.BloodTypeANeg, false},
		{types.BloodTypeABNeg, types.BloodTypeABPos, true},
		{types.BloodTypeABNeg, types.BloodTypeONeg, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.donor)+"->"+string(tc.recipient), func(t *testing.T) {
			assert.Equal(t, tc.want, CanDonateBlood(tc.donor, tc.recipient))
		})
	}
}

func TestCanDonateBlood_RecipientCounts(t *testing.T) {
	want := map[types.BloodType]int{
		types.BloodTypeONeg:  8,
		types.BloodTypeOPos:  4,
		types.BloodTypeANeg:  4,
		types.BloodTypeAPos:  2,
		types.BloodTypeBNeg:  4,
		types.BloodTypeBPos:  2,
		types.BloodTypeABNeg: 2,
		types.BloodTypeABPos: 1,
	}
	for donor, n := range want {
		assert.Len(t, RecipientsFor(donor), n, "donor %s", donor)
	}
}

func TestCanDonateBlood_UnknownDonorFailsClosed(t *testing.T) {
	assert.False(t, CanDonateBlood("Z+", types.BloodTypeABPos))
	assert.False(t, CanDonateBlood("", types.BloodTypeABPos))
	assert.Empty(t, RecipientsFor("Z+"))
}

func TestCanDonateOrgan(t *testing.T) {
	offered := []types.Organ{types.OrganKidney, types.OrganLiver}

	assert.True(t, CanDonateOrgan(offered, types.OrganKidney))
	assert.False(t, CanDonateOrgan(offered, types.OrganHeart))
	assert.False(t, CanDonateOrgan(nil, types.OrganKidney))
}

func TestCompatible(t *testing.T) {
	profile := &types.DonorProfile{
		BloodType:     types.BloodTypeANeg,
		OrgansOffered: []types.Organ{types.OrganCornea},
	}

	assert.True(t, Compatible(profile, types.BloodNeed{BloodType: types.BloodTypeAPos}))
	assert.False(t, Compatible(profile, types.BloodNeed{BloodType: types.BloodTypeOPos}))
	assert.True(t, Compatible(profile, types.OrganNeed{Organ: types.OrganCornea}))
	assert.False(t, Compatible(profile, types.OrganNeed{Organ: types.OrganKidney}))
	assert.False(t, Compatible(profile, nil))
	assert.False(t, Compatible(nil, types.BloodNeed{BloodType: types.BloodTypeAPos}))
}
