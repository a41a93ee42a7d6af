package seed

import (
	"context"
	"fmt"

	"lifelink/internal/utils"
	"lifelink/pkg/types"
)

type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *types.DonorProfile) error
}

type fakeProfileSeed struct {
	UserID    string
	BloodType types.BloodType
	Organs    []types.Organ
	Lat, Lng  float64
	Address   string
	Phone     string
	Available bool
}

// Donors are spread around lower Manhattan and Brooklyn so the default 50 km
// radius reaches every seeded alert, while a 5 km radius does not.
var fakeProfiles = []fakeProfileSeed{
	{UserID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a03", BloodType: types.BloodTypeONeg, Organs: []types.Organ{types.OrganKidney}, Lat: 40.7128, Lng: -74.0060, Address: "City Hall, New York, NY", Phone: "+1 212 555 0103", Available: true},
	{UserID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a04", BloodType: types.BloodTypeAPos, Lat: 40.6782, Lng: -73.9442, Address: "Crown Heights, Brooklyn, NY", Phone: "+1 718 555 0104", Available: true},
	{UserID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a05", BloodType: types.BloodTypeABPos, Organs: []types.Organ{types.OrganLiver, types.OrganCornea}, Lat: 40.9176, Lng: -74.1718, Address: "Paterson, NJ", Phone: "+1 973 555 0105", Available: true},
	{UserID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a06", BloodType: types.BloodTypeOPos, Lat: 40.7306, Lng: -73.9352, Address: "Greenpoint, Brooklyn, NY", Phone: "+1 718 555 0106", Available: false},
}

func SeedFakeProfiles(ctx context.Context, profiles ProfileStore) (int, error) {
	seeded := 0
	for _, p := range fakeProfiles {
		err := profiles.UpsertProfile(ctx, &types.DonorProfile{
			UserID:           p.UserID,
			BloodType:        p.BloodType,
			OrgansOffered:    p.Organs,
			Lat:              p.Lat,
			Lng:              p.Lng,
			Address:          p.Address,
			Phone:            p.Phone,
			EmergencyContact: "Seed Contact",
			Available:        p.Available,
			MedicalHistory:   utils.StringPtr("[seed] no known conditions"),
		})
		if err != nil {
			return seeded, fmt.Errorf("failed to upsert fake profile %s: %w", p.UserID, err)
		}
		seeded++
	}

	return seeded, nil
}
