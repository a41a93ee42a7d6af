package seed

import (
	"context"
	"fmt"

	"lifelink/internal/utils"
	"lifelink/pkg/types"

	"github.com/google/uuid"
)

// UserStore is the slice of the users table the seeders write to.
type UserStore interface {
	UpsertUser(ctx context.Context, user *types.User) error
}

type fakeUserSeed struct {
	ID         string
	Email      string
	GivenName  string
	FamilyName string
	Role       types.Role
}

// Demo accounts. Ids are fixed so reseeding converges on the same rows and
// they can be linked to Cognito users created by hand in a dev pool.
var fakeUsers = []fakeUserSeed{
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a01", Email: "ava.williams+seed1@example.com", GivenName: "Ava", FamilyName: "Williams", Role: types.RoleRecipient},
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a02", Email: "liam.johnson+seed2@example.com", GivenName: "Liam", FamilyName: "Johnson", Role: types.RoleRecipient},
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a03", Email: "noah.brown+seed3@example.com", GivenName: "Noah", FamilyName: "Brown", Role: types.RoleDonor},
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a04", Email: "mia.davis+seed4@example.com", GivenName: "Mia", FamilyName: "Davis", Role: types.RoleDonor},
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a05", Email: "elijah.garcia+seed5@example.com", GivenName: "Elijah", FamilyName: "Garcia", Role: types.RoleDonor},
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a06", Email: "olivia.miller+seed6@example.com", GivenName: "Olivia", FamilyName: "Miller", Role: types.RoleDonor},
	{ID: "6f1c0d0e-8f2b-4b8e-9a51-0c1d2e3f4a07", Email: "ethan.moore+seed7@example.com", GivenName: "Ethan", FamilyName: "Moore", Role: types.RoleCoordinator},
}

func seedUserIDs(role types.Role) []string {
	ids := make([]string, 0, len(fakeUsers))
	for _, user := range fakeUsers {
		if user.Role == role {
			ids = append(ids, user.ID)
		}
	}
	return ids
}

func SeedFakeUsers(ctx context.Context, users UserStore) (int, error) {
	seeded := 0
	for _, fakeUser := range fakeUsers {
		if _, err := uuid.Parse(fakeUser.ID); err != nil {
			return seeded, fmt.Errorf("fake user %s has a malformed id: %w", fakeUser.Email, err)
		}

		err := users.UpsertUser(ctx, &types.User{
			ID:         fakeUser.ID,
			Role:       fakeUser.Role,
			Email:      utils.StringPtr(fakeUser.Email),
			GivenName:  utils.StringPtr(fakeUser.GivenName),
			FamilyName: utils.StringPtr(fakeUser.FamilyName),
		})
		if err != nil {
			return seeded, fmt.Errorf("failed to upsert fake user %s: %w", fakeUser.ID, err)
		}
		seeded++
	}

	return seeded, nil
}
