package types

import "time"

type Role string

const (
	RoleDonor       Role = "donor"
	RoleRecipient   Role = "recipient"
	RoleCoordinator Role = "coordinator"
)

var Roles = []Role{RoleDonor, RoleRecipient, RoleCoordinator}

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RoleRecipient, RoleCoordinator:
		return true
	}
	return false
}

func (r Role) Label() string {
	switch r {
	case RoleDonor:
		return "Donor"
	case RoleRecipient:
		return "Recipient"
	case RoleCoordinator:
		return "Coordinator"
	default:
		return "Unknown"
	}
}

type User struct {
	ID         string    `db:"id"`
	Role       Role      `db:"role"`
	Email      *string   `db:"email"`
	GivenName  *string   `db:"given_name"`
	FamilyName *string   `db:"family_name"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (u *User) DisplayName() string {
	var name string
	if u.GivenName != nil {
		name = *u.GivenName
	}
	if u.FamilyName != nil && *u.FamilyName != "" {
		if name != "" {
			name += " "
		}
		name += *u.FamilyName
	}
	if name == "" && u.Email != nil {
		name = *u.Email
	}
	return name
}

// Actor is the authenticated caller of a core operation. It is produced by
// the auth middleware and passed explicitly, never read from ambient state.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) Is(userID string) bool {
	return a.UserID != "" && a.UserID == userID
}
