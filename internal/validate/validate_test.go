package validate

import (
	"testing"

	"lifelink/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nested struct {
	Phone string `json:"phone" validate:"required,is-phone"`
}

type sample struct {
	Role    types.Role      `json:"role" validate:"required,is-role"`
	Blood   types.BloodType `json:"blood" validate:"is-blood-type"`
	Urgency types.Urgency   `json:"urgency" validate:"is-urgency"`
	Note    string          `json:"note" validate:"max=5"`
	Ignored string          `json:"-" validate:"max=1"`
	Contact nested          `json:"contact"`
}

func TestStructValid(t *testing.T) {
	v := New()
	err := v.Struct(sample{
		Role:    types.RoleDonor,
		Blood:   types.BloodTypeABNeg,
		Contact: nested{Phone: "(555) 123-4567"},
	})
	assert.NoError(t, err)
}

func TestStructFieldMessages(t *testing.T) {
	v := New()
	err := v.Struct(sample{
		Role:    "admin",
		Blood:   "O",
		Urgency: "soon",
		Note:    "too long",
		Contact: nested{Phone: "abc"},
	})
	require.ErrorIs(t, err, types.ErrValidation)

	verr, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"role":          "Must be donor, recipient or coordinator.",
		"blood":         "Must be a valid blood type.",
		"urgency":       "Must be low, medium, high or critical.",
		"note":          "Must be at most 5 characters.",
		"contact.phone": "Enter a valid phone number.",
	}, verr.Fields)
}

func TestPhonePattern(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"+1 (212) 555-0100", true},
		{"2125550100", true},
		{"020 7946 0958", true},
		{"555-0100", false},
		{"phone: 2125550100", false},
		{"+1-212-555-01OO", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, phoneReg.MatchString(tt.phone), tt.phone)
	}
}
