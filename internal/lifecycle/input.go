package lifecycle

import (
	"strings"

	"lifelink/internal/utils"
	"lifelink/pkg/types"
)

// CreateAlertInput is decoded from both JSON bodies and form posts.
type CreateAlertInput struct {
	Kind            types.AlertKind `json:"kind" form:"kind" validate:"required,oneof=blood organ"`
	BloodTypeNeeded types.BloodType `json:"bloodTypeNeeded" form:"bloodTypeNeeded" validate:"required_if=Kind blood,is-blood-type"`
	OrganNeeded     types.Organ     `json:"organNeeded" form:"organNeeded" validate:"required_if=Kind organ,is-organ"`
	Urgency         types.Urgency   `json:"urgency" form:"urgency" validate:"required,is-urgency"`
	Description     string          `json:"description" form:"description" validate:"required,max=500"`
	Location        LocationInput   `json:"location" form:"location"`
	ContactInfo     ContactInput    `json:"contactInfo" form:"contactInfo"`
}

type LocationInput struct {
	Lat     *float64 `json:"lat" form:"lat" validate:"required,gte=-90,lte=90"`
	Lng     *float64 `json:"lng" form:"lng" validate:"required,gte=-180,lte=180"`
	Address string   `json:"address" form:"address" validate:"required,max=200"`
}

type ContactInput struct {
	Phone    string `json:"phone" form:"phone" validate:"required,is-phone"`
	Hospital string `json:"hospital" form:"hospital" validate:"max=100"`
}

func (in *CreateAlertInput) normalize() {
	in.Description = strings.TrimSpace(in.Description)
	in.Location.Address = strings.TrimSpace(in.Location.Address)
	in.ContactInfo.Phone = strings.TrimSpace(in.ContactInfo.Phone)
	in.ContactInfo.Hospital = strings.TrimSpace(in.ContactInfo.Hospital)
}

// need builds the alert need, rejecting an input that names both variants.
func (in *CreateAlertInput) need() (types.AlertNeed, error) {
	switch in.Kind {
	case types.AlertKindBlood:
		if in.OrganNeeded != "" {
			return nil, types.ValidationError("Please fix the highlighted fields.", map[string]string{
				"organNeeded": "Must be empty for blood alerts.",
			})
		}
		return types.BloodNeed{BloodType: in.BloodTypeNeeded}, nil
	case types.AlertKindOrgan:
		if in.BloodTypeNeeded != "" {
			return nil, types.ValidationError("Please fix the highlighted fields.", map[string]string{
				"bloodTypeNeeded": "Must be empty for organ alerts.",
			})
		}
		return types.OrganNeed{Organ: in.OrganNeeded}, nil
	}
	return nil, types.ValidationError("Please fix the highlighted fields.", map[string]string{
		"kind": "Must be one of: blood, organ.",
	})
}

func (in *CreateAlertInput) contact() types.ContactInfo {
	c := types.ContactInfo{Phone: in.ContactInfo.Phone}
	if in.ContactInfo.Hospital != "" {
		c.Hospital = utils.StringPtr(in.ContactInfo.Hospital)
	}
	return c
}
