package seed

import (
	"context"
	"fmt"
	"strings"

	"lifelink/internal/lifecycle"
	"lifelink/internal/utils"
	"lifelink/pkg/types"
)

// DescriptionPrefix marks seeded alerts so --reset can find them again.
const DescriptionPrefix = "[seed]"

type AlertStore interface {
	AlertsByRequester(ctx context.Context, userID string) ([]*types.Alert, error)
	DeleteAlertsWithPrefix(ctx context.Context, prefix string) (int64, error)
}

// AlertCreator is implemented by *lifecycle.Service. Seeded alerts go through
// it so they pass the same validation as real ones.
type AlertCreator interface {
	Create(ctx context.Context, actor types.Actor, input lifecycle.CreateAlertInput) (*types.Alert, error)
}

var fakeAlerts = []lifecycle.CreateAlertInput{
	{
		Kind:            types.AlertKindBlood,
		BloodTypeNeeded: types.BloodTypeAPos,
		Urgency:         types.UrgencyCritical,
		Description:     "Trauma patient in surgery needs A+ blood within the hour.",
		Location:        lifecycle.LocationInput{Lat: utils.Float64Ptr(40.7392), Lng: utils.Float64Ptr(-73.9754), Address: "Bellevue Hospital, New York, NY"},
		ContactInfo:     lifecycle.ContactInput{Phone: "+1 212 555 0201", Hospital: "Bellevue Hospital"},
	},
	{
		Kind:            types.AlertKindBlood,
		BloodTypeNeeded: types.BloodTypeONeg,
		Urgency:         types.UrgencyHigh,
		Description:     "Newborn requires O- blood for a transfusion.",
		Location:        lifecycle.LocationInput{Lat: utils.Float64Ptr(40.7644), Lng: utils.Float64Ptr(-73.9547), Address: "NewYork-Presbyterian, New York, NY"},
		ContactInfo:     lifecycle.ContactInput{Phone: "+1 212 555 0202"},
	},
	{
		Kind:        types.AlertKindOrgan,
		OrganNeeded: types.OrganKidney,
		Urgency:     types.UrgencyMedium,
		Description: "Dialysis patient on the waiting list for a kidney.",
		Location:    lifecycle.LocationInput{Lat: utils.Float64Ptr(40.7900), Lng: utils.Float64Ptr(-73.9526), Address: "Mount Sinai Hospital, New York, NY"},
		ContactInfo: lifecycle.ContactInput{Phone: "+1 212 555 0203", Hospital: "Mount Sinai"},
	},
	{
		Kind:        types.AlertKindOrgan,
		OrganNeeded: types.OrganCornea,
		Urgency:     types.UrgencyLow,
		Description: "Scheduled cornea transplant needs a matching donor.",
		Location:    lifecycle.LocationInput{Lat: utils.Float64Ptr(40.6551), Lng: utils.Float64Ptr(-73.9444), Address: "Kings County Hospital, Brooklyn, NY"},
		ContactInfo: lifecycle.ContactInput{Phone: "+1 718 555 0204"},
	},
}

// SeedFakeAlerts posts the demo alerts round-robin across the seeded
// recipients. Alerts whose description already exists for that requester
// are skipped, so running it twice does not duplicate anything.
func SeedFakeAlerts(ctx context.Context, alerts AlertStore, creator AlertCreator, reset bool) (created int, deleted int64, err error) {
	if reset {
		deleted, err = alerts.DeleteAlertsWithPrefix(ctx, DescriptionPrefix)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to reset seeded alerts: %w", err)
		}
	}

	requesters := seedUserIDs(types.RoleRecipient)
	if len(requesters) == 0 {
		return 0, deleted, nil
	}

	existing := map[string]map[string]bool{}
	for _, id := range requesters {
		mine, err := alerts.AlertsByRequester(ctx, id)
		if err != nil {
			return created, deleted, fmt.Errorf("failed to list alerts for %s: %w", id, err)
		}
		existing[id] = map[string]bool{}
		for _, a := range mine {
			existing[id][a.Description] = true
		}
	}

	for i, input := range fakeAlerts {
		requester := requesters[i%len(requesters)]
		input.Description = seedDescription(input.Description)
		if existing[requester][input.Description] {
			continue
		}

		actor := types.Actor{UserID: requester, Role: types.RoleRecipient}
		if _, err := creator.Create(ctx, actor, input); err != nil {
			return created, deleted, fmt.Errorf("failed to create seeded alert %d: %w", i, err)
		}
		created++
	}

	return created, deleted, nil
}

func seedDescription(desc string) string {
	if strings.HasPrefix(desc, DescriptionPrefix) {
		return desc
	}
	return DescriptionPrefix + " " + desc
}
