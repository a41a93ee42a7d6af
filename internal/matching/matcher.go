// Package matching selects the pending alerts a donor can help with.
package matching

import (
	"lifelink/internal/geo"
	"lifelink/internal/medical"
	"lifelink/pkg/types"
)

// DefaultRadiusKm applies when the caller supplies no radius.
const DefaultRadiusKm = 50.0

// Match returns the candidates that are pending, not owned by the donor,
// within radiusKm of the donor's location and medically compatible with the
// donor. Candidate order is preserved. A radius <= 0 means DefaultRadiusKm.
func Match(profile *types.DonorProfile, candidates []*types.Alert, radiusKm float64) []*types.Alert {
	out := make([]*types.Alert, 0)
	if profile == nil || !profile.Available {
		return out
	}
	if radiusKm <= 0 {
		radiusKm = DefaultRadiusKm
	}

	donorAt := geo.Point{Lat: profile.Lat, Lng: profile.Lng}

	for _, alert := range candidates {
		if alert == nil || alert.RequesterID == profile.UserID {
			continue
		}
		if alert.Status != types.AlertStatusPending {
			continue
		}
		alertAt := geo.Point{Lat: alert.Location.Lat, Lng: alert.Location.Lng}
		if !geo.WithinRadiusKm(donorAt, alertAt, radiusKm) {
			continue
		}
		if !medical.Compatible(profile, alert.Need) {
			continue
		}
		out = append(out, alert)
	}

	return out
}
