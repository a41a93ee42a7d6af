package matching

import (
	"context"
	"errors"
	"fmt"
	"math"

	"lifelink/pkg/types"
)

type AlertSource interface {
	PendingAlertsExcluding(ctx context.Context, userID string) ([]*types.Alert, error)
}

type ProfileSource interface {
	ProfileByUserID(ctx context.Context, userID string) (*types.DonorProfile, error)
}

type Service struct {
	alerts   AlertSource
	profiles ProfileSource

	defaultRadiusKm float64
	maxRadiusKm     float64
}

func NewService(alerts AlertSource, profiles ProfileSource, defaultRadiusKm, maxRadiusKm float64) *Service {
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = DefaultRadiusKm
	}
	if maxRadiusKm < defaultRadiusKm {
		maxRadiusKm = defaultRadiusKm
	}
	return &Service{
		alerts:          alerts,
		profiles:        profiles,
		defaultRadiusKm: defaultRadiusKm,
		maxRadiusKm:     maxRadiusKm,
	}
}

// DefaultRadiusKm is the radius used when a request does not name one.
func (s *Service) DefaultRadiusKm() float64 {
	return s.defaultRadiusKm
}

// NearbyAlerts returns the pending alerts the actor can help with within
// radiusKm of their registered location. A zero radius means the default.
func (s *Service) NearbyAlerts(ctx context.Context, actor types.Actor, radiusKm float64) ([]*types.Alert, error) {
	if radiusKm == 0 {
		radiusKm = s.defaultRadiusKm
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm < 0 || radiusKm > s.maxRadiusKm {
		return nil, types.ValidationError("Invalid radius.", map[string]string{
			"radius": fmt.Sprintf("Radius must be between 0 and %.0f km.", s.maxRadiusKm),
		})
	}

	profile, err := s.profiles.ProfileByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, types.ErrProfileNotFound) {
			return nil, types.NotFoundError("Create your donor profile to see nearby alerts.", err)
		}
		return nil, fmt.Errorf("failed to load donor profile: %w", err)
	}

	candidates, err := s.alerts.PendingAlertsExcluding(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending alerts: %w", err)
	}

	return Match(profile, candidates, radiusKm), nil
}
