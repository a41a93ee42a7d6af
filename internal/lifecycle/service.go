// Package lifecycle owns the alert state machine:
//
//	pending -> accepted -> resolved
//	pending | accepted -> cancelled
//
// Every transition reads the alert, checks who is asking, checks the current
// status and then writes through a conditional update that only applies if
// the status is still the one that was checked.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lifelink/internal/utils"
	"lifelink/internal/validate"
	"lifelink/pkg/types"

	"github.com/sirupsen/logrus"
)

type AlertStore interface {
	Alert(ctx context.Context, alertID string) (*types.Alert, error)
	AlertsByRequester(ctx context.Context, userID string) ([]*types.Alert, error)
	CreateAlert(ctx context.Context, alert *types.Alert) error
	// UpdateAlertStatus applies update only if the alert is still in
	// expected, returning types.ErrStatusConflict otherwise.
	UpdateAlertStatus(ctx context.Context, alertID string, expected types.AlertStatus, update types.AlertStatusUpdate) (*types.Alert, error)
}

type Service struct {
	store     AlertStore
	validator *validate.Validator
	logger    logrus.FieldLogger
	now       func() time.Time
}

func NewService(store AlertStore, validator *validate.Validator, logger logrus.FieldLogger) *Service {
	return &Service{
		store:     store,
		validator: validator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, actor types.Actor, input CreateAlertInput) (*types.Alert, error) {

	if actor.Role != types.RoleRecipient && actor.Role != types.RoleCoordinator {
		return nil, types.Unauthorized("Only recipients and coordinators can post alerts.")
	}

	input.normalize()
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	need, err := input.need()
	if err != nil {
		return nil, err
	}

	now := s.now()
	alert := &types.Alert{
		ID:          utils.NanoID(),
		RequesterID: actor.UserID,
		Need:        need,
		Urgency:     input.Urgency,
		Description: input.Description,
		Location: types.Location{
			Lat:     *input.Location.Lat,
			Lng:     *input.Location.Lng,
			Address: input.Location.Address,
		},
		Contact:   input.contact(),
		Status:    types.AlertStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"user_id":  actor.UserID,
		"need":     need.String(),
		"urgency":  alert.Urgency,
	}).Info("alert created")

	return alert, nil
}

func (s *Service) Alert(ctx context.Context, alertID string) (*types.Alert, error) {
	alert, err := s.store.Alert(ctx, alertID)
	if err != nil {
		if errors.Is(err, types.ErrAlertNotFound) {
			return nil, types.NotFoundError("Alert not found.", err)
		}
		return nil, fmt.Errorf("failed to load alert: %w", err)
	}
	return alert, nil
}

func (s *Service) MyAlerts(ctx context.Context, actor types.Actor) ([]*types.Alert, error) {
	alerts, err := s.store.AlertsByRequester(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts for user: %w", err)
	}
	return alerts, nil
}

func (s *Service) Accept(ctx context.Context, actor types.Actor, alertID string) (*types.Alert, error) {

	alert, err := s.Alert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if actor.Role != types.RoleDonor {
		return nil, types.Unauthorized("Only donors can accept alerts.")
	}
	if actor.Is(alert.RequesterID) {
		return nil, types.Unauthorized("You cannot accept your own alert.")
	}
	if alert.Status != types.AlertStatusPending {
		return nil, types.PreconditionFailed("Alert is no longer pending.")
	}

	now := s.now()
	return s.transition(ctx, actor, alert, types.AlertStatusUpdate{
		Status:     types.AlertStatusAccepted,
		AcceptedBy: utils.StringPtr(actor.UserID),
		AcceptedAt: &now,
		UpdatedAt:  now,
	}, "Alert is no longer pending.")
}

func (s *Service) Resolve(ctx context.Context, actor types.Actor, alertID string) (*types.Alert, error) {

	alert, err := s.Alert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if !alert.IsParticipant(actor.UserID) {
		return nil, types.Unauthorized("Only the requester or the accepting donor can resolve this alert.")
	}
	if alert.Status != types.AlertStatusAccepted {
		return nil, types.PreconditionFailed("Only accepted alerts can be resolved.")
	}

	now := s.now()
	return s.transition(ctx, actor, alert, types.AlertStatusUpdate{
		Status:     types.AlertStatusResolved,
		AcceptedBy: alert.AcceptedBy,
		AcceptedAt: alert.AcceptedAt,
		ResolvedAt: &now,
		UpdatedAt:  now,
	}, "Only accepted alerts can be resolved.")
}

func (s *Service) Cancel(ctx context.Context, actor types.Actor, alertID string) (*types.Alert, error) {

	alert, err := s.Alert(ctx, alertID)
	if err != nil {
		return nil, err
	}

	if !actor.Is(alert.RequesterID) {
		return nil, types.Unauthorized("Only the requester can cancel this alert.")
	}
	if alert.Status.Terminal() {
		return nil, types.PreconditionFailed("Alert is already closed.")
	}

	now := s.now()
	return s.transition(ctx, actor, alert, types.AlertStatusUpdate{
		Status:      types.AlertStatusCancelled,
		AcceptedBy:  alert.AcceptedBy,
		AcceptedAt:  alert.AcceptedAt,
		CancelledAt: &now,
		UpdatedAt:   now,
	}, "Alert is already closed.")
}

// transition writes update conditioned on the status that was just checked.
func (s *Service) transition(ctx context.Context, actor types.Actor, alert *types.Alert, update types.AlertStatusUpdate, conflictMsg string) (*types.Alert, error) {

	updated, err := s.store.UpdateAlertStatus(ctx, alert.ID, alert.Status, update)
	if err != nil {
		if errors.Is(err, types.ErrStatusConflict) {
			s.logger.WithFields(logrus.Fields{
				"alert_id": alert.ID,
				"user_id":  actor.UserID,
				"from":     alert.Status,
				"to":       update.Status,
			}).Info("alert transition lost to a concurrent update")
			return nil, types.PreconditionFailed(conflictMsg)
		}
		if errors.Is(err, types.ErrAlertNotFound) {
			return nil, types.NotFoundError("Alert not found.", err)
		}
		return nil, fmt.Errorf("failed to update alert status: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"alert_id": alert.ID,
		"user_id":  actor.UserID,
		"from":     alert.Status,
		"to":       updated.Status,
	}).Info("alert transitioned")

	return updated, nil
}
