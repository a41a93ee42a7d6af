package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"lifelink/internal/lifecycle"
	"lifelink/pkg/types"
)

type alertResponse struct {
	Alert *types.Alert `json:"alert"`
}

type alertsResponse struct {
	Alerts []*types.Alert `json:"alerts"`
}

type transitionFunc func(ctx context.Context, actor types.Actor, alertID string) (*types.Alert, error)

// parseRadius reads the radius query parameter. Missing means the configured
// default; range checks happen in the matcher.
func parseRadius(r *http.Request) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("radius"))
	if raw == "" {
		return 0, nil
	}
	radius, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, types.ValidationError("Invalid radius.", map[string]string{
			"radius": "Must be a number of kilometres.",
		})
	}
	return radius, nil
}

func (s *Service) handleAPIListAlerts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	var (
		alerts []*types.Alert
		err    error
	)

	switch listType := r.URL.Query().Get("type"); listType {
	case "my":
		alerts, err = s.alerts.MyAlerts(ctx, actor)
	case "", "nearby":
		var radius float64
		radius, err = parseRadius(r)
		if err == nil {
			alerts, err = s.matcher.NearbyAlerts(ctx, actor, radius)
		}
	default:
		err = types.ValidationError("Invalid list type.", map[string]string{
			"type": "Must be nearby or my.",
		})
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if alerts == nil {
		alerts = []*types.Alert{}
	}
	s.writeJSON(w, http.StatusOK, alertsResponse{Alerts: alerts})
}

func (s *Service) handleAPICreateAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	var input lifecycle.CreateAlertInput
	if err := decodeJSON(w, r, &input); err != nil {
		s.writeError(w, r, err)
		return
	}

	alert, err := s.alerts.Create(ctx, actor, input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, alertResponse{Alert: alert})
}

func (s *Service) handleAPIGetAlert(w http.ResponseWriter, r *http.Request) {
	alert, err := s.alerts.Alert(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, alertResponse{Alert: alert})
}

func (s *Service) handleAPIAlertTransition(transition transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor, _ := actorFromContext(ctx)

		alert, err := transition(ctx, actor, r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		s.writeJSON(w, http.StatusOK, alertResponse{Alert: alert})
	}
}
