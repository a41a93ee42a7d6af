package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"lifelink/internal/geo"
	"lifelink/internal/lifecycle"
	"lifelink/internal/medical"
	"lifelink/internal/profiles"
	"lifelink/pkg/types"
)

type AlertCard struct {
	Alert       *types.Alert
	DistanceKm  float64
	HasDistance bool
	CanAccept   bool
	CanResolve  bool
	CanCancel   bool
}

type DashboardPageData struct {
	types.BasePageData
	Actor           types.Actor
	Profile         *types.DonorProfile
	CanReceiveBlood []types.BloodType
	RadiusKm        float64
	Nearby          []AlertCard
	Mine            []AlertCard
	CanPost         bool
}

type AlertFormPageData struct {
	types.BasePageData
	Input       lifecycle.CreateAlertInput
	FieldErrors map[string]string
	BloodTypes  []types.BloodType
	Organs      []types.Organ
	Urgencies   []types.Urgency
}

type ProfilePageData struct {
	types.BasePageData
	Profile       *types.DonorProfile
	Documents     []*types.ProfileDocument
	FieldErrors   map[string]string
	BloodTypes    []types.BloodType
	Organs        []types.Organ
	DocumentTypes []string
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.WithError(err).Error("health check failed")
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {

	// Public page; a valid session only changes the navbar.
	if ctx, err := s.authenticate(r); err == nil {
		r = r.WithContext(ctx)
	}

	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "LifeLink"},
		BloodTypes:   types.BloodTypes,
		Organs:       types.Organs,
	}
	flash(r, &data.BasePageData)

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	data := &DashboardPageData{
		BasePageData: types.BasePageData{Title: "Dashboard"},
		Actor:        actor,
		CanPost:      actor.Role == types.RoleRecipient || actor.Role == types.RoleCoordinator,
		RadiusKm:     s.matcher.DefaultRadiusKm(),
	}
	flash(r, &data.BasePageData)

	profile, err := s.profiles.Profile(ctx, actor)
	switch {
	case err == nil:
		data.Profile = profile
		data.CanReceiveBlood = medical.RecipientsFor(profile.BloodType)
	case !errors.Is(err, types.ErrNotFound):
		s.logger.WithError(err).WithField("user_id", actor.UserID).Error("failed to load profile for dashboard")
		s.internalServerError(w)
		return
	}

	if actor.Role == types.RoleDonor && profile != nil {
		radius, err := parseRadius(r)
		if err == nil && radius > 0 {
			data.RadiusKm = radius
		}

		nearby, err := s.matcher.NearbyAlerts(ctx, actor, radius)
		if err != nil {
			if statusFor(err) == http.StatusInternalServerError {
				s.logger.WithError(err).WithField("user_id", actor.UserID).Error("failed to match alerts for dashboard")
				s.internalServerError(w)
				return
			}
			e, _ := types.AsError(err)
			data.Error = e.Message
		}
		data.Nearby = s.alertCards(actor, profile, nearby)
	}

	mine, err := s.alerts.MyAlerts(ctx, actor)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Error("failed to load my alerts for dashboard")
		s.internalServerError(w)
		return
	}
	data.Mine = s.alertCards(actor, profile, mine)

	if err := s.renderTemplate(w, r, "page.dashboard", data); err != nil {
		s.logger.WithError(err).Error("failed to render dashboard page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) alertCards(actor types.Actor, profile *types.DonorProfile, alerts []*types.Alert) []AlertCard {
	cards := make([]AlertCard, 0, len(alerts))
	for _, a := range alerts {
		card := AlertCard{
			Alert:      a,
			CanAccept:  actor.Role == types.RoleDonor && !actor.Is(a.RequesterID) && a.Status == types.AlertStatusPending,
			CanResolve: a.Status == types.AlertStatusAccepted && a.IsParticipant(actor.UserID),
			CanCancel:  actor.Is(a.RequesterID) && !a.Status.Terminal(),
		}
		if profile != nil {
			card.HasDistance = true
			card.DistanceKm = geo.Distance(
				geo.Point{Lat: profile.Lat, Lng: profile.Lng},
				geo.Point{Lat: a.Location.Lat, Lng: a.Location.Lng},
			)
		}
		cards = append(cards, card)
	}
	return cards
}

func (s *Service) newAlertFormData() *AlertFormPageData {
	return &AlertFormPageData{
		BasePageData: types.BasePageData{Title: "Post an Alert"},
		BloodTypes:   types.BloodTypes,
		Organs:       types.Organs,
		Urgencies:    types.Urgencies,
	}
}

func (s *Service) handleGetNewAlert(w http.ResponseWriter, r *http.Request) {
	data := s.newAlertFormData()
	data.Input.Kind = types.AlertKindBlood
	data.Input.Urgency = types.UrgencyHigh

	if err := s.renderTemplate(w, r, "page.alert.new", data); err != nil {
		s.logger.WithError(err).Error("failed to render new alert page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostNewAlert(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	data := s.newAlertFormData()

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/alerts/new", "Invalid form submission.")
		return
	}
	if err := decoder.Decode(&data.Input, r.Form); err != nil {
		s.logger.WithError(err).Info("failed to decode alert form")
		data.Error = "Some values could not be read. Please check the form."
		s.renderAlertForm(w, r, http.StatusBadRequest, data)
		return
	}

	// The form always posts both selects; only the one matching kind counts.
	switch data.Input.Kind {
	case types.AlertKindBlood:
		data.Input.OrganNeeded = ""
	case types.AlertKindOrgan:
		data.Input.BloodTypeNeeded = ""
	}

	alert, err := s.alerts.Create(ctx, actor, data.Input)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.WithError(err).Error("failed to create alert from form")
			s.internalServerError(w)
			return
		}
		e, _ := types.AsError(err)
		data.Error = e.Message
		data.FieldErrors = e.Fields
		s.renderAlertForm(w, r, status, data)
		return
	}

	s.redirectWithNotice(w, r, "/dashboard", "Alert posted: "+alert.Need.String()+".")
}

func (s *Service) renderAlertForm(w http.ResponseWriter, r *http.Request, status int, data *AlertFormPageData) {
	if err := s.renderTemplateStatus(w, r, status, "page.alert.new", data); err != nil {
		s.logger.WithError(err).Error("failed to render new alert page")
		s.internalServerError(w)
	}
}

func (s *Service) handlePostAlertAction(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)
	alertID := r.PathValue("id")

	var (
		transition func(ctx context.Context, actor types.Actor, alertID string) (*types.Alert, error)
		notice     string
	)
	switch r.PathValue("action") {
	case "accept":
		transition, notice = s.alerts.Accept, "Alert accepted. Please contact the requester."
	case "resolve":
		transition, notice = s.alerts.Resolve, "Alert resolved."
	case "cancel":
		transition, notice = s.alerts.Cancel, "Alert cancelled."
	default:
		http.NotFound(w, r)
		return
	}

	if _, err := transition(ctx, actor, alertID); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).WithField("alert_id", alertID).Error("alert action failed")
			s.internalServerError(w)
			return
		}
		e, _ := types.AsError(err)
		s.redirectWithError(w, r, "/dashboard", e.Message)
		return
	}

	s.redirectWithNotice(w, r, "/dashboard", notice)
}

func (s *Service) newProfileFormData() *ProfilePageData {
	return &ProfilePageData{
		BasePageData:  types.BasePageData{Title: "My Profile"},
		BloodTypes:    types.BloodTypes,
		Organs:        types.Organs,
		DocumentTypes: types.DocumentTypes,
	}
}

func (s *Service) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	data := s.newProfileFormData()
	flash(r, &data.BasePageData)

	profile, err := s.profiles.Profile(ctx, actor)
	if err != nil && !errors.Is(err, types.ErrNotFound) {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Error("failed to load profile")
		s.internalServerError(w)
		return
	}
	if profile == nil {
		profile = &types.DonorProfile{UserID: actor.UserID, Available: true}
	}
	data.Profile = profile

	docs, err := s.profiles.Documents(ctx, actor)
	if err != nil {
		s.logger.WithError(err).WithField("user_id", actor.UserID).Error("failed to load profile documents")
		s.internalServerError(w)
		return
	}
	data.Documents = docs

	if err := s.renderTemplate(w, r, "page.profile", data); err != nil {
		s.logger.WithError(err).Error("failed to render profile page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	if err := r.ParseForm(); err != nil {
		s.redirectWithError(w, r, "/profile", "Invalid form submission.")
		return
	}

	var input profiles.SaveProfileInput
	if err := decoder.Decode(&input, r.Form); err != nil {
		s.logger.WithError(err).Info("failed to decode profile form")
		s.redirectWithError(w, r, "/profile", "Some values could not be read. Please check the form.")
		return
	}

	_, err := s.profiles.Save(ctx, actor, input)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.WithError(err).Error("failed to save profile from form")
			s.internalServerError(w)
			return
		}

		e, _ := types.AsError(err)
		data := s.newProfileFormData()
		data.Error = e.Message
		data.FieldErrors = e.Fields
		data.Profile = profileFromInput(actor, input)
		if rerr := s.renderTemplateStatus(w, r, status, "page.profile", data); rerr != nil {
			s.logger.WithError(rerr).Error("failed to render profile page with errors")
			s.internalServerError(w)
		}
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Profile saved.")
}

// profileFromInput echoes a rejected form back so the visitor does not
// lose what they typed.
func profileFromInput(actor types.Actor, input profiles.SaveProfileInput) *types.DonorProfile {
	p := &types.DonorProfile{
		UserID:           actor.UserID,
		BloodType:        input.BloodType,
		OrgansOffered:    input.OrgansOffered,
		Address:          input.Address,
		Phone:            input.Phone,
		EmergencyContact: input.EmergencyContact,
		Available:        input.Available,
	}
	if input.Lat != nil {
		p.Lat = *input.Lat
	}
	if input.Lng != nil {
		p.Lng = *input.Lng
	}
	if history := strings.TrimSpace(input.MedicalHistory); history != "" {
		p.MedicalHistory = &history
	}
	return p
}

func (s *Service) handlePostProfileDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, _ := actorFromContext(ctx)

	upload, cleanup, err := readDocumentUpload(w, r)
	if err != nil {
		s.redirectWithError(w, r, "/profile", firstMessage(err))
		return
	}
	defer cleanup()

	if _, err := s.profiles.AttachDocument(ctx, actor, upload); err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			s.logger.WithError(err).Error("failed to attach profile document")
			s.redirectWithError(w, r, "/profile", "Could not store the document. Please try again.")
			return
		}
		s.redirectWithError(w, r, "/profile", firstMessage(err))
		return
	}

	s.redirectWithNotice(w, r, "/profile", "Document uploaded.")
}

// firstMessage picks something readable for a redirect flash: a field
// message when there is exactly one, otherwise the error message.
func firstMessage(err error) string {
	e, ok := types.AsError(err)
	if !ok {
		return "Something went wrong."
	}
	if len(e.Fields) == 1 {
		for _, msg := range e.Fields {
			return msg
		}
	}
	return e.Message
}
