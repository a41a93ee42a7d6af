package lifecycle

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"lifelink/internal/store/memstore"
	"lifelink/internal/utils"
	"lifelink/internal/validate"
	"lifelink/pkg/types"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	recipient   = types.Actor{UserID: "recipient-1", Role: types.RoleRecipient}
	coordinator = types.Actor{UserID: "coordinator-1", Role: types.RoleCoordinator}
	donorA      = types.Actor{UserID: "donor-a", Role: types.RoleDonor}
	donorB      = types.Actor{UserID: "donor-b", Role: types.RoleDonor}
	stranger    = types.Actor{UserID: "donor-c", Role: types.RoleDonor}
)

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	store := memstore.New()
	return NewService(store, validate.New(), logger), store
}

func bloodInput() CreateAlertInput {
	return CreateAlertInput{
		Kind:            types.AlertKindBlood,
		BloodTypeNeeded: types.BloodTypeONeg,
		Urgency:         types.UrgencyCritical,
		Description:     "Trauma patient needs O- urgently",
		Location: LocationInput{
			Lat:     utils.Float64Ptr(40.7128),
			Lng:     utils.Float64Ptr(-74.0060),
			Address: "Bellevue Hospital, New York",
		},
		ContactInfo: ContactInput{Phone: "+1 (212) 555-0100", Hospital: "Bellevue"},
	}
}

func organInput() CreateAlertInput {
	in := bloodInput()
	in.Kind = types.AlertKindOrgan
	in.BloodTypeNeeded = ""
	in.OrganNeeded = types.OrganKidney
	in.Description = "Kidney transplant candidate"
	return in
}

func createAlert(t *testing.T, svc *Service) *types.Alert {
	t.Helper()
	alert, err := svc.Create(context.Background(), recipient, bloodInput())
	require.NoError(t, err)
	return alert
}

func TestCreate(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	alert, err := svc.Create(ctx, recipient, bloodInput())
	require.NoError(t, err)

	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, recipient.UserID, alert.RequesterID)
	assert.Equal(t, types.AlertStatusPending, alert.Status)
	assert.Equal(t, types.BloodNeed{BloodType: types.BloodTypeONeg}, alert.Need)
	assert.Nil(t, alert.AcceptedBy)
	require.NotNil(t, alert.Contact.Hospital)
	assert.Equal(t, "Bellevue", *alert.Contact.Hospital)

	stored, err := store.Alert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, alert.ID, stored.ID)

	_, err = svc.Create(ctx, coordinator, bloodInput())
	assert.NoError(t, err)
}

func TestCreateRejectsDonors(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Create(context.Background(), donorA, bloodInput())
	assert.ErrorIs(t, err, types.ErrUnauthorized)
}

func TestCreateOrganAlertOmitsBloodType(t *testing.T) {
	svc, _ := newTestService(t)

	alert, err := svc.Create(context.Background(), recipient, organInput())
	require.NoError(t, err)

	organ, ok := alert.OrganNeeded()
	assert.True(t, ok)
	assert.Equal(t, types.OrganKidney, organ)
	_, ok = alert.BloodTypeNeeded()
	assert.False(t, ok)

	body, err := json.Marshal(alert)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "organ", decoded["kind"])
	assert.Equal(t, "kidney", decoded["organNeeded"])
	assert.NotContains(t, decoded, "bloodTypeNeeded")
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateAlertInput)
		field  string
	}{
		{"missing kind", func(in *CreateAlertInput) { in.Kind = "" }, "kind"},
		{"unknown kind", func(in *CreateAlertInput) { in.Kind = "plasma" }, "kind"},
		{"blood without type", func(in *CreateAlertInput) { in.BloodTypeNeeded = "" }, "bloodTypeNeeded"},
		{"bad blood type", func(in *CreateAlertInput) { in.BloodTypeNeeded = "C+" }, "bloodTypeNeeded"},
		{"blood with organ", func(in *CreateAlertInput) { in.OrganNeeded = types.OrganLiver }, "organNeeded"},
		{"bad urgency", func(in *CreateAlertInput) { in.Urgency = "whenever" }, "urgency"},
		{"empty description", func(in *CreateAlertInput) { in.Description = "   " }, "description"},
		{"long description", func(in *CreateAlertInput) { in.Description = string(make([]byte, 501)) }, "description"},
		{"missing lat", func(in *CreateAlertInput) { in.Location.Lat = nil }, "location.lat"},
		{"lat out of range", func(in *CreateAlertInput) { in.Location.Lat = utils.Float64Ptr(91) }, "location.lat"},
		{"lng out of range", func(in *CreateAlertInput) { in.Location.Lng = utils.Float64Ptr(-181) }, "location.lng"},
		{"missing address", func(in *CreateAlertInput) { in.Location.Address = "" }, "location.address"},
		{"bad phone", func(in *CreateAlertInput) { in.ContactInfo.Phone = "call me" }, "contactInfo.phone"},
		{"short phone", func(in *CreateAlertInput) { in.ContactInfo.Phone = "555-0100" }, "contactInfo.phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(t)

			in := bloodInput()
			tt.mutate(&in)

			_, err := svc.Create(context.Background(), recipient, in)
			require.ErrorIs(t, err, types.ErrValidation)

			verr, ok := types.AsError(err)
			require.True(t, ok)
			assert.Contains(t, verr.Fields, tt.field)

			mine, err := store.AlertsByRequester(context.Background(), recipient.UserID)
			require.NoError(t, err)
			assert.Empty(t, mine)
		})
	}
}

func TestAcceptResolve(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alert := createAlert(t, svc)

	accepted, err := svc.Accept(ctx, donorA, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedBy)
	assert.Equal(t, donorA.UserID, *accepted.AcceptedBy)
	assert.NotNil(t, accepted.AcceptedAt)

	resolved, err := svc.Resolve(ctx, donorA, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, accepted.AcceptedBy, resolved.AcceptedBy)

	_, err = svc.Resolve(ctx, recipient, alert.ID)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}

func TestRequesterCanResolve(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alert := createAlert(t, svc)

	_, err := svc.Accept(ctx, donorA, alert.ID)
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, recipient, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusResolved, resolved.Status)
}

func TestAcceptRules(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	alert := createAlert(t, svc)

	_, err := svc.Accept(ctx, recipient, alert.ID)
	assert.ErrorIs(t, err, types.ErrUnauthorized, "non-donor role")

	ownAlert, err := svc.Create(ctx, coordinator, bloodInput())
	require.NoError(t, err)
	_, err = svc.Accept(ctx, types.Actor{UserID: coordinator.UserID, Role: types.RoleDonor}, ownAlert.ID)
	assert.ErrorIs(t, err, types.ErrUnauthorized, "own alert")

	_, err = svc.Accept(ctx, donorA, "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)

	_, err = svc.Accept(ctx, donorA, alert.ID)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, donorB, alert.ID)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}

func TestResolveByNonParticipant(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	alert := createAlert(t, svc)

	_, err := svc.Accept(ctx, donorA, alert.ID)
	require.NoError(t, err)

	_, err = svc.Resolve(ctx, stranger, alert.ID)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	current, err := store.Alert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusAccepted, current.Status)
	assert.Nil(t, current.ResolvedAt)
}

func TestResolvePendingFails(t *testing.T) {
	svc, _ := newTestService(t)
	alert := createAlert(t, svc)

	_, err := svc.Resolve(context.Background(), recipient, alert.ID)
	assert.ErrorIs(t, err, types.ErrPrecondition)
}

func TestCancel(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	pending := createAlert(t, svc)
	_, err := svc.Cancel(ctx, donorA, pending.ID)
	assert.ErrorIs(t, err, types.ErrUnauthorized)

	cancelled, err := svc.Cancel(ctx, recipient, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)

	_, err = svc.Cancel(ctx, recipient, pending.ID)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	_, err = svc.Accept(ctx, donorA, pending.ID)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	accepted := createAlert(t, svc)
	_, err = svc.Accept(ctx, donorA, accepted.ID)
	require.NoError(t, err)
	cancelled, err = svc.Cancel(ctx, recipient, accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.AcceptedBy)
	assert.Equal(t, donorA.UserID, *cancelled.AcceptedBy)
}

func TestConcurrentAccept(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	alert := createAlert(t, svc)

	donors := make([]types.Actor, 16)
	for i := range donors {
		donors[i] = types.Actor{UserID: utils.NanoID(), Role: types.RoleDonor}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []string
		conflicts int
	)

	start := make(chan struct{})
	for _, d := range donors {
		wg.Add(1)
		go func(actor types.Actor) {
			defer wg.Done()
			<-start
			_, err := svc.Accept(ctx, actor, alert.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes = append(successes, actor.UserID)
			case assert.ErrorIs(t, err, types.ErrPrecondition):
				conflicts++
			}
		}(d)
	}
	close(start)
	wg.Wait()

	require.Len(t, successes, 1)
	assert.Equal(t, len(donors)-1, conflicts)

	current, err := store.Alert(ctx, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, types.AlertStatusAccepted, current.Status)
	require.NotNil(t, current.AcceptedBy)
	assert.Equal(t, successes[0], *current.AcceptedBy)
}

// staleStore reports the alert as pending but the write always loses, like a
// concurrent writer getting in between the read and the update.
type staleStore struct {
	*memstore.Store
}

func (s staleStore) UpdateAlertStatus(context.Context, string, types.AlertStatus, types.AlertStatusUpdate) (*types.Alert, error) {
	return nil, types.ErrStatusConflict
}

func TestLostRaceIsPreconditionFailed(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := memstore.New()
	svc := NewService(staleStore{store}, validate.New(), logger)

	alert, err := svc.Create(context.Background(), recipient, bloodInput())
	require.NoError(t, err)

	_, err = svc.Accept(context.Background(), donorA, alert.ID)
	assert.ErrorIs(t, err, types.ErrPrecondition)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "alert transition lost to a concurrent update", hook.LastEntry().Message)
}
