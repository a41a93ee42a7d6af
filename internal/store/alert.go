package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lifelink/internal/utils"
	"lifelink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const alertTableName = "alerts"

// alertRow is the flat table shape of types.Alert. A check constraint keeps
// exactly one of blood_type_needed and organ_needed set, matching kind.
type alertRow struct {
	ID              string     `db:"id"`
	RequesterID     string     `db:"requester_id"`
	Kind            string     `db:"kind"`
	BloodTypeNeeded *string    `db:"blood_type_needed"`
	OrganNeeded     *string    `db:"organ_needed"`
	Urgency         string     `db:"urgency"`
	Description     string     `db:"description"`
	Lat             float64    `db:"lat"`
	Lng             float64    `db:"lng"`
	Address         string     `db:"address"`
	ContactPhone    string     `db:"contact_phone"`
	ContactHospital *string    `db:"contact_hospital"`
	Status          string     `db:"status"`
	AcceptedBy      *string    `db:"accepted_by"`
	AcceptedAt      *time.Time `db:"accepted_at"`
	ResolvedAt      *time.Time `db:"resolved_at"`
	CancelledAt     *time.Time `db:"cancelled_at"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

var alertColumns = utils.StructTagValues(alertRow{})

func newAlertRow(a *types.Alert) (*alertRow, error) {
	row := &alertRow{
		ID:              a.ID,
		RequesterID:     a.RequesterID,
		Urgency:         string(a.Urgency),
		Description:     a.Description,
		Lat:             a.Location.Lat,
		Lng:             a.Location.Lng,
		Address:         a.Location.Address,
		ContactPhone:    a.Contact.Phone,
		ContactHospital: a.Contact.Hospital,
		Status:          string(a.Status),
		AcceptedBy:      a.AcceptedBy,
		AcceptedAt:      a.AcceptedAt,
		ResolvedAt:      a.ResolvedAt,
		CancelledAt:     a.CancelledAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}

	switch n := a.Need.(type) {
	case types.BloodNeed:
		row.Kind = string(types.AlertKindBlood)
		row.BloodTypeNeeded = utils.StringPtr(string(n.BloodType))
	case types.OrganNeed:
		row.Kind = string(types.AlertKindOrgan)
		row.OrganNeeded = utils.StringPtr(string(n.Organ))
	default:
		return nil, fmt.Errorf("alert %s has no need", a.ID)
	}

	return row, nil
}

func (row *alertRow) alert() (*types.Alert, error) {
	a := &types.Alert{
		ID:          row.ID,
		RequesterID: row.RequesterID,
		Urgency:     types.Urgency(row.Urgency),
		Description: row.Description,
		Location:    types.Location{Lat: row.Lat, Lng: row.Lng, Address: row.Address},
		Contact:     types.ContactInfo{Phone: row.ContactPhone, Hospital: row.ContactHospital},
		Status:      types.AlertStatus(row.Status),
		AcceptedBy:  row.AcceptedBy,
		AcceptedAt:  row.AcceptedAt,
		ResolvedAt:  row.ResolvedAt,
		CancelledAt: row.CancelledAt,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}

	switch types.AlertKind(row.Kind) {
	case types.AlertKindBlood:
		a.Need = types.BloodNeed{BloodType: types.BloodType(utils.PtrString(row.BloodTypeNeeded))}
	case types.AlertKindOrgan:
		a.Need = types.OrganNeed{Organ: types.Organ(utils.PtrString(row.OrganNeeded))}
	default:
		return nil, fmt.Errorf("alert %s has unknown kind %q", row.ID, row.Kind)
	}

	return a, nil
}

func alertsFromRows(rows []*alertRow) ([]*types.Alert, error) {
	out := make([]*types.Alert, 0, len(rows))
	for _, row := range rows {
		a, err := row.alert()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

type AlertRepository struct {
	pool *pgxpool.Pool
}

func NewAlertRepository(pool *pgxpool.Pool) *AlertRepository {
	return &AlertRepository{pool: pool}
}

func (r *AlertRepository) Alert(ctx context.Context, alertID string) (*types.Alert, error) {
	query, args, err := psql().
		Select(alertColumns...).
		From(alertTableName).
		Where(sq.Eq{"id": alertID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate alert query: %w", err)
	}

	var row alertRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrAlertNotFound
		}
		return nil, fmt.Errorf("failed to fetch alert: %w", err)
	}

	return row.alert()
}

func (r *AlertRepository) CreateAlert(ctx context.Context, alert *types.Alert) error {
	row, err := newAlertRow(alert)
	if err != nil {
		return err
	}

	query, args, err := psql().
		Insert(alertTableName).
		SetMap(utils.StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create alert query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create alert")
}

func (r *AlertRepository) AlertsByRequester(ctx context.Context, userID string) ([]*types.Alert, error) {
	return r.selectAlerts(ctx, sq.Eq{"requester_id": userID})
}

// PendingAlertsExcluding is the candidate set for matching: every pending
// alert not posted by userID, newest first.
func (r *AlertRepository) PendingAlertsExcluding(ctx context.Context, userID string) ([]*types.Alert, error) {
	return r.selectAlerts(ctx, sq.And{
		sq.Eq{"status": string(types.AlertStatusPending)},
		sq.NotEq{"requester_id": userID},
	})
}

func (r *AlertRepository) selectAlerts(ctx context.Context, where sq.Sqlizer) ([]*types.Alert, error) {
	query, args, err := psql().
		Select(alertColumns...).
		From(alertTableName).
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate alerts query: %w", err)
	}

	var rows []*alertRow
	err = pgxscan.Select(ctx, r.pool, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch alerts: %w", err)
	}

	return alertsFromRows(rows)
}

// UpdateAlertStatus is a compare-and-set on status. When no row matches it
// tells a missing alert apart from one whose status has already moved on.
func (r *AlertRepository) UpdateAlertStatus(ctx context.Context, alertID string, expected types.AlertStatus, update types.AlertStatusUpdate) (*types.Alert, error) {
	query, args, err := psql().
		Update(alertTableName).
		SetMap(map[string]any{
			"status":       string(update.Status),
			"accepted_by":  update.AcceptedBy,
			"accepted_at":  update.AcceptedAt,
			"resolved_at":  update.ResolvedAt,
			"cancelled_at": update.CancelledAt,
			"updated_at":   update.UpdatedAt,
		}).
		Where(sq.Eq{"id": alertID, "status": string(expected)}).
		Suffix(returning(alertColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate update alert status query: %w", err)
	}

	var row alertRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err == nil {
		return row.alert()
	}
	if !pgxscan.NotFound(err) {
		return nil, fmt.Errorf("failed to update alert status: %w", err)
	}

	if _, err := r.Alert(ctx, alertID); err != nil {
		return nil, err
	}
	return nil, types.ErrStatusConflict
}

// DeleteAlertsWithPrefix removes alerts whose description starts with
// prefix. Used by `seed --reset`.
func (r *AlertRepository) DeleteAlertsWithPrefix(ctx context.Context, prefix string) (int64, error) {
	query, args, err := psql().
		Delete(alertTableName).
		Where(sq.Like{"description": prefix + "%"}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate delete alerts query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func returning(columns []string) string {
	return "RETURNING " + strings.Join(columns, ", ")
}
