package store

import (
	"context"
	"fmt"
	"time"

	"lifelink/internal/utils"
	"lifelink/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const profileTableName = "donor_profiles"

// profileRow mirrors donor_profiles. organs_offered is text[].
type profileRow struct {
	UserID           string    `db:"user_id"`
	BloodType        string    `db:"blood_type"`
	OrgansOffered    []string  `db:"organs_offered"`
	Lat              float64   `db:"lat"`
	Lng              float64   `db:"lng"`
	Address          string    `db:"address"`
	Phone            string    `db:"phone"`
	EmergencyContact string    `db:"emergency_contact"`
	Available        bool      `db:"available"`
	MedicalVerified  bool      `db:"medical_verified"`
	MedicalHistory   *string   `db:"medical_history"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

var profileColumns = utils.StructTagValues(profileRow{})

func (row *profileRow) profile() *types.DonorProfile {
	organs := make([]types.Organ, len(row.OrgansOffered))
	for i, o := range row.OrgansOffered {
		organs[i] = types.Organ(o)
	}
	return &types.DonorProfile{
		UserID:           row.UserID,
		BloodType:        types.BloodType(row.BloodType),
		OrgansOffered:    organs,
		Lat:              row.Lat,
		Lng:              row.Lng,
		Address:          row.Address,
		Phone:            row.Phone,
		EmergencyContact: row.EmergencyContact,
		Available:        row.Available,
		MedicalVerified:  row.MedicalVerified,
		MedicalHistory:   row.MedicalHistory,
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
	}
}

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) ProfileByUserID(ctx context.Context, userID string) (*types.DonorProfile, error) {
	query, args, err := psql().
		Select(profileColumns...).
		From(profileTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate profile query: %w", err)
	}

	var row profileRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}

	return row.profile(), nil
}

// UpsertProfile writes every editable column. medical_verified and
// created_at are left alone on conflict.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, profile *types.DonorProfile) error {
	now := time.Now().UTC()

	organs := make([]string, len(profile.OrgansOffered))
	for i, o := range profile.OrgansOffered {
		organs[i] = string(o)
	}

	query, args, err := psql().
		Insert(profileTableName).
		Columns(
			"user_id", "blood_type", "organs_offered", "lat", "lng", "address", "phone",
			"emergency_contact", "available", "medical_verified", "medical_history", "created_at", "updated_at",
		).
		Values(
			profile.UserID, string(profile.BloodType), organs, profile.Lat, profile.Lng, profile.Address, profile.Phone,
			profile.EmergencyContact, profile.Available, false, profile.MedicalHistory, now, now,
		).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			blood_type = EXCLUDED.blood_type,
			organs_offered = EXCLUDED.organs_offered,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			emergency_contact = EXCLUDED.emergency_contact,
			available = EXCLUDED.available,
			medical_history = EXCLUDED.medical_history,
			updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate upsert profile query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to upsert profile")
}

func (r *ProfileRepository) SetMedicalVerified(ctx context.Context, userID string, verified bool) (*types.DonorProfile, error) {
	query, args, err := psql().
		Update(profileTableName).
		Set("medical_verified", verified).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"user_id": userID}).
		Suffix(returning(profileColumns)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verify profile query: %w", err)
	}

	var row profileRow
	err = pgxscan.Get(ctx, r.pool, &row, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to verify profile: %w", err)
	}

	return row.profile(), nil
}
