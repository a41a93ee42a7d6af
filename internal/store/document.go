package store

import (
	"context"
	"fmt"

	"lifelink/internal/utils"
	"lifelink/pkg/types"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentTableName = "profile_documents"

var documentTableColumns = utils.StructTagValues(types.ProfileDocument{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

// DocumentsByUser returns a user's verification documents, newest first
func (r *DocumentRepository) DocumentsByUser(ctx context.Context, userID string) ([]*types.ProfileDocument, error) {
	query, args, err := psql().
		Select(documentTableColumns...).
		From(documentTableName).
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("uploaded_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate documents query: %w", err)
	}

	docs := make([]*types.ProfileDocument, 0)
	err = pgxscan.Select(ctx, r.pool, &docs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}
	return docs, nil
}

// CreateDocument inserts a new document record
func (r *DocumentRepository) CreateDocument(ctx context.Context, doc *types.ProfileDocument) error {
	query, args, err := psql().
		Insert(documentTableName).
		SetMap(utils.StructToMap(doc)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate create document query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.ErrorWrapOrNil(err, "failed to create document")
}
