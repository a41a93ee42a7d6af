package store

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles the repositories over one pool so a single value satisfies
// the storage interfaces of the service packages.
type Store struct {
	*UserRepository
	*ProfileRepository
	*DocumentRepository
	*AlertRepository
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{
		UserRepository:     NewUserRepository(pool),
		ProfileRepository:  NewProfileRepository(pool),
		DocumentRepository: NewDocumentRepository(pool),
		AlertRepository:    NewAlertRepository(pool),
	}
}
