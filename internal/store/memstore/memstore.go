// Package memstore is an in-process implementation of the repositories,
// used by tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"lifelink/pkg/types"
)

type Store struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*types.User
	profiles  map[string]*types.DonorProfile
	documents map[string][]*types.ProfileDocument
	alerts    map[string]*alertRecord
}

type alertRecord struct {
	seq   int
	alert types.Alert
}

func New() *Store {
	return &Store{
		users:     make(map[string]*types.User),
		profiles:  make(map[string]*types.DonorProfile),
		documents: make(map[string][]*types.ProfileDocument),
		alerts:    make(map[string]*alertRecord),
	}
}

func (s *Store) User(_ context.Context, userID string) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UpsertUser(_ context.Context, user *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *user
	if existing, ok := s.users[user.ID]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	s.users[user.ID] = &cp
	return nil
}

func (s *Store) ProfileByUserID(_ context.Context, userID string) (*types.DonorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	return copyProfile(p), nil
}

func (s *Store) UpsertProfile(_ context.Context, profile *types.DonorProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := copyProfile(profile)
	if existing, ok := s.profiles[profile.UserID]; ok {
		cp.CreatedAt = existing.CreatedAt
		cp.MedicalVerified = existing.MedicalVerified
	}
	s.profiles[profile.UserID] = cp
	return nil
}

func (s *Store) SetMedicalVerified(_ context.Context, userID string, verified bool) (*types.DonorProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, types.ErrProfileNotFound
	}
	p.MedicalVerified = verified
	return copyProfile(p), nil
}

func (s *Store) CreateDocument(_ context.Context, doc *types.ProfileDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *doc
	s.documents[doc.UserID] = append(s.documents[doc.UserID], &cp)
	return nil
}

func (s *Store) DocumentsByUser(_ context.Context, userID string) ([]*types.ProfileDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*types.ProfileDocument, 0, len(s.documents[userID]))
	for i := len(s.documents[userID]) - 1; i >= 0; i-- {
		cp := *s.documents[userID][i]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *Store) Alert(_ context.Context, alertID string) (*types.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.alerts[alertID]
	if !ok {
		return nil, types.ErrAlertNotFound
	}
	cp := rec.alert
	return &cp, nil
}

func (s *Store) CreateAlert(_ context.Context, alert *types.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.alerts[alert.ID] = &alertRecord{seq: s.seq, alert: *alert}
	return nil
}

func (s *Store) AlertsByRequester(_ context.Context, userID string) ([]*types.Alert, error) {
	return s.filterAlerts(func(a *types.Alert) bool {
		return a.RequesterID == userID
	}), nil
}

func (s *Store) PendingAlertsExcluding(_ context.Context, userID string) ([]*types.Alert, error) {
	return s.filterAlerts(func(a *types.Alert) bool {
		return a.Status == types.AlertStatusPending && a.RequesterID != userID
	}), nil
}

// UpdateAlertStatus compares and sets under the store mutex.
func (s *Store) UpdateAlertStatus(_ context.Context, alertID string, expected types.AlertStatus, update types.AlertStatusUpdate) (*types.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.alerts[alertID]
	if !ok {
		return nil, types.ErrAlertNotFound
	}
	if rec.alert.Status != expected {
		return nil, types.ErrStatusConflict
	}

	rec.alert.Status = update.Status
	rec.alert.AcceptedBy = update.AcceptedBy
	rec.alert.AcceptedAt = update.AcceptedAt
	rec.alert.ResolvedAt = update.ResolvedAt
	rec.alert.CancelledAt = update.CancelledAt
	rec.alert.UpdatedAt = update.UpdatedAt

	cp := rec.alert
	return &cp, nil
}

// DeleteAlertsWithPrefix removes alerts whose description starts with prefix.
func (s *Store) DeleteAlertsWithPrefix(_ context.Context, prefix string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, rec := range s.alerts {
		if strings.HasPrefix(rec.alert.Description, prefix) {
			delete(s.alerts, id)
			n++
		}
	}
	return n, nil
}

// filterAlerts returns copies ordered created_at desc, newest insert first on ties.
func (s *Store) filterAlerts(keep func(*types.Alert) bool) []*types.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]*alertRecord, 0, len(s.alerts))
	for _, rec := range s.alerts {
		if keep(&rec.alert) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool {
		if !recs[i].alert.CreatedAt.Equal(recs[j].alert.CreatedAt) {
			return recs[i].alert.CreatedAt.After(recs[j].alert.CreatedAt)
		}
		return recs[i].seq > recs[j].seq
	})

	out := make([]*types.Alert, len(recs))
	for i, rec := range recs {
		cp := rec.alert
		out[i] = &cp
	}
	return out
}

func copyProfile(p *types.DonorProfile) *types.DonorProfile {
	cp := *p
	cp.OrgansOffered = append([]types.Organ(nil), p.OrgansOffered...)
	return &cp
}
