package inmemdb

import (
	"context"
	"sort"

	"github.com/mentormatch/mentormatch/core/session"
)

type sessionRepository struct {
	db *table[session.Session]
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) session.Repository {
	return &sessionRepository{db: db.session}
}

func (repo *sessionRepository) CreateSession(_ context.Context, s session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	s.ID = repo.db.insert(s)
	return s, nil
}

// QuerySessionsByUser returns the sessions of userID, most recent first.
func (repo *sessionRepository) QuerySessionsByUser(_ context.Context, userID int) ([]session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := repo.db.rows(func(s session.Session) bool { return s.UserID == userID })
	sort.SliceStable(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date.Time) {
			return sessions[i].Date.After(sessions[j].Date.Time)
		}
		return sessions[i].ID > sessions[j].ID
	})
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(_ context.Context, id int) (session.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.table[id]; ok {
		return *s, nil
	}
	return session.Session{}, session.ErrNotFound
}

// UpdateSession saves the editable fields of s.
func (repo *sessionRepository) UpdateSession(_ context.Context, s session.Session) (session.Session, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[s.ID]
	if !ok {
		return session.Session{}, session.ErrNotFound
	}
	orig.Topic = s.Topic
	orig.Duration = s.Duration
	orig.Rating = s.Rating
	orig.UpdatedAt = s.UpdatedAt
	return *orig, nil
}

func (repo *sessionRepository) DeleteSession(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return session.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
