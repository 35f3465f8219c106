package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/session"
)

const sessionColumns = "id, user_id, mentor_id, mentor, topic, duration, rating, session_date, created_at, updated_at"

var sessionOrdering = []core.DBOrdering{{Field: "session_date"}, {Field: "id"}}

type sessionRepository struct {
	db core.DBExecutor
}

var _ session.Repository = (*sessionRepository)(nil)

func NewSessionRepository(db core.DBExecutor) session.Repository {
	return &sessionRepository{db: db}
}

func normalizeSession(s session.Session) session.Session {
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	return s
}

func (repo *sessionRepository) CreateSession(ctx context.Context, s session.Session) (session.Session, error) {
	q := repo.db.Rebind(`
		INSERT INTO sessions (user_id, mentor_id, mentor, topic, duration, rating, session_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.QueryRowxContext(
		ctx, q,
		s.UserID, s.MentorID, s.Mentor, s.Topic, s.Duration, s.Rating, s.Date, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	).Scan(&s.ID)
	if err != nil {
		return session.Session{}, dbError(err, "inserting session")
	}
	return normalizeSession(s), nil
}

// QuerySessionsByUser returns the sessions of userID, most recent first.
func (repo *sessionRepository) QuerySessionsByUser(ctx context.Context, userID int) ([]session.Session, error) {
	sessions := make([]session.Session, 0)
	q := repo.db.Rebind("SELECT " + sessionColumns + " FROM sessions WHERE user_id = ?" + core.OrderBy(sessionOrdering...))
	if err := sqlx.SelectContext(ctx, repo.db, &sessions, q, userID); err != nil {
		return nil, dbError(err, "selecting sessions")
	}
	for i := range sessions {
		sessions[i] = normalizeSession(sessions[i])
	}
	return sessions, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id int) (session.Session, error) {
	var s session.Session
	q := repo.db.Rebind("SELECT " + sessionColumns + " FROM sessions WHERE id = ?")
	if err := sqlx.GetContext(ctx, repo.db, &s, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return session.Session{}, session.ErrNotFound
		}
		return session.Session{}, dbError(err, "selecting session")
	}
	return normalizeSession(s), nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, s session.Session) (session.Session, error) {
	q := repo.db.Rebind("UPDATE sessions SET topic = ?, duration = ?, rating = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, s.Topic, s.Duration, s.Rating, s.UpdatedAt.UTC(), s.ID)
	if err != nil {
		return session.Session{}, dbError(err, "updating session")
	}
	if err = affected(res, session.ErrNotFound); err != nil {
		return session.Session{}, err
	}
	return normalizeSession(s), nil
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM sessions WHERE id = ?"), id)
	if err != nil {
		return dbError(err, "deleting session")
	}
	return affected(res, session.ErrNotFound)
}
