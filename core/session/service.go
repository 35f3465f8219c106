package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
)

var (
	ErrNotFound = errors.New("session not found")

	NowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		QuerySessionsByUser(ctx context.Context, userID int) ([]Session, error)
		GetSessionByID(ctx context.Context, id int) (Session, error)
		UpdateSession(ctx context.Context, s Session) (Session, error)
		DeleteSession(ctx context.Context, id int) error
	}

	MentorFinder interface {
		GetMentorByID(ctx context.Context, id int) (mentor.Mentor, error)
	}

	Service struct {
		repo    Repository
		mentors MentorFinder
		events  core.EventPublisher
		cache   core.Cache
		logger  core.Logger
	}
)

// StatsCacheKey is the cache key of a user's session stats at generation gen.
func StatsCacheKey(userID int, gen int64) string {
	return fmt.Sprintf("stats:sessions:%d:%d", userID, gen)
}

// StatsGenerationKey holds the counter bumped on every change to a user's sessions.
func StatsGenerationKey(userID int) string {
	return fmt.Sprintf("stats:sessions:%d:gen", userID)
}

func NewService(
	repo Repository,
	mentors MentorFinder,
	events core.EventPublisher,
	cache core.Cache,
	logger core.Logger,
) *Service {
	return &Service{
		repo:    repo,
		mentors: mentors,
		events:  events,
		cache:   cache,
		logger:  logger,
	}
}

// StatsKey returns the key the user's stats are cached under right now.
// It must be read before the sessions are queried: a change made meanwhile
// moves the user to a new generation and the summary stored under the old key is never read.
func (svc *Service) StatsKey(ctx context.Context, userID int) (string, error) {
	b, err := svc.cache.Get(ctx, StatsGenerationKey(userID))
	if err == core.ErrCacheMiss {
		return StatsCacheKey(userID, 0), nil
	}
	if err != nil {
		return "", err
	}
	gen, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return "", errors.Wrap(err, "parsing stats generation")
	}
	return StatsCacheKey(userID, gen), nil
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Session, error) {
	sessions, err := svc.repo.QuerySessionsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	if sessions == nil {
		sessions = []Session{}
	}
	return sessions, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Session, error) {
	return svc.repo.GetSessionByID(ctx, id)
}

// Create records a validated NewSession. A blank mentor label is resolved from the mentor.
func (svc *Service) Create(ctx context.Context, ns NewSession) (Session, error) {
	label := ns.Mentor
	if label == "" {
		m, err := svc.mentors.GetMentorByID(ctx, int(ns.MentorID))
		if err != nil {
			if errors.Cause(err) == mentor.ErrNotFound {
				return Session{}, core.NewValidationError(err, core.FieldError{Field: "mentor_id", Error: err.Error()})
			}
			return Session{}, errors.Wrap(err, "finding mentor")
		}
		label = m.Name
	}

	now := NowFunc()
	s, err := svc.repo.CreateSession(ctx, Session{
		UserID:    int(ns.UserID),
		MentorID:  int(ns.MentorID),
		Mentor:    label,
		Topic:     ns.Topic,
		Duration:  float64(ns.Duration),
		Rating:    ratingFrom(ns.Rating),
		Date:      ns.Date,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Session{}, errors.Wrap(err, "creating session")
	}
	svc.changed(ctx, core.EventSessionCreated, s)
	return s, nil
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSession) (Session, error) {
	s, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	s = us.Apply(s)
	s.UpdatedAt = NowFunc()

	if s, err = svc.repo.UpdateSession(ctx, s); err != nil {
		return Session{}, errors.Wrap(err, "updating session")
	}
	svc.changed(ctx, core.EventSessionUpdated, s)
	return s, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	s, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteSession(ctx, id); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	svc.changed(ctx, core.EventSessionDeleted, s)
	return nil
}

// changed moves the owner's cached stats to a new generation and publishes the change.
func (svc *Service) changed(ctx context.Context, evType string, s Session) {
	if _, err := svc.cache.Incr(ctx, StatsGenerationKey(s.UserID)); err != nil {
		svc.logger.Warn(fmt.Sprintf("invalidating stats of user %d: %v", s.UserID, err), err)
	}

	payload, err := json.Marshal(s)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("marshalling %s payload: %v", evType, err), err)
	}
	svc.events.Publish(ctx, core.Event{
		ID:         uuid.NewString(),
		Type:       evType,
		UserID:     s.UserID,
		ObjectID:   s.ID,
		OccurredAt: NowFunc(),
		Payload:    payload,
	})
}
