package review

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
)

var (
	ErrNotFound = errors.New("review not found")

	NowFunc = func() time.Time { return time.Now().UTC() } // mockable
)

type (
	Repository interface {
		CreateReview(ctx context.Context, r Review) (Review, error)
		QueryReviewsByUser(ctx context.Context, userID int) ([]Review, error)
		GetReviewByID(ctx context.Context, id int) (Review, error)
		UpdateReview(ctx context.Context, r Review) (Review, error)
		DeleteReview(ctx context.Context, id int) error
	}

	Service struct {
		repo   Repository
		events core.EventPublisher
		logger core.Logger
	}
)

func NewService(repo Repository, events core.EventPublisher, logger core.Logger) *Service {
	return &Service{repo: repo, events: events, logger: logger}
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Review, error) {
	reviews, err := svc.repo.QueryReviewsByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	if reviews == nil {
		reviews = []Review{}
	}
	return reviews, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Review, error) {
	return svc.repo.GetReviewByID(ctx, id)
}

func (svc *Service) Create(ctx context.Context, nr NewReview) (Review, error) {
	now := NowFunc()
	date := nr.Date
	if date.IsZero() {
		y, m, d := now.Date()
		date = core.NewDate(y, m, d)
	}

	r, err := svc.repo.CreateReview(ctx, Review{
		UserID:     int(nr.UserID),
		MentorName: nr.MentorName,
		Rating:     int(nr.Rating),
		Title:      nr.Title,
		Text:       nr.Text,
		Date:       date,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return Review{}, errors.Wrap(err, "creating review")
	}
	svc.publish(ctx, core.EventReviewCreated, r)
	return r, nil
}

func (svc *Service) Update(ctx context.Context, id int, ur UpdateReview) (Review, error) {
	r, err := svc.repo.GetReviewByID(ctx, id)
	if err != nil {
		return Review{}, err
	}
	r = ur.Apply(r)
	r.UpdatedAt = NowFunc()

	if r, err = svc.repo.UpdateReview(ctx, r); err != nil {
		return Review{}, errors.Wrap(err, "updating review")
	}
	svc.publish(ctx, core.EventReviewUpdated, r)
	return r, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	r, err := svc.repo.GetReviewByID(ctx, id)
	if err != nil {
		return err
	}
	if err = svc.repo.DeleteReview(ctx, id); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	svc.publish(ctx, core.EventReviewDeleted, r)
	return nil
}

func (svc *Service) publish(ctx context.Context, evType string, r Review) {
	payload, err := json.Marshal(r)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("marshalling %s payload: %v", evType, err), err)
	}
	svc.events.Publish(ctx, core.Event{
		ID:         uuid.NewString(),
		Type:       evType,
		UserID:     r.UserID,
		ObjectID:   r.ID,
		OccurredAt: NowFunc(),
		Payload:    payload,
	})
}
