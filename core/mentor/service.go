package mentor

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
)

var ErrNotFound = errors.New("mentor not found")

type (
	Repository interface {
		CreateMentor(ctx context.Context, m Mentor) (Mentor, error)
		QueryMentors(ctx context.Context) ([]Mentor, error)
		GetMentorByID(ctx context.Context, id int) (Mentor, error)
		// AddFavorite is idempotent: adding an existing favourite is not an error.
		AddFavorite(ctx context.Context, fav Favorite) error
		QueryFavorites(ctx context.Context, userID int) ([]Mentor, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nm NewMentor) (Mentor, error) {
	m, err := svc.repo.CreateMentor(ctx, Mentor{
		Name:      nm.Name,
		Specialty: nm.Specialty,
		Lat:       float64(nm.Lat),
		Lng:       float64(nm.Lng),
	})
	return m, errors.Wrap(err, "creating mentor")
}

func (svc *Service) Query(ctx context.Context) ([]Mentor, error) {
	mentors, err := svc.repo.QueryMentors(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying mentors")
	}
	if mentors == nil {
		mentors = []Mentor{}
	}
	return mentors, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (Mentor, error) {
	return svc.repo.GetMentorByID(ctx, id)
}

// AddFavorite adds the mentor to the user's favourites and returns it.
func (svc *Service) AddFavorite(ctx context.Context, userID int, nf NewFavorite) (Mentor, error) {
	m, err := svc.repo.GetMentorByID(ctx, int(nf.MentorID))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Mentor{}, core.NewValidationError(err, core.FieldError{Field: "mentor_id", Error: err.Error()})
		}
		return Mentor{}, errors.Wrap(err, "finding mentor")
	}
	fav := Favorite{UserID: userID, MentorID: m.ID, CreatedAt: time.Now().UTC()}
	if err = svc.repo.AddFavorite(ctx, fav); err != nil {
		return Mentor{}, errors.Wrap(err, "adding favourite")
	}
	return m, nil
}

func (svc *Service) Favorites(ctx context.Context, userID int) ([]Mentor, error) {
	mentors, err := svc.repo.QueryFavorites(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying favourites")
	}
	if mentors == nil {
		mentors = []Mentor{}
	}
	return mentors, nil
}
