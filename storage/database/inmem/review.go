package inmemdb

import (
	"context"
	"sort"

	"github.com/mentormatch/mentormatch/core/review"
)

type reviewRepository struct {
	db *table[review.Review]
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db.review}
}

func (repo *reviewRepository) CreateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	r.ID = repo.db.insert(r)
	return r, nil
}

func (repo *reviewRepository) QueryReviewsByUser(_ context.Context, userID int) ([]review.Review, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reviews := repo.db.rows(func(r review.Review) bool { return r.UserID == userID })
	sort.SliceStable(reviews, func(i, j int) bool {
		if !reviews[i].Date.Equal(reviews[j].Date.Time) {
			return reviews[i].Date.After(reviews[j].Date.Time)
		}
		return reviews[i].ID > reviews[j].ID
	})
	return reviews, nil
}

func (repo *reviewRepository) GetReviewByID(_ context.Context, id int) (review.Review, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if r, ok := repo.db.table[id]; ok {
		return *r, nil
	}
	return review.Review{}, review.ErrNotFound
}

func (repo *reviewRepository) UpdateReview(_ context.Context, r review.Review) (review.Review, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[r.ID]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	orig.Rating = r.Rating
	orig.Title = r.Title
	orig.Text = r.Text
	orig.UpdatedAt = r.UpdatedAt
	return *orig, nil
}

func (repo *reviewRepository) DeleteReview(_ context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return review.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
