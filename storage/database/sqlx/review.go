package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/review"
)

const reviewColumns = "id, user_id, mentor_name, rating, title, text, review_date, created_at, updated_at"

var reviewOrdering = []core.DBOrdering{{Field: "review_date"}, {Field: "id"}}

type reviewRepository struct {
	db core.DBExecutor
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db core.DBExecutor) review.Repository {
	return &reviewRepository{db: db}
}

func normalizeReview(r review.Review) review.Review {
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	return r
}

func (repo *reviewRepository) CreateReview(ctx context.Context, r review.Review) (review.Review, error) {
	q := repo.db.Rebind(`
		INSERT INTO reviews (user_id, mentor_name, rating, title, text, review_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.QueryRowxContext(
		ctx, q,
		r.UserID, r.MentorName, r.Rating, r.Title, r.Text, r.Date, r.CreatedAt.UTC(), r.UpdatedAt.UTC(),
	).Scan(&r.ID)
	if err != nil {
		return review.Review{}, dbError(err, "inserting review")
	}
	return normalizeReview(r), nil
}

// QueryReviewsByUser returns the reviews of userID, most recent first.
func (repo *reviewRepository) QueryReviewsByUser(ctx context.Context, userID int) ([]review.Review, error) {
	reviews := make([]review.Review, 0)
	q := repo.db.Rebind("SELECT " + reviewColumns + " FROM reviews WHERE user_id = ?" + core.OrderBy(reviewOrdering...))
	if err := sqlx.SelectContext(ctx, repo.db, &reviews, q, userID); err != nil {
		return nil, dbError(err, "selecting reviews")
	}
	for i := range reviews {
		reviews[i] = normalizeReview(reviews[i])
	}
	return reviews, nil
}

func (repo *reviewRepository) GetReviewByID(ctx context.Context, id int) (review.Review, error) {
	var r review.Review
	q := repo.db.Rebind("SELECT " + reviewColumns + " FROM reviews WHERE id = ?")
	if err := sqlx.GetContext(ctx, repo.db, &r, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return review.Review{}, review.ErrNotFound
		}
		return review.Review{}, dbError(err, "selecting review")
	}
	return normalizeReview(r), nil
}

func (repo *reviewRepository) UpdateReview(ctx context.Context, r review.Review) (review.Review, error) {
	q := repo.db.Rebind("UPDATE reviews SET rating = ?, title = ?, text = ?, updated_at = ? WHERE id = ?")
	res, err := repo.db.ExecContext(ctx, q, r.Rating, r.Title, r.Text, r.UpdatedAt.UTC(), r.ID)
	if err != nil {
		return review.Review{}, dbError(err, "updating review")
	}
	if err = affected(res, review.ErrNotFound); err != nil {
		return review.Review{}, err
	}
	return normalizeReview(r), nil
}

func (repo *reviewRepository) DeleteReview(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind("DELETE FROM reviews WHERE id = ?"), id)
	if err != nil {
		return dbError(err, "deleting review")
	}
	return affected(res, review.ErrNotFound)
}
