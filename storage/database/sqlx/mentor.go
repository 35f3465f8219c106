package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
)

const mentorColumns = "m.id, m.name, m.specialty, m.lat, m.lng"

var (
	mentorOrdering   = []core.DBOrdering{{Field: "m.name", Ascending: true}, {Field: "m.id", Ascending: true}}
	favoriteOrdering = []core.DBOrdering{{Field: "f.created_at", Ascending: true}, {Field: "m.id", Ascending: true}}
)

type mentorRepository struct {
	db core.DBExecutor
}

var _ mentor.Repository = (*mentorRepository)(nil)

func NewMentorRepository(db core.DBExecutor) mentor.Repository {
	return &mentorRepository{db: db}
}

func (repo *mentorRepository) CreateMentor(ctx context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	q := repo.db.Rebind("INSERT INTO mentors (name, specialty, lat, lng) VALUES (?, ?, ?, ?) RETURNING id")
	if err := repo.db.QueryRowxContext(ctx, q, m.Name, m.Specialty, m.Lat, m.Lng).Scan(&m.ID); err != nil {
		return mentor.Mentor{}, dbError(err, "inserting mentor")
	}
	return m, nil
}

func (repo *mentorRepository) QueryMentors(ctx context.Context) ([]mentor.Mentor, error) {
	mentors := make([]mentor.Mentor, 0)
	q := "SELECT " + mentorColumns + " FROM mentors m" + core.OrderBy(mentorOrdering...)
	if err := sqlx.SelectContext(ctx, repo.db, &mentors, q); err != nil {
		return nil, dbError(err, "selecting mentors")
	}
	return mentors, nil
}

func (repo *mentorRepository) GetMentorByID(ctx context.Context, id int) (mentor.Mentor, error) {
	var m mentor.Mentor
	q := repo.db.Rebind("SELECT " + mentorColumns + " FROM mentors m WHERE m.id = ?")
	if err := sqlx.GetContext(ctx, repo.db, &m, q, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return mentor.Mentor{}, mentor.ErrNotFound
		}
		return mentor.Mentor{}, dbError(err, "selecting mentor")
	}
	return m, nil
}

func (repo *mentorRepository) AddFavorite(ctx context.Context, fav mentor.Favorite) error {
	q := repo.db.Rebind(`
		INSERT INTO favorites (user_id, mentor_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id, mentor_id) DO NOTHING`)
	_, err := repo.db.ExecContext(ctx, q, fav.UserID, fav.MentorID, fav.CreatedAt.UTC())
	return dbError(err, "inserting favorite")
}

func (repo *mentorRepository) QueryFavorites(ctx context.Context, userID int) ([]mentor.Mentor, error) {
	mentors := make([]mentor.Mentor, 0)
	q := repo.db.Rebind(`
		SELECT ` + mentorColumns + `
		FROM favorites f JOIN mentors m ON m.id = f.mentor_id
		WHERE f.user_id = ?` + core.OrderBy(favoriteOrdering...))
	if err := sqlx.SelectContext(ctx, repo.db, &mentors, q, userID); err != nil {
		return nil, dbError(err, "selecting favorites")
	}
	return mentors, nil
}
