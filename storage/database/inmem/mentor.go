package inmemdb

import (
	"context"
	"sort"

	"github.com/mentormatch/mentormatch/core/mentor"
)

type mentorRepository struct {
	db   *table[mentor.Mentor]
	favs *favoriteTable
}

var _ mentor.Repository = (*mentorRepository)(nil)

func NewMentorRepository(db *DB) mentor.Repository {
	return &mentorRepository{db: db.mentor, favs: db.favorites}
}

func (repo *mentorRepository) CreateMentor(_ context.Context, m mentor.Mentor) (mentor.Mentor, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	m.ID = repo.db.insert(m)
	return m, nil
}

// QueryMentors returns all mentors by name.
func (repo *mentorRepository) QueryMentors(_ context.Context) ([]mentor.Mentor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	mentors := repo.db.rows(nil)
	sort.SliceStable(mentors, func(i, j int) bool { return mentors[i].Name < mentors[j].Name })
	return mentors, nil
}

func (repo *mentorRepository) GetMentorByID(_ context.Context, id int) (mentor.Mentor, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if m, ok := repo.db.table[id]; ok {
		return *m, nil
	}
	return mentor.Mentor{}, mentor.ErrNotFound
}

func (repo *mentorRepository) AddFavorite(_ context.Context, fav mentor.Favorite) error {
	repo.favs.Lock()
	defer repo.favs.Unlock()

	for _, f := range repo.favs.table[fav.UserID] {
		if f.MentorID == fav.MentorID {
			return nil
		}
	}
	repo.favs.table[fav.UserID] = append(repo.favs.table[fav.UserID], fav)
	return nil
}

// QueryFavorites returns the favourite mentors of userID, in the order they were added.
func (repo *mentorRepository) QueryFavorites(_ context.Context, userID int) ([]mentor.Mentor, error) {
	repo.favs.RLock()
	defer repo.favs.RUnlock()
	repo.db.RLock()
	defer repo.db.RUnlock()

	favs := repo.favs.table[userID]
	mentors := make([]mentor.Mentor, 0, len(favs))
	for _, f := range favs {
		if m, ok := repo.db.table[f.MentorID]; ok {
			mentors = append(mentors, *m)
		}
	}
	return mentors, nil
}
