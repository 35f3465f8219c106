package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
	testutil "github.com/mentormatch/mentormatch/tests"
)

var tstamp = time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(testutil.PrepareDB(t))

	usr := testutil.CreateUser(t, repo, "Alice", "alice@example.com", "s3cr3t-pwd", true, tstamp)
	assert.NotZero(t, usr.ID)

	got, err := repo.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.IsActive)
	assert.True(t, tstamp.Equal(got.CreatedAt))
	assert.False(t, got.LastLogin.Valid)
	assert.NoError(t, got.CheckPassword("s3cr3t-pwd"))

	exists, err := repo.EmailExists(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.EmailExists(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.False(t, exists)

	got.Name = "Alice B."
	got.LastLogin = user.NewNullTime(tstamp.Add(time.Hour))
	_, err = repo.UpdateUser(ctx, got)
	require.NoError(t, err)

	got, err = repo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", got.Name)
	assert.True(t, got.LastLogin.Valid)
	assert.True(t, tstamp.Add(time.Hour).Equal(got.LastLogin.Time))

	_, err = repo.GetUserByID(ctx, 9999)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.UpdateUser(ctx, user.User{ID: 9999, PasswordHash: []byte("!")})
	assert.Equal(t, user.ErrNotFound, err)
}

func TestMentorRepository(t *testing.T) {
	ctx := context.Background()
	db := testutil.PrepareDB(t)
	repo := NewMentorRepository(db)
	usr := testutil.CreateUser(t, NewUserRepository(db), "Alice", "alice@example.com", "", true)

	john := testutil.CreateMentor(t, repo, "John Doe", "Go", -4.32, 15.31)
	jane := testutil.CreateMentor(t, repo, "Jane Smith", "Design", 48.85, 2.35)

	mentors, err := repo.QueryMentors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []mentor.Mentor{jane, john}, mentors)

	got, err := repo.GetMentorByID(ctx, john.ID)
	require.NoError(t, err)
	assert.Equal(t, john, got)
	_, err = repo.GetMentorByID(ctx, 9999)
	assert.Equal(t, mentor.ErrNotFound, err)

	favs, err := repo.QueryFavorites(ctx, usr.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)

	require.NoError(t, repo.AddFavorite(ctx, mentor.Favorite{UserID: usr.ID, MentorID: john.ID, CreatedAt: tstamp}))
	require.NoError(t, repo.AddFavorite(ctx, mentor.Favorite{UserID: usr.ID, MentorID: jane.ID, CreatedAt: tstamp.Add(time.Minute)}))
	// adding twice is a no-op
	require.NoError(t, repo.AddFavorite(ctx, mentor.Favorite{UserID: usr.ID, MentorID: john.ID, CreatedAt: tstamp.Add(time.Hour)}))

	favs, err = repo.QueryFavorites(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, []mentor.Mentor{john, jane}, favs)
}

func TestSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionRepository(testutil.PrepareDB(t))

	create := func(userID int, topic string, date time.Time, rating null.Int) session.Session {
		s, err := repo.CreateSession(ctx, session.Session{
			UserID:    userID,
			MentorID:  1,
			Mentor:    "John Doe",
			Topic:     topic,
			Duration:  1.5,
			Rating:    rating,
			Date:      testutil.Date(date.Date()),
			CreatedAt: tstamp,
			UpdatedAt: tstamp,
		})
		require.NoError(t, err)
		return s
	}
	older := create(1, "Career", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), null.IntFrom(4))
	newer := create(1, "Go", time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC), null.Int{})
	create(2, "Other user", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), null.IntFrom(5))

	sessions, err := repo.QuerySessionsByUser(ctx, 1)
	require.NoError(t, err)
	if assert.Len(t, sessions, 2) {
		assert.Equal(t, newer.ID, sessions[0].ID)
		assert.Equal(t, older.ID, sessions[1].ID)
		assert.Equal(t, "2024-02-20", sessions[0].Date.String())
		assert.False(t, sessions[0].Rating.Valid)
		assert.Equal(t, null.IntFrom(4), sessions[1].Rating)
		assert.Equal(t, 1.5, sessions[1].Duration)
	}

	older.Topic = "Career change"
	older.Rating = null.IntFrom(5)
	_, err = repo.UpdateSession(ctx, older)
	require.NoError(t, err)
	got, err := repo.GetSessionByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Career change", got.Topic)
	assert.Equal(t, 5, got.RecordRating())

	require.NoError(t, repo.DeleteSession(ctx, older.ID))
	_, err = repo.GetSessionByID(ctx, older.ID)
	assert.Equal(t, session.ErrNotFound, err)
	assert.Equal(t, session.ErrNotFound, repo.DeleteSession(ctx, older.ID))

	empty, err := repo.QuerySessionsByUser(ctx, 42)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestReviewRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewReviewRepository(testutil.PrepareDB(t))

	rev, err := repo.CreateReview(ctx, review.Review{
		UserID:     1,
		MentorName: "Jane Smith",
		Rating:     5,
		Title:      "Great mentor",
		Text:       "Helped me **a lot**.",
		Date:       testutil.Date(2024, time.March, 5),
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	require.NoError(t, err)

	reviews, err := repo.QueryReviewsByUser(ctx, 1)
	require.NoError(t, err)
	if assert.Len(t, reviews, 1) {
		assert.Equal(t, rev.ID, reviews[0].ID)
		assert.Equal(t, "2024-03-05", reviews[0].Date.String())
		assert.Equal(t, "Helped me **a lot**.", reviews[0].Text)
	}

	rev.Rating = 3
	rev.Title = "Good mentor"
	_, err = repo.UpdateReview(ctx, rev)
	require.NoError(t, err)
	got, err := repo.GetReviewByID(ctx, rev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Rating)
	assert.Equal(t, "Good mentor", got.Title)

	require.NoError(t, repo.DeleteReview(ctx, rev.ID))
	_, err = repo.GetReviewByID(ctx, rev.ID)
	assert.Equal(t, review.ErrNotFound, err)
}
