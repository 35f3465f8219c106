package tests

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/core"
	testutil "github.com/mentormatch/mentormatch/tests"
)

var csrfFieldRegex = regexp.MustCompile(`name="gorilla.csrf.Token" value="([^"]+)"`)

func messages(app *testApp, userID int) []string {
	out := make([]string, 0)
	for _, n := range app.hub.Active(userID) {
		out = append(out, string(n.Severity)+": "+n.Message)
	}
	return out
}

func assertRedirect(t *testing.T, rec interface{ Result() *http.Response }, to string) {
	t.Helper()
	resp := rec.Result()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, to, resp.Header.Get("Location"))
}

func TestDashboard_SessionsPage(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Ann", "ann@example.com", "", true)
	jane := testutil.CreateMentor(t, app.mentorRepo, "Jane Doe", "Go", 40.7, -74)
	john := testutil.CreateMentor(t, app.mentorRepo, "John Roe", "Rust", 51.5, -0.1)
	s1 := createSession(t, app, usr.ID, jane, "Go basics", 1, 4, testutil.Date(2024, 1, 5))
	s2 := createSession(t, app, usr.ID, john, "Rust ownership", 2.5, 0, testutil.Date(2024, 2, 10))
	path := fmt.Sprintf("/dashboard/%d/sessions", usr.ID)

	t.Run("full list", func(t *testing.T) {
		rec := app.do(newRequest(http.MethodGet, path))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

		body := rec.Body.String()
		assert.Contains(t, body, "<title>Sessions | MentorMatch</title>")
		assert.Contains(t, body, `<span id="userName">Ann</span>`)
		assert.Contains(t, body, `<span id="totalSessions">2</span>`)
		assert.Contains(t, body, `<span id="totalHours">3.5</span>`)
		assert.Contains(t, body, `<span id="avgRating">4.0</span>`)
		assert.Contains(t, body, `<span id="mentorsCount">2</span>`)
		assert.Contains(t, body, fmt.Sprintf(`<tr data-id="%d">`, s1.ID))
		assert.Contains(t, body, fmt.Sprintf(`<tr data-id="%d">`, s2.ID))
		assert.Contains(t, body, fmt.Sprintf(`action="/dashboard/%d/sessions/%d/delete"`, usr.ID, s1.ID))
		assert.Contains(t, body, fmt.Sprintf(`action="/dashboard/%d/sessions/%d/edit"`, usr.ID, s1.ID))
		assert.Contains(t, body, `name="topic" value="Rust ownership"`)
		assert.Contains(t, body, fmt.Sprintf(`data-mentor-id="%d"`, jane.ID))
		assert.Contains(t, body, "new Chart(")
		assert.NotContains(t, body, "gorilla.csrf.Token")
	})

	t.Run("filtered", func(t *testing.T) {
		rec := app.do(newRequest(http.MethodGet, path+"?q=rust&sort=oldest"))
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.NotContains(t, body, fmt.Sprintf(`<tr data-id="%d">`, s1.ID))
		assert.Contains(t, body, fmt.Sprintf(`<tr data-id="%d">`, s2.ID))
		assert.Contains(t, body, `value="rust"`)
		// stats cover the whole list
		assert.Contains(t, body, `<span id="totalSessions">2</span>`)
	})

	t.Run("invalid user id", func(t *testing.T) {
		rec := app.do(newRequest(http.MethodGet, "/dashboard/abc/sessions"))
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: errData(t, "userID: must be a positive integer", map[string]string{"userID": "must be a positive integer"}),
		}, rec)
	})
}

func TestDashboard_SessionActions(t *testing.T) {
	app := setup(t)
	jane := testutil.CreateMentor(t, app.mentorRepo, "Jane Doe", "Go", 40.7, -74)
	s := createSession(t, app, 1, jane, "Go basics", 1, 4, testutil.Date(2024, 1, 5))
	page := "/dashboard/1/sessions"

	tests := []struct {
		name string
		path string
		want []string
	}{
		{"unknown action", fmt.Sprintf("/dashboard/1/sessions/%d/archive", s.ID), []string{"error: archive: unknown action"}},
		{"unknown record", "/dashboard/1/sessions/999/delete", []string{"error: record not found"}},
		{"delete", fmt.Sprintf("/dashboard/1/sessions/%d/delete", s.ID), []string{"success: Session deleted"}},
		{"delete again", fmt.Sprintf("/dashboard/1/sessions/%d/delete", s.ID), []string{"error: record not found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.hub.Close()

			rec := app.do(newFormRequest(tt.path, url.Values{}))
			assertRedirect(t, rec, page)
			assert.Equal(t, tt.want, messages(app, 1))
		})
	}

	sessions, err := app.sessRepo.QuerySessionsByUser(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// the page shows the pending notifications
	rec := app.do(newRequest(http.MethodGet, page))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<div class="notification error visible"`)
	assert.Contains(t, rec.Body.String(), "record not found</div>")
	assert.Contains(t, rec.Body.String(), `<span id="totalSessions">0</span>`)
}

func TestDashboard_EditSession(t *testing.T) {
	app := setup(t)
	jane := testutil.CreateMentor(t, app.mentorRepo, "Jane Doe", "Go", 40.7, -74)
	s := createSession(t, app, 1, jane, "Go basics", 1, 4, testutil.Date(2024, 1, 5))
	path := fmt.Sprintf("/dashboard/1/sessions/%d/edit", s.ID)
	page := "/dashboard/1/sessions"

	tests := []struct {
		name string
		path string
		form url.Values
		want []string
	}{
		{
			name: "unknown record",
			path: "/dashboard/1/sessions/999/edit",
			form: url.Values{"topic": {"Go"}, "duration": {"1"}},
			want: []string{"error: record not found"},
		},
		{
			name: "blank topic",
			path: path,
			form: url.Values{"topic": {"  "}, "duration": {"1"}, "rating": {"3"}},
			want: []string{"error: topic: this field is required"},
		},
		{
			name: "updated",
			path: path,
			form: url.Values{"topic": {" Go generics "}, "duration": {"1.5"}, "rating": {""}},
			want: []string{"success: Session updated"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.hub.Close()

			rec := app.do(newFormRequest(tt.path, tt.form))
			assertRedirect(t, rec, page)
			assert.Equal(t, tt.want, messages(app, 1))
		})
	}

	got, err := app.sessRepo.GetSessionByID(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go generics", got.Topic)
	assert.Equal(t, 1.5, got.Duration)
	assert.False(t, got.Rating.Valid)

	rec := app.do(newRequest(http.MethodGet, page))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Go generics</td>")
	assert.Contains(t, rec.Body.String(), `<span id="totalHours">1.5</span>`)
}

func TestDashboard_EditReview(t *testing.T) {
	app := setup(t)
	r := createReview(t, app, 1, "Jane Doe", 5, "Great intro", "Clear **and** patient", testutil.Date(2024, 1, 8))
	path := fmt.Sprintf("/dashboard/1/reviews/%d/edit", r.ID)
	page := "/dashboard/1/reviews"

	rec := app.do(newRequest(http.MethodGet, page))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`action="%s"`, path))
	assert.Contains(t, rec.Body.String(), `name="title" value="Great intro"`)

	tests := []struct {
		name string
		form url.Values
		want []string
	}{
		{
			name: "missing rating",
			form: url.Values{"title": {"Great intro"}, "text": {"Clear"}},
			want: []string{"error: rating: this field is required"},
		},
		{
			name: "updated",
			form: url.Values{"title": {"Even better"}, "text": {"Still *patient*"}, "rating": {"4"}},
			want: []string{"success: Review updated"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app.hub.Close()

			rec := app.do(newFormRequest(path, tt.form))
			assertRedirect(t, rec, page)
			assert.Equal(t, tt.want, messages(app, 1))
		})
	}

	got, err := app.revRepo.GetReviewByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, "Even better", got.Title)
	assert.Equal(t, 4, got.Rating)

	rec = app.do(newRequest(http.MethodGet, page))
	assert.Contains(t, rec.Body.String(), "<em>patient</em>")
	assert.Contains(t, rec.Body.String(), `<div class="review-rating">★★★★☆</div>`)
}

func TestDashboard_ReviewsPage(t *testing.T) {
	app := setup(t)
	r := createReview(t, app, 1, "Jane Doe", 5, "Great intro", "Clear **and** patient", testutil.Date(2024, 1, 8))

	rec := app.do(newRequest(http.MethodGet, "/dashboard/1/reviews"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Contains(t, body, fmt.Sprintf(`<div class="review-card" data-id="%d">`, r.ID))
	assert.Contains(t, body, "<strong>and</strong>")
	assert.Contains(t, body, `<div class="review-rating">★★★★★</div>`)
	assert.Contains(t, body, `action="/dashboard/1/reviews"`)

	rec = app.do(newFormRequest(fmt.Sprintf("/dashboard/1/reviews/%d/delete", r.ID), url.Values{}))
	assertRedirect(t, rec, "/dashboard/1/reviews")
	assert.Equal(t, []string{"success: Review deleted"}, messages(app, 1))
}

func TestDashboard_AddReview(t *testing.T) {
	app := setup(t)
	page := "/dashboard/1/reviews"

	t.Run("invalid form", func(t *testing.T) {
		app.hub.Close()
		rec := app.do(newFormRequest(page, url.Values{
			"mentor_name": {"Jane Doe"},
			"rating":      {"5"},
			"text":        {"Helpful"},
		}))
		assertRedirect(t, rec, page)
		assert.Equal(t, []string{"error: title: this field is required"}, messages(app, 1))
	})

	t.Run("missing rating", func(t *testing.T) {
		app.hub.Close()
		rec := app.do(newFormRequest(page, url.Values{
			"mentor_name": {"Jane Doe"},
			"title":       {"Nice"},
			"text":        {"Helpful"},
		}))
		assertRedirect(t, rec, page)
		assert.Equal(t, []string{"error: rating: this field is required"}, messages(app, 1))
	})

	t.Run("added", func(t *testing.T) {
		app.hub.Close()
		rec := app.do(newFormRequest(page, url.Values{
			"mentor_name": {" Jane Doe "},
			"rating":      {"4"},
			"title":       {"Nice"},
			"text":        {"Helpful *indeed*"},
		}))
		assertRedirect(t, rec, page)
		assert.Equal(t, []string{"success: Review added"}, messages(app, 1))

		reviews, err := app.revRepo.QueryReviewsByUser(context.Background(), 1)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, "Jane Doe", reviews[0].MentorName)
		assert.Equal(t, 4, reviews[0].Rating)
		assert.Equal(t, core.Today().String(), reviews[0].Date.String())

		rec = app.do(newRequest(http.MethodGet, page))
		assert.Contains(t, rec.Body.String(), "<em>indeed</em>")
	})
}

func TestDashboard_AddFavorite(t *testing.T) {
	app := setup(t)
	usr := testutil.CreateUser(t, app.usrRepo, "Ann", "ann@example.com", "", true)
	jane := testutil.CreateMentor(t, app.mentorRepo, "Jane Doe", "Go", 40.7, -74)
	path := fmt.Sprintf("/dashboard/%d/favorites", usr.ID)
	page := fmt.Sprintf("/dashboard/%d/sessions", usr.ID)

	rec := app.do(newFormRequest(path, url.Values{"mentor_id": {fmt.Sprint(jane.ID)}}))
	assertRedirect(t, rec, page)
	assert.Equal(t, []string{"success: Jane Doe added to favourites"}, messages(app, usr.ID))

	app.hub.Close()
	rec = app.do(newFormRequest(path, url.Values{"mentor_id": {"999"}}))
	assertRedirect(t, rec, page)
	assert.Equal(t, []string{"error: adding favourite failed: mentor not found"}, messages(app, usr.ID))

	favs, err := app.mentorRepo.QueryFavorites(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.Len(t, favs, 1)
}

func TestDashboard_CSRF(t *testing.T) {
	app := setup(t, func(conf *core.Config) { conf.Server.CSRF = true })
	jane := testutil.CreateMentor(t, app.mentorRepo, "Jane Doe", "Go", 40.7, -74)
	s := createSession(t, app, 1, jane, "Go basics", 1, 4, testutil.Date(2024, 1, 5))
	action := fmt.Sprintf("/dashboard/1/sessions/%d/delete", s.ID)

	rec := app.do(newRequest(http.MethodGet, "/dashboard/1/sessions"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	match := csrfFieldRegex.FindStringSubmatch(rec.Body.String())
	require.Len(t, match, 2, "no csrf field rendered")
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	t.Run("missing token", func(t *testing.T) {
		req, rec := newFormRequest(action, url.Values{})
		for _, c := range cookies {
			req.AddCookie(c)
		}
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		req, rec := newFormRequest(action, url.Values{"gorilla.csrf.Token": {match[1]}})
		for _, c := range cookies {
			req.AddCookie(c)
		}
		app.ServeHTTP(rec, req)
		assertRedirect(t, rec, "/dashboard/1/sessions")
		assert.Equal(t, []string{"success: Session deleted"}, messages(app, 1))
	})
}
