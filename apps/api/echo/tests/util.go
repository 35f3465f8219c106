package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/mentormatch/mentormatch/apps/api/echo"
	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
	"github.com/mentormatch/mentormatch/dashboard"
	"github.com/mentormatch/mentormatch/dashboard/notify"
	emailsvc "github.com/mentormatch/mentormatch/services/email"
	logsvc "github.com/mentormatch/mentormatch/services/logger"
	"github.com/mentormatch/mentormatch/storage/cache"
	sqlxrepos "github.com/mentormatch/mentormatch/storage/database/sqlx"
	testutil "github.com/mentormatch/mentormatch/tests"
)

var (
	tstamp = time.Date(2024, time.March, 10, 14, 30, 0, 0, time.UTC)

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type testApp struct {
	*Server

	conf       *core.Config
	db         *sqlx.DB
	redis      *miniredis.Miniredis
	hub        *notify.Hub
	usrRepo    user.Repository
	mentorRepo mentor.Repository
	sessRepo   *sessionRepo
	revRepo    review.Repository
}

// setup builds a Server backed by a fresh sqlite database and a miniredis cache.
// configure tweaks the test config before the server is built.
func setup(t *testing.T, configure ...func(conf *core.Config)) *testApp {
	conf := core.NewTestConfig()
	conf.Server.DisableReqLogs = true
	for _, fn := range configure {
		fn(conf)
	}

	// fixed clocks
	origUsrNow, origSessNow, origRevNow := user.NowFunc, session.NowFunc, review.NowFunc
	user.NowFunc = func() time.Time { return tstamp }
	session.NowFunc = func() time.Time { return tstamp }
	review.NowFunc = func() time.Time { return tstamp }
	t.Cleanup(func() {
		user.NowFunc, session.NowFunc, review.NowFunc = origUsrNow, origSessNow, origRevNow
	})

	logger := logsvc.NewTestLogger(log.New(io.Discard, "", 0))

	// set up DB & repos
	db := testutil.PrepareDB(t)
	app := &testApp{
		conf:       conf,
		db:         db,
		redis:      miniredis.RunT(t),
		hub:        notify.NewHub(time.Hour, time.Hour),
		usrRepo:    sqlxrepos.NewUserRepository(db),
		mentorRepo: sqlxrepos.NewMentorRepository(db),
		sessRepo:   &sessionRepo{Repository: sqlxrepos.NewSessionRepository(db)},
		revRepo:    sqlxrepos.NewReviewRepository(db),
	}
	t.Cleanup(app.hub.Close)

	client := redis.NewClient(&redis.Options{Addr: app.redis.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	statsCache := cache.NewRedisCache(client)

	// set up services
	events := core.NewNoopPublisher()
	usrSvc := user.NewService(app.usrRepo, emailsvc.NewConsoleServiceMock(conf), events, conf)
	mentorSvc := mentor.NewService(app.mentorRepo)
	sessSvc := session.NewService(app.sessRepo, app.mentorRepo, events, statsCache, logger)
	revSvc := review.NewService(app.revRepo, events, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(logger)

	tmpl, err := dashboard.ParseTemplates()
	require.NoError(t, err)

	// set up server
	app.Server = NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    usrSvc,
		SessionSvc: sessSvc,
		ReviewSvc:  revSvc,
		MentorSvc:  mentorSvc,
		Validate:   validate,
		Translator: translator,
		Cache:      statsCache,
		Hub:        app.hub,
		Templates:  tmpl,
	})
	t.Cleanup(func() { _ = app.Close() })
	return app
}

// sessionRepo runs afterQuery, when set, once a user's sessions have been read.
type sessionRepo struct {
	session.Repository
	afterQuery func()
}

func (r *sessionRepo) QuerySessionsByUser(ctx context.Context, userID int) ([]session.Session, error) {
	sessions, err := r.Repository.QuerySessionsByUser(ctx, userID)
	if r.afterQuery != nil {
		r.afterQuery()
	}
	return sessions, err
}

func strict(conf *core.Config) { conf.Server.StrictErrors = true }

type httpErr struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func newFormRequest(path string, form url.Values) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req, httptest.NewRecorder()
}

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// okData marshals the success envelope of data.
func okData(t *testing.T, data interface{}) []byte {
	return marchallObj(t, Envelope{Success: true, Data: data})
}

func errData(t *testing.T, msg string, fields ...map[string]string) []byte {
	e := httpErr{Error: msg}
	if len(fields) > 0 {
		e.Fields = fields[0]
	}
	return marchallObj(t, e)
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	return false, nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runTests(t *testing.T, app *testApp, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		tt := tt
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}
		t.Run(tt.name, func(t *testing.T) {
			var body [][]byte
			if tt.body != nil {
				body = append(body, tt.body)
			}
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, body...)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// decode reads the envelope of rec into data and returns it.
func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) httpErr {
	var env struct {
		httpErr
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env.httpErr
}

func assertFailed(t *testing.T, rec *httptest.ResponseRecorder, wantCode int) httpErr {
	t.Helper()
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	env := decode(t, rec, nil)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
	return env
}

func createSession(t *testing.T, app *testApp, userID int, m mentor.Mentor, topic string, hours float64, rating int, date core.Date) session.Session {
	t.Helper()
	s := session.Session{
		UserID:    userID,
		MentorID:  m.ID,
		Mentor:    m.Name,
		Topic:     topic,
		Duration:  hours,
		Date:      date,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if rating > 0 {
		s.Rating.SetValid(rating)
	}
	s, err := app.sessRepo.CreateSession(context.Background(), s)
	require.NoError(t, err)
	return s
}

func createReview(t *testing.T, app *testApp, userID int, mentorName string, rating int, title, text string, date core.Date) review.Review {
	t.Helper()
	r, err := app.revRepo.CreateReview(context.Background(), review.Review{
		UserID:     userID,
		MentorName: mentorName,
		Rating:     rating,
		Title:      title,
		Text:       text,
		Date:       date,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	})
	require.NoError(t, err)
	return r
}
