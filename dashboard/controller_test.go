package dashboard

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/mentormatch/dashboard/notify"
)

var rowsTmpl = template.Must(template.New("test").Funcs(FuncMap()).Parse(
	`{{define "rows"}}{{range .Items}}<tr data-id="{{.Record.ID}}">{{.Record.Topic}} {{stars .Record.Rating}}` +
		`{{range .Actions}}<form action="{{.URL}}" data-action="{{.Name}}" data-id="{{.ID}}">{{.Label}}</form>{{end}}` +
		`</tr>{{end}}{{end}}`,
))

type memStore struct {
	nextID int
	err    error
	calls  []string
}

func (s *memStore) Create(_ context.Context, rec testRecord) (testRecord, error) {
	s.calls = append(s.calls, "create")
	if s.err != nil {
		return rec, s.err
	}
	s.nextID++
	rec.ID = s.nextID
	return rec, nil
}

func (s *memStore) Update(_ context.Context, rec testRecord) (testRecord, error) {
	s.calls = append(s.calls, "update")
	return rec, s.err
}

func (s *memStore) Delete(_ context.Context, id int) error {
	s.calls = append(s.calls, fmt.Sprintf("delete %d", id))
	return s.err
}

type fixture struct {
	ctrl   *Controller[testRecord]
	doc    *Document
	store  *memStore
	center *notify.Center
	logger *testLogger
}

func newFixture(t *testing.T, slots ...string) fixture {
	t.Helper()
	if slots == nil {
		slots = []string{SessionsTableBodyID, TotalSessionsID, TotalHoursID, AvgRatingID, MentorsCountID}
	}
	logger := new(testLogger)
	doc := NewDocument(logger, slots...)
	store := &memStore{nextID: 100}
	center := notify.NewCenter(time.Hour, time.Hour)
	t.Cleanup(center.Close)

	ctrl := NewController(doc, Options[testRecord]{
		Noun:      "Session",
		ListSlot:  SessionsTableBodyID,
		Fragment:  "rows",
		StatSlots: true,
		Store:     store,
		Notifier:  center,
		Templates: rowsTmpl,
		Logger:    logger,
		ActionURL: func(action string, id int) string { return fmt.Sprintf("/sessions/%d/%s", id, action) },
	})
	require.NoError(t, ctrl.Load(context.Background(), Seed(sampleSessions()...)))
	return fixture{ctrl: ctrl, doc: doc, store: store, center: center, logger: logger}
}

func messages(c *notify.Center) []string {
	var out []string
	for _, n := range c.Active() {
		out = append(out, string(n.Severity)+": "+n.Message)
	}
	return out
}

func TestController_Render(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Render(f.ctrl.View("", "date-asc")))

	body := string(f.doc.Slot(SessionsTableBodyID))
	assert.Regexp(t, `(?s)data-id="2".*data-id="1".*data-id="3"`, body)
	assert.Contains(t, body, "Technical Skills ★★★★☆")
	assert.Equal(t, template.HTML("3"), f.doc.Slot(TotalSessionsID))
	assert.Equal(t, template.HTML("5.5"), f.doc.Slot(TotalHoursID))
	assert.Equal(t, template.HTML("4.7"), f.doc.Slot(AvgRatingID))
	assert.Equal(t, template.HTML("3"), f.doc.Slot(MentorsCountID))

	// rendering again fully replaces the slot
	require.NoError(t, f.ctrl.Render(f.ctrl.View("leader", "")))
	body = string(f.doc.Slot(SessionsTableBodyID))
	assert.Contains(t, body, `data-id="3"`)
	assert.NotContains(t, body, `data-id="1"`)
	// stats stay computed over the full list
	assert.Equal(t, template.HTML("3"), f.doc.Slot(TotalSessionsID))
}

func TestController_RenderMissingSlot(t *testing.T) {
	f := newFixture(t, TotalSessionsID)

	require.NoError(t, f.ctrl.Render(f.ctrl.Records()))

	assert.Equal(t, template.HTML("3"), f.doc.Slot(TotalSessionsID))
	assert.Equal(t, template.HTML(""), f.doc.Slot(SessionsTableBodyID))
	warnings := f.logger.messages("warn")
	assert.Contains(t, warnings, "dashboard: element #sessionsTableBody not found, skipping render")
	assert.Contains(t, warnings, "dashboard: element #totalHours not found, skipping render")
}

func TestController_RenderWithoutTemplates(t *testing.T) {
	ctrl := NewController(NewDocument(nil, SessionsTableBodyID), Options[testRecord]{ListSlot: SessionsTableBodyID})
	assert.Error(t, ctrl.Render(nil))
}

func TestController_Add(t *testing.T) {
	f := newFixture(t)
	f.ctrl.View("", "")

	saved, err := f.ctrl.Add(context.Background(), testRecord{Topic: "Go generics", Rating: 3, Mentor: "Ada", Dur: 1})
	require.NoError(t, err)

	assert.Equal(t, 101, saved.ID)
	assert.Equal(t, []int{101, 1, 2, 3}, ids(f.ctrl.Records()))
	assert.Contains(t, string(f.doc.Slot(SessionsTableBodyID)), "Go generics")
	assert.Equal(t, template.HTML("4"), f.doc.Slot(TotalSessionsID))
	assert.Equal(t, []string{"success: Session added"}, messages(f.center))
}

func TestController_AddFailureLeavesListUnchanged(t *testing.T) {
	f := newFixture(t)
	f.store.err = errors.New("connection refused")

	_, err := f.ctrl.Add(context.Background(), testRecord{Topic: "Go generics"})
	require.Error(t, err)

	assert.Equal(t, []int{1, 2, 3}, ids(f.ctrl.Records()))
	assert.Equal(t, []string{"error: adding session failed: connection refused"}, messages(f.center))
	assert.Len(t, f.logger.messages("error"), 1)
}

func TestController_Edit(t *testing.T) {
	f := newFixture(t)

	rec := f.ctrl.Records()[1]
	rec.Topic = "System design"
	_, err := f.ctrl.Edit(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "System design", f.ctrl.Records()[1].Topic)

	_, err = f.ctrl.Edit(context.Background(), testRecord{ID: 42})
	assert.Equal(t, ErrRecordNotFound, err)
	assert.Equal(t, []string{"update"}, f.store.calls)

	f.store.err = errors.New("disk full")
	rec.Topic = "Unsaved"
	_, err = f.ctrl.Edit(context.Background(), rec)
	require.Error(t, err)
	assert.Equal(t, "System design", f.ctrl.Records()[1].Topic)

	assert.Equal(t, []string{
		"success: Session updated",
		"error: editing session failed: record not found",
		"error: editing session failed: disk full",
	}, messages(f.center))
}

func TestController_Delete(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.ctrl.Delete(context.Background(), 2))
	assert.Equal(t, []int{1, 3}, ids(f.ctrl.Records()))
	assert.Equal(t, template.HTML("2"), f.doc.Slot(TotalSessionsID))

	assert.Equal(t, ErrRecordNotFound, f.ctrl.Delete(context.Background(), 2))

	f.store.err = errors.New("locked")
	require.Error(t, f.ctrl.Delete(context.Background(), 1))
	assert.Equal(t, []int{1, 3}, ids(f.ctrl.Records()))
	assert.Equal(t, []string{"delete 2", "delete 1"}, f.store.calls)
}

func TestController_ReadOnlyStore(t *testing.T) {
	ctrl := NewController(NewDocument(nil), Options[testRecord]{Noun: "Session"})
	require.NoError(t, ctrl.Load(context.Background(), Seed(sampleSessions()...)))

	_, err := ctrl.Add(context.Background(), testRecord{})
	assert.Equal(t, ErrReadOnly, err)
	assert.Len(t, ctrl.Records(), 3)
}

func TestController_Dispatch(t *testing.T) {
	f := newFixture(t)

	var got []int
	f.ctrl.Handle("delete", "Delete", func(ctx context.Context, rec testRecord) error {
		return f.ctrl.Delete(ctx, rec.ID)
	})
	f.ctrl.Handle("star", "Star", func(_ context.Context, rec testRecord) error {
		got = append(got, rec.ID)
		return nil
	})

	require.NoError(t, f.ctrl.Render(f.ctrl.Records()))
	body := string(f.doc.Slot(SessionsTableBodyID))
	assert.Contains(t, body, `<form action="/sessions/2/delete" data-action="delete" data-id="2">Delete</form>`)
	assert.Contains(t, body, `<form action="/sessions/2/star" data-action="star" data-id="2">Star</form>`)

	require.NoError(t, f.ctrl.Dispatch(context.Background(), "star", 3))
	assert.Equal(t, []int{3}, got)

	require.NoError(t, f.ctrl.Dispatch(context.Background(), "delete", 2))
	assert.Equal(t, []int{1, 3}, ids(f.ctrl.Records()))

	err := f.ctrl.Dispatch(context.Background(), "archive", 1)
	assert.True(t, errors.Is(err, ErrUnknownAction))
	assert.Equal(t, ErrRecordNotFound, f.ctrl.Dispatch(context.Background(), "star", 2))
}
