package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/dashboard/notify"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUnknownAction  = errors.New("unknown action")
	ErrReadOnly       = errors.New("records are read-only")
)

// Notifier shows transient messages to the page's user.
type Notifier interface {
	Emit(message string, severity notify.Severity) notify.Notification
}

// ActionFunc handles an action triggered on a record.
type ActionFunc[T Record] func(ctx context.Context, rec T) error

// Action is a rendered trigger of a registered ActionFunc on one record.
type Action struct {
	Name  string
	Label string
	ID    int
	URL   string
}

type Item[T Record] struct {
	Record  T
	Actions []Action
}

type listData[T Record] struct {
	Items     []Item[T]
	FormField template.HTML
}

type handler[T Record] struct {
	label string
	fn    ActionFunc[T]
}

type Options[T Record] struct {
	Noun      string // used in notifications, eg. "Session"
	ListSlot  string
	Fragment  string // template rendering the list into ListSlot
	StatSlots bool   // also render totalSessions, totalHours, avgRating, mentorsCount
	Store     Store[T]
	Notifier  Notifier
	Templates *template.Template
	Logger    core.Logger
	// ActionURL is the form target of an action on a record.
	ActionURL func(action string, id int) string
	// FormField is injected in every action form (eg. a CSRF token field).
	FormField template.HTML
}

// Controller owns the in-memory record list of one page.
// It is not safe for concurrent use: build one per request.
type Controller[T Record] struct {
	opts     Options[T]
	doc      *Document
	records  []T
	query    string
	criteria string
	handlers map[string]handler[T]
	order    []string // registration order of handlers
}

func NewController[T Record](doc *Document, opts Options[T]) *Controller[T] {
	if opts.Store == nil {
		opts.Store = StoreFuncs[T]{}
	}
	if opts.ActionURL == nil {
		opts.ActionURL = func(action string, id int) string { return "#" + action + "-" + strconv.Itoa(id) }
	}
	return &Controller[T]{
		opts:     opts,
		doc:      doc,
		handlers: make(map[string]handler[T]),
	}
}

// Load replaces the backing list with the records of loader.
func (c *Controller[T]) Load(ctx context.Context, loader Loader[T]) error {
	records, err := loader(ctx)
	if err != nil {
		return errors.Wrap(err, "loading records")
	}
	c.records = records
	return nil
}

// Records returns a copy of the backing list.
func (c *Controller[T]) Records() []T {
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Controller[T]) Filter(query string) []T {
	return FilterRecords(c.records, query)
}

func (c *Controller[T]) Sort(criteria string) []T {
	return SortRecords(c.records, criteria)
}

// View filters then sorts the backing list. The query and criteria are kept for re-renders.
func (c *Controller[T]) View(query, criteria string) []T {
	c.query, c.criteria = query, criteria
	return SortRecords(FilterRecords(c.records, query), criteria)
}

func (c *Controller[T]) Stats() Stats {
	return ComputeStats(c.records)
}

// Render replaces the list slot with view and refreshes the stat slots.
func (c *Controller[T]) Render(view []T) error {
	html, err := c.renderList(view)
	if err != nil {
		return err
	}
	c.doc.Set(c.opts.ListSlot, html)
	if c.opts.StatSlots {
		c.renderStats()
	}
	return nil
}

func (c *Controller[T]) renderList(view []T) (template.HTML, error) {
	if c.opts.Templates == nil {
		return "", errors.New("dashboard: no templates")
	}
	data := listData[T]{
		Items:     make([]Item[T], 0, len(view)),
		FormField: c.opts.FormField,
	}
	for _, rec := range view {
		data.Items = append(data.Items, Item[T]{Record: rec, Actions: c.actions(rec.RecordID())})
	}

	var buf bytes.Buffer
	if err := c.opts.Templates.ExecuteTemplate(&buf, c.opts.Fragment, data); err != nil {
		return "", errors.Wrapf(err, "rendering %s", c.opts.Fragment)
	}
	return template.HTML(buf.String()), nil
}

func (c *Controller[T]) renderStats() {
	st := c.Stats()
	c.doc.SetText(TotalSessionsID, strconv.Itoa(st.Count))
	c.doc.SetText(TotalHoursID, st.HoursText())
	c.doc.SetText(AvgRatingID, st.RatingText())
	c.doc.SetText(MentorsCountID, strconv.Itoa(st.Mentors))
}

func (c *Controller[T]) rerender() {
	if err := c.Render(SortRecords(FilterRecords(c.records, c.query), c.criteria)); err != nil {
		c.log(fmt.Sprintf("re-rendering: %v", err), err)
	}
}

func (c *Controller[T]) indexOf(id int) int {
	for i, rec := range c.records {
		if rec.RecordID() == id {
			return i
		}
	}
	return -1
}

// Add persists rec and prepends the stored record to the list.
// On failure the list is left unchanged and an error notification is emitted.
func (c *Controller[T]) Add(ctx context.Context, rec T) (T, error) {
	saved, err := c.opts.Store.Create(ctx, rec)
	if err != nil {
		c.failed("adding", err)
		return rec, err
	}
	c.records = append([]T{saved}, c.records...)
	c.rerender()
	c.notify(c.opts.Noun+" added", notify.Success)
	return saved, nil
}

// Edit persists rec and replaces the list entry with the same id.
func (c *Controller[T]) Edit(ctx context.Context, rec T) (T, error) {
	i := c.indexOf(rec.RecordID())
	if i < 0 {
		c.failed("editing", ErrRecordNotFound)
		return rec, ErrRecordNotFound
	}
	saved, err := c.opts.Store.Update(ctx, rec)
	if err != nil {
		c.failed("editing", err)
		return rec, err
	}
	c.records[i] = saved
	c.rerender()
	c.notify(c.opts.Noun+" updated", notify.Success)
	return saved, nil
}

// Delete removes the record with id from the store, then from the list.
func (c *Controller[T]) Delete(ctx context.Context, id int) error {
	i := c.indexOf(id)
	if i < 0 {
		c.failed("deleting", ErrRecordNotFound)
		return ErrRecordNotFound
	}
	if err := c.opts.Store.Delete(ctx, id); err != nil {
		c.failed("deleting", err)
		return err
	}
	c.records = append(c.records[:i:i], c.records[i+1:]...)
	c.rerender()
	c.notify(c.opts.Noun+" deleted", notify.Success)
	return nil
}

// Handle registers fn as the handler of action. Registered actions are rendered on every record.
func (c *Controller[T]) Handle(action, label string, fn ActionFunc[T]) {
	if _, ok := c.handlers[action]; !ok {
		c.order = append(c.order, action)
	}
	c.handlers[action] = handler[T]{label: label, fn: fn}
}

// Dispatch runs the handler of action on the record with id.
func (c *Controller[T]) Dispatch(ctx context.Context, action string, id int) error {
	h, ok := c.handlers[action]
	if !ok {
		return errors.Wrap(ErrUnknownAction, action)
	}
	i := c.indexOf(id)
	if i < 0 {
		return ErrRecordNotFound
	}
	return h.fn(ctx, c.records[i])
}

func (c *Controller[T]) actions(id int) []Action {
	out := make([]Action, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Action{
			Name:  name,
			Label: c.handlers[name].label,
			ID:    id,
			URL:   c.opts.ActionURL(name, id),
		})
	}
	return out
}

func (c *Controller[T]) failed(op string, err error) {
	c.log(fmt.Sprintf("%s %s: %v", op, c.opts.Noun, err), err)
	c.notify(fmt.Sprintf("%s %s failed: %v", op, strings.ToLower(c.opts.Noun), errors.Cause(err)), notify.Error)
}

func (c *Controller[T]) notify(msg string, sev notify.Severity) {
	if c.opts.Notifier != nil {
		c.opts.Notifier.Emit(msg, sev)
	}
}

func (c *Controller[T]) log(msg string, args ...interface{}) {
	if c.opts.Logger != nil {
		c.opts.Logger.Error(msg, args...)
	}
}
