package dashboard

import (
	"fmt"
	"html/template"

	"github.com/mentormatch/mentormatch/core"
)

// Element IDs of the dashboard pages.
const (
	TotalSessionsID     = "totalSessions"
	TotalHoursID        = "totalHours"
	AvgRatingID         = "avgRating"
	MentorsCountID      = "mentorsCount"
	SessionsTableBodyID = "sessionsTableBody"
	ReviewsGridID       = "reviewsGrid"
	NotificationsID     = "notifications"
	SessionsChartID     = "sessionsChart"
	TopicsChartID       = "topicsChart"
	MentorsChartID      = "mentorsChart"
	MentorsMapID        = "mentorsMap"
)

// Document is the set of named slots a page exposes. Setting a slot fully replaces its content.
// Writing to a slot the page does not have is logged and ignored.
type Document struct {
	slots  map[string]template.HTML
	logger core.Logger
}

func NewDocument(logger core.Logger, ids ...string) *Document {
	doc := &Document{
		slots:  make(map[string]template.HTML, len(ids)),
		logger: logger,
	}
	for _, id := range ids {
		doc.slots[id] = ""
	}
	return doc
}

func (d *Document) Has(id string) bool {
	if d == nil {
		return false
	}
	_, ok := d.slots[id]
	return ok
}

// Set replaces the content of slot id. It reports whether the slot exists.
func (d *Document) Set(id string, html template.HTML) bool {
	if !d.Has(id) {
		if d != nil && d.logger != nil {
			d.logger.Warn(fmt.Sprintf("dashboard: element #%s not found, skipping render", id))
		}
		return false
	}
	d.slots[id] = html
	return true
}

// SetText replaces the content of slot id with escaped text.
func (d *Document) SetText(id, text string) bool {
	return d.Set(id, template.HTML(template.HTMLEscapeString(text)))
}

// Slot returns the content of slot id; used by page templates.
func (d *Document) Slot(id string) template.HTML {
	if d == nil {
		return ""
	}
	return d.slots[id]
}
