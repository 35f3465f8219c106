package session

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/mentormatch/mentormatch/core"
)

// Session is a recorded mentoring meeting.
type Session struct {
	ID        int       `json:"id" db:"id"`
	UserID    int       `json:"user_id" db:"user_id"`
	MentorID  int       `json:"mentor_id" db:"mentor_id"`
	Mentor    string    `json:"mentor" db:"mentor"`
	Topic     string    `json:"topic" db:"topic"`
	Duration  float64   `json:"duration" db:"duration"` // hours
	Rating    null.Int  `json:"rating" db:"rating"`     // 1-5, optional
	Date      core.Date `json:"date" db:"session_date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (s Session) RecordID() int { return s.ID }
func (s Session) RecordDate() time.Time { return s.Date.Time }
func (s Session) MentorLabel() string { return s.Mentor }
func (s Session) TopicLabel() string { return s.Topic }
func (s Session) Hours() float64 { return s.Duration }
func (s Session) SearchFields() []string { return []string{s.Mentor, s.Topic} }
func (s Session) RecordRating() int {
	if !s.Rating.Valid {
		return 0
	}
	return s.Rating.Int
}

// ratingFrom maps falsy ratings (absent, null, "", 0) to no rating.
func ratingFrom(r core.Int) null.Int {
	return null.NewInt(int(r), r != 0)
}

// NewSession contains information needed to record a Session.
type NewSession struct {
	UserID   core.Int   `json:"user_id" validate:"required,min=1"`
	MentorID core.Int   `json:"mentor_id" validate:"required,min=1"`
	Mentor   string     `json:"mentor" validate:"max=100"` // resolved from mentor_id when blank
	Topic    string     `json:"topic" validate:"required,notblank,max=200"`
	Duration core.Float `json:"duration" validate:"gt=0,lte=24"`
	Rating   core.Int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Date     core.Date  `json:"session_date" validate:"required"`
}

func (ns *NewSession) Clean() {
	ns.Mentor = core.CleanString(ns.Mentor)
	ns.Topic = core.CleanString(ns.Topic)
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Clean()
	return validate.Struct(ns)
}

// UpdateSession holds the editable fields of a Session.
type UpdateSession struct {
	Topic    string     `json:"topic" validate:"required,notblank,max=200"`
	Duration core.Float `json:"duration" validate:"gt=0,lte=24"`
	Rating   core.Int   `json:"rating" validate:"omitempty,min=1,max=5"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	us.Topic = core.CleanString(us.Topic)
	return validate.Struct(us)
}

// Apply returns s with the editable fields set from us.
func (us UpdateSession) Apply(s Session) Session {
	s.Topic = us.Topic
	s.Duration = float64(us.Duration)
	s.Rating = ratingFrom(us.Rating)
	return s
}
