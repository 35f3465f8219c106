package review

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mentormatch/mentormatch/core"
)

// Review is free-text feedback with a star rating about a mentor.
type Review struct {
	ID         int       `json:"id" db:"id"`
	UserID     int       `json:"user_id" db:"user_id"`
	MentorName string    `json:"mentor_name" db:"mentor_name"`
	Rating     int       `json:"rating" db:"rating"`
	Title      string    `json:"title" db:"title"`
	Text       string    `json:"text" db:"text"`
	Date       core.Date `json:"date" db:"review_date"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"` // UTC
}

func (r Review) RecordID() int { return r.ID }
func (r Review) RecordDate() time.Time { return r.Date.Time }
func (r Review) RecordRating() int { return r.Rating }
func (r Review) MentorLabel() string { return r.MentorName }
func (r Review) Hours() float64 { return 0 }
func (r Review) SearchFields() []string { return []string{r.Title, r.Text, r.MentorName} }

// NewReview contains information needed to post a Review. Date defaults to today.
type NewReview struct {
	UserID     core.Int  `json:"user_id" validate:"required,min=1"`
	MentorName string    `json:"mentor_name" validate:"required,notblank,max=100"`
	Rating     core.Int  `json:"rating" validate:"required,min=1,max=5"`
	Title      string    `json:"title" validate:"required,notblank,max=200"`
	Text       string    `json:"text" validate:"required,notblank"`
	Date       core.Date `json:"date"`
}

func (nr *NewReview) Clean() {
	nr.MentorName = core.CleanString(nr.MentorName)
	nr.Title = core.CleanString(nr.Title)
	nr.Text = core.CleanString(nr.Text)
}

func (nr *NewReview) Validate(validate *validator.Validate) error {
	nr.Clean()
	return validate.Struct(nr)
}

// UpdateReview holds the editable fields of a Review.
type UpdateReview struct {
	Rating core.Int `json:"rating" validate:"required,min=1,max=5"`
	Title  string   `json:"title" validate:"required,notblank,max=200"`
	Text   string   `json:"text" validate:"required,notblank"`
}

func (ur *UpdateReview) Validate(validate *validator.Validate) error {
	ur.Title = core.CleanString(ur.Title)
	ur.Text = core.CleanString(ur.Text)
	return validate.Struct(ur)
}

// Apply returns r with the editable fields set from ur.
func (ur UpdateReview) Apply(r Review) Review {
	r.Rating = int(ur.Rating)
	r.Title = ur.Title
	r.Text = ur.Text
	return r
}
