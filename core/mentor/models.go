package mentor

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mentormatch/mentormatch/core"
)

type Mentor struct {
	ID        int     `json:"id" db:"id"`
	Name      string  `json:"name" db:"name"`
	Specialty string  `json:"specialty" db:"specialty"`
	Lat       float64 `json:"lat" db:"lat"`
	Lng       float64 `json:"lng" db:"lng"`
}

// Location returns the map marker data of the Mentor.
func (m Mentor) Location() (lat, lng float64, title, body string) {
	return m.Lat, m.Lng, m.Name, fmt.Sprintf("Specialty: %s", m.Specialty)
}

type NewMentor struct {
	Name      string     `json:"name" validate:"required,notblank,max=100"`
	Specialty string     `json:"specialty" validate:"max=100"`
	Lat       core.Float `json:"lat" validate:"min=-90,max=90"`
	Lng       core.Float `json:"lng" validate:"min=-180,max=180"`
}

func (nm *NewMentor) Validate(validate *validator.Validate) error {
	nm.Name = core.CleanString(nm.Name)
	nm.Specialty = core.CleanString(nm.Specialty)
	return validate.Struct(nm)
}

// Favorite links a user to a mentor they dropped on their favourites zone.
type Favorite struct {
	UserID    int       `json:"user_id" db:"user_id"`
	MentorID  int       `json:"mentor_id" db:"mentor_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type NewFavorite struct {
	MentorID core.Int `json:"mentor_id" validate:"required,min=1"`
}

func (nf *NewFavorite) Validate(validate *validator.Validate) error {
	return validate.Struct(nf)
}
