package user

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// NullTime is a nullable UTC timestamp; zero values marshal to JSON null.
type NullTime = null.Time

// NewNullTime returns a valid NullTime unless t is zero.
func NewNullTime(t time.Time) NullTime {
	return null.NewTime(t.UTC(), !t.IsZero())
}
