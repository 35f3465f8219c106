package dashboard

import "strings"

const (
	MaxRating  = 5
	FilledStar = "★"
	EmptyStar  = "☆"
)

// Stars renders rating as MaxRating glyphs. rating is clamped to [0, MaxRating].
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	} else if rating > MaxRating {
		rating = MaxRating
	}
	return strings.Repeat(FilledStar, rating) + strings.Repeat(EmptyStar, MaxRating-rating)
}
