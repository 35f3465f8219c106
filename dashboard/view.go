package dashboard

import (
	"sort"
	"strings"
)

// Criteria is a sort order of the record list.
type Criteria string

const (
	DateAsc    Criteria = "date-asc"
	DateDesc   Criteria = "date-desc"
	RatingAsc  Criteria = "rating-asc"
	RatingDesc Criteria = "rating-desc"
)

var criteriaAliases = map[string]Criteria{
	"date-asc":    DateAsc,
	"oldest":      DateAsc,
	"date-desc":   DateDesc,
	"newest":      DateDesc,
	"rating-asc":  RatingAsc,
	"rating-low":  RatingAsc,
	"rating-desc": RatingDesc,
	"rating-high": RatingDesc,
}

// ParseCriteria resolves a sort criteria or one of its aliases.
func ParseCriteria(s string) (Criteria, bool) {
	c, ok := criteriaAliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// FilterRecords returns the records with a search field containing query, case-insensitively.
// A blank query returns a copy of records.
func FilterRecords[T Record](records []T, query string) []T {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]T, 0, len(records))
	for _, rec := range records {
		if query == "" || matches(rec, query) {
			out = append(out, rec)
		}
	}
	return out
}

func matches(rec Record, query string) bool {
	for _, field := range rec.SearchFields() {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// SortRecords returns a stably sorted copy of records. Unknown criteria keep the input order.
func SortRecords[T Record](records []T, criteria string) []T {
	out := make([]T, len(records))
	copy(out, records)

	c, ok := ParseCriteria(criteria)
	if !ok {
		return out
	}

	var less func(a, b T) bool
	switch c {
	case DateAsc:
		less = func(a, b T) bool { return a.RecordDate().Before(b.RecordDate()) }
	case DateDesc:
		less = func(a, b T) bool { return a.RecordDate().After(b.RecordDate()) }
	case RatingAsc:
		less = func(a, b T) bool { return a.RecordRating() < b.RecordRating() }
	case RatingDesc:
		less = func(a, b T) bool { return a.RecordRating() > b.RecordRating() }
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
