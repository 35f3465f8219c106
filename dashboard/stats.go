package dashboard

import (
	"fmt"
	"strings"
)

// Stats aggregates a record list.
type Stats struct {
	Count      int
	TotalHours float64
	AvgRating  float64 // mean over rated records
	Rated      int
	Mentors    int // distinct non-blank mentor labels
}

// Summary is the stat fields as displayed.
type Summary struct {
	Count   int    `json:"count"`
	Hours   string `json:"hours"`
	Rating  string `json:"rating"`
	Mentors int    `json:"mentors"`
}

// ComputeStats aggregates records. An empty list yields zero Stats.
func ComputeStats[T Record](records []T) Stats {
	var (
		st          Stats
		ratingTotal int
		mentors     = make(map[string]struct{})
	)
	for _, rec := range records {
		st.Count++
		st.TotalHours += rec.Hours()
		if r := rec.RecordRating(); r > 0 {
			ratingTotal += r
			st.Rated++
		}
		if label := strings.TrimSpace(rec.MentorLabel()); label != "" {
			mentors[label] = struct{}{}
		}
	}
	if st.Rated > 0 {
		st.AvgRating = float64(ratingTotal) / float64(st.Rated)
	}
	st.Mentors = len(mentors)
	return st
}

func (s Stats) HoursText() string {
	return fmt.Sprintf("%.1f", s.TotalHours)
}

// RatingText is "0" when no record is rated.
func (s Stats) RatingText() string {
	if s.Rated == 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", s.AvgRating)
}

func (s Stats) Summary() Summary {
	return Summary{
		Count:   s.Count,
		Hours:   s.HoursText(),
		Rating:  s.RatingText(),
		Mentors: s.Mentors,
	}
}
