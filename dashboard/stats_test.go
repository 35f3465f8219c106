package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name    string
		records []testRecord
		want    Summary
	}{
		{
			name:    "empty list",
			records: nil,
			want:    Summary{Count: 0, Hours: "0.0", Rating: "0", Mentors: 0},
		},
		{
			name:    "sample sessions",
			records: sampleSessions(),
			want:    Summary{Count: 3, Hours: "5.5", Rating: "4.7", Mentors: 3},
		},
		{
			name: "unrated records are not averaged",
			records: []testRecord{
				{ID: 1, Mentor: "John Doe", Dur: 1, Rating: 4},
				{ID: 2, Mentor: "John Doe", Dur: 0.5},
			},
			want: Summary{Count: 2, Hours: "1.5", Rating: "4.0", Mentors: 1},
		},
		{
			name: "no rated records",
			records: []testRecord{
				{ID: 1, Mentor: " ", Dur: 1.2},
			},
			want: Summary{Count: 1, Hours: "1.2", Rating: "0", Mentors: 0},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.records).Summary())
		})
	}
}

func TestComputeStats_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats([]testRecord{}))
}
