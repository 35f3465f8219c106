package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderBy(t *testing.T) {
	tests := []struct {
		name string
		ords []DBOrdering
		want string
	}{
		{name: "none", want: ""},
		{name: "descending by default", ords: []DBOrdering{{Field: "session_date"}}, want: " ORDER BY session_date DESC"},
		{
			name: "several",
			ords: []DBOrdering{{Field: "m.name", Ascending: true}, {Field: "m.id"}},
			want: " ORDER BY m.name ASC, m.id DESC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderBy(tt.ords...))
		})
	}
}
