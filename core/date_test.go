package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2024-01-15"`), &d))
	assert.Equal(t, NewDate(2024, time.January, 15), d)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-01-15"`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`"15/01/2024"`), &d))
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  Date
	}{
		{name: "time", value: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), want: NewDate(2024, time.January, 10)},
		{name: "string", value: "2024-01-05", want: NewDate(2024, time.January, 5)},
		{name: "bytes with time part", value: []byte("2024-01-05T00:00:00Z"), want: NewDate(2024, time.January, 5)},
		{name: "nil", value: nil, want: Date{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.value))
			assert.Equal(t, tt.want, d)
		})
	}
}
