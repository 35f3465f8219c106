package dashboard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsPerMonth(t *testing.T) {
	chart := SessionsPerMonth(sampleSessions())

	assert.Equal(t, "line", chart.Type)
	assert.Equal(t, []string{"2024-01", "2024-02"}, chart.Labels)
	require.Len(t, chart.Datasets, 1)
	assert.Equal(t, []float64{2, 1}, chart.Datasets[0].Data)
}

func TestTopicShare(t *testing.T) {
	records := append(sampleSessions(),
		testRecord{ID: 4, Topic: "Leadership"},
		testRecord{ID: 5, Topic: "  "},
	)
	chart := TopicShare(records)

	assert.Equal(t, "doughnut", chart.Type)
	assert.Equal(t, []string{"Leadership", "Career Development", "Technical Skills"}, chart.Labels)
	assert.Equal(t, []float64{50, 25, 25}, chart.Datasets[0].Data)
}

func TestMentorRatings(t *testing.T) {
	records := append(sampleSessions(),
		testRecord{ID: 4, Mentor: "Jane Smith", Rating: 5},
		testRecord{ID: 5, Mentor: "Jane Smith"}, // unrated
	)
	chart := MentorRatings(records)

	assert.Equal(t, "bar", chart.Type)
	assert.Equal(t, []string{"Jane Smith", "John Doe", "Mike Johnson"}, chart.Labels)
	assert.Equal(t, []float64{4.5, 5, 5}, chart.Datasets[0].Data)
}

func TestCharts_Empty(t *testing.T) {
	assert.Empty(t, SessionsPerMonth([]testRecord{}).Labels)
	assert.Empty(t, TopicShare([]testRecord{}).Labels)
	assert.Empty(t, MentorRatings([]testRecord{}).Labels)
}

func TestChartJSSink(t *testing.T) {
	sink := NewChartJSSink()
	var _ ChartSink = sink

	sink.Draw(SessionsChartID, SessionsPerMonth(sampleSessions()))
	sink.Draw(TopicsChartID, TopicShare(sampleSessions()))
	sink.Draw(SessionsChartID, SessionsPerMonth(sampleSessions()[:1])) // redraw keeps its position

	configs, err := sink.Configs()
	require.NoError(t, err)
	require.Len(t, configs, 2)
	assert.Equal(t, SessionsChartID, configs[0].ID)
	assert.Equal(t, TopicsChartID, configs[1].ID)

	var cfg struct {
		Type string `json:"type"`
		Data struct {
			Labels   []string `json:"labels"`
			Datasets []struct {
				Data            []float64   `json:"data"`
				BackgroundColor interface{} `json:"backgroundColor"`
			} `json:"datasets"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(configs[1].Config), &cfg))
	assert.Equal(t, "doughnut", cfg.Type)
	assert.Len(t, cfg.Data.Labels, 3)
	assert.Len(t, cfg.Data.Datasets[0].BackgroundColor, 3)

	require.NoError(t, json.Unmarshal([]byte(configs[0].Config), &cfg))
	assert.Equal(t, []string{"2024-01"}, cfg.Data.Labels)
}

type place struct {
	name     string
	lat, lng float64
}

func (p place) Location() (float64, float64, string, string) {
	return p.lat, p.lng, p.name, "Specialty: " + p.name
}

func TestMarkers(t *testing.T) {
	sink := NewMapSink()
	var _ MarkerSink = sink

	js, err := sink.JSON(MentorsMapID)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(js))

	sink.Place(MentorsMapID, Markers([]place{{"Kinshasa", -4.32, 15.31}}))
	assert.Equal(t, []Marker{{Lat: -4.32, Lng: 15.31, Title: "Kinshasa", Body: "Specialty: Kinshasa"}}, sink.Markers(MentorsMapID))

	js, err = sink.JSON(MentorsMapID)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"lat":-4.32,"lng":15.31,"title":"Kinshasa","body":"Specialty: Kinshasa"}]`, string(js))
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, "<p>Helped me <strong>a lot</strong>.</p>\n", string(Markdown("Helped me **a lot**.")))
	assert.NotContains(t, string(Markdown(`<script>alert("x")</script>`)), "<script>")
}

func TestParseTemplates(t *testing.T) {
	tmpl, err := ParseTemplates()
	require.NoError(t, err)
	for _, name := range []string{"sessions", "reviews", "sessionRows", "reviewCards", "sessionEditFields", "reviewEditFields", "notifications"} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}

	fn := FuncMap()["date"].(func(time.Time) string)
	assert.Equal(t, "January 15, 2024", fn(day(2024, time.January, 15)))
	assert.Equal(t, "", fn(time.Time{}))
}
