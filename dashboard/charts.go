package dashboard

import (
	"encoding/json"
	"html/template"
	"math"
	"sort"
	"strings"
)

var palette = []string{"#e5315b", "#007bff", "#28a745", "#ffc107", "#6f42c1", "#6a1628", "#ff6b95", "#ff9eb5"}

type Dataset struct {
	Label string    `json:"label,omitempty"`
	Data  []float64 `json:"data"`
}

// Chart is a labeled dataset handed to a ChartSink.
type Chart struct {
	Type     string    `json:"type"` // line | doughnut | bar
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// ChartSink draws charts. It is the only contract with the charting library.
type ChartSink interface {
	Draw(id string, chart Chart)
}

// Topical records carry a topic label.
type Topical interface {
	Record
	TopicLabel() string
}

// SessionsPerMonth counts records per "YYYY-MM", in month order.
func SessionsPerMonth[T Record](records []T) Chart {
	counts := make(map[string]float64)
	for _, rec := range records {
		if d := rec.RecordDate(); !d.IsZero() {
			counts[d.Format("2006-01")]++
		}
	}
	labels := sortedKeys(counts)
	data := make([]float64, 0, len(labels))
	for _, l := range labels {
		data = append(data, counts[l])
	}
	return Chart{
		Type:     "line",
		Title:    "Sessions per month",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Sessions", Data: data}},
	}
}

// TopicShare is the percentage of records per topic, largest share first then by name.
func TopicShare[T Topical](records []T) Chart {
	counts := make(map[string]float64)
	var total float64
	for _, rec := range records {
		if topic := strings.TrimSpace(rec.TopicLabel()); topic != "" {
			counts[topic]++
			total++
		}
	}
	labels := sortedKeys(counts)
	sort.SliceStable(labels, func(i, j int) bool { return counts[labels[i]] > counts[labels[j]] })

	data := make([]float64, 0, len(labels))
	for _, l := range labels {
		data = append(data, round1(100*counts[l]/total))
	}
	return Chart{
		Type:     "doughnut",
		Title:    "Topics (%)",
		Labels:   labels,
		Datasets: []Dataset{{Data: data}},
	}
}

// MentorRatings is the mean rating per mentor label over rated records, by label.
func MentorRatings[T Record](records []T) Chart {
	sums := make(map[string]float64)
	counts := make(map[string]float64)
	for _, rec := range records {
		label := strings.TrimSpace(rec.MentorLabel())
		if r := rec.RecordRating(); r > 0 && label != "" {
			sums[label] += float64(r)
			counts[label]++
		}
	}
	labels := sortedKeys(counts)
	data := make([]float64, 0, len(labels))
	for _, l := range labels {
		data = append(data, round1(sums[l]/counts[l]))
	}
	return Chart{
		Type:     "bar",
		Title:    "Mentor ratings",
		Labels:   labels,
		Datasets: []Dataset{{Label: "Average rating", Data: data}},
	}
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}

// ChartJSSink collects Chart.js configurations for the page template.
type ChartJSSink struct {
	ids    []string
	charts map[string]Chart
}

var _ ChartSink = (*ChartJSSink)(nil)

func NewChartJSSink() *ChartJSSink {
	return &ChartJSSink{charts: make(map[string]Chart)}
}

func (s *ChartJSSink) Draw(id string, chart Chart) {
	if _, ok := s.charts[id]; !ok {
		s.ids = append(s.ids, id)
	}
	s.charts[id] = chart
}

// Charts returns the drawn charts by canvas id.
func (s *ChartJSSink) Charts() map[string]Chart {
	return s.charts
}

type ChartConfig struct {
	ID     string
	Config template.JS
}

// Configs returns the Chart.js configuration of every drawn chart, in drawing order.
func (s *ChartJSSink) Configs() ([]ChartConfig, error) {
	out := make([]ChartConfig, 0, len(s.ids))
	for _, id := range s.ids {
		b, err := json.Marshal(chartJSConfig(s.charts[id]))
		if err != nil {
			return nil, err
		}
		out = append(out, ChartConfig{ID: id, Config: template.JS(b)})
	}
	return out, nil
}

func chartJSConfig(c Chart) map[string]interface{} {
	datasets := make([]map[string]interface{}, 0, len(c.Datasets))
	for i, ds := range c.Datasets {
		set := map[string]interface{}{"label": ds.Label, "data": ds.Data}
		if c.Type == "doughnut" {
			colors := make([]string, len(ds.Data))
			for j := range colors {
				colors[j] = palette[j%len(palette)]
			}
			set["backgroundColor"] = colors
		} else {
			set["borderColor"] = palette[i%len(palette)]
			set["backgroundColor"] = "rgba(229, 49, 91, 0.1)"
			set["fill"] = c.Type == "line"
		}
		datasets = append(datasets, set)
	}
	return map[string]interface{}{
		"type": c.Type,
		"data": map[string]interface{}{
			"labels":   c.Labels,
			"datasets": datasets,
		},
		"options": map[string]interface{}{
			"responsive":          true,
			"maintainAspectRatio": false,
			"plugins": map[string]interface{}{
				"title": map[string]interface{}{"display": true, "text": c.Title},
			},
		},
	}
}
