package dashboard

import (
	"encoding/json"
	"html/template"
)

// Locatable items can be placed on the mentors map.
type Locatable interface {
	Location() (lat, lng float64, title, body string)
}

type Marker struct {
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Title string  `json:"title"`
	Body  string  `json:"body"`
}

// MarkerSink renders geocoded markers. It is the only contract with the map widget.
type MarkerSink interface {
	Place(id string, markers []Marker)
}

func Markers[L Locatable](items []L) []Marker {
	out := make([]Marker, 0, len(items))
	for _, it := range items {
		lat, lng, title, body := it.Location()
		out = append(out, Marker{Lat: lat, Lng: lng, Title: title, Body: body})
	}
	return out
}

// MapSink collects markers for the page template.
type MapSink struct {
	placed map[string][]Marker
}

var _ MarkerSink = (*MapSink)(nil)

func NewMapSink() *MapSink {
	return &MapSink{placed: make(map[string][]Marker)}
}

func (s *MapSink) Place(id string, markers []Marker) {
	s.placed[id] = append(s.placed[id], markers...)
}

func (s *MapSink) Markers(id string) []Marker {
	return s.placed[id]
}

// JSON returns the markers of map id for a script tag.
func (s *MapSink) JSON(id string) (template.JS, error) {
	markers := s.placed[id]
	if markers == nil {
		markers = []Marker{}
	}
	b, err := json.Marshal(markers)
	return template.JS(b), err
}
