package dashboard

import (
	"fmt"
	"sync"
	"time"
)

type testRecord struct {
	ID     int
	Date   time.Time
	Rating int
	Mentor string
	Topic  string
	Dur    float64
}

func (r testRecord) RecordID() int { return r.ID }
func (r testRecord) RecordDate() time.Time { return r.Date }
func (r testRecord) RecordRating() int { return r.Rating }
func (r testRecord) MentorLabel() string { return r.Mentor }
func (r testRecord) TopicLabel() string { return r.Topic }
func (r testRecord) Hours() float64 { return r.Dur }
func (r testRecord) SearchFields() []string { return []string{r.Mentor, r.Topic} }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// sampleSessions are the three sessions shown on a fresh dashboard.
func sampleSessions() []testRecord {
	return []testRecord{
		{ID: 1, Date: day(2024, time.January, 15), Rating: 5, Mentor: "John Doe", Topic: "Career Development", Dur: 2},
		{ID: 2, Date: day(2024, time.January, 10), Rating: 4, Mentor: "Jane Smith", Topic: "Technical Skills", Dur: 1.5},
		{ID: 3, Date: day(2024, time.February, 5), Rating: 5, Mentor: "Mike Johnson", Topic: "Leadership", Dur: 2},
	}
}

func ids(records []testRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

type logEntry struct {
	level string
	msg   string
}

type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg})
}

func (l *testLogger) Debug(msg string, _ ...interface{}) { l.log("debug", msg) }
func (l *testLogger) Info(msg string, _ ...interface{}) { l.log("info", msg) }
func (l *testLogger) Warn(msg string, _ ...interface{}) { l.log("warn", msg) }
func (l *testLogger) Error(msg string, _ ...interface{}) { l.log("error", msg) }
func (l *testLogger) Fatal(msg string, _ ...interface{}) { panic(fmt.Sprintf("fatal: %s", msg)) }

func (l *testLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}
