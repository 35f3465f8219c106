// Package notify emits transient, self-removing dashboard notifications.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

const (
	DefaultDelay      = 3000 * time.Millisecond
	DefaultTransition = 300 * time.Millisecond
)

type State string

const (
	Visible State = "visible"
	Sliding State = "sliding" // slide-out transition running
)

var emittedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "dashboard_notifications_total",
		Help: "Total number of dashboard notifications emitted",
	},
	[]string{"severity"},
)

type Notification struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Center holds the active notifications of one user.
// Every notification stays visible for the delay, slides out for the transition and is then removed.
type Center struct {
	mu         sync.Mutex
	items      []*Notification
	timers     map[string]*time.Timer
	delay      time.Duration
	transition time.Duration
	closed     bool
	onEmpty    func() // called once the last notification is removed
}

func NewCenter(delay, transition time.Duration) *Center {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if transition <= 0 {
		transition = DefaultTransition
	}
	return &Center{
		timers:     make(map[string]*time.Timer),
		delay:      delay,
		transition: transition,
	}
}

// Emit adds a visible notification. Unknown severities are shown as Info.
func (c *Center) Emit(message string, severity Severity) Notification {
	switch severity {
	case Success, Error, Info:
	default:
		severity = Info
	}

	n := &Notification{
		ID:        uuid.NewString(),
		Message:   message,
		Severity:  severity,
		State:     Visible,
		CreatedAt: time.Now().UTC(),
	}
	emittedTotal.WithLabelValues(string(severity)).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return *n
	}
	c.items = append(c.items, n)
	c.timers[n.ID] = time.AfterFunc(c.delay, func() { c.slideOut(n.ID) })
	return *n
}

func (c *Center) slideOut(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.items {
		if n.ID == id {
			n.State = Sliding
			c.timers[id] = time.AfterFunc(c.transition, func() { c.remove(id) })
			return
		}
	}
}

func (c *Center) remove(id string) {
	c.mu.Lock()
	delete(c.timers, id)
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			break
		}
	}
	empty := len(c.items) == 0 && !c.closed
	c.mu.Unlock()

	if empty && c.onEmpty != nil {
		c.onEmpty()
	}
}

// Active lists the visible and sliding notifications in emission order.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		out = append(out, *n)
	}
	return out
}

// Close stops all pending timers and drops the notifications.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.items = nil
	c.closed = true
}

// Hub scopes notification centers per user.
// A user's Center lives while it holds notifications.
type Hub struct {
	mu         sync.Mutex
	centers    map[int]*Center
	delay      time.Duration
	transition time.Duration
}

func NewHub(delay, transition time.Duration) *Hub {
	return &Hub{
		centers:    make(map[int]*Center),
		delay:      delay,
		transition: transition,
	}
}

// Recipient emits the notifications of one user through a Hub.
type Recipient struct {
	hub    *Hub
	userID int
}

func (r Recipient) Emit(message string, severity Severity) Notification {
	return r.hub.Emit(r.userID, message, severity)
}

// For returns the Recipient of userID. No Center is created until something is emitted.
func (h *Hub) For(userID int) Recipient {
	return Recipient{hub: h, userID: userID}
}

// Emit adds a notification to the Center of userID, creating it when needed.
func (h *Hub) Emit(userID int, message string, severity Severity) Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.centers[userID]
	if !ok {
		c = NewCenter(h.delay, h.transition)
		c.onEmpty = func() { h.evict(userID, c) }
		h.centers[userID] = c
	}
	return c.Emit(message, severity)
}

// Active lists the notifications of userID without creating a Center.
func (h *Hub) Active(userID int) []Notification {
	h.mu.Lock()
	c, ok := h.centers[userID]
	h.mu.Unlock()
	if !ok {
		return []Notification{}
	}
	return c.Active()
}

// evict drops the Center of userID if it is still c and still empty.
func (h *Hub) evict(userID int, c *Center) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.centers[userID] != c {
		return
	}
	c.mu.Lock()
	empty := len(c.items) == 0
	c.mu.Unlock()
	if empty {
		delete(h.centers, userID)
	}
}

func (h *Hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.centers)
}

// Close closes and drops every Center.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.centers {
		c.Close()
		delete(h.centers, id)
	}
}
