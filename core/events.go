package core

import (
	"context"
	"encoding/json"
	"time"
)

// Event types
const (
	EventSessionCreated = "session.created"
	EventSessionUpdated = "session.updated"
	EventSessionDeleted = "session.deleted"
	EventReviewCreated  = "review.created"
	EventReviewUpdated  = "review.updated"
	EventReviewDeleted  = "review.deleted"
	EventUserRegistered = "user.registered"
)

// Event is a domain change notification.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	UserID     int             `json:"user_id"`
	ObjectID   int             `json:"object_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// EventPublisher publishes domain events. Publishing is best effort: failures are logged by the implementation.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}

type noopPublisher struct{}

func NewNoopPublisher() EventPublisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, ...Event) {}
