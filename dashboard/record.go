// Package dashboard keeps rendered dashboard views in sync with an in-memory list of records.
package dashboard

import (
	"context"
	"time"
)

// Record is a dashboard row: a session or a review.
type Record interface {
	RecordID() int
	RecordDate() time.Time
	// RecordRating is 0 when the record is unrated.
	RecordRating() int
	// SearchFields are matched by Filter.
	SearchFields() []string
	MentorLabel() string
	Hours() float64
}

// Loader populates a controller's backing list.
type Loader[T Record] func(ctx context.Context) ([]T, error)

// Seed returns a Loader serving a fixed list of records.
func Seed[T Record](records ...T) Loader[T] {
	return func(context.Context) ([]T, error) {
		out := make([]T, len(records))
		copy(out, records)
		return out, nil
	}
}

// Store persists controller mutations.
type Store[T Record] interface {
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id int) error
}

// StoreFuncs adapts plain functions to a Store.
type StoreFuncs[T Record] struct {
	CreateFunc func(ctx context.Context, rec T) (T, error)
	UpdateFunc func(ctx context.Context, rec T) (T, error)
	DeleteFunc func(ctx context.Context, id int) error
}

func (s StoreFuncs[T]) Create(ctx context.Context, rec T) (T, error) {
	if s.CreateFunc == nil {
		return rec, ErrReadOnly
	}
	return s.CreateFunc(ctx, rec)
}

func (s StoreFuncs[T]) Update(ctx context.Context, rec T) (T, error) {
	if s.UpdateFunc == nil {
		return rec, ErrReadOnly
	}
	return s.UpdateFunc(ctx, rec)
}

func (s StoreFuncs[T]) Delete(ctx context.Context, id int) error {
	if s.DeleteFunc == nil {
		return ErrReadOnly
	}
	return s.DeleteFunc(ctx, id)
}
