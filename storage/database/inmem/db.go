package inmemdb

import (
	"sort"
	"sync"

	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/review"
	"github.com/mentormatch/mentormatch/core/session"
	"github.com/mentormatch/mentormatch/core/user"
)

type (
	// DB keeps every table in memory. Used by tests and the "inmem" engine.
	DB struct {
		user      *table[user.User]
		mentor    *table[mentor.Mentor]
		favorites *favoriteTable
		session   *table[session.Session]
		review    *table[review.Review]
	}

	table[T any] struct {
		sync.RWMutex
		pk    int
		table map[int]*T
	}

	favoriteTable struct {
		sync.RWMutex
		table map[int][]mentor.Favorite // {userID: favorites}
	}
)

func Open() *DB {
	return &DB{
		user:      newTable[user.User](),
		mentor:    newTable[mentor.Mentor](),
		favorites: &favoriteTable{table: make(map[int][]mentor.Favorite)},
		session:   newTable[session.Session](),
		review:    newTable[review.Review](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{table: make(map[int]*T)}
}

// insert stores row under the next primary key. The caller holds the lock.
func (t *table[T]) insert(row T) int {
	t.pk++
	t.table[t.pk] = &row
	return t.pk
}

// rows returns copies of the rows matching keep, by primary key. The caller holds the lock.
func (t *table[T]) rows(keep func(T) bool) []T {
	ids := make([]int, 0, len(t.table))
	for id, row := range t.table {
		if keep == nil || keep(*row) {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, *t.table[id])
	}
	return out
}
