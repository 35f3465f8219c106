package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/mentor"
	"github.com/mentormatch/mentormatch/core/user"
	"github.com/mentormatch/mentormatch/storage/database"
)

// PrepareDB opens a migrated in-memory sqlite database, closed at the end of the test.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", database.SQLiteDSN(":memory:"))
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db.SetMaxOpenConns(1) // every connection has its own in-memory database
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db, database.EngineSQLite); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(t *testing.T, repo user.Repository, name, email, pwd string, isActive bool, createdAt ...time.Time) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	} else {
		usr.PasswordHash = []byte("!") // unusable password
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateMentor(t *testing.T, repo mentor.Repository, name, specialty string, lat, lng float64) mentor.Mentor {
	t.Helper()

	m, err := repo.CreateMentor(context.Background(), mentor.Mentor{Name: name, Specialty: specialty, Lat: lat, Lng: lng})
	if err != nil {
		t.Fatalf("CreateMentor() failed: %v", err)
	}
	return m
}

// Date is a shorthand for core.NewDate.
func Date(year int, month time.Month, day int) core.Date {
	return core.NewDate(year, month, day)
}
