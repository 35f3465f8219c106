package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mentormatch/mentormatch/core"
	"github.com/mentormatch/mentormatch/core/user"
)

const userColumns = "id, name, email, is_active, password_hash, created_at, updated_at, last_login"

type userRepository struct {
	db core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db core.DBExecutor) user.Repository {
	return &userRepository{db: db}
}

func normalizeUser(usr user.User) user.User {
	usr.CreatedAt = usr.CreatedAt.UTC()
	usr.UpdatedAt = usr.UpdatedAt.UTC()
	if usr.LastLogin.Valid {
		usr.LastLogin.Time = usr.LastLogin.Time.UTC()
	}
	return usr
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`
		INSERT INTO users (name, email, is_active, password_hash, created_at, updated_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := repo.db.QueryRowxContext(
		ctx, q,
		usr.Name, usr.Email, usr.IsActive, usr.PasswordHash, usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(), usr.LastLogin,
	).Scan(&usr.ID)
	if err != nil {
		return user.User{}, dbError(err, "inserting user")
	}
	return normalizeUser(usr), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := repo.db.Rebind(`
		UPDATE users
		SET name = ?, email = ?, is_active = ?, password_hash = ?, updated_at = ?, last_login = ?
		WHERE id = ?`)
	res, err := repo.db.ExecContext(
		ctx, q,
		usr.Name, usr.Email, usr.IsActive, usr.PasswordHash, usr.UpdatedAt.UTC(), usr.LastLogin, usr.ID,
	)
	if err != nil {
		return user.User{}, dbError(err, "updating user")
	}
	if err = affected(res, user.ErrNotFound); err != nil {
		return user.User{}, err
	}
	return normalizeUser(usr), nil
}

func (repo *userRepository) getUser(ctx context.Context, where string, arg interface{}) (user.User, error) {
	var usr user.User
	q := repo.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + where)
	if err := sqlx.GetContext(ctx, repo.db, &usr, q, arg); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, dbError(err, "selecting user")
	}
	return normalizeUser(usr), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	return repo.getUser(ctx, "id = ?", id)
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return repo.getUser(ctx, "email = ?", email)
}

func (repo *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	q := repo.db.Rebind("SELECT COUNT(*) FROM users WHERE email = ?")
	if err := sqlx.GetContext(ctx, repo.db, &n, q, email); err != nil {
		return false, dbError(err, "counting users")
	}
	return n > 0, nil
}

// affected returns notFound when res touched no row.
func affected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return dbError(err, "reading affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
