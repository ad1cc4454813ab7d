package repositories

import (
	"context"
	"database/sql"
	"errors"

	intdb "ridebooking/internal/db"
	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

// UserRepo is the MySQL staff account store.
type UserRepo struct {
	DB *sql.DB
}

const userColumns = `id, username, email, password_hash, is_admin, created_at`

func scanUser(row rowScanner) (models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		return models.User{}, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return u, nil
}

func (r UserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username=? LIMIT 1`, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Key: username, Err: err}
		}
		return models.User{}, domain.PersistenceError{Op: "load user", Err: err}
	}
	return u, nil
}

func (r UserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.PersistenceError{Op: "load user", Err: err}
	}
	return u, nil
}

// Create inserts u and fills u.ID. Duplicate username/email yields
// domain.ConflictError.
func (r UserRepo) Create(ctx context.Context, u *models.User) error {
	res, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (username, email, password_hash, is_admin, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.IsAdmin, u.CreatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "user", Msg: "username or email already registered", Err: err}
		}
		return domain.PersistenceError{Op: "create user", Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.PersistenceError{Op: "create user", Err: err}
	}
	u.ID = id
	return nil
}
