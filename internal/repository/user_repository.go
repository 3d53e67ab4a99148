package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/todo-api/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a user with an already hashed password and returns the
// stored row. A duplicate email yields ErrEmailExists; the unique index is
// the authority, so concurrent signups cannot both succeed.
func (r *UserRepo) Create(ctx context.Context, email string, fullName *string, passwordHash string) (model.User, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, full_name, hashed_password) VALUES (?,?,?)",
		email, nullString(fullName), passwordHash)
	if err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: uint64(id), Email: email, FullName: fullName, PasswordHash: passwordHash}, nil
}

// GetByEmail fetches a user by exact email. It returns sql.ErrNoRows when
// no user matches.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,hashed_password FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id. It returns sql.ErrNoRows when no user matches.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,hashed_password FROM users WHERE id=? LIMIT 1", id))
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var (
		u    model.User
		name sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Email, &name, &u.PasswordHash); err != nil {
		return model.User{}, err
	}
	if name.Valid {
		u.FullName = &name.String
	}
	return u, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
