// This file defines the todo repository. Every read and write is scoped by
// owner_id: a todo addressed by id but owned by someone else behaves
// exactly like a todo that does not exist.
package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"errors"
	"time"

	"github.com/iliyamo/todo-api/internal/model"
)

// TodoRepo encapsulates all database queries related to todos.
type TodoRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewTodoRepo constructs a TodoRepo with the provided DB handle.
func NewTodoRepo(db *sql.DB) *TodoRepo {
	return &TodoRepo{db: db}
}

// DB exposes the pool so services can open transactions that span
// several repository calls.
func (r *TodoRepo) DB() *sql.DB { return r.db }

const todoColumns = "id, title, is_completed, created_at, owner_id"

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(s scanner) (model.Todo, error) {
	var (
		t  model.Todo
		ms int64
	)
	if err := s.Scan(&t.ID, &t.Title, &t.IsCompleted, &ms, &t.OwnerID); err != nil {
		return model.Todo{}, err
	}
	t.CreatedAt = fromMillis(ms)
	return t, nil
}

// Create inserts a new todo. On success ID is populated and CreatedAt is
// normalised to the stored millisecond precision.
func (r *TodoRepo) Create(ctx context.Context, t *model.Todo) error {
	const q = "INSERT INTO todos (title, is_completed, created_at, owner_id) VALUES (?, ?, ?, ?)"
	ms := toMillis(t.CreatedAt)
	res, err := r.db.ExecContext(ctx, q, t.Title, t.IsCompleted, ms, t.OwnerID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.CreatedAt = fromMillis(ms)
	return nil
}

// ListByOwner returns all todos of ownerID, newest first. Rows created in
// the same millisecond fall back to id order so the result is stable.
func (r *TodoRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	const q = `SELECT ` + todoColumns + `
	           FROM todos WHERE owner_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Todo{}
	for rows.Next() {
		t, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndOwnerTx fetches a todo inside tx, only if it belongs to ownerID.
// It returns ErrTodoNotFound otherwise.
func (r *TodoRepo) GetByIDAndOwnerTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) (model.Todo, error) {
	const q = `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND owner_id = ?`
	t, err := scanTodo(tx.QueryRowContext(ctx, q, id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Todo{}, ErrTodoNotFound
		}
		return model.Todo{}, err
	}
	return t, nil
}

// MarkCompletedTx flips is_completed to true. Rows that are already
// complete are left untouched.
func (r *TodoRepo) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64) error {
	const q = `UPDATE todos SET is_completed = ? WHERE id = ? AND owner_id = ? AND is_completed = ?`
	_, err := tx.ExecContext(ctx, q, true, id, ownerID, false)
	return err
}

// UpdateTitleTx sets the title of an owned todo. It returns
// ErrTodoNotFound when no row matches.
func (r *TodoRepo) UpdateTitleTx(ctx context.Context, tx *sql.Tx, id, ownerID uint64, title string) error {
	const q = `UPDATE todos SET title = ? WHERE id = ? AND owner_id = ?`
	res, err := tx.ExecContext(ctx, q, title, id, ownerID)
	if err != nil {
		return err
	}
	// MySQL reports 0 affected rows when the new value equals the old one,
	// so a miss is only reported when the row is really gone.
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByIDAndOwnerTx(ctx, tx, id, ownerID); err != nil {
			return err
		}
	}
	return nil
}
