package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/todo-api/internal/database"
	"github.com/iliyamo/todo-api/internal/model"
)

// ---- helpers ----

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open("sqlite", fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(context.Background(), db, "sqlite"))
	return db
}

func strPtr(s string) *string { return &s }

func mustUser(t *testing.T, users *UserRepo, email string) model.User {
	t.Helper()
	u, err := users.Create(context.Background(), email, nil, "hash")
	require.NoError(t, err)
	return u
}

// ---- users ----

func TestUserRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(setupDB(t))

	u, err := users.Create(ctx, "a@x.com", strPtr("Alice"), "hash-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u.ID)

	byEmail, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u, byEmail)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, byID.FullName)
	assert.Equal(t, "Alice", *byID.FullName)
	assert.Equal(t, "hash-1", byID.PasswordHash)

	noName, err := users.Create(ctx, "b@x.com", nil, "hash-2")
	require.NoError(t, err)
	got, err := users.GetByID(ctx, noName.ID)
	require.NoError(t, err)
	assert.Nil(t, got.FullName)
}

func TestUserRepo_Missing(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(setupDB(t))

	_, err := users.GetByEmail(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	_, err = users.GetByID(ctx, 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepo(setupDB(t))

	mustUser(t, users, "a@x.com")
	_, err := users.Create(ctx, "a@x.com", nil, "other")
	assert.ErrorIs(t, err, ErrEmailExists)

	// emails are case-sensitive
	_, err = users.Create(ctx, "A@x.com", nil, "other")
	assert.NoError(t, err)
}

func TestUserRepo_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepo(db)

	const n = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := users.Create(ctx, "race@x.com", nil, "h")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
				return
			}
			assert.ErrorIs(t, err, ErrEmailExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", "race@x.com").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.False(t, isUniqueViolation(nil))
	assert.False(t, isUniqueViolation(errors.New("boom")))
	assert.True(t, isUniqueViolation(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, isUniqueViolation(&mysql.MySQLError{Number: 1452}))
}

// ---- todos ----

func TestTodoRepo_CreateAndListNewestFirst(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepo(db)
	todos := NewTodoRepo(db)

	alice := mustUser(t, users, "a@x.com")
	bob := mustUser(t, users, "b@x.com")

	base := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		td := &model.Todo{Title: title, OwnerID: alice.ID, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, todos.Create(ctx, td))
		assert.NotZero(t, td.ID)
		assert.Equal(t, 123000000, td.CreatedAt.Nanosecond(), "stored with millisecond precision")
	}
	same := &model.Todo{Title: "bob's", OwnerID: bob.ID, CreatedAt: base}
	require.NoError(t, todos.Create(ctx, same))

	list, err := todos.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{list[0].Title, list[1].Title, list[2].Title})
	for _, td := range list {
		assert.Equal(t, alice.ID, td.OwnerID)
		assert.False(t, td.IsCompleted)
		assert.Equal(t, time.UTC, td.CreatedAt.Location())
	}

	empty, err := todos.ListByOwner(ctx, 12345)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTodoRepo_SameTimestampOrdersByID(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	owner := mustUser(t, NewUserRepo(db), "a@x.com")
	todos := NewTodoRepo(db)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for _, title := range []string{"a", "b"} {
		require.NoError(t, todos.Create(ctx, &model.Todo{Title: title, OwnerID: owner.ID, CreatedAt: at}))
	}
	list, err := todos.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].Title)
}

func TestTodoRepo_OwnerScopedTx(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	users := NewUserRepo(db)
	todos := NewTodoRepo(db)

	alice := mustUser(t, users, "a@x.com")
	bob := mustUser(t, users, "b@x.com")
	td := &model.Todo{Title: "Buy milk", OwnerID: alice.ID, CreatedAt: time.Now()}
	require.NoError(t, todos.Create(ctx, td))

	tx, err := todos.DB().BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()

	_, err = todos.GetByIDAndOwnerTx(ctx, tx, td.ID, bob.ID)
	assert.ErrorIs(t, err, ErrTodoNotFound)
	assert.ErrorIs(t, todos.UpdateTitleTx(ctx, tx, td.ID, bob.ID, "hijack"), ErrTodoNotFound)
	require.NoError(t, todos.MarkCompletedTx(ctx, tx, td.ID, bob.ID))

	got, err := todos.GetByIDAndOwnerTx(ctx, tx, td.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", got.Title)
	assert.False(t, got.IsCompleted)

	require.NoError(t, todos.MarkCompletedTx(ctx, tx, td.ID, alice.ID))
	require.NoError(t, todos.UpdateTitleTx(ctx, tx, td.ID, alice.ID, "Buy oat milk"))
	got, err = todos.GetByIDAndOwnerTx(ctx, tx, td.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, "Buy oat milk", got.Title)
	assert.Equal(t, td.CreatedAt, got.CreatedAt)
	require.NoError(t, tx.Commit())
}

func TestTodoRepo_UnknownOwnerRejectedByForeignKey(t *testing.T) {
	todos := NewTodoRepo(setupDB(t))
	err := todos.Create(context.Background(), &model.Todo{Title: "orphan", OwnerID: 999, CreatedAt: time.Now()})
	assert.Error(t, err)
}
