package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/iliyamo/todo-api/internal/cache"
	"github.com/iliyamo/todo-api/internal/model"
	q "github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
)

// MaxTitleLen is the longest accepted todo title, in characters.
const MaxTitleLen = 255

// TodoPatch lists the fields an edit may change.  Nil fields are left as
// they are.
type TodoPatch struct {
	Title *string
}

// TodoService implements the owner-scoped todo operations.  Every method
// takes the authenticated owner's id; todos of other owners are reported
// as ErrNotFound.
type TodoService struct {
	Todos  *repository.TodoRepo
	Lists  *cache.TodoLists // optional
	Events EventPublisher   // optional
	Now    func() time.Time
}

// NewTodoService wires a TodoService.  lists and events may be nil.
func NewTodoService(todos *repository.TodoRepo, lists *cache.TodoLists, events EventPublisher) *TodoService {
	return &TodoService{Todos: todos, Lists: lists, Events: events, Now: time.Now}
}

// List returns the owner's todos, newest first.
func (s *TodoService) List(ctx context.Context, ownerID uint64) ([]model.Todo, error) {
	if list, ok := s.Lists.Get(ctx, ownerID); ok {
		return list, nil
	}
	list, err := s.Todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	s.Lists.Set(ctx, ownerID, list)
	return list, nil
}

// Create stores a new, incomplete todo stamped with the current UTC time.
func (s *TodoService) Create(ctx context.Context, ownerID uint64, title string) (model.Todo, error) {
	title, err := normalizeTitle(title)
	if err != nil {
		return model.Todo{}, err
	}
	t := model.Todo{Title: title, OwnerID: ownerID, CreatedAt: s.Now().UTC()}
	if err := s.Todos.Create(ctx, &t); err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	s.invalidate(ctx, ownerID)
	emit(s.Events, q.TodoEvent{Type: q.TodoCreated, UserID: ownerID, TodoID: t.ID})
	return t, nil
}

// Complete marks a todo done.  Completing a todo that is already done
// returns it unchanged without writing.
func (s *TodoService) Complete(ctx context.Context, ownerID, id uint64) (model.Todo, error) {
	if id > math.MaxInt64 {
		return model.Todo{}, ErrNotFound
	}
	tx, err := s.Todos.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Todo{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.Todos.GetByIDAndOwnerTx(ctx, tx, id, ownerID)
	if err != nil {
		return model.Todo{}, mapTodoErr(err)
	}
	if t.IsCompleted {
		return t, nil
	}
	if err := s.Todos.MarkCompletedTx(ctx, tx, id, ownerID); err != nil {
		return model.Todo{}, fmt.Errorf("complete todo: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Todo{}, fmt.Errorf("commit: %w", err)
	}
	committed = true
	t.IsCompleted = true

	s.invalidate(ctx, ownerID)
	emit(s.Events, q.TodoEvent{Type: q.TodoCompleted, UserID: ownerID, TodoID: t.ID})
	return t, nil
}

// Edit applies the non-nil fields of p.
func (s *TodoService) Edit(ctx context.Context, ownerID, id uint64, p TodoPatch) (model.Todo, error) {
	if id > math.MaxInt64 {
		return model.Todo{}, ErrNotFound
	}
	var title string
	if p.Title != nil {
		var err error
		if title, err = normalizeTitle(*p.Title); err != nil {
			return model.Todo{}, err
		}
	}

	tx, err := s.Todos.DB().BeginTx(ctx, nil)
	if err != nil {
		return model.Todo{}, fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	t, err := s.Todos.GetByIDAndOwnerTx(ctx, tx, id, ownerID)
	if err != nil {
		return model.Todo{}, mapTodoErr(err)
	}
	if p.Title == nil {
		return t, nil
	}
	if err := s.Todos.UpdateTitleTx(ctx, tx, id, ownerID, title); err != nil {
		return model.Todo{}, mapTodoErr(err)
	}
	if err := tx.Commit(); err != nil {
		return model.Todo{}, fmt.Errorf("commit: %w", err)
	}
	committed = true
	t.Title = title

	s.invalidate(ctx, ownerID)
	return t, nil
}

func (s *TodoService) invalidate(ctx context.Context, ownerID uint64) {
	if err := s.Lists.Invalidate(ctx, ownerID); err != nil {
		log.Warn().Err(err).Uint64("owner_id", ownerID).Msg("todo list cache invalidation failed")
	}
}

func mapTodoErr(err error) error {
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("todo store: %w", err)
}

// normalizeTitle trims surrounding whitespace and enforces the title
// bounds.
func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if !utf8.ValidString(title) {
		return "", fmt.Errorf("%w: title must be valid UTF-8", ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		return "", fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLen)
	}
	return title, nil
}
