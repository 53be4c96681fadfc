package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/events"
	"github.com/spec-kit/todo-service/internal/repository"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

const maxTitleLength = 500

// TodoService manages a user's todos. Every operation takes the owner id
// resolved from the request principal.
type TodoService struct {
	todos      repository.TodoRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TodoDependencies bundles collaborators for the todo service.
type TodoDependencies struct {
	TodoRepo   repository.TodoRepository
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTodoService constructs the service.
func NewTodoService(deps TodoDependencies) *TodoService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TodoService{todos: deps.TodoRepo, dispatcher: deps.Dispatcher, logger: logger}
}

// List returns the user's todos, newest first.
func (s *TodoService) List(ctx context.Context, userID int64) ([]domain.Todo, error) {
	return s.todos.ListByUser(ctx, userID)
}

// Create adds an open todo.
func (s *TodoService) Create(ctx context.Context, userID int64, title string) (*domain.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", map[string]any{"field": "title"})
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, apperrors.NewValidationError("title too long", map[string]any{"field": "title"})
	}

	todo := &domain.Todo{UserID: userID, Title: title, Done: false}
	if err := s.todos.Create(ctx, todo); err != nil {
		return nil, err
	}
	publish(ctx, s.dispatcher, s.logger, events.EventTodoCreated, userID,
		events.TodoPayload{TodoID: todo.ID, Title: todo.Title, Done: todo.Done})
	return todo, nil
}

// Toggle flips the done flag of one of the user's todos.
func (s *TodoService) Toggle(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	todo, err := s.todos.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, notFound(err)
	}
	todo.Done = !todo.Done
	if err := s.todos.SetDone(ctx, todo); err != nil {
		return nil, notFound(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.EventTodoToggled, userID,
		events.TodoPayload{TodoID: todo.ID, Done: todo.Done})
	return todo, nil
}

// Delete removes one of the user's todos.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.todos.Delete(ctx, id, userID); err != nil {
		return notFound(err)
	}
	publish(ctx, s.dispatcher, s.logger, events.EventTodoDeleted, userID,
		events.TodoPayload{TodoID: id})
	return nil
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("todo")
	}
	return err
}
