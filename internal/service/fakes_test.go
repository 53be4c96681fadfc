package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/todo-service/internal/domain"
	"github.com/spec-kit/todo-service/internal/events"
)

type memoryUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: make(map[int64]*domain.User)}
}

func (m *memoryUsers) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	cp := *user
	m.byID[user.ID] = &cp
	return nil
}

func (m *memoryUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	return err == nil, nil
}

type memoryTodos struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*domain.Todo
}

func newMemoryTodos() *memoryTodos {
	return &memoryTodos{byID: make(map[int64]*domain.Todo)}
}

func (m *memoryTodos) ListByUser(_ context.Context, userID int64) ([]domain.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Todo{}
	for _, t := range m.byID {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memoryTodos) Create(_ context.Context, todo *domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	todo.ID = m.nextID
	todo.CreatedAt = time.Now().UTC()
	cp := *todo
	m.byID[todo.ID] = &cp
	return nil
}

func (m *memoryTodos) GetForUser(_ context.Context, id, userID int64) (*domain.Todo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byID[id]; ok && t.UserID == userID {
		cp := *t
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *memoryTodos) SetDone(_ context.Context, todo *domain.Todo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byID[todo.ID]
	if !ok || t.UserID != todo.UserID {
		return pgx.ErrNoRows
	}
	t.Done = todo.Done
	return nil
}

func (m *memoryTodos) Delete(_ context.Context, id, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byID[id]; !ok || t.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.byID, id)
	return nil
}

type stubIssuer struct {
	issued []int64
}

func (s *stubIssuer) Issue(subject int64, email string) (string, time.Time) {
	s.issued = append(s.issued, subject)
	return "token-for-" + email, time.Unix(1700003600, 0)
}

type stubThrottle struct {
	checkErr error
	failures map[string]int
	resets   map[string]int
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: map[string]int{}, resets: map[string]int{}}
}

func (s *stubThrottle) Check(context.Context, string) error { return s.checkErr }

func (s *stubThrottle) RecordFailure(_ context.Context, email string) error {
	s.failures[email]++
	return nil
}

func (s *stubThrottle) Reset(_ context.Context, email string) error {
	s.resets[email]++
	return nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) subscribeAll(d events.Dispatcher) {
	for _, et := range []events.EventType{
		events.EventUserRegistered, events.EventUserLoggedIn,
		events.EventTodoCreated, events.EventTodoToggled, events.EventTodoDeleted,
	} {
		d.Subscribe(et, func(_ context.Context, e events.Event) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events = append(r.events, e)
			return nil
		})
	}
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}
