package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/todo-service/internal/domain"
)

// TodoRepository defines persistence access for todos. Every lookup is
// scoped to the owning user.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) error
	GetForUser(ctx context.Context, id, userID int64) (*domain.Todo, error)
	SetDone(ctx context.Context, todo *domain.Todo) error
	Delete(ctx context.Context, id, userID int64) error
}

type todoRepository struct {
	pool *pgxpool.Pool
}

// NewTodoRepository returns a Postgres-backed implementation.
func NewTodoRepository(pool *pgxpool.Pool) TodoRepository {
	return &todoRepository{pool: pool}
}

func (r *todoRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Todo, error) {
	const query = `
        SELECT id, user_id, title, done, created_at
        FROM todos WHERE user_id=$1
        ORDER BY id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	todos := make([]domain.Todo, 0)
	for rows.Next() {
		var todo domain.Todo
		if err := rows.Scan(&todo.ID, &todo.UserID, &todo.Title, &todo.Done, &todo.CreatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

func (r *todoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	const query = `
        INSERT INTO todos (user_id, title, done)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		todo.UserID,
		todo.Title,
		todo.Done,
	).Scan(&todo.ID, &todo.CreatedAt)
}

func (r *todoRepository) GetForUser(ctx context.Context, id, userID int64) (*domain.Todo, error) {
	const query = `
        SELECT id, user_id, title, done, created_at
        FROM todos WHERE id=$1 AND user_id=$2`

	var todo domain.Todo
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&todo.Done,
		&todo.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *todoRepository) SetDone(ctx context.Context, todo *domain.Todo) error {
	const query = `
        UPDATE todos SET done=$1
        WHERE id=$2 AND user_id=$3`

	cmd, err := r.pool.Exec(ctx, query, todo.Done, todo.ID, todo.UserID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *todoRepository) Delete(ctx context.Context, id, userID int64) error {
	const query = `DELETE FROM todos WHERE id=$1 AND user_id=$2`

	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
