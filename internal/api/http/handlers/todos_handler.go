package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/todo-service/internal/api/dto"
	"github.com/spec-kit/todo-service/internal/auth"
	"github.com/spec-kit/todo-service/internal/service"
	apperrors "github.com/spec-kit/todo-service/pkg/util/errorutil"
)

// TodosHandler manages the caller's todos.
type TodosHandler struct {
	service *service.TodoService
}

// NewTodosHandler constructs handler.
func NewTodosHandler(todoService *service.TodoService) *TodosHandler {
	return &TodosHandler{service: todoService}
}

// List GET /api/todos.
func (h *TodosHandler) List(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	todos, err := h.service.List(c.UserContext(), principal.Subject)
	if err != nil {
		return err
	}
	return c.JSON(todos)
}

// Create POST /api/todos.
func (h *TodosHandler) Create(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	todo, err := h.service.Create(c.UserContext(), principal.Subject, req.Title)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(todo)
}

// Toggle PATCH /api/todos/:id/toggle.
func (h *TodosHandler) Toggle(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := todoID(c)
	if err != nil {
		return err
	}
	todo, err := h.service.Toggle(c.UserContext(), principal.Subject, id)
	if err != nil {
		return err
	}
	return c.JSON(todo)
}

// Delete DELETE /api/todos/:id.
func (h *TodosHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id, err := todoID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), principal.Subject, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized(apperrors.CodeMissingToken, auth.ErrMissingCredential)
	}
	return principal, nil
}

func todoID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid todo id", map[string]any{"field": "id"})
	}
	return id, nil
}
