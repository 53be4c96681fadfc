package dto

// CreateTodoRequest payload.
type CreateTodoRequest struct {
	Title string `json:"title"`
}
