package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/events"
)

// AuditService writes an audit log line for every account and todo event.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger) *AuditService {
	return &AuditService{dispatcher: dispatcher, logger: logger.Named("audit")}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range []events.EventType{
		events.EventUserRegistered,
		events.EventUserLoggedIn,
		events.EventTodoCreated,
		events.EventTodoToggled,
		events.EventTodoDeleted,
	} {
		a.dispatcher.Subscribe(eventType, a.record)
	}
}

func (a *AuditService) record(_ context.Context, event events.Event) error {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("user_id", event.UserID),
		zap.Time("at", event.Timestamp),
	}
	if todo, ok := event.Payload.(events.TodoPayload); ok {
		fields = append(fields, zap.Int64("todo_id", todo.TodoID), zap.Bool("done", todo.Done))
	}
	a.logger.Info("audit", fields...)
	return nil
}
