package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/todo-service/internal/events"
)

func TestAuditService_LogsEvents(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	todos := NewTodoService(TodoDependencies{TodoRepo: newMemoryTodos(), Dispatcher: dispatcher})
	todo, err := todos.Create(context.Background(), 7, "audit me")
	require.NoError(t, err)

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, string(events.EventTodoCreated), fields["event_type"])
	require.Equal(t, int64(7), fields["user_id"])
	require.Equal(t, todo.ID, fields["todo_id"])
	require.Equal(t, "audit", entries[0].LoggerName)
}
