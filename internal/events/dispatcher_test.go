package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishToSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var got []string
	d.Subscribe(EventTodoCreated, func(_ context.Context, e Event) error {
		got = append(got, "first:"+e.ID)
		return nil
	})
	d.Subscribe(EventTodoCreated, func(_ context.Context, e Event) error {
		got = append(got, "second:"+e.ID)
		return nil
	})
	d.Subscribe(EventTodoDeleted, func(context.Context, Event) error {
		t.Fatal("unexpected handler")
		return nil
	})

	require.NoError(t, d.Publish(context.Background(), Event{ID: "1", Type: EventTodoCreated}))
	require.Equal(t, []string{"first:1", "second:1"}, got)

	require.NoError(t, d.Publish(context.Background(), Event{ID: "2", Type: EventUserLoggedIn}))
}

func TestDispatcher_JoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	errA := errors.New("a")
	errB := errors.New("b")
	calls := 0
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { calls++; return errA })
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { calls++; return nil })
	d.Subscribe(EventUserRegistered, func(context.Context, Event) error { calls++; return errB })

	err := d.Publish(context.Background(), Event{Type: EventUserRegistered})
	require.ErrorIs(t, err, errA)
	require.ErrorIs(t, err, errB)
	require.Equal(t, 3, calls)
}

func TestDispatcher_RecoversPanickingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	reached := false
	d.Subscribe(EventTodoToggled, func(context.Context, Event) error { panic("boom") })
	d.Subscribe(EventTodoToggled, func(context.Context, Event) error { reached = true; return nil })

	err := d.Publish(context.Background(), Event{Type: EventTodoToggled})
	require.ErrorContains(t, err, "panicked: boom")
	require.True(t, reached)
}
