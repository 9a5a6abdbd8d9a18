package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/pipontop/internal/host"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		kind     Kind
		expected string
	}{
		{WorkspaceSwitched, "workspace-switched"},
		{WindowAdded, "window-added"},
		{WindowRemoved, "window-removed"},
		{TitleChanged, "title-changed"},
		{SettingChanged, "setting-changed"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		name     string
		topic    Topic
		event    Event
		expected bool
	}{
		{
			name:     "kind mismatch",
			topic:    WorkspaceTopic(WindowAdded, 1),
			event:    Event{Kind: WindowRemoved, Workspace: 1},
			expected: false,
		},
		{
			name:     "same workspace",
			topic:    WorkspaceTopic(WindowAdded, 1),
			event:    Event{Kind: WindowAdded, Workspace: 1, Window: 10},
			expected: true,
		},
		{
			name:     "other workspace",
			topic:    WorkspaceTopic(WindowAdded, 1),
			event:    Event{Kind: WindowAdded, Workspace: 2, Window: 10},
			expected: false,
		},
		{
			name:     "window on all workspaces",
			topic:    WorkspaceTopic(WindowRemoved, 1),
			event:    Event{Kind: WindowRemoved, Workspace: host.AllWorkspaces, Window: 10},
			expected: true,
		},
		{
			name:     "title of subscribed window",
			topic:    WindowTopic(10),
			event:    Event{Kind: TitleChanged, Window: 10},
			expected: true,
		},
		{
			name:     "title of other window",
			topic:    WindowTopic(10),
			event:    Event{Kind: TitleChanged, Window: 11},
			expected: false,
		},
		{
			name:     "any setting key",
			topic:    Topic{Kind: SettingChanged},
			event:    Event{Kind: SettingChanged, Key: "stick"},
			expected: true,
		},
		{
			name:     "scoped setting key",
			topic:    Topic{Kind: SettingChanged, Key: "debug"},
			event:    Event{Kind: SettingChanged, Key: "stick"},
			expected: false,
		},
		{
			name:     "workspace switch",
			topic:    Topic{Kind: WorkspaceSwitched},
			event:    Event{Kind: WorkspaceSwitched, Workspace: 3},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.topic.Matches(tt.event))
		})
	}
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	d := NewDispatcher(nil)

	var got []host.WindowID
	d.Subscribe(WorkspaceTopic(WindowAdded, 1), func(ev Event) {
		got = append(got, ev.Window)
	})

	d.Post(Event{Kind: WindowAdded, Workspace: 1, Window: 1})
	d.Post(Event{Kind: WindowAdded, Workspace: 2, Window: 2})
	d.Post(Event{Kind: WindowAdded, Workspace: 1, Window: 3})
	d.Drain()

	assert.Equal(t, []host.WindowID{1, 3}, got)
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher(nil)

	calls := 0
	id := d.Subscribe(Topic{Kind: WorkspaceSwitched}, func(Event) { calls++ })
	assert.NotZero(t, id)
	assert.Equal(t, 1, d.Subscriptions())

	assert.True(t, d.Unsubscribe(id))
	assert.False(t, d.Unsubscribe(id), "second unsubscribe is a no-op")
	assert.False(t, d.Unsubscribe(0), "zero handle is never live")
	assert.Equal(t, 0, d.Subscriptions())

	d.Post(Event{Kind: WorkspaceSwitched})
	d.Drain()
	assert.Equal(t, 0, calls)
}

func TestDispatcher_UnsubscribeDuringDelivery(t *testing.T) {
	d := NewDispatcher(nil)

	var second HandlerID
	secondCalls := 0
	d.Subscribe(Topic{Kind: WorkspaceSwitched}, func(Event) {
		d.Unsubscribe(second)
	})
	second = d.Subscribe(Topic{Kind: WorkspaceSwitched}, func(Event) {
		secondCalls++
	})

	d.Post(Event{Kind: WorkspaceSwitched})
	d.Drain()
	assert.Equal(t, 0, secondCalls)
}

func TestDispatcher_SubscribeDuringDelivery(t *testing.T) {
	d := NewDispatcher(nil)

	lateCalls := 0
	d.Subscribe(Topic{Kind: WorkspaceSwitched}, func(Event) {
		d.Subscribe(Topic{Kind: WorkspaceSwitched}, func(Event) { lateCalls++ })
	})

	d.Post(Event{Kind: WorkspaceSwitched})
	d.Drain()
	assert.Equal(t, 0, lateCalls, "new handler does not see the event being delivered")

	d.Post(Event{Kind: WorkspaceSwitched})
	d.Drain()
	assert.Equal(t, 1, lateCalls)
}

func TestDispatcher_InvokeQueuedFromHandlerRunsAfter(t *testing.T) {
	d := NewDispatcher(nil)

	var order []string
	d.Subscribe(Topic{Kind: SettingChanged}, func(Event) {
		d.Invoke(func() { order = append(order, "invoked") })
		order = append(order, "handler")
	})

	d.Post(Event{Kind: SettingChanged, Key: "stick"})
	d.Drain()
	assert.Equal(t, []string{"handler", "invoked"}, order)
}

func TestDispatcher_RunAndCall(t *testing.T) {
	d := NewDispatcher(nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	ran := false
	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	require.NoError(t, d.Call(callCtx, func() { ran = true }))
	assert.True(t, ran)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
