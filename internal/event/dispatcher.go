// Package event provides the single-threaded dispatcher that delivers window
// manager and settings notifications to pipontop's handlers.
package event

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jmylchreest/pipontop/internal/host"
)

// Kind identifies the type of an event.
type Kind int

const (
	// WorkspaceSwitched is posted when the active workspace changes.
	WorkspaceSwitched Kind = iota + 1
	// WindowAdded is posted when a window joins a workspace.
	WindowAdded
	// WindowRemoved is posted when a window leaves a workspace.
	WindowRemoved
	// TitleChanged is posted when a window's title changes.
	TitleChanged
	// SettingChanged is posted when a settings key changes value.
	SettingChanged
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case WorkspaceSwitched:
		return "workspace-switched"
	case WindowAdded:
		return "window-added"
	case WindowRemoved:
		return "window-removed"
	case TitleChanged:
		return "title-changed"
	case SettingChanged:
		return "setting-changed"
	default:
		return "unknown"
	}
}

// Event is a single notification from the host or the settings store.
type Event struct {
	Kind      Kind
	Workspace host.WorkspaceID // WorkspaceSwitched, WindowAdded, WindowRemoved
	Window    host.WindowID    // WindowAdded, WindowRemoved, TitleChanged
	Key       string           // SettingChanged
}

// Topic selects which events a handler receives.
// Workspace scopes WindowAdded/WindowRemoved, Window scopes TitleChanged and
// Key (when non-empty) scopes SettingChanged.
type Topic struct {
	Kind      Kind
	Workspace host.WorkspaceID
	Window    host.WindowID
	Key       string
}

// Matches reports whether ev should be delivered to a handler on t.
func (t Topic) Matches(ev Event) bool {
	if t.Kind != ev.Kind {
		return false
	}
	switch ev.Kind {
	case WindowAdded, WindowRemoved:
		return t.Workspace.Includes(ev.Workspace)
	case TitleChanged:
		return t.Window == ev.Window
	case SettingChanged:
		return t.Key == "" || t.Key == ev.Key
	default:
		return true
	}
}

// WorkspaceTopic returns the topic for kind events on ws.
func WorkspaceTopic(kind Kind, ws host.WorkspaceID) Topic {
	return Topic{Kind: kind, Workspace: ws}
}

// WindowTopic returns the title-change topic for win.
func WindowTopic(win host.WindowID) Topic {
	return Topic{Kind: TitleChanged, Window: win}
}

// HandlerID is a subscription handle. The zero value never refers to a
// live subscription.
type HandlerID uint64

// Handler receives events on the dispatcher goroutine.
type Handler func(Event)

type subscription struct {
	id      HandlerID
	topic   Topic
	handler Handler
}

// Poster accepts events from event sources.
type Poster interface {
	Post(ev Event)
}

// Dispatcher queues events and runs handlers one at a time, in order, on the
// goroutine that calls Run. Subscribe and Unsubscribe are meant to be called
// from handlers; Post and Invoke are safe from any goroutine.
type Dispatcher struct {
	logger *slog.Logger

	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	nextID HandlerID

	// subs is only touched on the dispatcher goroutine, or before Run.
	subs []subscription
}

// NewDispatcher creates a new Dispatcher.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Subscribe registers handler for events matching topic.
func (d *Dispatcher) Subscribe(topic Topic, handler Handler) HandlerID {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.mu.Unlock()

	d.subs = append(d.subs, subscription{id: id, topic: topic, handler: handler})
	d.logger.Debug("subscribed", "id", id, "kind", topic.Kind.String(),
		"workspace", topic.Workspace, "window", topic.Window)
	return id
}

// Unsubscribe removes a subscription. It returns false when id is zero or
// not subscribed.
func (d *Dispatcher) Unsubscribe(id HandlerID) bool {
	if id == 0 {
		return false
	}
	for i, s := range d.subs {
		if s.id == id {
			d.subs = append(d.subs[:i:i], d.subs[i+1:]...)
			d.logger.Debug("unsubscribed", "id", id, "kind", s.topic.Kind.String())
			return true
		}
	}
	return false
}

// Subscriptions returns the number of live subscriptions.
func (d *Dispatcher) Subscriptions() int {
	return len(d.subs)
}

// Post queues ev for delivery.
func (d *Dispatcher) Post(ev Event) {
	d.Invoke(func() { d.deliver(ev) })
}

// Invoke queues fn to run on the dispatcher goroutine.
func (d *Dispatcher) Invoke(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the dispatcher goroutine and waits for it to finish.
func (d *Dispatcher) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	d.Invoke(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes queued work until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		d.Drain()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.wake:
		}
	}
}

// Drain runs everything queued so far, including work queued while draining,
// and returns once the queue is empty.
func (d *Dispatcher) Drain() {
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.mu.Unlock()
			return
		}
		fn := d.queue[0]
		d.queue[0] = nil
		d.queue = d.queue[1:]
		d.mu.Unlock()

		fn()
	}
}

// deliver runs every handler whose topic matches ev. The handler list is
// snapshotted first so a handler may (un)subscribe without disturbing the
// current delivery; handlers removed mid-delivery are skipped.
func (d *Dispatcher) deliver(ev Event) {
	matched := make([]subscription, 0, 4)
	for _, s := range d.subs {
		if s.topic.Matches(ev) {
			matched = append(matched, s)
		}
	}

	for _, s := range matched {
		if !d.live(s.id) {
			continue
		}
		s.handler(ev)
	}
}

func (d *Dispatcher) live(id HandlerID) bool {
	for _, s := range d.subs {
		if s.id == id {
			return true
		}
	}
	return false
}
