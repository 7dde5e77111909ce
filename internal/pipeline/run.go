package pipeline

import (
	"context"
	"sync"
)

type EventType string

const (
	EventProgress  EventType = "progress"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
)

type Event struct {
	Type  EventType `json:"type"`
	State State     `json:"state"`
}

func eventFor(s State) Event {
	switch s.Stage {
	case StageCompleted:
		return Event{Type: EventCompleted, State: s}
	case StageError:
		return Event{Type: EventFailed, State: s}
	default:
		return Event{Type: EventProgress, State: s}
	}
}

const subscriberBuffer = 16

// Run is one submission. A single goroutine drives it; any number of
// readers may snapshot or subscribe.
type Run struct {
	id     string
	doc    Document
	cancel context.CancelFunc
	done   chan struct{}
	events <-chan Event

	mu        sync.Mutex
	state     State
	err       error
	discarded bool
	closed    bool
	subs      map[chan Event]struct{}
}

func newRun(id string, doc Document, cancel context.CancelFunc) *Run {
	r := &Run{
		id:     id,
		doc:    doc,
		cancel: cancel,
		done:   make(chan struct{}),
		state:  State{RunID: id, Stage: StageIdle},
		subs:   map[chan Event]struct{}{},
	}
	r.events, _ = r.Subscribe()
	return r
}

func (r *Run) ID() string { return r.id }

func (r *Run) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Events yields every transition of the run from its start and closes after
// the terminal event or when the run is discarded.
func (r *Run) Events() <-chan Event { return r.events }

func (r *Run) Done() <-chan struct{} { return r.done }

// Discarded reports whether the run was reset or superseded.
func (r *Run) Discarded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.discarded
}

// Wait blocks until the run has finished, including completion observers.
func (r *Run) Wait(ctx context.Context) (State, error) {
	select {
	case <-r.done:
	case <-ctx.Done():
		return r.State(), ctx.Err()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone(), r.err
}

// Subscribe returns a channel of events starting with the current state.
// A slow subscriber loses its oldest buffered progress events, never the
// terminal one.
func (r *Run) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		ch <- eventFor(r.state.Clone())
		close(ch)
		return ch, func() {}
	}
	if r.state.Stage != StageIdle {
		ch <- eventFor(r.state.Clone())
	}
	r.subs[ch] = struct{}{}
	return ch, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if _, ok := r.subs[ch]; ok {
			delete(r.subs, ch)
			close(ch)
		}
	}
}

// publish records s and fans it out. It reports false once the Run has been
// discarded, in which case s is dropped.
func (r *Run) publish(s State) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.discarded {
		return false
	}
	r.state = s
	ev := eventFor(s)
	for ch := range r.subs {
		send(ch, ev)
	}
	if s.Stage.Terminal() {
		r.closeSubsLocked()
	}
	return true
}

func send(ch chan Event, ev Event) {
	for {
		select {
		case ch <- ev:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (r *Run) finish(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
	r.closeSubsLocked()
}

func (r *Run) discard() {
	r.mu.Lock()
	r.discarded = true
	r.closeSubsLocked()
	r.mu.Unlock()
	r.cancel()
}

func (r *Run) closeSubsLocked() {
	r.closed = true
	for ch := range r.subs {
		close(ch)
		delete(r.subs, ch)
	}
}
