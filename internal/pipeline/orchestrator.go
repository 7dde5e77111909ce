package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"scholarsync/internal/analysis"
	"scholarsync/internal/models"
)

const observerTimeout = 30 * time.Second

// Orchestrator owns at most one current Run. Submitting or resetting
// discards the current Run and cancels its context.
type Orchestrator struct {
	steps     Steps[context.Context]
	observers []Observer
	logger    *slog.Logger
	newID     func() string
	now       func() time.Time

	mu      sync.Mutex
	current *Run
}

type Option func(*Orchestrator)

func WithObserver(obs ...Observer) Option {
	return func(o *Orchestrator) { o.observers = append(o.observers, obs...) }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithIDGenerator(f func() string) Option {
	return func(o *Orchestrator) { o.newID = f }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(steps Steps[context.Context], opts ...Option) *Orchestrator {
	o := &Orchestrator{
		steps:  steps,
		logger: slog.Default(),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit starts a new Run for doc and returns without waiting for it.
func (o *Orchestrator) Submit(ctx context.Context, doc Document) *Run {
	if doc.Submitter.ID == "" {
		doc.Submitter = models.Anonymous
	}
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r := newRun(o.newID(), doc, cancel)

	o.mu.Lock()
	prev := o.current
	o.current = r
	o.mu.Unlock()
	if prev != nil {
		prev.discard()
		o.logger.Info("run discarded", "run_id", prev.ID(), "replaced_by", r.ID())
	}

	go o.drive(runCtx, r)
	return r
}

// Reset discards the current Run. It is a no-op when idle.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	prev := o.current
	o.current = nil
	o.mu.Unlock()
	if prev != nil {
		prev.discard()
		o.logger.Info("run reset", "run_id", prev.ID())
	}
}

// Current snapshots the current Run, or returns an idle state.
func (o *Orchestrator) Current() State {
	if r := o.CurrentRun(); r != nil {
		return r.State()
	}
	return IdleState()
}

func (o *Orchestrator) CurrentRun() *Run {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

func (o *Orchestrator) drive(ctx context.Context, r *Run) {
	defer close(r.done)
	defer r.cancel()

	logger := o.logger.With("run_id", r.ID(), "document", r.doc.Name)
	started := o.now()
	st := State{RunID: r.ID()}
	// delivered is decided under the Run's lock together with the terminal
	// publish, so a Reset racing the completion cannot drop the observers.
	delivered := false
	err := o.driveRecovered(ctx, &st, r.doc, logger, func(s State) {
		logger.Debug("run progress", "stage", s.Stage, "progress", s.Progress)
		accepted := r.publish(s)
		if s.Stage == StageCompleted {
			delivered = accepted
		}
	})
	if err != nil {
		logger.Warn("run failed", "error_kind", st.ErrorKind, "error", st.Error, "duration_ms", o.now().Sub(started).Milliseconds())
		r.finish(err)
		return
	}
	logger.Info("run completed", "title", st.Result.Metadata.Title, "duration_ms", o.now().Sub(started).Milliseconds())

	if delivered {
		o.notify(ctx, logger, Completion{
			RunID:        r.ID(),
			DocumentName: r.doc.Name,
			Submitter:    r.doc.Submitter,
			Result:       *st.Result,
			CompletedAt:  o.now(),
		})
	} else {
		logger.Info("run discarded before completion, observers skipped")
	}
	r.finish(nil)
}

// driveRecovered is Drive with a panic in any stage turned into a failed run.
func (o *Orchestrator) driveRecovered(ctx context.Context, st *State, doc Document, logger *slog.Logger, emit func(State)) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		logger.Error("run panicked", "panic", rec, "stack", string(debug.Stack()))
		err = analysis.NewStageError(analysis.KindUnknown, "", GenericErrorMessage, fmt.Errorf("panic: %v", rec))
		if ferr := st.Fail(err); ferr == nil {
			emit(st.Clone())
		}
	}()
	return Drive(ctx, st, doc, o.steps, emit)
}

func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, c Completion) {
	octx, cancel := context.WithTimeout(context.WithoutCancel(ctx), observerTimeout)
	defer cancel()
	for _, obs := range o.observers {
		if err := obs.RunCompleted(octx, c); err != nil {
			logger.Error("completion observer failed", "observer", observerName(obs), "error", err)
		}
	}
}
