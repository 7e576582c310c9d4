package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/logger"
	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
	telem "github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/otel"
)

// ErrBusy is returned by Machine.Analyze when the session is not idle.
var ErrBusy = errors.New("session is not accepting a new photo")

// Analyzer is the part of the analysis client a Machine needs.
type Analyzer interface {
	Analyze(ctx context.Context, img model.Image, mode model.EvaluationMode) (*model.AnalysisResult, error)
}

// Machine owns the State of one session. Front-ends may call it from
// several goroutines (HTTP handlers, a TUI command); every change goes
// through Transition under the lock.
type Machine struct {
	mu    sync.Mutex
	state State

	metrics *telem.Metrics
	log     logrus.FieldLogger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithMetrics records every transition on m.
func WithMetrics(m *telem.Metrics) MachineOption {
	return func(mc *Machine) { mc.metrics = m }
}

// WithLogger sets the logger that receives failure causes.
func WithLogger(l logrus.FieldLogger) MachineOption {
	return func(mc *Machine) { mc.log = l }
}

// NewMachine returns a Machine in the Idle state with mode selected.
func NewMachine(mode model.EvaluationMode, opts ...MachineOption) *Machine {
	m := &Machine{state: Initial(mode)}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Discard()
	}
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Dispatch applies e and returns the resulting state.
func (m *Machine) Dispatch(ctx context.Context, e Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applyLocked(ctx, e)
}

func (m *Machine) applyLocked(ctx context.Context, e Event) State {
	next, changed := step(m.state, e)
	if !changed {
		m.log.WithFields(logrus.Fields{
			"event": e.Name(),
			"phase": m.state.Phase.String(),
		}).Debug("event ignored")
		return m.state
	}
	m.state = next
	m.metrics.RecordTransition(ctx, e.Name(), next.Phase.String())
	if next.Phase == PhaseError {
		m.log.WithError(next.Cause).WithField("mode", next.Pending).Warn("analysis failed")
	}
	return next
}

// Analyze submits img and runs one analysis with the mode selected at
// submission time. The lock is not held during the call, so the mode can
// be changed meanwhile without affecting the request. The returned error
// is the analyzer's own error (or ErrBusy); the state only ever carries
// GenericErrorMessage.
func (m *Machine) Analyze(ctx context.Context, a Analyzer, img model.Image) (State, error) {
	submitted, err := m.submit(ctx, img)
	if err != nil {
		return submitted, err
	}
	return m.finish(ctx, a, img, submitted.Pending)
}

// Start submits img and runs the analysis in the background. It returns
// once the session is Analyzing; the final state is delivered on the
// channel. ctx bounds the analysis, not the call to Start.
func (m *Machine) Start(ctx context.Context, a Analyzer, img model.Image) (<-chan State, error) {
	submitted, err := m.submit(ctx, img)
	if err != nil {
		return nil, err
	}
	done := make(chan State, 1)
	go func() {
		s, _ := m.finish(ctx, a, img, submitted.Pending)
		done <- s
	}()
	return done, nil
}

// Reject records a submission that failed before any analysis could
// start, such as an unreadable upload. Submit and Failed are applied in
// one step, so a concurrent submission can never receive this failure.
// It returns ErrBusy when the session is not idle.
func (m *Machine) Reject(ctx context.Context, img model.Image, cause error) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseIdle {
		return m.state, ErrBusy
	}
	m.applyLocked(ctx, Submit{Image: img})
	return m.applyLocked(ctx, Failed{Err: cause}), nil
}

func (m *Machine) submit(ctx context.Context, img model.Image) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state.Phase != PhaseIdle {
		return m.state, ErrBusy
	}
	return m.applyLocked(ctx, Submit{Image: img}), nil
}

func (m *Machine) finish(ctx context.Context, a Analyzer, img model.Image, mode model.EvaluationMode) (State, error) {
	result, err := a.Analyze(ctx, img, mode)

	var outcome Event = Resolved{Result: result}
	if err != nil {
		outcome = Failed{Err: err}
	}
	return m.Dispatch(ctx, outcome), err
}
