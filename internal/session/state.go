// Package session holds the presentation state of one user session.
//
// State only changes through Transition, a pure function of the current
// state and an event. Front-ends render whatever State they are given and
// turn user actions and analysis outcomes into events.
package session

import (
	"errors"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

// Phase is the coarse state shown to the user.
type Phase int

const (
	// PhaseIdle shows the upload surface and mode toggle.
	PhaseIdle Phase = iota
	// PhaseAnalyzing shows progress; no new submission is accepted.
	PhaseAnalyzing
	// PhaseSuccess shows a result until reset.
	PhaseSuccess
	// PhaseError shows GenericErrorMessage until reset.
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseAnalyzing:
		return "analyzing"
	case PhaseSuccess:
		return "success"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// GenericErrorMessage is the only failure text a user ever sees.
const GenericErrorMessage = "画像の分析中にエラーが発生しました。もう一度お試しください。"

// errNoResult is the cause recorded when an analysis resolves without a result.
var errNoResult = errors.New("analysis resolved without a result")

// State is one session's presentation state.
type State struct {
	Phase Phase
	// Mode is the current selection. It survives resets.
	Mode model.EvaluationMode
	// Pending is the mode captured when the image was submitted. It stays
	// fixed for the in-flight request and is kept with the outcome.
	Pending model.EvaluationMode
	// Preview is the image as displayed to the user.
	Preview *model.Image
	Result  *model.AnalysisResult
	// Message is user-facing and never contains provider detail.
	Message string
	// Cause is the underlying failure, for logs only.
	Cause error
}

// Initial returns the Idle state with mode selected.
func Initial(mode model.EvaluationMode) State {
	return State{Phase: PhaseIdle, Mode: mode.OrDefault()}
}

// Event is anything that can move a session between states.
type Event interface {
	// Name identifies the event kind in logs and metrics.
	Name() string
}

// SelectMode changes the selected evaluation mode.
type SelectMode struct{ Mode model.EvaluationMode }

// Submit hands an image to the session for analysis.
type Submit struct{ Image model.Image }

// Resolved reports a successful analysis.
type Resolved struct{ Result *model.AnalysisResult }

// Failed reports a failed analysis of any kind.
type Failed struct{ Err error }

// Reset returns to the upload surface.
type Reset struct{}

func (SelectMode) Name() string { return "select_mode" }
func (Submit) Name() string     { return "submit" }
func (Resolved) Name() string   { return "resolved" }
func (Failed) Name() string     { return "failed" }
func (Reset) Name() string      { return "reset" }

// Transition returns the state that follows s after e. Pairs with no
// defined transition return s unchanged: a submit while not idle, an
// outcome while not analyzing, a reset from idle.
func Transition(s State, e Event) State {
	next, _ := step(s, e)
	return next
}

// step is Transition that also reports whether anything changed.
func step(s State, e Event) (State, bool) {
	switch ev := e.(type) {
	case SelectMode:
		if !ev.Mode.Valid() || ev.Mode == s.Mode {
			return s, false
		}
		s.Mode = ev.Mode
		return s, true

	case Submit:
		if s.Phase != PhaseIdle {
			return s, false
		}
		preview := ev.Image
		return State{
			Phase:   PhaseAnalyzing,
			Mode:    s.Mode,
			Pending: s.Mode.OrDefault(),
			Preview: &preview,
		}, true

	case Resolved:
		if s.Phase != PhaseAnalyzing {
			return s, false
		}
		if ev.Result == nil {
			return failed(s, errNoResult), true
		}
		s.Phase = PhaseSuccess
		s.Result = ev.Result
		return s, true

	case Failed:
		if s.Phase != PhaseAnalyzing {
			return s, false
		}
		return failed(s, ev.Err), true

	case Reset:
		if s.Phase != PhaseSuccess && s.Phase != PhaseError {
			return s, false
		}
		return Initial(s.Mode), true
	}
	return s, false
}

func failed(s State, cause error) State {
	return State{
		Phase:   PhaseError,
		Mode:    s.Mode,
		Pending: s.Pending,
		Message: GenericErrorMessage,
		Cause:   cause,
	}
}
