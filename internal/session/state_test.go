package session

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Fuwaaaaaa/Goodmorning-Tweet-AIScore/internal/model"
)

func jpeg() model.Image {
	return model.Image{Name: "photo.jpg", MIMEType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF}}
}

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Score:           85,
		Title:           "朝の光",
		Summary:         "s",
		Composition:     model.CategoryEvaluation{Score: 80, Advice: "a"},
		Lighting:        model.CategoryEvaluation{Score: 90, Advice: "a"},
		Color:           model.CategoryEvaluation{Score: 88, Advice: "a"},
		Pose:            model.CategoryEvaluation{Score: 82, Advice: "a"},
		Costume:         model.CategoryEvaluation{Score: 84, Advice: "a"},
		Strengths:       []string{"a", "b", "c"},
		Improvements:    []string{"x", "y", "z"},
		TechnicalAdvice: "t",
	}
}

func run(s State, events ...Event) State {
	for _, e := range events {
		s = Transition(s, e)
	}
	return s
}

func TestInitialState(t *testing.T) {
	s := Initial("")
	if s.Phase != PhaseIdle || s.Mode != model.ModeMedium {
		t.Errorf("Initial(\"\") = %+v", s)
	}
	if s.Preview != nil || s.Result != nil || s.Message != "" || s.Cause != nil {
		t.Errorf("initial state should be empty, got %+v", s)
	}
}

func TestSubmitEntersAnalyzing(t *testing.T) {
	img := jpeg()
	s := Transition(Initial(model.ModeSpicy), Submit{Image: img})

	if s.Phase != PhaseAnalyzing {
		t.Fatalf("phase = %v, want analyzing", s.Phase)
	}
	if s.Pending != model.ModeSpicy {
		t.Errorf("pending = %q, want SPICY", s.Pending)
	}
	if s.Preview == nil || !reflect.DeepEqual(*s.Preview, img) {
		t.Errorf("preview = %+v", s.Preview)
	}
}

func TestResolvedEntersSuccess(t *testing.T) {
	result := sampleResult()
	s := run(Initial(model.ModeSweet), Submit{Image: jpeg()}, Resolved{Result: result})

	if s.Phase != PhaseSuccess {
		t.Fatalf("phase = %v, want success", s.Phase)
	}
	if s.Result != result {
		t.Error("success state does not carry the resolved result")
	}
	if s.Preview == nil || s.Preview.Name != "photo.jpg" {
		t.Error("success state does not carry the displayed image")
	}
	if s.Pending != model.ModeSweet {
		t.Errorf("pending = %q, want SWEET", s.Pending)
	}
}

func TestFailedEntersErrorWithGenericMessage(t *testing.T) {
	cause := errors.New("provider: 429 quota exceeded for project 1234")
	s := run(Initial(""), Submit{Image: jpeg()}, Failed{Err: cause})

	if s.Phase != PhaseError {
		t.Fatalf("phase = %v, want error", s.Phase)
	}
	if s.Message != GenericErrorMessage {
		t.Errorf("message = %q, want the generic message", s.Message)
	}
	if s.Cause != cause {
		t.Error("cause should be kept for logging")
	}
	if s.Result != nil || s.Preview != nil {
		t.Error("error state must not carry a partial result or preview")
	}
}

func TestResolvedWithoutResultIsFailure(t *testing.T) {
	s := run(Initial(""), Submit{Image: jpeg()}, Resolved{})
	if s.Phase != PhaseError || !errors.Is(s.Cause, errNoResult) {
		t.Errorf("got %+v", s)
	}
}

func TestResetClearsEverythingButMode(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
	}{
		{"from success", []Event{Submit{Image: jpeg()}, Resolved{Result: sampleResult()}}},
		{"from error", []Event{Submit{Image: jpeg()}, Failed{Err: errors.New("boom")}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := run(Initial(model.ModeSpicy), tt.events...)
			s = Transition(s, Reset{})

			want := State{Phase: PhaseIdle, Mode: model.ModeSpicy}
			if !reflect.DeepEqual(s, want) {
				t.Errorf("after reset got %+v, want %+v", s, want)
			}
		})
	}
}

func TestResetFromIdleIsNoop(t *testing.T) {
	s := Initial(model.ModeSweet)
	if got := Transition(s, Reset{}); !reflect.DeepEqual(got, s) {
		t.Errorf("reset from idle changed state: %+v", got)
	}
}

func TestModeChangeDuringAnalysisKeepsPending(t *testing.T) {
	s := run(Initial(model.ModeSweet), Submit{Image: jpeg()}, SelectMode{Mode: model.ModeSpicy})

	if s.Phase != PhaseAnalyzing {
		t.Fatalf("phase = %v", s.Phase)
	}
	if s.Mode != model.ModeSpicy {
		t.Errorf("selection = %q, want SPICY", s.Mode)
	}
	if s.Pending != model.ModeSweet {
		t.Errorf("pending = %q, want SWEET (fixed at submission)", s.Pending)
	}

	s = run(s, Resolved{Result: sampleResult()}, Reset{})
	if s.Mode != model.ModeSpicy {
		t.Errorf("selection after reset = %q, want SPICY", s.Mode)
	}
}

func TestSelectModeRejectsUnknownMode(t *testing.T) {
	s := Initial(model.ModeSweet)
	if got := Transition(s, SelectMode{Mode: "EXTRA_HOT"}); got.Mode != model.ModeSweet {
		t.Errorf("mode = %q, want SWEET", got.Mode)
	}
}

func TestUndefinedTransitionsAreNoops(t *testing.T) {
	analyzing := Transition(Initial(""), Submit{Image: jpeg()})
	success := Transition(analyzing, Resolved{Result: sampleResult()})
	errored := Transition(analyzing, Failed{Err: errors.New("x")})

	tests := []struct {
		name  string
		state State
		event Event
	}{
		{"resolved while idle", Initial(""), Resolved{Result: sampleResult()}},
		{"failed while idle", Initial(""), Failed{Err: errors.New("x")}},
		{"submit while analyzing", analyzing, Submit{Image: jpeg()}},
		{"reset while analyzing", analyzing, Reset{}},
		{"submit on success", success, Submit{Image: jpeg()}},
		{"stray result on success", success, Resolved{Result: &model.AnalysisResult{}}},
		{"stray failure on success", success, Failed{Err: errors.New("late")}},
		{"submit on error", errored, Submit{Image: jpeg()}},
		{"stray result on error", errored, Resolved{Result: sampleResult()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := step(tt.state, tt.event)
			if changed {
				t.Error("step reported a change")
			}
			if !reflect.DeepEqual(got, tt.state) {
				t.Errorf("state changed:\n got %+v\nwant %+v", got, tt.state)
			}
		})
	}
}

func TestPhaseString(t *testing.T) {
	for p, want := range map[Phase]string{
		PhaseIdle: "idle", PhaseAnalyzing: "analyzing", PhaseSuccess: "success", PhaseError: "error", Phase(9): "unknown",
	} {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, got, want)
		}
	}
}
