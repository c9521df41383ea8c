package executor

import (
	"errors"
	"testing"

	pkgerrors "multicompile/pkg/errors"
)

func TestProcessError_Error(t *testing.T) {
	err := &ProcessError{
		Status:      "signal: killed",
		ExitCode:    -1,
		Signal:      9,
		Termination: ResourceExhausted,
		Diagnosis:   "SIGKILL (9): Process was forcefully killed (for example, because it exceeded CPU limit).",
		Stderr:      "",
	}
	want := "Exit status: signal: killed\nStderr: \nSignal info: SIGKILL (9): Process was forcefully killed (for example, because it exceeded CPU limit)."
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestProcessError_Is(t *testing.T) {
	sentinels := []error{ErrHandledFailure, ErrResourceExhausted, ErrOutputLimitExceeded, ErrUnexpectedSignal, ErrNonZeroExit}
	for _, term := range []Termination{HandledFailure, ResourceExhausted, OutputLimitExceeded, UnexpectedSignal, NonZeroExit} {
		t.Run(term.String(), func(t *testing.T) {
			wrapped := pkgerrors.Wrap(&ProcessError{Termination: term}, pkgerrors.CompilationFailed)
			for _, s := range sentinels {
				want := s == term.sentinel()
				if got := errors.Is(wrapped, s); got != want {
					t.Errorf("errors.Is(%v) = %v, want %v", s, got, want)
				}
			}
			var perr *ProcessError
			if !errors.As(wrapped, &perr) || perr.Termination != term {
				t.Errorf("errors.As did not reach the process error")
			}
		})
	}
}

func TestTermination_Unknown(t *testing.T) {
	if got := Termination(42).String(); got != "termination(42)" {
		t.Errorf("String() = %q", got)
	}
	if (&ProcessError{}).Is(ErrHandledFailure) {
		t.Error("zero termination should match no sentinel")
	}
}
