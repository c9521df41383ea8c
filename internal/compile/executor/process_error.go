package executor

import (
	"errors"
	"fmt"
)

// Termination is the diagnosed reason a compiler process failed.
type Termination int

const (
	// HandledFailure: normal exit with a non-zero status, no signal.
	HandledFailure Termination = iota + 1
	// ResourceExhausted: killed by SIGKILL, most likely the CPU time limit.
	ResourceExhausted
	// OutputLimitExceeded: killed by SIGXFSZ.
	OutputLimitExceeded
	// UnexpectedSignal: killed by any other signal.
	UnexpectedSignal
	// NonZeroExit: failure on a platform without signal semantics.
	NonZeroExit
)

var (
	ErrHandledFailure      = errors.New("compiler exited with a handled failure")
	ErrResourceExhausted   = errors.New("compiler killed for exhausting a resource")
	ErrOutputLimitExceeded = errors.New("compiler exceeded the output size limit")
	ErrUnexpectedSignal    = errors.New("compiler terminated by an unexpected signal")
	ErrNonZeroExit         = errors.New("compiler exited with non-zero status")
)

func (t Termination) String() string {
	switch t {
	case HandledFailure:
		return "handled failure"
	case ResourceExhausted:
		return "resource exhausted"
	case OutputLimitExceeded:
		return "output limit exceeded"
	case UnexpectedSignal:
		return "unexpected signal"
	case NonZeroExit:
		return "non-zero exit"
	default:
		return fmt.Sprintf("termination(%d)", int(t))
	}
}

func (t Termination) sentinel() error {
	switch t {
	case HandledFailure:
		return ErrHandledFailure
	case ResourceExhausted:
		return ErrResourceExhausted
	case OutputLimitExceeded:
		return ErrOutputLimitExceeded
	case UnexpectedSignal:
		return ErrUnexpectedSignal
	case NonZeroExit:
		return ErrNonZeroExit
	default:
		return nil
	}
}

// ProcessError describes a compiler process that did not exit successfully.
// Diagnosis is advisory text for operators.
type ProcessError struct {
	Status      string
	ExitCode    int
	Signal      int
	Termination Termination
	Diagnosis   string
	Stderr      string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("Exit status: %s\nStderr: %s\nSignal info: %s", e.Status, e.Stderr, e.Diagnosis)
}

// Is matches the sentinel of the error's termination kind.
func (e *ProcessError) Is(target error) bool {
	s := e.Termination.sentinel()
	return s != nil && target == s
}
