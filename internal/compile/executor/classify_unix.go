//go:build unix

package executor

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultClassifier returns the signal-aware classifier.
func DefaultClassifier() Classifier {
	return signalClassifier{}
}

type signalClassifier struct{}

func (signalClassifier) Classify(state *os.ProcessState) Classification {
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return Classification{
			Termination: HandledFailure,
			Diagnosis:   "Process exited with non-zero status but no signal (likely a handled error, e.g., memory allocation failure).",
		}
	}
	return classifySignal(ws.Signal())
}

func classifySignal(sig syscall.Signal) Classification {
	switch sig {
	case unix.SIGKILL:
		return Classification{
			Termination: ResourceExhausted,
			Signal:      int(sig),
			Diagnosis:   fmt.Sprintf("SIGKILL (%d): Process was forcefully killed (for example, because it exceeded CPU limit).", int(sig)),
		}
	case unix.SIGXFSZ:
		return Classification{
			Termination: OutputLimitExceeded,
			Signal:      int(sig),
			Diagnosis:   fmt.Sprintf("SIGXFSZ (%d): File size limit exceeded.", int(sig)),
		}
	default:
		return Classification{
			Termination: UnexpectedSignal,
			Signal:      int(sig),
			Diagnosis:   fmt.Sprintf("Process terminated by unexpected signal: %d", int(sig)),
		}
	}
}
