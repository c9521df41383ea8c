//go:build !unix

package executor

import "os"

// DefaultClassifier returns the exit-code-only classifier: without signal
// semantics nothing beyond "non-zero exit" can be said.
func DefaultClassifier() Classifier {
	return exitCodeClassifier{}
}

type exitCodeClassifier struct{}

func (exitCodeClassifier) Classify(state *os.ProcessState) Classification {
	return Classification{
		Termination: NonZeroExit,
		Diagnosis:   "Process exited with non-zero status",
	}
}
