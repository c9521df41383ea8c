package executor

import "os"

// Classification is the diagnosis of one failed process.
type Classification struct {
	Termination Termination
	// Signal is the terminating signal number, 0 when there was none.
	Signal    int
	Diagnosis string
}

// Classifier diagnoses an unsuccessful process state. The implementation is
// selected per platform by DefaultClassifier.
type Classifier interface {
	Classify(state *os.ProcessState) Classification
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(state *os.ProcessState) Classification

func (f ClassifierFunc) Classify(state *os.ProcessState) Classification {
	return f(state)
}
