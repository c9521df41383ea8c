package errors

// ErrorCode represents a unique error identifier
type ErrorCode int

// Error code ranges allocation:
// 10000-10999: System & Common errors
// 11000-11999: Compilation pipeline errors
// 12000-12999: Artifact errors

const (
	// ========== System & Common Errors (10000-10999) ==========

	// Success
	Success ErrorCode = 10000

	// Generic errors (10000-10099)
	UnexpectedError ErrorCode = 10001
	InvalidConfig   ErrorCode = 10002
	NotSupported    ErrorCode = 10003

	// Filesystem errors (10100-10199)
	IOFailed       ErrorCode = 10100
	BinaryNotFound ErrorCode = 10101

	// ========== Compilation Errors (11000-11999) ==========

	// Input (11000-11099)
	SerializationFailed ErrorCode = 11000

	// Subprocess (11100-11199)
	SpawnFailed       ErrorCode = 11100
	CompilationFailed ErrorCode = 11101
	NativeDisabled    ErrorCode = 11102

	// ========== Artifact Errors (12000-12999) ==========

	DecodeFailed     ErrorCode = 12000
	ArtifactInvalid  ErrorCode = 12001
	ArtifactTooLarge ErrorCode = 12002
)

// errorMessages maps error codes to their default English messages
var errorMessages = map[ErrorCode]string{
	Success:         "Success",
	UnexpectedError: "Unexpected internal error",
	InvalidConfig:   "Invalid configuration",
	NotSupported:    "Operation not supported on this platform",

	IOFailed:       "Filesystem operation failed",
	BinaryNotFound: "Compiler binary not found",

	SerializationFailed: "Failed to serialize compilation input",

	SpawnFailed:       "Failed to start compiler process",
	CompilationFailed: "Compiler process failed",
	NativeDisabled:    "Native compilation is disabled",

	DecodeFailed:     "Failed to decode compiler output",
	ArtifactInvalid:  "Compiled artifact is invalid",
	ArtifactTooLarge: "Compiled artifact is too large",
}

// Message returns the default message for the error code
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// ExitCode returns the process exit status a command line front end should
// use when it fails with this code.
func (c ErrorCode) ExitCode() int {
	switch {
	case c == Success:
		return 0
	case c == CompilationFailed:
		return 2
	case c >= 12000 && c < 13000:
		return 3
	case c == InvalidConfig, c == NotSupported, c == BinaryNotFound, c == NativeDisabled:
		return 4
	default:
		return 1
	}
}
