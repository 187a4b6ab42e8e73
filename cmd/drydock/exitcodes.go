package main

import "fmt"

// Exit codes for the drydock CLI.
const (
	ExitOK           = 0 // Scan finished; no failure condition.
	ExitLeaksFound   = 1 // --fail and at least one cross-project leak.
	ExitInvalidArgs  = 2 // Invalid arguments, config, or paths.
	ExitTotalFailure = 3 // No report produced (failed or cancelled).
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
}

func (e *exitCodeError) Error() string { return e.msg }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitLeaksFound:
			msg = "drydock: cross-project leakage found"
		case ExitTotalFailure:
			msg = "drydock: no report produced"
		default:
			msg = "drydock: error"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}
