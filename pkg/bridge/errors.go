package bridge

import "errors"

var (
	// ErrConfiguration reports an unusable Config at construction time.
	// The wrapped detail names the missing or unknown piece.
	ErrConfiguration = errors.New("invalid driver configuration")

	// ErrStatementNotReady reports a cancel request that arrived before
	// the native statement existed.
	ErrStatementNotReady = errors.New("statement not ready")

	// ErrReleased reports an operation on a driver after Release.
	ErrReleased = errors.New("driver has been released")
)

// ExecError wraps a native execution failure. Error() returns exactly the
// root cause message, so callers never have to understand gateway or driver
// error shapes. The full chain stays reachable through Unwrap, which keeps
// errors.Is checks for context.Canceled and friends working.
type ExecError struct {
	msg   string
	cause error
}

func newExecError(err error) *ExecError {
	root := err
	for {
		next := errors.Unwrap(root)
		if next == nil {
			break
		}
		root = next
	}
	return &ExecError{msg: root.Error(), cause: err}
}

func (e *ExecError) Error() string { return e.msg }

func (e *ExecError) Unwrap() error { return e.cause }
