// Package herr holds the error and logging plumbing shared by every
// scheme package: a small Error type with a Kind distinguishing the fatal
// error categories a caller may want to tell apart, and a
// Logger/SetLogger/EnableLogging trio for routing diagnostic messages.
package herr

import (
	"fmt"
	goLog "log"
)

// Kind classifies why an Error was raised. Verification failure is
// deliberately not a Kind: a failed verification is a plain `false`
// return, never an Error.
type Kind uint8

const (
	// Precondition marks a caller bug: wrong message length, a private
	// key of the wrong shape, or an invalid parameter such as a
	// Winternitz w that isn't a power of two.
	Precondition Kind = iota
	// Entropy marks an unavailable OS entropy source.
	Entropy
	// Internal marks an invariant violated inside the library itself
	// (an inner scheme failing under inputs that should have been
	// validated already).
	Internal
)

func (k Kind) String() string {
	switch k {
	case Precondition:
		return "precondition violation"
	case Entropy:
		return "entropy failure"
	case Internal:
		return "internal invariant violated"
	default:
		return "unknown error"
	}
}

// Error is the concrete error type behind every panic this library
// raises. Precondition violations and entropy failures are programmer-
// facing and must fail loudly, so they are panicked rather than returned;
// a caller that wants them as a plain error can recover and type-assert.
type Error struct {
	Kind  Kind
	msg   string
	inner error
}

func (e *Error) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.msg, e.inner.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

// Unwrap exposes the wrapped error to errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.inner }

// Newf creates a new Error of the given kind.
func Newf(kind Kind, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, a...)}
}

// Wrapf creates a new Error of the given kind wrapping inner.
func Wrapf(kind Kind, inner error, format string, a ...interface{}) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, a...), inner: inner}
}

// Panicf raises a precondition violation. Every precondition check across
// the scheme packages is enforced with this.
func Panicf(format string, a ...interface{}) {
	panic(Newf(Precondition, format, a...))
}

// Logger receives the diagnostic messages passed to Logf. Logging is off
// by default. The scheme packages in this module do not call Logf
// themselves.
type Logger interface {
	Logf(format string, a ...interface{})
}

type dummyLogger struct{}

func (dummyLogger) Logf(string, ...interface{}) {}

type stdlibLogger struct{}

func (stdlibLogger) Logf(format string, a ...interface{}) { goLog.Printf(format, a...) }

var log Logger = dummyLogger{}

// EnableLogging routes hashsig's diagnostic log lines to the standard
// library's log package. For more control, use SetLogger.
func EnableLogging() { SetLogger(stdlibLogger{}) }

// SetLogger installs logger as hashsig's diagnostic sink. Passing nil
// disables logging.
func SetLogger(logger Logger) {
	if logger == nil {
		log = dummyLogger{}
		return
	}
	log = logger
}

// Logf emits a diagnostic message through the installed Logger.
func Logf(format string, a ...interface{}) { log.Logf(format, a...) }
