// Package errors provides the github.com/pkg/errors API used across the module, plus the coded
// RowError type returned by the row writer.
//
// Every constructor records a stack trace. When an error is wrapped repeatedly inside the same call
// chain only the deepest trace is printed by %+v, so logs keep a single root stack.
package errors

import (
	stderrors "errors" //nolint: depguard
	"fmt"
	"io"
	"runtime"

	"github.com/pkg/errors" //nolint: depguard
)

// New returns an error with the supplied message and the caller's stack.
func New(message string) error {
	return newStackErr(nil, message)
}

// Errorf formats the message and records the caller's stack.
func Errorf(format string, args ...interface{}) error {
	return newStackErr(nil, fmt.Sprintf(format, args...))
}

// Wrap annotates err with a message and a stack trace. Wrap(nil, ...) returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return newStackErr(err, message)
}

// Wrapf is Wrap with a format specifier.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return newStackErr(err, fmt.Sprintf(format, args...))
}

// WithStack annotates err with a stack trace only.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return newStackErr(err, "")
}

// Cause walks the chain of Cause() implementations and returns the innermost error.
func Cause(err error) error {
	for err != nil {
		c, ok := err.(causer)
		if !ok || c.Cause() == nil {
			break
		}
		err = c.Cause()
	}
	return err
}

// Is is errors.Is from the standard library.
func Is(err, target error) bool { return stderrors.Is(err, target) }

// As is errors.As from the standard library.
func As(err error, target interface{}) bool { return stderrors.As(err, target) }

type stackErr struct {
	cause error
	stack errors.StackTrace
	msg   string
}

func newStackErr(cause error, msg string) error {
	// drop this frame and the exported constructor that called it
	stack := errors.New("").(stackTracer).StackTrace()[2:]
	return &stackErr{cause: cause, stack: stack, msg: msg}
}

func (e *stackErr) Error() string {
	switch {
	case e.cause == nil:
		return e.msg
	case e.msg == "":
		return e.cause.Error()
	default:
		return e.msg + ": " + e.cause.Error()
	}
}

func (e *stackErr) Cause() error { return e.cause }

func (e *stackErr) Unwrap() error { return e.cause }

// StackTrace returns nil when the cause already carries a trace taken further down the same call chain.
func (e *stackErr) StackTrace() errors.StackTrace {
	inner, ok := e.cause.(*stackErr)
	if !ok || len(inner.stack) < len(e.stack) {
		return e.stack
	}
	for i := 1; i < len(e.stack); i++ {
		if inner.stack[len(inner.stack)-i] != e.stack[len(e.stack)-i] {
			return e.stack
		}
	}
	if funcName(inner.stack[len(inner.stack)-len(e.stack)]) == funcName(e.stack[0]) {
		return nil
	}
	return e.stack
}

func funcName(f errors.Frame) string {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return "unknown"
	}
	return fn.Name()
}

// nolint:errcheck
func (e *stackErr) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if !s.Flag('+') {
			io.WriteString(s, e.Error())
			return
		}
		if e.cause != nil {
			fmt.Fprintf(s, "%+v", e.cause)
		}
		if e.msg != "" {
			if e.cause != nil {
				io.WriteString(s, "\n")
			}
			io.WriteString(s, e.msg)
		}
		if stack := e.StackTrace(); stack != nil {
			fmt.Fprintf(s, "%+v", stack)
		}
	case 's':
		io.WriteString(s, e.Error())
	case 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

type causer interface {
	Cause() error
}
