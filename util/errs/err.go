package errs

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Coded error with lazily captured stacktrace.
//
// Use [NewErrf] / [NewErrfCode] to instantiate. Two *Err are considered
// equal by [errors.Is] when both carry the same non-empty code, so a
// package-level sentinel created with NewErrfCode can be matched against
// any derived error.
type Err struct {
	code  string
	msg   string
	stack string
	err   error
}

func (e *Err) Code() string {
	return e.code
}

func (e *Err) Msg() string {
	return e.msg
}

func (e *Err) StackTrace() string {
	return e.stack
}

func (e *Err) Unwrap() error {
	return e.err
}

func (e *Err) Error() string {
	tok := []string{}
	if e.msg != "" {
		tok = append(tok, e.msg)
	}
	if e.err != nil {
		tok = append(tok, e.err.Error())
	}
	return strings.Join(tok, ", ")
}

// Implements *Err Is check, matched by code.
func (e *Err) Is(target error) bool {
	if te, ok := target.(*Err); ok && e.code != "" && e.code == te.code {
		return true
	}
	return false
}

func (e *Err) copyNew() *Err {
	n := new(Err)
	n.code = e.code
	n.msg = e.msg
	n.err = e.err
	return n
}

// Create new *Err that wraps cause, keeping e's code and message.
//
// If cause is nil, nil is returned.
func (e *Err) Wrap(cause error) error {
	if cause == nil {
		return nil
	}
	n := e.copyNew()
	n.err = cause
	n.withStack()
	return n
}

// Create new *Err that wraps cause with an extra formatted message.
//
// If cause is nil, nil is returned.
func (e *Err) Wrapf(cause error, msg string, args ...any) error {
	if cause == nil {
		return nil
	}
	n := e.copyNew()
	n.err = cause
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	if n.msg != "" {
		n.msg = n.msg + ", " + msg
	} else {
		n.msg = msg
	}
	n.withStack()
	return n
}

// Create new *Err with extra formatted message, keeping e's code.
func (e *Err) WithMsgf(msg string, args ...any) *Err {
	n := e.copyNew()
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	n.msg = msg
	n.withStack()
	return n
}

func (e *Err) withStack() *Err {
	e.stack = stack(3)
	return e
}

// Create new *Err with message.
func NewErrf(msg string, args ...any) *Err {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	n := &Err{msg: msg}
	n.withStack()
	return n
}

// Create new *Err with code and message.
func NewErrfCode(code string, msg string, args ...any) *Err {
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	n := &Err{code: code, msg: msg}
	n.withStack()
	return n
}

// Wrap err to create new *Err with message.
//
// If err is nil, nil is returned.
func WrapErrf(err error, msg string, args ...any) error {
	if err == nil {
		return nil
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	n := &Err{msg: msg, err: err}
	n.withStack()
	return n
}

// Wrap err to create new *Err with stacktrace.
//
// If err is nil, nil is returned. If err is already *Err, err is returned
// directly.
func WrapErr(err error) error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Err); ok {
		return e
	}
	n := &Err{err: err}
	n.withStack()
	return n
}

// Walk the error chain, return the deepest captured stacktrace.
func UnwrapErrStack(err error) (string, bool) {
	var stack string
	var ue error = err
	for {
		if e, ok := ue.(*Err); ok && e != nil {
			stack = e.stack
		}
		u := errors.Unwrap(ue)
		if u == nil {
			break
		}
		ue = u
	}
	return stack, stack != ""
}

var stackPool = sync.Pool{
	New: func() any {
		var v []uintptr = make([]uintptr, 50)
		return &v
	},
}

func stack(n int) string {
	pcs := stackPool.Get().(*[]uintptr)
	defer func() {
		clear(*pcs)
		stackPool.Put(pcs)
	}()

	length := runtime.Callers(n, *pcs)
	frames := runtime.CallersFrames((*pcs)[:length])
	b := strings.Builder{}
	for {
		f, next := frames.Next()
		if !next {
			break
		}
		b.WriteString(fmt.Sprintf("\n\t%v\n\t\t%v:%v", f.Function, f.File, f.Line))
	}
	return b.String()
}
