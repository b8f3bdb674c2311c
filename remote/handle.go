package remote

import (
	"errors"
	"sync"
	"time"

	"github.com/Daraan/remenv/util/async"
)

var (
	ErrResolveTimeout = errors.New("handle.TimedResolve timeout")
)

// Opaque reference to one in-flight task submission.
//
// A Handle resolves exactly once, to either a value or a fault. It is
// created by [Actor.Submit] and completed by the actor's serving goroutine.
type Handle struct {
	res  any
	err  error
	done *async.SignalOnce

	// mutex syncs between Then and the completing goroutine;
	// res/err themselves are guarded by the done signal
	thenMu *sync.Mutex
	then   func(any, error)
}

func newHandle() *Handle {
	return &Handle{
		done:   async.NewSignalOnce(),
		thenMu: &sync.Mutex{},
	}
}

// Whether the task has resolved.
func (h *Handle) Completed() bool {
	return h.done.Closed()
}

// Channel closed once the task resolves.
func (h *Handle) Done() <-chan struct{} {
	return h.done.Done()
}

// Block until the task resolves, return its value or fault.
func (h *Handle) Resolve() (any, error) {
	h.done.Wait()
	return h.res, h.err
}

// Resolve with timeout, returns ErrResolveTimeout if exceeded.
func (h *Handle) TimedResolve(timeout time.Duration) (any, error) {
	if h.done.TimedWait(timeout) {
		return nil, ErrResolveTimeout
	}
	return h.res, h.err
}

// Then callback invoked once the task resolves.
//
// Should only be set once per Handle.
func (h *Handle) Then(tf func(any, error)) {
	if tf == nil {
		panic("Handle.Then callback cannot be nil")
	}
	h.thenMu.Lock()
	h.then = func(v any, err error) {
		async.PanicSafeRun(func() { tf(v, err) })
	}
	if h.done.Closed() {
		doThen := h.then
		h.thenMu.Unlock()
		doThen(h.res, h.err)
	} else {
		h.thenMu.Unlock()
	}
}

func (h *Handle) complete(v any, err error) {
	h.thenMu.Lock()
	h.res = v
	h.err = err
	h.done.Notify()

	if h.then != nil {
		doThen := h.then
		h.thenMu.Unlock()
		doThen(v, err)
	} else {
		h.thenMu.Unlock()
	}
}

// Create an already-resolved Handle, for tests and fallbacks.
func CompletedHandle(v any, err error) *Handle {
	h := newHandle()
	h.complete(v, err)
	return h
}
