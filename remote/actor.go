package remote

import (
	"sync"

	"github.com/Daraan/remenv/util/async"
	"github.com/Daraan/remenv/util/errs"
	"github.com/Daraan/remenv/util/utillog"
	"github.com/google/uuid"
)

var (
	ErrActorTerminated = errs.NewErrfCode("ACTOR_TERMINATED", "actor already terminated")
)

const (
	mailboxSize = 8
)

// Handler serves one payload, returning a value or a fault. Panics inside
// the handler are captured as faults.
type Handler func(payload any) (any, error)

// Independently executing worker with a FIFO mailbox.
//
// Each Actor owns one serving goroutine. Identity (ID) is unique per Actor
// instance; a replacement actor at the same index has a different ID.
//
// Use [NewActor] to create one.
type Actor struct {
	id      string
	idx     int
	handler Handler

	mail     chan submission
	quit     chan struct{}
	quitOnce sync.Once
}

type submission struct {
	payload any
	h       *Handle
}

// Create Actor and start its serving goroutine.
func NewActor(idx int, handler Handler) *Actor {
	if handler == nil {
		panic("actor handler cannot be nil")
	}
	a := &Actor{
		id:      uuid.NewString(),
		idx:     idx,
		handler: handler,
		mail:    make(chan submission, mailboxSize),
		quit:    make(chan struct{}),
	}
	go a.serve()
	return a
}

// Actor identity, changes across restarts of the same slot.
func (a *Actor) ID() string {
	return a.id
}

// Fixed pool slot index.
func (a *Actor) Index() int {
	return a.idx
}

// Submit task payload, returns a Handle that resolves once the actor has
// served it.
//
// If the actor is already terminated, the Handle resolves immediately to
// ErrActorTerminated.
func (a *Actor) Submit(payload any) *Handle {
	h := newHandle()
	select {
	case <-a.quit:
		h.complete(nil, ErrActorTerminated.WithMsgf("actor %v already terminated", a.id))
	case a.mail <- submission{payload: payload, h: h}:
	}
	return h
}

// Terminate the actor. Idempotent.
//
// Payloads already queued are still served before the goroutine exits, so a
// graceful close submitted right before Terminate still runs. A handler
// blocked mid-call cannot be preempted; its goroutine exits when the call
// returns and the late result is dropped by whoever abandoned the handle.
func (a *Actor) Terminate() {
	a.quitOnce.Do(func() {
		close(a.quit)
	})
}

func (a *Actor) Terminated() bool {
	select {
	case <-a.quit:
		return true
	default:
		return false
	}
}

func (a *Actor) serve() {
	utillog.DebugLog("actor %v serving slot %d", a.id, a.idx)
	for {
		select {
		case s := <-a.mail:
			a.dispatch(s)
		case <-a.quit:
			// drain what was queued before termination, then exit
			for {
				select {
				case s := <-a.mail:
					a.dispatch(s)
				default:
					utillog.DebugLog("actor %v terminated", a.id)
					return
				}
			}
		}
	}
}

func (a *Actor) dispatch(s submission) {
	v, err := async.CapturePanic(func() (any, error) {
		return a.handler(s.payload)
	})
	s.h.complete(v, err)
}
