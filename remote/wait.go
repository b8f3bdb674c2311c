package remote

import (
	"reflect"
	"time"
)

// Wait up to timeout, return the subset of handles that resolved within the
// window.
//
// Like the submission primitive it models, WaitAny keeps collecting for the
// whole window and returns early only when every supplied handle is done.
// A timeout below one millisecond degenerates to a single non-blocking scan,
// so a near-zero timeout under a retry loop busy-spins.
func WaitAny(handles []*Handle, timeout time.Duration) []*Handle {
	if timeout >= time.Millisecond {
		deadline := time.NewTimer(timeout)
		defer deadline.Stop()
	wait:
		for {
			pending := make([]*Handle, 0, len(handles))
			for _, h := range handles {
				if !h.Completed() {
					pending = append(pending, h)
				}
			}
			if len(pending) == 0 {
				break
			}

			cases := make([]reflect.SelectCase, 0, len(pending)+1)
			for _, h := range pending {
				cases = append(cases, reflect.SelectCase{
					Dir:  reflect.SelectRecv,
					Chan: reflect.ValueOf(h.Done()),
				})
			}
			cases = append(cases, reflect.SelectCase{
				Dir:  reflect.SelectRecv,
				Chan: reflect.ValueOf(deadline.C),
			})
			if chosen, _, _ := reflect.Select(cases); chosen == len(cases)-1 {
				break wait
			}
		}
	}

	ready := make([]*Handle, 0, len(handles))
	for _, h := range handles {
		if h.Completed() {
			ready = append(ready, h)
		}
	}
	return ready
}
