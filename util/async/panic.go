package async

import (
	"fmt"
	"runtime/debug"

	"github.com/Daraan/remenv/util/utillog"
)

func CapturePanic[T any](op func() (T, error)) (T, error) {
	var err error
	var t T
	func() {
		defer func() {
			if v := recover(); v != nil {
				if ve, ok := v.(error); ok {
					err = ve
				} else {
					err = fmt.Errorf("panic captured: %v", v)
				}
			}
		}()
		t, err = op()
	}()
	return t, err
}

func PanicSafeFunc(op func()) func() {
	return func() {
		defer func() {
			if v := recover(); v != nil {
				utillog.ErrorLog("panic recovered, %v\n%v", v, string(debug.Stack()))
			}
		}()
		op()
	}
}

func PanicSafeRun(op func()) {
	PanicSafeFunc(op)()
}

func PanicSafeErrFunc(op func() error) func() error {
	return func() (err error) {
		defer func() {
			if v := recover(); v != nil {
				utillog.ErrorLog("panic recovered, %v\n%v", v, string(debug.Stack()))
				if verr, ok := v.(error); ok {
					err = verr
				} else {
					err = fmt.Errorf("panic recovered, %v", v)
				}
			}
		}()
		err = op()
		return
	}
}

func PanicSafeRunErr(op func() error) error {
	return PanicSafeErrFunc(op)()
}
