package async

import (
	"runtime"
	"sync"
	"time"

	"github.com/Daraan/remenv/util/utillog"
	"github.com/panjf2000/ants"
)

var (
	_ AsyncPool = (*AntsAsyncPool)(nil)
)

const (
	idleDur = 1 * time.Minute
)

// Async Pool Interface
type AsyncPool interface {
	Go(f func())
	Stop()
	StopAndWait()
}

// A long live, bounded pool of goroutines backed by panjf2000/ants.
//
// Use [NewAsyncPool] to create a new pool. If all workers are busy, the
// caller of Go is blocked until a worker is free.
type AntsAsyncPool struct {
	p  *ants.Pool
	wg *sync.WaitGroup
}

func (a *AntsAsyncPool) Go(f func()) {
	a.wg.Add(1)
	wrp := func() {
		defer a.wg.Done()
		PanicSafeRun(f)
	}
	err := a.p.Submit(wrp)
	if err != nil {
		utillog.DebugLog("AntsAsyncPool is full or closed, caller runs task, %v", err)
		wrp()
	}
}

func (a *AntsAsyncPool) Stop() {
	a.p.Release()
}

func (a *AntsAsyncPool) StopAndWait() {
	a.p.Release()
	a.wg.Wait()
}

// Create a bounded pool of goroutines.
//
// The maxWorkers determines the max number of workers.
func NewAsyncPool(maxWorkers int) AsyncPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ap := &AntsAsyncPool{wg: &sync.WaitGroup{}}
	ap.p, _ = ants.NewPool(maxWorkers, ants.WithExpiryDuration(idleDur))
	return ap
}

func MaxProcs() int {
	return runtime.GOMAXPROCS(0)
}

// Return multi * GOMAXPROCS or min whichever is greater.
func CalcPoolSize(multi int, min int) int {
	if min < 1 {
		min = 1
	}
	n := multi * MaxProcs()
	if n < min {
		return min
	}
	return n
}
