package async

// Fire async task and forget about it, any error is logged through rail.
//
// The task runs on the given pool, or on a new goroutine if pool is nil.
func Fire(rail interface{ Errorf(string, ...any) }, pool AsyncPool, task func() error) {
	run := func() {
		if err := PanicSafeRunErr(task); err != nil {
			rail.Errorf("Async task failed, %v", err)
		}
	}
	if pool != nil {
		pool.Go(run)
	} else {
		go run()
	}
}
