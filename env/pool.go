package env

import (
	"errors"
	"runtime"
	"time"

	"github.com/Daraan/remenv/core"
	"github.com/Daraan/remenv/metrics"
	"github.com/Daraan/remenv/remote"
	"github.com/Daraan/remenv/util/async"
	"github.com/Daraan/remenv/util/errs"
	"github.com/Daraan/remenv/util/hash"
)

var (
	ErrBadConfig   = errs.NewErrfCode("BAD_CONFIG", "invalid pool configuration")
	ErrPoolStopped = errs.NewErrfCode("POOL_STOPPED", "environment pool already stopped")
	ErrUnknownEnv  = errs.NewErrfCode("UNKNOWN_ENV", "unknown env id")
)

// Sentinel returned by [Pool.TryReset]: the reset outcome is only
// observable through a later Poll.
type PendingMark struct{}

var AsyncResetMark = PendingMark{}

const (
	// how long the fire-and-forget close watcher waits before giving up on
	// a replaced worker's close outcome
	closeGrace = 5 * time.Second
)

// Pool configuration.
//
// Exactly one of MakeWorker and MakeEnv must be set; the factory mode is an
// explicit construction-time tag and is fixed for the pool's lifetime.
type Config struct {
	// Number of sub-environment workers, > 0.
	PoolSize int

	// Whether the sub-environments are multi-agent.
	MultiAgent bool

	// Bounded wait per poll round. Near-zero (< 1ms) busy-spins.
	PollTimeout time.Duration

	// Restart a faulted worker instead of propagating the fault out of
	// Poll.
	RestartOnFailure bool

	// Factory producing already-addressable workers.
	MakeWorker func(idx int) (*remote.Actor, error)

	// Factory producing plain environments, auto-wrapped by the worker
	// proxies. The returned value must implement [Env] or [MultiAgentEnv]
	// matching the MultiAgent flag.
	MakeEnv func(idx int) (any, error)

	// Workers reused as-is, only PoolSize - len(ExistingWorkers) new ones
	// are built. Valid in MakeWorker mode only.
	ExistingWorkers []*remote.Actor
}

// Build a Config from loaded application props. Factories are set by the
// caller.
func ConfigFromProps() Config {
	return Config{
		PoolSize:         core.GetPropInt(core.PropPoolSize),
		MultiAgent:       core.GetPropBool(core.PropPoolMultiAgent),
		PollTimeout:      core.GetPropDur(core.PropPoolPollTimeout, time.Millisecond),
		RestartOnFailure: core.GetPropBool(core.PropPoolRestartOnFailure),
	}
}

// Asynchronous dispatcher over a fixed-size pool of sub-environment
// workers.
//
// The Pool is single-threaded: Poll, SendActions, TryReset, TryRestart and
// Stop must be driven from one goroutine. Poll is the only blocking call;
// everything else is fire-and-forget.
//
// Use [NewPool] to create one.
type Pool struct {
	rail core.Rail

	poolSize         int
	multiAgent       bool
	pollTimeout      time.Duration
	restartOnFailure bool
	addressable      bool

	makeWorker func(idx int) (*remote.Actor, error)
	makeEnv    func(idx int) (any, error)

	workers []*remote.Actor

	// outstanding task arena indexed by worker slot, nil = no task.
	// Structurally enforces at most one outstanding task per worker.
	pending []*remote.Handle

	obsSpace any
	actSpace any
	agentIDs hash.Set[AgentID]

	firePool async.AsyncPool
	stopped  bool
}

// Build the pool: construct (or adopt) PoolSize workers, query the
// observation/action space once from slot 0 (assumed uniform across the
// pool for its whole lifetime, restarts included), then issue one reset
// task per worker, seeding the pending arena.
func NewPool(rail core.Rail, conf Config) (*Pool, error) {
	if conf.PoolSize < 1 {
		return nil, ErrBadConfig.WithMsgf("pool size must be > 0, got %d", conf.PoolSize)
	}
	if (conf.MakeWorker == nil) == (conf.MakeEnv == nil) {
		return nil, ErrBadConfig.WithMsgf("exactly one of MakeWorker and MakeEnv must be set")
	}
	if len(conf.ExistingWorkers) > 0 && conf.MakeWorker == nil {
		return nil, ErrBadConfig.WithMsgf("existing workers can only be adopted in MakeWorker mode")
	}
	if len(conf.ExistingWorkers) > conf.PoolSize {
		return nil, ErrBadConfig.WithMsgf("%d existing workers exceed pool size %d",
			len(conf.ExistingWorkers), conf.PoolSize)
	}

	p := &Pool{
		rail:             rail,
		poolSize:         conf.PoolSize,
		multiAgent:       conf.MultiAgent,
		pollTimeout:      conf.PollTimeout,
		restartOnFailure: conf.RestartOnFailure,
		addressable:      conf.MakeWorker != nil,
		makeWorker:       conf.MakeWorker,
		makeEnv:          conf.MakeEnv,
		firePool:         async.NewAsyncPool(2),
	}

	p.workers = make([]*remote.Actor, 0, conf.PoolSize)
	p.workers = append(p.workers, conf.ExistingWorkers...)
	for i := len(p.workers); i < conf.PoolSize; i++ {
		w, err := p.makeSubEnv(i)
		if err != nil {
			return nil, errs.WrapErrf(err, "failed to build sub-environment %d", i)
		}
		p.workers = append(p.workers, w)
	}

	// introspection is sampled once from slot 0 and fixed for the pool's
	// lifetime
	v, err := p.workers[0].Submit(QueryPayload{What: QuerySpaces}).Resolve()
	if err != nil {
		return nil, errs.WrapErrf(err, "failed to query spaces from sub-environment 0")
	}
	sp, ok := v.(Spaces)
	if !ok {
		return nil, ErrBadConfig.WithMsgf("sub-environment 0 resolved spaces query to %T", v)
	}
	p.obsSpace, p.actSpace = sp.Observation, sp.Action

	if conf.MultiAgent {
		v, err := p.workers[0].Submit(QueryPayload{What: QueryAgentIDs}).Resolve()
		if err != nil {
			return nil, errs.WrapErrf(err, "failed to query agent ids from sub-environment 0")
		}
		ids, ok := v.([]AgentID)
		if !ok {
			return nil, ErrBadConfig.WithMsgf("sub-environment 0 resolved agent id query to %T", v)
		}
		p.agentIDs = hash.NewSet(ids...)
	} else {
		p.agentIDs = hash.NewSet(DummyAgentID)
	}

	p.pending = make([]*remote.Handle, conf.PoolSize)
	for i, w := range p.workers {
		p.pending[i] = w.Submit(ResetPayload{})
	}

	rail.Infof("Environment pool ready, %d workers, multiAgent=%v, pollTimeout=%v, restartOnFailure=%v",
		conf.PoolSize, conf.MultiAgent, conf.PollTimeout, conf.RestartOnFailure)
	return p, nil
}

func (p *Pool) makeSubEnv(idx int) (*remote.Actor, error) {
	if p.addressable {
		return p.makeWorker(idx)
	}
	p.rail.Infof("Launching env %d in worker", idx)
	v, err := p.makeEnv(idx)
	if err != nil {
		return nil, err
	}
	if p.multiAgent {
		me, ok := v.(MultiAgentEnv)
		if !ok {
			return nil, ErrBadConfig.WithMsgf("factory built %T for env %d, not a MultiAgentEnv", v, idx)
		}
		return WrapMultiAgent(idx, me), nil
	}
	se, ok := v.(Env)
	if !ok {
		return nil, ErrBadConfig.WithMsgf("factory built %T for env %d, not an Env", v, idx)
	}
	return WrapSingleAgent(idx, se), nil
}

// Collect one batch of completed results.
//
// Poll repeats the bounded wait until at least one outstanding task is
// ready, so it blocks indefinitely if no worker ever completes. Every task
// ready within the same wait round lands in the returned batch.
//
// On a resolved fault: with restarts enabled the faulted slot is restarted
// and reported as an ended episode inside the batch; with restarts disabled
// the fault is returned immediately and the whole batch is discarded,
// including sibling results already collected in the same round.
func (p *Pool) Poll() (Batch, error) {
	if p.stopped {
		return Batch{}, ErrPoolStopped.WithMsgf("cannot poll")
	}

	start := time.Now()
	defer func() {
		metrics.PollTotal.Inc()
		metrics.PollDuration.Observe(time.Since(start).Seconds())
	}()

	var ready []*remote.Handle
	for len(ready) == 0 {
		out := p.outstanding()
		ready = remote.WaitAny(out, p.pollTimeout)
		if len(ready) == 0 && (len(out) == 0 || p.pollTimeout < time.Millisecond) {
			runtime.Gosched()
		}
	}

	batch := newBatch()
	for _, h := range ready {
		envID := p.popPending(h)
		if envID < 0 {
			continue
		}

		v, ferr := h.Resolve()
		if ferr != nil {
			metrics.WorkerFaultTotal.Inc()
			if p.restartOnFailure {
				p.rail.Errorf("Sub-environment %d faulted, restarting, %v", envID, ferr)
				if rerr := p.TryRestart(envID); rerr != nil {
					return Batch{}, rerr
				}
				// report the slot as an ended episode, the fault echoed as
				// its observation; the consumer discards it
				batch.putFault(envID, ferr)
				continue
			}
			return Batch{}, ErrWorkerFault.Wrapf(ferr, "sub-environment %d", envID)
		}

		res, nerr := normalizeRaw(v, p.multiAgent, !p.addressable)
		if nerr != nil {
			// wrong result shape is a contract bug, fatal regardless of the
			// restart setting
			return Batch{}, errs.WrapErrf(nerr, "sub-environment %d", envID)
		}
		batch.put(envID, res)
	}

	metrics.PollResultTotal.Add(float64(len(batch.Obs)))
	p.rail.Debugf("Got result batch for envs %v", batch.EnvIDs())
	return batch, nil
}

// Submit one step task per entry. Returns immediately after submission.
//
// The target workers must have no outstanding task; submitting onto a busy
// slot abandons the previous task's handle.
func (p *Pool) SendActions(actions map[EnvID]map[AgentID]any) error {
	if p.stopped {
		return ErrPoolStopped.WithMsgf("cannot send actions")
	}
	for envID, acts := range actions {
		if envID < 0 || envID >= p.poolSize {
			return ErrUnknownEnv.WithMsgf("env id %d outside pool of size %d", envID, p.poolSize)
		}
		var payload StepPayload
		if !p.multiAgent && p.addressable {
			// plain single-agent workers take the bare action
			payload = StepPayload{Action: acts[DummyAgentID]}
		} else {
			payload = StepPayload{Action: acts}
		}
		p.pending[envID] = p.workers[envID].Submit(payload)
	}
	return nil
}

// Submit a reset task for one worker. The outcome is only observable via a
// later Poll, so TryReset always returns the sentinel pair.
func (p *Pool) TryReset(envID EnvID, seed *int64, options map[string]any) (PendingMark, PendingMark) {
	if p.stopped || envID < 0 || envID >= p.poolSize {
		p.rail.Warnf("TryReset ignored, stopped=%v, envID=%d", p.stopped, envID)
		return AsyncResetMark, AsyncResetMark
	}
	p.pending[envID] = p.workers[envID].Submit(ResetPayload{Seed: seed, Options: options})
	return AsyncResetMark, AsyncResetMark
}

// Replace the worker at one slot: best-effort graceful close of the old
// worker (a fault there is logged and discarded), unconditional hard
// terminate, factory rebuild at the same slot, then a fresh reset task for
// the replacement.
//
// Whatever task the old worker still had outstanding is abandoned: its
// handle was dropped from the arena, so a late resolution is ignored.
func (p *Pool) TryRestart(envID EnvID) error {
	if p.stopped {
		return ErrPoolStopped.WithMsgf("cannot restart")
	}
	if envID < 0 || envID >= p.poolSize {
		return ErrUnknownEnv.WithMsgf("env id %d outside pool of size %d", envID, p.poolSize)
	}

	old := p.workers[envID]
	closeHandle := old.Submit(ClosePayload{})
	old.Terminate()
	p.pending[envID] = nil

	rail := p.rail
	async.Fire(rail, p.firePool, func() error {
		_, cerr := closeHandle.TimedResolve(closeGrace)
		if cerr != nil && !errors.Is(cerr, remote.ErrResolveTimeout) && !errors.Is(cerr, remote.ErrActorTerminated) {
			rail.Warnf("Trying to close old and replaced sub-environment (index=%d), "+
				"but closing resulted in error, %v", envID, cerr)
		}
		return nil
	})

	nw, err := p.makeSubEnv(envID)
	if err != nil {
		return errs.WrapErrf(err, "failed to rebuild sub-environment %d", envID)
	}
	p.workers[envID] = nw
	p.pending[envID] = nw.Submit(ResetPayload{})
	metrics.WorkerRestartTotal.Inc()
	p.rail.Infof("Restarted sub-environment %d, new worker %v", envID, nw.ID())
	return nil
}

// Terminate every worker. The pool is not usable afterward.
func (p *Pool) Stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	for _, w := range p.workers {
		w.Terminate()
	}
	for i := range p.pending {
		p.pending[i] = nil
	}
	p.firePool.Stop()
	p.rail.Infof("Environment pool stopped")
}

// Observation space, sampled from slot 0 at construction.
func (p *Pool) ObservationSpace() any {
	return p.obsSpace
}

// Action space, sampled from slot 0 at construction.
func (p *Pool) ActionSpace() any {
	return p.actSpace
}

// Agent ids, sampled from slot 0 at construction if multi-agent, else the
// reserved single-agent id.
func (p *Pool) AgentIDs() hash.Set[AgentID] {
	return hash.NewSet(p.agentIDs.CopyKeys()...)
}

// Current workers in slot order.
func (p *Pool) SubEnvs() []*remote.Actor {
	out := make([]*remote.Actor, len(p.workers))
	copy(out, p.workers)
	return out
}

// Current workers keyed by env id.
func (p *Pool) SubEnvsByID() map[EnvID]*remote.Actor {
	out := make(map[EnvID]*remote.Actor, len(p.workers))
	for i, w := range p.workers {
		out[i] = w
	}
	return out
}

func (p *Pool) outstanding() []*remote.Handle {
	out := make([]*remote.Handle, 0, len(p.pending))
	for _, h := range p.pending {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}

// Pop the handle's slot from the arena, return -1 if it is no longer
// tracked.
func (p *Pool) popPending(h *remote.Handle) EnvID {
	for i, ph := range p.pending {
		if ph == h {
			p.pending[i] = nil
			return i
		}
	}
	return -1
}
