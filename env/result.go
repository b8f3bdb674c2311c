package env

import (
	"github.com/Daraan/remenv/util/errs"
	"github.com/Daraan/remenv/util/hash"
	"github.com/spf13/cast"
)

var (
	// The worker returned a result of the wrong shape. A contract bug in
	// the wrapped environment: fatal, never retried or restarted.
	ErrFormatViolation = errs.NewErrfCode("FORMAT_VIOLATION",
		"environment returned malformed result, a step must resolve to 5 values "+
			"(obs, reward, terminated, truncated, info) and a reset to 2 values (obs, info)")

	// A fault raised while resolving a submitted task, with restarts
	// disabled.
	ErrWorkerFault = errs.NewErrfCode("WORKER_FAULT", "sub-environment task faulted")
)

// Canonical per-worker record: one reset/step outcome with every field keyed
// by agent id. Terminated/Truncated always contain the [AllAgents] key.
type Result struct {
	Obs        map[AgentID]any
	Reward     map[AgentID]float64
	Terminated map[AgentID]bool
	Truncated  map[AgentID]bool
	Info       map[AgentID]any
}

// Decode a raw resolved task value into the canonical Result.
//
// A raw value is a slice: 5 elements for a step outcome, 2 for a reset
// outcome, any other shape is a FormatViolation. Reshaping depends on the
// pool mode: proxy-wrapped workers emit already-canonical 5-element slices
// (pure pass-through here), plain multi-agent workers keep their maps as-is
// with reset synthesis, plain single-agent workers get every scalar wrapped
// under [DummyAgentID].
func normalizeRaw(raw any, multiagent bool, passthrough bool) (Result, error) {
	vs, ok := raw.([]any)
	if !ok {
		return Result{}, ErrFormatViolation.WithMsgf(
			"environment resolved to a single %T value instead of a result slice", raw)
	}

	if passthrough {
		return decodeCanonical(vs)
	}
	if multiagent {
		return decodeMultiAgent(vs)
	}
	return decodeSingleAgent(vs)
}

// Proxy-wrapped workers already performed the reshaping worker-side.
func decodeCanonical(vs []any) (Result, error) {
	if len(vs) != 5 {
		return Result{}, arityErr(len(vs))
	}
	obs, ok1 := vs[0].(map[AgentID]any)
	rew, ok2 := vs[1].(map[AgentID]float64)
	term, ok3 := vs[2].(map[AgentID]bool)
	trunc, ok4 := vs[3].(map[AgentID]bool)
	info, ok5 := vs[4].(map[AgentID]any)
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 {
		return Result{}, ErrFormatViolation.WithMsgf("wrapped environment emitted non-canonical field types")
	}
	return Result{Obs: obs, Reward: rew, Terminated: term, Truncated: trunc, Info: info}, nil
}

func decodeMultiAgent(vs []any) (Result, error) {
	switch len(vs) {
	case 5:
		obs, err := toAgentMap(vs[0], "obs")
		if err != nil {
			return Result{}, err
		}
		rew, err := toRewardMap(vs[1])
		if err != nil {
			return Result{}, err
		}
		term, err := toFlagMap(vs[2], "terminated")
		if err != nil {
			return Result{}, err
		}
		trunc, err := toFlagMap(vs[3], "truncated")
		if err != nil {
			return Result{}, err
		}
		info, err := toAgentMap(vs[4], "info")
		if err != nil {
			return Result{}, err
		}
		return Result{Obs: obs, Reward: rew, Terminated: term, Truncated: trunc, Info: info}, nil
	case 2:
		obs, err := toAgentMap(vs[0], "obs")
		if err != nil {
			return Result{}, err
		}
		info, err := toAgentMap(vs[1], "info")
		if err != nil {
			return Result{}, err
		}
		// initial observation only: zero reward per agent present in obs,
		// episode not ended
		rew := make(map[AgentID]float64, len(obs))
		for agentID := range obs {
			rew[agentID] = 0
		}
		return Result{
			Obs:        obs,
			Reward:     rew,
			Terminated: map[AgentID]bool{AllAgents: false},
			Truncated:  map[AgentID]bool{AllAgents: false},
			Info:       info,
		}, nil
	default:
		return Result{}, arityErr(len(vs))
	}
}

func decodeSingleAgent(vs []any) (Result, error) {
	switch len(vs) {
	case 5:
		rew, err := cast.ToFloat64E(vs[1])
		if err != nil {
			return Result{}, ErrFormatViolation.Wrapf(err, "reward is not numeric")
		}
		term, err := cast.ToBoolE(vs[2])
		if err != nil {
			return Result{}, ErrFormatViolation.Wrapf(err, "terminated is not a bool")
		}
		trunc, err := cast.ToBoolE(vs[3])
		if err != nil {
			return Result{}, ErrFormatViolation.Wrapf(err, "truncated is not a bool")
		}
		return Result{
			Obs:        map[AgentID]any{DummyAgentID: vs[0]},
			Reward:     map[AgentID]float64{DummyAgentID: rew},
			Terminated: map[AgentID]bool{DummyAgentID: term, AllAgents: term},
			Truncated:  map[AgentID]bool{DummyAgentID: trunc, AllAgents: trunc},
			Info:       map[AgentID]any{DummyAgentID: vs[4]},
		}, nil
	case 2:
		return Result{
			Obs:        map[AgentID]any{DummyAgentID: vs[0]},
			Reward:     map[AgentID]float64{DummyAgentID: 0},
			Terminated: map[AgentID]bool{AllAgents: false},
			Truncated:  map[AgentID]bool{AllAgents: false},
			Info:       map[AgentID]any{DummyAgentID: vs[1]},
		}, nil
	default:
		return Result{}, arityErr(len(vs))
	}
}

func arityErr(n int) error {
	return ErrFormatViolation.WithMsgf("environment resolved to %d values", n)
}

func toAgentMap(v any, field string) (map[AgentID]any, error) {
	if m, ok := v.(map[AgentID]any); ok {
		return m, nil
	}
	return nil, ErrFormatViolation.WithMsgf("%v is %T, not a map keyed by agent id", field, v)
}

func toFlagMap(v any, field string) (map[AgentID]bool, error) {
	switch m := v.(type) {
	case map[AgentID]bool:
		return m, nil
	case map[AgentID]any:
		out := make(map[AgentID]bool, len(m))
		for k, fv := range m {
			b, err := cast.ToBoolE(fv)
			if err != nil {
				return nil, ErrFormatViolation.Wrapf(err, "%v[%v] is not a bool", field, k)
			}
			out[k] = b
		}
		return out, nil
	}
	return nil, ErrFormatViolation.WithMsgf("%v is %T, not a bool map keyed by agent id", field, v)
}

func toRewardMap(v any) (map[AgentID]float64, error) {
	switch m := v.(type) {
	case map[AgentID]float64:
		return m, nil
	case map[AgentID]any:
		out := make(map[AgentID]float64, len(m))
		for k, fv := range m {
			f, err := cast.ToFloat64E(fv)
			if err != nil {
				return nil, ErrFormatViolation.Wrapf(err, "reward[%v] is not numeric", k)
			}
			out[k] = f
		}
		return out, nil
	}
	return nil, ErrFormatViolation.WithMsgf("reward is %T, not a numeric map keyed by agent id", v)
}

// One poll cycle's results, each field keyed by exactly the set of env ids
// whose task resolved in that cycle.
//
// Canonical Obs entries are map[AgentID]any; with restarts enabled, the
// entry of a faulted slot is the fault error itself, echoed.
type Batch struct {
	Obs        map[EnvID]any
	Reward     map[EnvID]map[AgentID]float64
	Terminated map[EnvID]map[AgentID]bool
	Truncated  map[EnvID]map[AgentID]bool
	Info       map[EnvID]map[AgentID]any

	// Reserved, always empty.
	Extras map[EnvID]any
}

func newBatch() Batch {
	return Batch{
		Obs:        map[EnvID]any{},
		Reward:     map[EnvID]map[AgentID]float64{},
		Terminated: map[EnvID]map[AgentID]bool{},
		Truncated:  map[EnvID]map[AgentID]bool{},
		Info:       map[EnvID]map[AgentID]any{},
		Extras:     map[EnvID]any{},
	}
}

func (b *Batch) put(envID EnvID, r Result) {
	b.Obs[envID] = r.Obs
	b.Reward[envID] = r.Reward
	b.Terminated[envID] = r.Terminated
	b.Truncated[envID] = r.Truncated
	b.Info[envID] = r.Info
}

// Record a faulted slot as an ended, discardable episode.
func (b *Batch) putFault(envID EnvID, fault error) {
	b.Obs[envID] = fault
	b.Reward[envID] = map[AgentID]float64{}
	b.Terminated[envID] = map[AgentID]bool{AllAgents: true}
	b.Truncated[envID] = map[AgentID]bool{AllAgents: false}
	b.Info[envID] = map[AgentID]any{}
}

// Env ids present in this batch.
func (b *Batch) EnvIDs() []EnvID {
	return hash.MapKeys(b.Obs)
}
