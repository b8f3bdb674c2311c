package env

import (
	"github.com/Daraan/remenv/remote"
	"github.com/Daraan/remenv/util/errs"
	"github.com/Daraan/remenv/util/hash"
)

// Wrap a plain single-agent environment into an addressable worker.
//
// The worker performs the single-agent reshaping itself, so every task it
// serves resolves to an already-canonical 5-element slice and the pool's
// decoding path is a pure pass-through.
func WrapSingleAgent(idx int, e Env) *remote.Actor {
	return remote.NewActor(idx, func(payload any) (any, error) {
		switch p := payload.(type) {
		case ResetPayload:
			obs, info, err := e.Reset(p.Seed, p.Options)
			if err != nil {
				return nil, err
			}
			return []any{
				map[AgentID]any{DummyAgentID: obs},
				map[AgentID]float64{DummyAgentID: 0},
				map[AgentID]bool{AllAgents: false},
				map[AgentID]bool{AllAgents: false},
				map[AgentID]any{DummyAgentID: info},
			}, nil

		case StepPayload:
			action := p.Action
			// actions arrive keyed by agent id, unwrap to the bare action
			if m, ok := action.(map[AgentID]any); ok {
				action = m[DummyAgentID]
			}
			obs, rew, term, trunc, info, err := e.Step(action)
			if err != nil {
				return nil, err
			}
			return []any{
				map[AgentID]any{DummyAgentID: obs},
				map[AgentID]float64{DummyAgentID: rew},
				map[AgentID]bool{DummyAgentID: term, AllAgents: term},
				map[AgentID]bool{DummyAgentID: trunc, AllAgents: trunc},
				map[AgentID]any{DummyAgentID: info},
			}, nil

		case QueryPayload:
			switch p.What {
			case QuerySpaces:
				return Spaces{Observation: e.ObservationSpace(), Action: e.ActionSpace()}, nil
			case QueryAgentIDs:
				return []AgentID{DummyAgentID}, nil
			}
			return nil, errs.NewErrf("unknown query '%v'", p.What)

		case ClosePayload:
			return nil, e.Close()
		}
		return nil, errs.NewErrf("unknown payload type %T", payload)
	})
}

// Wrap a plain multi-agent environment into an addressable worker.
//
// Reset outcomes are synthesized into the canonical shape worker-side:
// zero reward for every agent present in obs, episode-level flags false.
// Agent ids observed in resets are accumulated on top of the env's own
// declared set.
func WrapMultiAgent(idx int, e MultiAgentEnv) *remote.Actor {
	agentIDs := hash.NewSet(e.AgentIDs()...)
	return remote.NewActor(idx, func(payload any) (any, error) {
		switch p := payload.(type) {
		case ResetPayload:
			obs, info, err := e.Reset(p.Seed, p.Options)
			if err != nil {
				return nil, err
			}
			rew := make(map[AgentID]float64, len(obs))
			for agentID := range obs {
				agentIDs.Add(agentID)
				rew[agentID] = 0
			}
			return []any{
				obs,
				rew,
				map[AgentID]bool{AllAgents: false},
				map[AgentID]bool{AllAgents: false},
				info,
			}, nil

		case StepPayload:
			actions, ok := p.Action.(map[AgentID]any)
			if !ok {
				return nil, errs.NewErrf("multi-agent step action is %T, not keyed by agent id", p.Action)
			}
			obs, rew, term, trunc, info, err := e.Step(actions)
			if err != nil {
				return nil, err
			}
			return []any{obs, rew, term, trunc, info}, nil

		case QueryPayload:
			switch p.What {
			case QuerySpaces:
				return Spaces{Observation: e.ObservationSpace(), Action: e.ActionSpace()}, nil
			case QueryAgentIDs:
				return agentIDs.CopyKeys(), nil
			}
			return nil, errs.NewErrf("unknown query '%v'", p.What)

		case ClosePayload:
			return nil, e.Close()
		}
		return nil, errs.NewErrf("unknown payload type %T", payload)
	})
}
