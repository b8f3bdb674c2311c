package env

import (
	"testing"
)

type echoEnv struct {
	lastAction any
	closed     bool
}

func (e *echoEnv) Reset(seed *int64, options map[string]any) (any, any, error) {
	return "initial", map[string]any{}, nil
}

func (e *echoEnv) Step(action any) (any, float64, bool, bool, any, error) {
	e.lastAction = action
	return action, 2.0, false, true, map[string]any{}, nil
}

func (e *echoEnv) ObservationSpace() any { return "obs-space" }
func (e *echoEnv) ActionSpace() any      { return "act-space" }
func (e *echoEnv) Close() error          { e.closed = true; return nil }

func TestSingleAgentProxyEmitsCanonical(t *testing.T) {
	e := &echoEnv{}
	w := WrapSingleAgent(0, e)
	defer w.Terminate()

	v, err := w.Submit(ResetPayload{}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	res, err := normalizeRaw(v, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Obs[DummyAgentID] != "initial" {
		t.Fatalf("obs: %v", res.Obs)
	}
	if res.Terminated[AllAgents] {
		t.Fatalf("terminated: %v", res.Terminated)
	}

	// keyed step action is unwrapped to the bare action
	v, err = w.Submit(StepPayload{Action: map[AgentID]any{DummyAgentID: "go-left"}}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if e.lastAction != "go-left" {
		t.Fatalf("proxy should unwrap keyed action, env saw %v", e.lastAction)
	}
	res, err = normalizeRaw(v, false, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward[DummyAgentID] != 2.0 {
		t.Fatalf("reward: %v", res.Reward)
	}
	if !res.Truncated[DummyAgentID] || !res.Truncated[AllAgents] {
		t.Fatalf("truncated should mirror the agent flag: %v", res.Truncated)
	}
}

func TestSingleAgentProxyQueries(t *testing.T) {
	e := &echoEnv{}
	w := WrapSingleAgent(0, e)
	defer w.Terminate()

	v, err := w.Submit(QueryPayload{What: QuerySpaces}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	sp, ok := v.(Spaces)
	if !ok || sp.Observation != "obs-space" || sp.Action != "act-space" {
		t.Fatalf("spaces: %v", v)
	}

	v, err = w.Submit(QueryPayload{What: QueryAgentIDs}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	ids, ok := v.([]AgentID)
	if !ok || len(ids) != 1 || ids[0] != DummyAgentID {
		t.Fatalf("agent ids: %v", v)
	}

	if _, err := w.Submit(ClosePayload{}).Resolve(); err != nil {
		t.Fatal(err)
	}
	if !e.closed {
		t.Fatal("close should reach the wrapped env")
	}
}

type twoAgentEnv struct{}

func (e *twoAgentEnv) Reset(seed *int64, options map[string]any) (map[AgentID]any, map[AgentID]any, error) {
	return map[AgentID]any{"a": 0, "b": 0}, map[AgentID]any{}, nil
}

func (e *twoAgentEnv) Step(actions map[AgentID]any) (map[AgentID]any, map[AgentID]float64,
	map[AgentID]bool, map[AgentID]bool, map[AgentID]any, error) {
	obs := map[AgentID]any{}
	rew := map[AgentID]float64{}
	for agentID := range actions {
		obs[agentID] = 1
		rew[agentID] = 1
	}
	return obs, rew, map[AgentID]bool{AllAgents: false}, map[AgentID]bool{AllAgents: false}, map[AgentID]any{}, nil
}

func (e *twoAgentEnv) ObservationSpace() any { return "ma-obs" }
func (e *twoAgentEnv) ActionSpace() any      { return "ma-act" }
func (e *twoAgentEnv) AgentIDs() []AgentID   { return []AgentID{"a", "b"} }
func (e *twoAgentEnv) Close() error          { return nil }

func TestMultiAgentProxyResetSynthesis(t *testing.T) {
	w := WrapMultiAgent(0, &twoAgentEnv{})
	defer w.Terminate()

	v, err := w.Submit(ResetPayload{}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	res, err := normalizeRaw(v, true, true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward["a"] != 0 || res.Reward["b"] != 0 {
		t.Fatalf("reset reward: %v", res.Reward)
	}
	if len(res.Terminated) != 1 || res.Terminated[AllAgents] {
		t.Fatalf("reset terminated: %v", res.Terminated)
	}

	v, err = w.Submit(QueryPayload{What: QueryAgentIDs}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	ids, ok := v.([]AgentID)
	if !ok || len(ids) != 2 {
		t.Fatalf("agent ids: %v", v)
	}
}
