package env

import (
	"errors"
	"testing"
)

func TestSingleAgentStepNormalization(t *testing.T) {
	raw := []any{"obs-v", 1.5, true, false, map[string]any{"k": "v"}}
	res, err := normalizeRaw(raw, false, false)
	if err != nil {
		t.Fatal(err)
	}

	if res.Obs[DummyAgentID] != "obs-v" {
		t.Fatalf("obs: %v", res.Obs)
	}
	if res.Reward[DummyAgentID] != 1.5 {
		t.Fatalf("reward: %v", res.Reward)
	}
	if !res.Terminated[DummyAgentID] || !res.Terminated[AllAgents] {
		t.Fatalf("terminated should mirror the agent flag: %v", res.Terminated)
	}
	if res.Truncated[DummyAgentID] || res.Truncated[AllAgents] {
		t.Fatalf("truncated should mirror the agent flag: %v", res.Truncated)
	}
	if _, ok := res.Info[DummyAgentID]; !ok {
		t.Fatalf("info: %v", res.Info)
	}
}

func TestSingleAgentResetNormalization(t *testing.T) {
	raw := []any{"obs-0", map[string]any{}}
	res, err := normalizeRaw(raw, false, false)
	if err != nil {
		t.Fatal(err)
	}

	if res.Obs[DummyAgentID] != "obs-0" {
		t.Fatalf("obs: %v", res.Obs)
	}
	if len(res.Reward) != 1 || res.Reward[DummyAgentID] != 0 {
		t.Fatalf("reset reward must be zero per obs key: %v", res.Reward)
	}
	if len(res.Terminated) != 1 || res.Terminated[AllAgents] {
		t.Fatalf("reset terminated must be {__all__: false}: %v", res.Terminated)
	}
	if len(res.Truncated) != 1 || res.Truncated[AllAgents] {
		t.Fatalf("reset truncated must be {__all__: false}: %v", res.Truncated)
	}
}

func TestMultiAgentStepPassesThrough(t *testing.T) {
	obs := map[AgentID]any{"a": 1, "b": 2}
	rew := map[AgentID]float64{"a": 0.5, "b": -0.5}
	term := map[AgentID]bool{"a": false, "b": true, AllAgents: false}
	trunc := map[AgentID]bool{AllAgents: false}
	info := map[AgentID]any{"a": nil, "b": nil}

	res, err := normalizeRaw([]any{obs, rew, term, trunc, info}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward["b"] != -0.5 {
		t.Fatalf("reward: %v", res.Reward)
	}
	if res.Terminated[AllAgents] {
		t.Fatalf("terminated: %v", res.Terminated)
	}
	if !res.Terminated["b"] {
		t.Fatalf("terminated: %v", res.Terminated)
	}
}

func TestMultiAgentResetSynthesis(t *testing.T) {
	obs := map[AgentID]any{"a": 1, "b": 2}
	info := map[AgentID]any{}

	res, err := normalizeRaw([]any{obs, info}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Reward) != 2 || res.Reward["a"] != 0 || res.Reward["b"] != 0 {
		t.Fatalf("reset must synthesize zero reward for every obs key: %v", res.Reward)
	}
	if len(res.Terminated) != 1 || res.Terminated[AllAgents] {
		t.Fatalf("terminated: %v", res.Terminated)
	}
	if len(res.Truncated) != 1 || res.Truncated[AllAgents] {
		t.Fatalf("truncated: %v", res.Truncated)
	}
}

func TestMultiAgentRewardCoercion(t *testing.T) {
	obs := map[AgentID]any{"a": 1}
	rew := map[AgentID]any{"a": 3} // int rewards still normalize
	term := map[AgentID]bool{AllAgents: false}
	trunc := map[AgentID]bool{AllAgents: false}
	info := map[AgentID]any{}

	res, err := normalizeRaw([]any{obs, rew, term, trunc, info}, true, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Reward["a"] != 3.0 {
		t.Fatalf("reward: %v", res.Reward)
	}
}

func TestWrongArityIsFormatViolation(t *testing.T) {
	for _, multiagent := range []bool{false, true} {
		_, err := normalizeRaw([]any{1, 2, 3, 4}, multiagent, false)
		if !errors.Is(err, ErrFormatViolation) {
			t.Fatalf("multiagent=%v: expected FormatViolation, got %v", multiagent, err)
		}
		if errors.Is(err, ErrWorkerFault) {
			t.Fatalf("multiagent=%v: FormatViolation must be distinct from worker fault", multiagent)
		}
	}
}

func TestNonSliceResultIsFormatViolation(t *testing.T) {
	_, err := normalizeRaw("just an obs", false, false)
	if !errors.Is(err, ErrFormatViolation) {
		t.Fatalf("expected FormatViolation, got %v", err)
	}
	_, err = normalizeRaw("just an obs", true, true)
	if !errors.Is(err, ErrFormatViolation) {
		t.Fatalf("expected FormatViolation, got %v", err)
	}
}

func TestBatchFaultRecord(t *testing.T) {
	b := newBatch()
	fault := errors.New("worker exploded")
	b.putFault(7, fault)

	if b.Obs[7] != fault {
		t.Fatalf("fault must be echoed as the observation: %v", b.Obs[7])
	}
	if len(b.Reward[7]) != 0 {
		t.Fatalf("reward must be empty: %v", b.Reward[7])
	}
	if len(b.Terminated[7]) != 1 || !b.Terminated[7][AllAgents] {
		t.Fatalf("terminated must be {__all__: true}: %v", b.Terminated[7])
	}
	if len(b.Truncated[7]) != 1 || b.Truncated[7][AllAgents] {
		t.Fatalf("truncated must be {__all__: false}: %v", b.Truncated[7])
	}
	if len(b.Info[7]) != 0 {
		t.Fatalf("info must be empty: %v", b.Info[7])
	}
}
