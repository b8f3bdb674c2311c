package env

// Index of a sub-environment's fixed pool slot.
type EnvID = int

// Identifier of an agent within a sub-environment.
type AgentID = string

const (
	// Reserved agent key that single-agent results are wrapped under.
	DummyAgentID AgentID = "agent0"

	// Reserved key in terminated/truncated maps marking whole-episode
	// completion, independent of any single agent's flag.
	AllAgents AgentID = "__all__"
)

// Single-agent simulation environment.
//
// Implementations are wrapped by [WrapSingleAgent] into addressable
// workers; they are never called concurrently.
type Env interface {

	// Reset the episode. Seed and options are passed through untouched,
	// both may be nil.
	Reset(seed *int64, options map[string]any) (obs any, info any, err error)

	// Advance one step.
	Step(action any) (obs any, reward float64, terminated bool, truncated bool, info any, err error)

	ObservationSpace() any

	ActionSpace() any

	Close() error
}

// Multi-agent simulation environment, all per-step data keyed by AgentID.
//
// Step's terminated/truncated maps must include the [AllAgents] key marking
// whole-episode completion.
type MultiAgentEnv interface {

	// Reset the episode, returns initial observations and infos per agent.
	Reset(seed *int64, options map[string]any) (obs map[AgentID]any, info map[AgentID]any, err error)

	// Advance one step for the given agents.
	Step(actions map[AgentID]any) (obs map[AgentID]any, reward map[AgentID]float64,
		terminated map[AgentID]bool, truncated map[AgentID]bool, info map[AgentID]any, err error)

	ObservationSpace() any

	ActionSpace() any

	AgentIDs() []AgentID

	Close() error
}
