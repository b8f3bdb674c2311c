package env

// Task payloads understood by pool workers. The submission primitive itself
// treats payloads as opaque; only the worker-side handlers interpret them.

const (
	QuerySpaces   = "spaces"
	QueryAgentIDs = "agent_ids"
)

// Reset task payload. Seed and options pass through to the environment.
type ResetPayload struct {
	Seed    *int64
	Options map[string]any
}

// Step task payload. Action is either a bare action (plain single-agent
// worker) or a map keyed by AgentID.
type StepPayload struct {
	Action any
}

// Introspection task payload, resolves to [Spaces] or []AgentID.
type QueryPayload struct {
	What string
}

// Graceful close task payload.
type ClosePayload struct{}

// Resolved value of a QuerySpaces task.
type Spaces struct {
	Observation any
	Action      any
}
