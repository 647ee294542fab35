package agent

import "errors"

var (
	// ErrUnsupportedCapability means no agent is registered for a
	// capability tag. Fatal for the subtask that needed it, not the query.
	ErrUnsupportedCapability = errors.New("unsupported capability")

	// ErrAgentUnavailable means the agent's tool server could not be
	// reached or refused the request.
	ErrAgentUnavailable = errors.New("agent unavailable")

	// ErrAgentTimeout means the agent did not answer before its deadline
	// or the query was cancelled mid-call.
	ErrAgentTimeout = errors.New("agent timeout")
)
