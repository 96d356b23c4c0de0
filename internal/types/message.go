package types

import "encoding/json"

// Envelope is the application-level message shape relayed between a
// bound pair. The broker never inspects it; the type exists for
// endpoints and tests that do.
type Envelope struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}
