package types

// Event represents a typed event emitted while building or applying a state
// transition.
type Event struct {
	Type       string            `json:"type"`
	Attributes map[string]string `json:"attributes"`
}
