package events

// EventType defines the type of event
type EventType string

const (
	// Mapping events
	EventTypeMappingCreated EventType = "mapping.created"
	EventTypeMappingUpdated EventType = "mapping.updated"
)

// SchemaVersion is the current event schema version. Bump it when
// the mapping event payload changes shape.
const SchemaVersion = "1.0"
