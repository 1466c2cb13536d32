package broadcast

import "encoding/json"

// Event types published on the listing stream.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event is one server-sent event on the listing change stream. Payload is
// the listing for created/updated events; deleted events carry only the id.
type Event struct {
	Type    string      `json:"type"`
	ID      int         `json:"id,omitempty"`
	Payload interface{} `json:"location,omitempty"`
}

// Encode renders the event as its SSE data line content.
func (e Event) Encode() string {
	b, err := json.Marshal(e)
	if err != nil {
		return `{"type":"error"}`
	}
	return string(b)
}
