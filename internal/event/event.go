package event

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event is a single in-flight log record handed to the sink:
//
//	Event{
//	  Body:      []byte("GET /health 200"),
//	  Timestamp: 1716910263000,
//	  Host:      "web-01",
//	  Priority:  PriorityInfo,
//	  Attrs: map[string][]byte{
//	    "2hb_":          []byte("web-01:1716910263000"),
//	    "2hb_http:path": []byte("/health"),
//	  },
//	}
//
// Attrs keys are unique and their order carries no meaning. An Event is
// supplied once per call and is never mutated by the sink.
type Event struct {
	Body      []byte            `json:"body,omitempty"`
	Timestamp int64             `json:"timestamp,omitempty"` // epoch milliseconds
	Host      string            `json:"host,omitempty"`
	Priority  Priority          `json:"priority,omitempty"`
	Attrs     map[string][]byte `json:"attrs,omitempty"`
}

// Decode parses a single JSON-framed event from the wire. Body and attribute
// values ride as base64 strings (standard encoding/json []byte handling).
// A missing timestamp defaults to the receive time.
func Decode(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("malformed event: %w", err)
	}
	if e.Timestamp == 0 {
		e.Timestamp = time.Now().UnixMilli()
	}
	return &e, nil
}
