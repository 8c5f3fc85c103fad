package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Priority is the severity label carried by an event. The zero value means
// the event arrived without one, so a plain Event literal is "no priority".
type Priority int

const (
	PriorityUnset Priority = iota
	PriorityTrace
	PriorityDebug
	PriorityInfo
	PriorityWarn
	PriorityError
	PriorityFatal
)

var priorityNames = map[Priority]string{
	PriorityTrace: "TRACE",
	PriorityDebug: "DEBUG",
	PriorityInfo:  "INFO",
	PriorityWarn:  "WARN",
	PriorityError: "ERROR",
	PriorityFatal: "FATAL",
}

// String returns the canonical uppercase label, or "" for the zero value.
func (p Priority) String() string {
	return priorityNames[p]
}

// ParsePriority maps a label to its Priority. Matching is case-insensitive;
// the empty string parses to PriorityUnset.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityUnset, nil
	}
	upper := strings.ToUpper(s)
	for p, name := range priorityNames {
		if name == upper {
			return p, nil
		}
	}
	return PriorityUnset, fmt.Errorf("unknown priority: %q", s)
}

// MarshalJSON encodes the priority as its label.
func (p Priority) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON decodes a priority label.
func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePriority(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
