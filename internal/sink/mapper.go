package sink

import (
	"encoding/binary"
	"sort"

	"github.com/litetable/litetable-sink/internal/event"
	"github.com/rs/zerolog/log"
)

// DefaultAttrPrefix is the marker applied when no prefix is configured.
const DefaultAttrPrefix = "2hb_"

// Qualifiers of the sink-injected system columns.
const (
	qualTimestamp = "timestamp"
	qualHost      = "host"
	qualPriority  = "priority"
	qualBody      = "event"
)

// Mapper derives a store row from an event based on attribute names.
//
// The attribute whose key equals the marker prefix carries the row key; an
// event without it maps to nothing. Every other attribute routes by its key:
//
//	attr name            prefix="2hb_" sysFam=""   prefix="2hb_" sysFam="sys"   prefix="" sysFam="sys"
//	"any" -> v           dropped                   dropped                      sys:any -> v
//	"2hb_any" -> v       dropped (no family)       sys:any -> v                 sys:2hb_any -> v
//	"2hb_fam:col" -> v   fam:col -> v              fam:col -> v                 2hb_fam:col -> v
//	"fam:col" -> v       dropped                   dropped                      fam:col -> v
//
// When a system family is set the mapper also injects the event's timestamp,
// host, priority (when present) and, optionally, its body under fixed
// qualifiers.
type Mapper struct {
	systemFamily string
	writeBody    bool
	attrPrefix   string
}

// NewMapper builds a mapper. An empty systemFamily disables system columns;
// an empty attrPrefix matches every attribute and makes the empty key the
// row key carrier (callers wanting the conventional marker pass
// DefaultAttrPrefix).
func NewMapper(systemFamily string, writeBody bool, attrPrefix string) *Mapper {
	return &Mapper{
		systemFamily: systemFamily,
		writeBody:    writeBody,
		attrPrefix:   attrPrefix,
	}
}

// Map transforms one event into a row write. It returns nil when the event
// carries no row key attribute; the event is then skipped entirely. A row
// write with zero cells is still returned, suppressing it is the caller's
// decision.
func (m *Mapper) Map(e *event.Event) *RowWrite {
	rowKey, ok := e.Attrs[m.attrPrefix]
	if !ok {
		log.Warn().
			Str("attr", m.attrPrefix).
			Msg("cannot extract row key: attribute is not present in event data")
		return nil
	}

	w := &RowWrite{RowKey: rowKey}

	if m.systemFamily != "" {
		w.Add(m.systemFamily, qualTimestamp, encodeInt64(e.Timestamp))
		w.Add(m.systemFamily, qualHost, []byte(e.Host))
		if e.Priority != event.PriorityUnset {
			w.Add(m.systemFamily, qualPriority, []byte(e.Priority.String()))
		}
		if m.writeBody {
			w.Add(m.systemFamily, qualBody, e.Body)
		}
	}

	// Attribute keys are walked in lexical order so a given event always
	// builds its cells the same way.
	for _, key := range sortedAttrKeys(e.Attrs) {
		m.addAttr(w, key, e.Attrs[key])
	}

	return w
}

// addAttr routes a single attribute into w. The row key attribute was
// consumed above and is excluded here by its class; unmarked attributes are
// silently ignored.
func (m *Mapper) addAttr(w *RowWrite, key string, value []byte) {
	route := routeAttrKey(key, m.attrPrefix)
	switch route.class {
	case attrQualified:
		w.Add(route.family, route.qualifier, value)
	case attrBare:
		if m.systemFamily != "" {
			w.Add(m.systemFamily, route.qualifier, value)
			return
		}
		log.Warn().
			Str("attr", key).
			Msg("cannot determine column family and qualifier for attribute")
	case attrRowKey, attrIgnored:
	}
}

// encodeInt64 renders v as 8 big-endian bytes, the store's fixed-width
// integer encoding.
func encodeInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func sortedAttrKeys(attrs map[string][]byte) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
