// Package spanloom implements a chronological event-correlation engine for
// a performance-trace analysis host. It scans an ordered stream of generic
// trace events and synthesizes span events by pairing "start" and "stop"
// events according to a user-configurable set of rules.
//
// The engine is a library, not a process: it has no CLI, parses no trace
// files, and persists nothing across runs. A host feeds it a finalized,
// chronologically sorted sequence of Events and a list of Rules, and reads
// back a finalized sequence of Span events.
package spanloom

// Event is an immutable record describing one trace event.
//
// ArgKeys and ArgValues form an ordered mapping from argument name to
// stringified value; ArgValue looks up by first occurrence, matching the
// host's own argument-table semantics.
type Event struct {
	Name      string
	Type      string
	Category  string
	Process   string
	Thread    string
	Start     int64 // nanoseconds since trace origin
	End       int64 // nanoseconds; equals Start for instantaneous events
	ArgSetID  int64
	ArgKeys   []string
	ArgValues []string
}

// Duration returns End - Start.
func (e Event) Duration() int64 {
	return e.End - e.Start
}

// ArgValue returns the value for the first occurrence of key in ArgKeys,
// or the empty string if key is not present.
func (e Event) ArgValue(key string) string {
	for i, k := range e.ArgKeys {
		if k == key {
			return e.ArgValues[i]
		}
	}
	return ""
}

// opcodeArgKey is the well-known argument name the default rule consults
// when an opcode predicate is configured.
const opcodeArgKey = "debug.OPCODE"

// Opcode is a convenience accessor for ArgValue(opcodeArgKey).
func (e Event) Opcode() string {
	return e.ArgValue(opcodeArgKey)
}
