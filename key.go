package spanloom

import (
	"strconv"
	"strings"
)

// KeyField selects which Event attributes participate in an EventKey.
type KeyField int

// Bitset values for DefaultRule's key field selection.
const (
	KeyFieldEventName KeyField = 1 << iota
	KeyFieldOpCode
	KeyFieldProcess
	KeyFieldThread
)

// EventKey is a composite, nullable-field identifier grouping events into a
// correlation bucket. Two keys are equal iff all five corresponding fields
// are equal; a nil field equals another nil field but not an empty string.
//
// EventKey carries no reference back to the source event - it exists only
// to group pending starts in a RuleContext.
type EventKey struct {
	EventName  *string
	OpCode     *string
	Process    *string
	Thread     *string
	Additional []*string
}

// hashKey returns a string digest suitable for use as a Go map key. Two
// EventKey values produce the same digest iff they are equal per the field
// comparison described above. Each field is length-prefixed so no content
// of one field can be mistaken for a field boundary or another field's
// content; a nil field is prefixed with "-1:" rather than a length.
func (k EventKey) hashKey() string {
	var b strings.Builder
	writeField(&b, k.EventName)
	writeField(&b, k.OpCode)
	writeField(&b, k.Process)
	writeField(&b, k.Thread)
	b.WriteString(strconv.Itoa(len(k.Additional)))
	b.WriteByte(':')
	for _, f := range k.Additional {
		writeField(&b, f)
	}
	return b.String()
}

func writeField(b *strings.Builder, f *string) {
	if f == nil {
		b.WriteString("-1:")
		return
	}
	b.WriteString(strconv.Itoa(len(*f)))
	b.WriteByte(':')
	b.WriteString(*f)
}

// Equal reports whether k and other denote the same correlation bucket.
func (k EventKey) Equal(other EventKey) bool {
	return k.hashKey() == other.hashKey()
}

func strPtr(s string) *string { return &s }
