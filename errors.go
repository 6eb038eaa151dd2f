package spanloom

import "errors"

// Configuration errors: raised at Rule/schema construction, fatal to the
// run that would have used the malformed rule.
var (
	ErrNoStartPredicate    = errors.New("spanloom: rule needs a start name regex or a start opcode")
	ErrNoStopPredicate     = errors.New("spanloom: rule needs a stop name regex or a stop opcode")
	ErrInvalidRegex        = errors.New("spanloom: invalid regular expression")
	ErrUnknownKeyField     = errors.New("spanloom: unknown key field")
	ErrUnknownStopBehavior = errors.New("spanloom: unknown stop behavior")
	ErrEmptyFieldPair      = errors.New("spanloom: additional field pair needs both a start and stop arg key")
)

// Invariant violations: reported to the caller, the run aborts and any
// output produced so far is discarded (the sink is never finalized).
var (
	ErrIndexOutOfRange       = errors.New("spanloom: event index out of range")
	ErrNonMonotonicTimestamp = errors.New("spanloom: event timestamps are not non-decreasing")
)
