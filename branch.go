// ABOUTME: Branch record model for decision chains
// ABOUTME: Defines branch kinds, the no-match sentinel, and sequence allocation

package decide

import "sync/atomic"

// Kind identifies which builder operation created a branch record.
type Kind string

const (
	// KindBoolean marks a branch created by When and completed by Then.
	KindBoolean Kind = "boolean"
	// KindMatch marks a branch created by Case and completed by Render.
	KindMatch Kind = "match"
	// KindFallback marks the chain-level fallback payload.
	KindFallback Kind = "fallback"
)

// NoMatch is the MatchedIndex value of a chain whose last resolution
// selected no branch.
const NoMatch = -1

// Branch is one record in a chain's ordered branch sequence. Satisfied is
// fixed at creation time: When coerces its condition immediately and Case
// runs its comparator immediately, so later changes to the inputs never
// affect an existing record.
//
// HasPayload distinguishes a branch that was never completed by Then or
// Render from one whose payload is a legitimate zero value.
type Branch[T any] struct {
	Kind       Kind   `json:"kind"`
	Satisfied  bool   `json:"satisfied"`
	CaseValue  any    `json:"case_value,omitempty"`
	Payload    T      `json:"payload"`
	HasPayload bool   `json:"has_payload"`
	Sequence   uint64 `json:"sequence"`
}

// sequence hands out process-wide creation order numbers so records from
// different chains can be interleaved in a trace.
var sequence atomic.Uint64

func nextSequence() uint64 {
	return sequence.Add(1)
}
