// ABOUTME: Fluent builder for ordered conditional decision chains
// ABOUTME: Implements When/Then, Match/Case/Render, Fallback, Reset, and Debug

package decide

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harper/decide-standalone/internal/util"
)

// debugValueWidth caps how much of a payload or case value a Debug dump
// prints for one branch.
const debugValueWidth = 120

// Chain accumulates conditional branches through a fluent call sequence and
// resolves them with Otherwise. Every builder method returns the same
// handle, so calls can be chained or issued one at a time; the two styles
// build identical state.
//
// A Chain is a single-owner value: one goroutine builds, resolves, and
// inspects it. Nothing in the implementation locks.
type Chain[T any] struct {
	id       string
	diag     Diagnostics
	hook     ResolveHook[T]
	defCmp   Comparator
	branches []Branch[T]
	match    matchContext
	matched  int
	last     Resolution[T]
}

// matchContext carries the subject and comparator between a Match call and
// the Case calls that consume them.
type matchContext struct {
	open    bool
	subject any
	cmp     Comparator
}

// New returns an empty chain with a fresh identity. The zero configuration
// logs diagnostics to stderr, compares cases with DefaultComparator, and
// notifies no resolve hook; the With methods adjust each of those.
func New[T any]() *Chain[T] {
	c := &Chain[T]{
		id:      newChainID(),
		diag:    NewLogDiagnostics(nil),
		defCmp:  DefaultComparator,
		matched: NoMatch,
	}
	c.last = Resolution[T]{ChainID: c.id, Source: SourceNone, Index: NoMatch}
	return c
}

func newChainID() string {
	timestamp := time.Now().Format("20060102_150405")
	shortUUID := uuid.New().String()[:8]
	return fmt.Sprintf("chain_%s_%s", timestamp, shortUUID)
}

// ID returns the chain's identity. The identity is fixed at New and shows up
// in debug dumps and resolutions so interleaved output from several chains
// can be told apart.
func (c *Chain[T]) ID() string {
	return c.id
}

// WithDiagnostics replaces the chain's diagnostics sink. A nil sink silences
// the chain.
func (c *Chain[T]) WithDiagnostics(d Diagnostics) *Chain[T] {
	if d == nil {
		d = NopDiagnostics()
	}
	c.diag = d
	return c
}

// WithDefaultComparator replaces the comparator Match uses when no explicit
// comparator is supplied. A nil comparator is reported and ignored.
func (c *Chain[T]) WithDefaultComparator(cmp Comparator) *Chain[T] {
	if cmp == nil {
		c.diag.Warnf("configure: nil default comparator ignored")
		return c
	}
	c.defCmp = cmp
	return c
}

// WithResolveHook sets the hook Otherwise notifies after each resolution.
// A nil hook clears it.
func (c *Chain[T]) WithResolveHook(h ResolveHook[T]) *Chain[T] {
	c.hook = h
	return c
}

// When appends a boolean branch. A bool condition is taken as is; anything
// else is coerced with Truthy and the coercion is reported as a warning. The
// branch's outcome is fixed here: later mutation of whatever produced cond
// cannot change it.
func (c *Chain[T]) When(cond any) *Chain[T] {
	satisfied, ok := c.coerce(cond)
	if !ok {
		return c
	}
	c.branches = append(c.branches, Branch[T]{
		Kind:      KindBoolean,
		Satisfied: satisfied,
		Sequence:  nextSequence(),
	})
	return c
}

// coerce turns a condition into a boolean. A panic while coercing is
// reported as an error diagnostic and no branch is appended for the call.
func (c *Chain[T]) coerce(cond any) (satisfied, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.diag.Errorf("when: condition coercion failed: %v", r)
			satisfied, ok = false, false
		}
	}()
	if b, isBool := cond.(bool); isBool {
		return b, true
	}
	truthy := Truthy(cond)
	c.diag.Warnf("when: non-boolean condition %T coerced to %t", cond, truthy)
	return truthy, true
}

// Then attaches a payload to the boolean branch appended by the most recent
// When. Calling it twice on the same branch overwrites the payload; calling
// it with no branch, or after a non-boolean branch, is reported and ignored.
func (c *Chain[T]) Then(payload T) *Chain[T] {
	return c.attach(KindBoolean, "then", "When", payload)
}

// Render attaches a payload to the match branch appended by the most recent
// Case, with the same overwrite and misuse rules as Then.
func (c *Chain[T]) Render(payload T) *Chain[T] {
	return c.attach(KindMatch, "render", "Case", payload)
}

func (c *Chain[T]) attach(kind Kind, op, creator string, payload T) *Chain[T] {
	if len(c.branches) == 0 {
		c.diag.Warnf("%s: no branch to attach a payload to; call %s first", op, creator)
		return c
	}
	last := &c.branches[len(c.branches)-1]
	if last.Kind != kind {
		c.diag.Warnf("%s: last branch is %s, not %s; payload ignored", op, last.Kind, kind)
		return c
	}
	if last.HasPayload {
		c.diag.Warnf("%s: branch already has a payload; last call wins", op)
	}
	last.Payload = payload
	last.HasPayload = true
	return c
}

// Match opens a match context: subject is held, along with the comparator,
// for the Case calls that follow. Opening a new context replaces any context
// already open, which is reported as a warning. Passing a nil comparator is
// reported and the chain's default comparator is used instead.
func (c *Chain[T]) Match(subject any, cmp ...Comparator) *Chain[T] {
	if c.match.open {
		c.diag.Warnf("match: replacing the match context already open for subject %s",
			util.FormatValue(c.match.subject, debugValueWidth))
	}
	chosen := c.defCmp
	if len(cmp) > 0 {
		if cmp[0] == nil {
			c.diag.Warnf("match: nil comparator; using the default comparator")
		} else {
			chosen = cmp[0]
		}
	}
	c.match = matchContext{open: true, subject: subject, cmp: chosen}
	return c
}

// Case appends a match branch whose outcome is the comparator applied to the
// open match context's subject and value, evaluated now. With no context
// open the call is reported and ignored. A comparator panic marks the branch
// not satisfied and is reported as an error diagnostic; the record is still
// appended so positions stay stable.
func (c *Chain[T]) Case(value any) *Chain[T] {
	if !c.match.open {
		c.diag.Warnf("case: no open match context; call Match first")
		return c
	}
	c.branches = append(c.branches, Branch[T]{
		Kind:      KindMatch,
		Satisfied: c.compare(value),
		CaseValue: value,
		Sequence:  nextSequence(),
	})
	return c
}

func (c *Chain[T]) compare(value any) (satisfied bool) {
	defer func() {
		if r := recover(); r != nil {
			c.diag.Errorf("case: comparator panicked: %v", r)
			satisfied = false
		}
	}()
	return c.match.cmp(c.match.subject, value)
}

// Fallback sets the chain-level fallback payload. The first call appends a
// fallback record at the current position; later calls overwrite that
// record's payload in place, keeping a single fallback per chain, and are
// reported as warnings.
func (c *Chain[T]) Fallback(payload T) *Chain[T] {
	for i := range c.branches {
		if c.branches[i].Kind == KindFallback {
			c.diag.Warnf("fallback: fallback already set; last call wins")
			c.branches[i].Payload = payload
			c.branches[i].HasPayload = true
			return c
		}
	}
	c.branches = append(c.branches, Branch[T]{
		Kind:       KindFallback,
		Payload:    payload,
		HasPayload: true,
		Sequence:   nextSequence(),
	})
	return c
}

// Reset discards every branch, the fallback, any open match context, and the
// last resolution, returning the chain to the state a fresh New would have.
// The identity and configuration survive. Reset emits no diagnostics.
func (c *Chain[T]) Reset() *Chain[T] {
	c.branches = nil
	c.match = matchContext{}
	c.matched = NoMatch
	c.last = Resolution[T]{ChainID: c.id, Source: SourceNone, Index: NoMatch}
	return c
}

// Debug dumps the chain's current state through the diagnostics sink as INFO
// entries: one header line, one line per branch, and one line for the match
// context. It never changes state.
func (c *Chain[T]) Debug() *Chain[T] {
	c.diag.Infof("chain %s: %d branch(es), matched index %d", c.id, len(c.branches), c.matched)
	for i, b := range c.branches {
		payload := "<unset>"
		if b.HasPayload {
			payload = util.FormatValue(b.Payload, debugValueWidth)
		}
		switch b.Kind {
		case KindMatch:
			c.diag.Infof("  [%d] %s satisfied=%t case=%s payload=%s seq=%d",
				i, b.Kind, b.Satisfied, util.FormatValue(b.CaseValue, debugValueWidth), payload, b.Sequence)
		case KindFallback:
			c.diag.Infof("  [%d] %s payload=%s seq=%d", i, b.Kind, payload, b.Sequence)
		default:
			c.diag.Infof("  [%d] %s satisfied=%t payload=%s seq=%d",
				i, b.Kind, b.Satisfied, payload, b.Sequence)
		}
	}
	if c.match.open {
		c.diag.Infof("  match context open, subject %s",
			util.FormatValue(c.match.subject, debugValueWidth))
	} else {
		c.diag.Infof("  match context closed")
	}
	return c
}

// MatchedIndex returns the position of the branch selected by the most
// recent Otherwise, or NoMatch if that resolution selected none. Fallback
// and default payloads do not count as a match.
func (c *Chain[T]) MatchedIndex() int {
	return c.matched
}

// HasMatched reports whether the most recent Otherwise selected a branch.
func (c *Chain[T]) HasMatched() bool {
	return c.matched != NoMatch
}

// Conditions returns a snapshot of the branch sequence in declaration order.
// Mutating the snapshot has no effect on later resolutions.
func (c *Chain[T]) Conditions() []Branch[T] {
	snapshot := make([]Branch[T], len(c.branches))
	copy(snapshot, c.branches)
	return snapshot
}

// LastResolution returns the outcome of the most recent Otherwise, or a
// SourceNone resolution if the chain has never been resolved or was reset
// since.
func (c *Chain[T]) LastResolution() Resolution[T] {
	return c.last
}
