// ABOUTME: Resolution of decision chains built by the fluent builder
// ABOUTME: Implements first-match-wins Otherwise with fallback and default layers

package decide

// Source identifies which layer of a chain produced a resolution's payload.
type Source string

const (
	// SourceBranch means a satisfied, completed branch was selected.
	SourceBranch Source = "branch"
	// SourceFallback means no branch matched and the fallback payload was used.
	SourceFallback Source = "fallback"
	// SourceDefault means the caller-supplied default payload was used.
	SourceDefault Source = "default"
	// SourceNone means the resolution produced no payload at all.
	SourceNone Source = "none"
)

// Resolution describes the outcome of one Otherwise call.
type Resolution[T any] struct {
	// ChainID is the identity of the chain that resolved.
	ChainID string `json:"chain_id"`
	// Source is the layer that supplied the payload.
	Source Source `json:"source"`
	// Index is the position of the selected branch, or NoMatch when the
	// payload came from the fallback, the default, or nowhere.
	Index int `json:"index"`
	// Payload is the selected payload. Meaningful only when HasPayload is true.
	Payload T `json:"payload"`
	// HasPayload reports whether any layer supplied a payload.
	HasPayload bool `json:"has_payload"`
	// Branches is the number of records scanned, the fallback included.
	Branches int `json:"branches"`
	// Incomplete is the number of boolean and match records that never
	// received a payload and were therefore skipped.
	Incomplete int `json:"incomplete"`
}

// ResolveHook observes resolutions. Otherwise calls it synchronously after
// the outcome is computed; a panicking hook is reported through diagnostics
// and cannot alter the outcome.
type ResolveHook[T any] func(Resolution[T])

// Otherwise resolves the chain: it scans the branch sequence in declaration
// order and returns the payload of the first branch that is both satisfied
// and completed. If no branch qualifies it returns the fallback payload if
// one was set, then the supplied default if any, and otherwise the zero
// value with ok false.
//
// Resolving does not consume the chain. The branch sequence is left intact,
// so a later Otherwise, with or without more building in between, scans the
// same records again.
func (c *Chain[T]) Otherwise(def ...T) (payload T, ok bool) {
	res := c.scan(def)
	c.last = res
	c.notify(res)
	return res.Payload, res.HasPayload
}

func (c *Chain[T]) scan(def []T) (res Resolution[T]) {
	c.matched = NoMatch
	res = Resolution[T]{
		ChainID:  c.id,
		Source:   SourceNone,
		Index:    NoMatch,
		Branches: len(c.branches),
	}

	// A failure inside the scan must not escape to the caller: the chain
	// degrades to the default layer and reports the failure.
	defer func() {
		if r := recover(); r != nil {
			c.diag.Errorf("otherwise: resolution failed: %v", r)
			c.matched = NoMatch
			res = Resolution[T]{
				ChainID:  c.id,
				Source:   SourceNone,
				Index:    NoMatch,
				Branches: len(c.branches),
			}
			if len(def) > 0 {
				res.Source = SourceDefault
				res.Payload = def[0]
				res.HasPayload = true
			}
		}
	}()

	incomplete := 0
	for _, b := range c.branches {
		if b.Kind != KindFallback && !b.HasPayload {
			incomplete++
		}
	}
	res.Incomplete = incomplete
	if incomplete > 0 {
		c.diag.Warnf("otherwise: %d incomplete branch(es) without a payload ignored", incomplete)
	}

	for i, b := range c.branches {
		if b.Kind == KindFallback {
			continue
		}
		if b.Satisfied && b.HasPayload {
			c.matched = i
			res.Source = SourceBranch
			res.Index = i
			res.Payload = b.Payload
			res.HasPayload = true
			return res
		}
	}

	for _, b := range c.branches {
		if b.Kind == KindFallback && b.HasPayload {
			res.Source = SourceFallback
			res.Payload = b.Payload
			res.HasPayload = true
			return res
		}
	}

	if len(def) > 0 {
		res.Source = SourceDefault
		res.Payload = def[0]
		res.HasPayload = true
	}
	return res
}

func (c *Chain[T]) notify(res Resolution[T]) {
	if c.hook == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			c.diag.Errorf("otherwise: resolve hook panicked: %v", r)
		}
	}()
	c.hook(res)
}
