// ABOUTME: Declarative JSON decision scripts replayed onto chains
// ABOUTME: Parses, validates, and applies builder operations step by step

package script

import (
	"encoding/json"
	"fmt"
	"os"

	decide "github.com/harper/decide-standalone"
)

// Op names accepted in script steps and by the MCP apply_operation tool.
const (
	OpWhen     = "when"
	OpThen     = "then"
	OpMatch    = "match"
	OpCase     = "case"
	OpRender   = "render"
	OpFallback = "fallback"
	OpReset    = "reset"
	OpDebug    = "debug"
)

// Comparator names scripts may reference.
const (
	ComparatorDefault = "default"
	ComparatorFold    = "fold"
)

// Step is one builder operation in wire form. Value and Payload stay raw
// until the step runs, so an explicit JSON null remains distinguishable from
// an absent field.
type Step struct {
	Op         string          `json:"op"`
	Value      json.RawMessage `json:"value,omitempty"`
	Comparator string          `json:"comparator,omitempty"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Script is a declarative builder call sequence with an optional default
// payload for the final resolution.
type Script struct {
	Name    string          `json:"name,omitempty"`
	Steps   []Step          `json:"steps"`
	Default json.RawMessage `json:"default,omitempty"`
}

// Parse decodes and validates a script. Every step is checked up front so a
// bad script fails before any of it runs.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &s, nil
}

// Load reads and parses a script file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script %s: %w", path, err)
	}
	return Parse(data)
}

func (s Step) validate() error {
	switch s.Op {
	case OpWhen, OpMatch, OpCase:
		if s.Value == nil {
			return fmt.Errorf("%s requires a value", s.Op)
		}
		if s.Payload != nil {
			return fmt.Errorf("%s takes no payload", s.Op)
		}
	case OpThen, OpRender, OpFallback:
		if s.Payload == nil {
			return fmt.Errorf("%s requires a payload", s.Op)
		}
		if s.Value != nil {
			return fmt.Errorf("%s takes no value", s.Op)
		}
	case OpReset, OpDebug:
		if s.Value != nil || s.Payload != nil {
			return fmt.Errorf("%s takes no value or payload", s.Op)
		}
	default:
		return fmt.Errorf("unknown op %q", s.Op)
	}
	if s.Comparator != "" {
		if s.Op != OpMatch {
			return fmt.Errorf("comparator only applies to match, not %s", s.Op)
		}
		if _, ok := ComparatorByName(s.Comparator); !ok {
			return fmt.Errorf("unknown comparator %q", s.Comparator)
		}
	}
	return nil
}

// Operation is one decoded builder call, ready to apply to a chain. The Has
// flags carry field presence through layers that have already decoded JSON.
type Operation struct {
	Op         string
	Value      any
	HasValue   bool
	Comparator string
	Payload    any
	HasPayload bool
}

func (s Step) operation() (Operation, error) {
	op := Operation{Op: s.Op, Comparator: s.Comparator}
	if s.Value != nil {
		var v any
		if err := json.Unmarshal(s.Value, &v); err != nil {
			return Operation{}, fmt.Errorf("decode value: %w", err)
		}
		op.Value, op.HasValue = v, true
	}
	if s.Payload != nil {
		var p any
		if err := json.Unmarshal(s.Payload, &p); err != nil {
			return Operation{}, fmt.Errorf("decode payload: %w", err)
		}
		op.Payload, op.HasPayload = p, true
	}
	return op, nil
}

// Apply runs one builder operation against a chain. Invalid combinations are
// rejected before the chain is touched.
func Apply(c *decide.Chain[any], op Operation) error {
	if op.Comparator != "" && op.Op != OpMatch {
		return fmt.Errorf("comparator only applies to match, not %s", op.Op)
	}
	switch op.Op {
	case OpWhen:
		if !op.HasValue {
			return fmt.Errorf("when requires a value")
		}
		c.When(op.Value)
	case OpThen:
		if !op.HasPayload {
			return fmt.Errorf("then requires a payload")
		}
		c.Then(op.Payload)
	case OpMatch:
		if !op.HasValue {
			return fmt.Errorf("match requires a value")
		}
		cmp, ok := ComparatorByName(op.Comparator)
		if !ok {
			return fmt.Errorf("unknown comparator %q", op.Comparator)
		}
		c.Match(op.Value, cmp)
	case OpCase:
		if !op.HasValue {
			return fmt.Errorf("case requires a value")
		}
		c.Case(op.Value)
	case OpRender:
		if !op.HasPayload {
			return fmt.Errorf("render requires a payload")
		}
		c.Render(op.Payload)
	case OpFallback:
		if !op.HasPayload {
			return fmt.Errorf("fallback requires a payload")
		}
		c.Fallback(op.Payload)
	case OpReset:
		c.Reset()
	case OpDebug:
		c.Debug()
	default:
		return fmt.Errorf("unknown op %q", op.Op)
	}
	return nil
}

// ComparatorByName resolves a comparator a script or tool call names. The
// empty name means the default comparator.
func ComparatorByName(name string) (decide.Comparator, bool) {
	switch name {
	case "", ComparatorDefault:
		return decide.DefaultComparator, true
	case ComparatorFold:
		return decide.FoldComparator, true
	}
	return nil, false
}

// Run replays the script onto the chain and resolves it, passing the
// script's default payload to the resolution when one is set.
func (s *Script) Run(c *decide.Chain[any]) (decide.Resolution[any], error) {
	for i, step := range s.Steps {
		op, err := step.operation()
		if err != nil {
			return decide.Resolution[any]{}, fmt.Errorf("step %d: %w", i, err)
		}
		if err := Apply(c, op); err != nil {
			return decide.Resolution[any]{}, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if s.Default != nil {
		var def any
		if err := json.Unmarshal(s.Default, &def); err != nil {
			return decide.Resolution[any]{}, fmt.Errorf("decode default: %w", err)
		}
		c.Otherwise(def)
	} else {
		c.Otherwise()
	}
	return c.LastResolution(), nil
}
