// ABOUTME: Tests for declarative decision scripts
// ABOUTME: Verifies parsing, validation, and replay onto chains

package script

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	decide "github.com/harper/decide-standalone"
)

func quietChain() *decide.Chain[any] {
	return decide.New[any]().WithDiagnostics(decide.NopDiagnostics())
}

func TestParse_ValidScript(t *testing.T) {
	data := []byte(`{
		"name": "routing",
		"steps": [
			{"op": "when", "value": false},
			{"op": "then", "payload": "login"},
			{"op": "match", "value": "editor", "comparator": "fold"},
			{"op": "case", "value": "ADMIN"},
			{"op": "render", "payload": "admin-panel"},
			{"op": "case", "value": "EDITOR"},
			{"op": "render", "payload": "editor-panel"},
			{"op": "fallback", "payload": "guest-panel"},
			{"op": "debug"}
		],
		"default": "empty"
	}`)

	s, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if s.Name != "routing" {
		t.Errorf("Name = %q, want %q", s.Name, "routing")
	}
	if len(s.Steps) != 9 {
		t.Errorf("Steps len = %d, want 9", len(s.Steps))
	}
	if s.Default == nil {
		t.Error("Default = nil, want raw value")
	}
	if s.Steps[2].Comparator != "fold" {
		t.Errorf("Steps[2].Comparator = %q, want fold", s.Steps[2].Comparator)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "malformed json",
			data:    `{"steps": [`,
			wantErr: "parse script",
		},
		{
			name:    "unknown op",
			data:    `{"steps": [{"op": "unless", "value": true}]}`,
			wantErr: `unknown op "unless"`,
		},
		{
			name:    "when without value",
			data:    `{"steps": [{"op": "when"}]}`,
			wantErr: "when requires a value",
		},
		{
			name:    "then without payload",
			data:    `{"steps": [{"op": "then"}]}`,
			wantErr: "then requires a payload",
		},
		{
			name:    "when with payload",
			data:    `{"steps": [{"op": "when", "value": true, "payload": 1}]}`,
			wantErr: "when takes no payload",
		},
		{
			name:    "render with value",
			data:    `{"steps": [{"op": "render", "payload": 1, "value": 2}]}`,
			wantErr: "render takes no value",
		},
		{
			name:    "reset with payload",
			data:    `{"steps": [{"op": "reset", "payload": 1}]}`,
			wantErr: "reset takes no value or payload",
		},
		{
			name:    "comparator on when",
			data:    `{"steps": [{"op": "when", "value": true, "comparator": "fold"}]}`,
			wantErr: "comparator only applies to match",
		},
		{
			name:    "unknown comparator",
			data:    `{"steps": [{"op": "match", "value": 1, "comparator": "fuzzy"}]}`,
			wantErr: `unknown comparator "fuzzy"`,
		},
		{
			name:    "error names the step",
			data:    `{"steps": [{"op": "when", "value": true}, {"op": "case"}]}`,
			wantErr: "step 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatal("Parse() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.json")
	content := `{"steps": [{"op": "when", "value": true}, {"op": "then", "payload": 7}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(s.Steps) != 2 {
		t.Errorf("Steps len = %d, want 2", len(s.Steps))
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatal("Load() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "read script") {
		t.Errorf("error = %v, want read script wrap", err)
	}
}

func TestRun_FirstMatchWins(t *testing.T) {
	s, err := Parse([]byte(`{"steps": [
		{"op": "when", "value": false},
		{"op": "then", "payload": "A"},
		{"op": "when", "value": true},
		{"op": "then", "payload": "B"},
		{"op": "when", "value": true},
		{"op": "then", "payload": "C"}
	]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	res, err := s.Run(quietChain())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.HasPayload || res.Payload != "B" {
		t.Errorf("Payload = %v, %t; want B, true", res.Payload, res.HasPayload)
	}
	if res.Index != 1 {
		t.Errorf("Index = %d, want 1", res.Index)
	}
	if res.Source != decide.SourceBranch {
		t.Errorf("Source = %q, want %q", res.Source, decide.SourceBranch)
	}
}

func TestRun_FoldComparator(t *testing.T) {
	s, err := Parse([]byte(`{"steps": [
		{"op": "match", "value": "ADMIN", "comparator": "fold"},
		{"op": "case", "value": "admin"},
		{"op": "render", "payload": "admin-panel"}
	]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	res, err := s.Run(quietChain())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Payload != "admin-panel" {
		t.Errorf("Payload = %v, want admin-panel", res.Payload)
	}
}

func TestRun_DefaultPayload(t *testing.T) {
	s, err := Parse([]byte(`{
		"steps": [{"op": "when", "value": false}, {"op": "then", "payload": "A"}],
		"default": {"view": "empty"}
	}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	res, err := s.Run(quietChain())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Source != decide.SourceDefault {
		t.Errorf("Source = %q, want %q", res.Source, decide.SourceDefault)
	}
	def, ok := res.Payload.(map[string]any)
	if !ok || def["view"] != "empty" {
		t.Errorf("Payload = %v, want the default object", res.Payload)
	}
}

func TestRun_NullPayloadIsSet(t *testing.T) {
	s, err := Parse([]byte(`{
		"steps": [{"op": "when", "value": true}, {"op": "then", "payload": null}],
		"default": "never"
	}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	res, err := s.Run(quietChain())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !res.HasPayload {
		t.Error("HasPayload = false, want true for explicit null payload")
	}
	if res.Payload != nil {
		t.Errorf("Payload = %v, want nil", res.Payload)
	}
	if res.Source != decide.SourceBranch {
		t.Errorf("Source = %q, want %q", res.Source, decide.SourceBranch)
	}
}

func TestRun_ResetStep(t *testing.T) {
	s, err := Parse([]byte(`{"steps": [
		{"op": "when", "value": true},
		{"op": "then", "payload": "before"},
		{"op": "reset"},
		{"op": "when", "value": true},
		{"op": "then", "payload": "after"}
	]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	res, err := s.Run(quietChain())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Payload != "after" {
		t.Errorf("Payload = %v, want after", res.Payload)
	}
	if res.Branches != 1 {
		t.Errorf("Branches = %d, want 1 after reset", res.Branches)
	}
}

func TestRun_DebugStepEmitsInfo(t *testing.T) {
	rec := decide.NewRecorder()
	c := decide.New[any]().WithDiagnostics(rec)

	s, err := Parse([]byte(`{"steps": [
		{"op": "when", "value": true},
		{"op": "then", "payload": 1},
		{"op": "debug"}
	]}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := s.Run(c); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	infos := 0
	for _, e := range rec.Entries() {
		if e.Severity == decide.SeverityInfo {
			infos++
		}
	}
	if infos == 0 {
		t.Error("debug step emitted no INFO entries")
	}
}

func TestRun_StepDecodeError(t *testing.T) {
	s := &Script{Steps: []Step{{Op: OpWhen, Value: json.RawMessage(`{`)}}}

	_, err := s.Run(quietChain())
	if err == nil {
		t.Fatal("Run() succeeded, want error")
	}
	if !strings.Contains(err.Error(), "step 0") || !strings.Contains(err.Error(), "decode value") {
		t.Errorf("error = %v, want step 0 decode value wrap", err)
	}
}

func TestApply_Errors(t *testing.T) {
	tests := []struct {
		name    string
		op      Operation
		wantErr string
	}{
		{
			name:    "unknown op",
			op:      Operation{Op: "unless", Value: true, HasValue: true},
			wantErr: "unknown op",
		},
		{
			name:    "when without value",
			op:      Operation{Op: OpWhen},
			wantErr: "when requires a value",
		},
		{
			name:    "fallback without payload",
			op:      Operation{Op: OpFallback},
			wantErr: "fallback requires a payload",
		},
		{
			name:    "comparator on case",
			op:      Operation{Op: OpCase, Value: 1, HasValue: true, Comparator: "fold"},
			wantErr: "comparator only applies to match",
		},
		{
			name:    "unknown comparator on match",
			op:      Operation{Op: OpMatch, Value: 1, HasValue: true, Comparator: "fuzzy"},
			wantErr: `unknown comparator "fuzzy"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := quietChain()
			err := Apply(c, tt.op)
			if err == nil {
				t.Fatal("Apply() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
			if n := len(c.Conditions()); n != 0 {
				t.Errorf("rejected op still appended %d branch(es)", n)
			}
		})
	}
}

func TestApply_NullValueIsPresent(t *testing.T) {
	c := quietChain()

	if err := Apply(c, Operation{Op: OpMatch, Value: nil, HasValue: true}); err != nil {
		t.Fatalf("Apply(match null) error = %v", err)
	}
	if err := Apply(c, Operation{Op: OpCase, Value: nil, HasValue: true}); err != nil {
		t.Fatalf("Apply(case null) error = %v", err)
	}
	if err := Apply(c, Operation{Op: OpRender, Payload: "matched-nil", HasPayload: true}); err != nil {
		t.Fatalf("Apply(render) error = %v", err)
	}

	got, ok := c.Otherwise()
	if !ok || got != "matched-nil" {
		t.Errorf("Otherwise() = %v, %t; want matched-nil, true", got, ok)
	}
}

func TestComparatorByName(t *testing.T) {
	tests := []struct {
		name   string
		lookup string
		wantOK bool
	}{
		{name: "empty means default", lookup: "", wantOK: true},
		{name: "default", lookup: "default", wantOK: true},
		{name: "fold", lookup: "fold", wantOK: true},
		{name: "unknown", lookup: "fuzzy", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmp, ok := ComparatorByName(tt.lookup)
			if ok != tt.wantOK {
				t.Errorf("ComparatorByName(%q) ok = %t, want %t", tt.lookup, ok, tt.wantOK)
			}
			if ok && cmp == nil {
				t.Errorf("ComparatorByName(%q) returned nil comparator", tt.lookup)
			}
		})
	}
}
