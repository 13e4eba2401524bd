// ABOUTME: Diagnostics sinks for decision chains
// ABOUTME: Provides logger-backed, recording, and no-op implementations

package decide

import (
	"fmt"
	"log"
	"os"
)

// Severity classifies a diagnostic entry.
type Severity string

const (
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
	SeverityInfo  Severity = "INFO"
)

// Diagnostics receives protocol-misuse warnings, recovered failures, and
// debug dumps from a chain. Chains call the sink synchronously from the
// builder goroutine; implementations must not call back into the chain.
type Diagnostics interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Infof(format string, args ...any)
}

// NewLogDiagnostics returns a Diagnostics that writes each entry as one line
// on the given logger, prefixed with its severity. A nil logger writes to
// stderr with a "decide: " prefix.
func NewLogDiagnostics(l *log.Logger) Diagnostics {
	if l == nil {
		l = log.New(os.Stderr, "decide: ", log.LstdFlags)
	}
	return &logDiagnostics{l: l}
}

type logDiagnostics struct {
	l *log.Logger
}

func (d *logDiagnostics) Warnf(format string, args ...any) {
	d.l.Printf("%s %s", SeverityWarn, fmt.Sprintf(format, args...))
}

func (d *logDiagnostics) Errorf(format string, args ...any) {
	d.l.Printf("%s %s", SeverityError, fmt.Sprintf(format, args...))
}

func (d *logDiagnostics) Infof(format string, args ...any) {
	d.l.Printf("%s %s", SeverityInfo, fmt.Sprintf(format, args...))
}

// NopDiagnostics returns a Diagnostics that discards every entry.
func NopDiagnostics() Diagnostics {
	return nopDiagnostics{}
}

type nopDiagnostics struct{}

func (nopDiagnostics) Warnf(string, ...any)  {}
func (nopDiagnostics) Errorf(string, ...any) {}
func (nopDiagnostics) Infof(string, ...any)  {}

// Diagnostic is one entry captured by a Recorder.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Recorder is a Diagnostics that captures entries in emission order so they
// can be inspected or replayed to a caller. Like the chains it observes, a
// Recorder is not safe for concurrent use.
type Recorder struct {
	entries []Diagnostic
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Warnf(format string, args ...any) {
	r.record(SeverityWarn, format, args...)
}

func (r *Recorder) Errorf(format string, args ...any) {
	r.record(SeverityError, format, args...)
}

func (r *Recorder) Infof(format string, args ...any) {
	r.record(SeverityInfo, format, args...)
}

func (r *Recorder) record(sev Severity, format string, args ...any) {
	r.entries = append(r.entries, Diagnostic{
		Severity: sev,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Entries returns a copy of every captured entry in emission order.
func (r *Recorder) Entries() []Diagnostic {
	out := make([]Diagnostic, len(r.entries))
	copy(out, r.entries)
	return out
}

// Warnings returns the captured entries with severity WARN.
func (r *Recorder) Warnings() []Diagnostic {
	return r.filter(SeverityWarn)
}

// Errors returns the captured entries with severity ERROR.
func (r *Recorder) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

func (r *Recorder) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, e := range r.entries {
		if e.Severity == sev {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of captured entries.
func (r *Recorder) Len() int {
	return len(r.entries)
}

// Reset discards every captured entry.
func (r *Recorder) Reset() {
	r.entries = nil
}
