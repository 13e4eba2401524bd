// ABOUTME: CLI command to evaluate decision scripts
// ABOUTME: Handles script input from argument, file, or stdin and prints the resolution

package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	decide "github.com/harper/decide-standalone"
	"github.com/harper/decide-standalone/internal/config"
	"github.com/harper/decide-standalone/internal/script"
	"github.com/harper/decide-standalone/internal/util"
)

var (
	evalFile    string
	evalDefault string
	evalTrace   bool
)

// NewEvalCmd creates the eval command
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval [script]",
		Short: "Evaluate a decision script",
		Long: `Evaluate a declarative decision script against a fresh chain.

A script is a JSON object with ordered builder steps (when, then, match,
case, render, fallback, reset, debug) and an optional default payload.
The script can be passed inline, read from a file, or piped on stdin.

Examples:
  decide eval '{"steps":[{"op":"when","value":true},{"op":"then","payload":"hit"}]}'
  decide eval --file routing.json --trace
  cat routing.json | decide eval --default '"guest-panel"'`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEval,
	}

	cmd.Flags().StringVar(&evalFile, "file", "", "Read the script from a file")
	cmd.Flags().StringVar(&evalDefault, "default", "", "Default payload as a JSON value, overriding the script's own")
	cmd.Flags().BoolVar(&evalTrace, "trace", false, "Print the branch table after evaluation")

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	s, err := readEvalScript(args)
	if err != nil {
		return err
	}
	if len(s.Steps) > cfg.MaxScriptSteps {
		return fmt.Errorf("script has %d steps, limit is %d", len(s.Steps), cfg.MaxScriptSteps)
	}
	if evalDefault != "" {
		if !json.Valid([]byte(evalDefault)) {
			return fmt.Errorf("--default must be a JSON value, got %q", evalDefault)
		}
		s.Default = json.RawMessage(evalDefault)
	}

	rec := decide.NewRecorder()
	chain := decide.New[any]().WithDiagnostics(rec)

	res, err := s.Run(chain)
	if err != nil {
		return fmt.Errorf("running script: %w", err)
	}

	if outputFormat == "json" {
		return printEvalJSON(cmd, s, res, rec)
	}
	return printEvalText(cmd, cfg, chain, res, rec)
}

// readEvalScript resolves the script source: --file flag, inline argument,
// then stdin.
func readEvalScript(args []string) (*script.Script, error) {
	if evalFile != "" {
		return script.Load(evalFile)
	}
	if len(args) > 0 {
		return script.Parse([]byte(args[0]))
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return script.Parse(data)
}

// evalReport is the JSON output shape for one evaluation.
type evalReport struct {
	Name         string              `json:"name,omitempty"`
	Payload      any                 `json:"payload"`
	HasPayload   bool                `json:"has_payload"`
	Source       decide.Source       `json:"source"`
	MatchedIndex int                 `json:"matched_index"`
	Branches     int                 `json:"branches"`
	Incomplete   int                 `json:"incomplete"`
	Diagnostics  []decide.Diagnostic `json:"diagnostics"`
}

func printEvalJSON(cmd *cobra.Command, s *script.Script, res decide.Resolution[any], rec *decide.Recorder) error {
	report := evalReport{
		Name:         s.Name,
		Payload:      res.Payload,
		HasPayload:   res.HasPayload,
		Source:       res.Source,
		MatchedIndex: res.Index,
		Branches:     res.Branches,
		Incomplete:   res.Incomplete,
		Diagnostics:  rec.Entries(),
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printEvalText(cmd *cobra.Command, cfg *config.Config, chain *decide.Chain[any], res decide.Resolution[any], rec *decide.Recorder) error {
	out := cmd.OutOrStdout()

	if res.HasPayload {
		fmt.Fprintf(out, "✓ %s (source: %s", util.FormatValue(res.Payload, cfg.ValueWidth), res.Source)
		if res.Source == decide.SourceBranch {
			fmt.Fprintf(out, ", branch %d", res.Index)
		}
		fmt.Fprintln(out, ")")
	} else {
		fmt.Fprintln(out, "no payload: no branch matched and no fallback or default was set")
	}

	if evalTrace {
		printTrace(out, cfg, chain)
	}

	printDiagnostics(cmd, cfg, rec)
	return nil
}

func printTrace(out io.Writer, cfg *config.Config, chain *decide.Chain[any]) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "IDX\tKIND\tSATISFIED\tCASE\tPAYLOAD\tSEQ")
	for i, b := range chain.Conditions() {
		satisfied := "-"
		if b.Kind != decide.KindFallback {
			satisfied = fmt.Sprintf("%t", b.Satisfied)
		}
		caseValue := "-"
		if b.Kind == decide.KindMatch {
			caseValue = util.FormatValue(b.CaseValue, cfg.ValueWidth)
		}
		payload := "<unset>"
		if b.HasPayload {
			payload = util.FormatValue(b.Payload, cfg.ValueWidth)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", i, b.Kind, satisfied, caseValue, payload, b.Sequence)
	}
	w.Flush()

	if chain.HasMatched() {
		fmt.Fprintf(out, "matched: branch %d\n", chain.MatchedIndex())
	} else {
		fmt.Fprintln(out, "matched: none")
	}
}

// printDiagnostics relays recorded chain diagnostics. WARN and ERROR always
// show unless quiet; INFO shows only with --verbose.
func printDiagnostics(cmd *cobra.Command, cfg *config.Config, rec *decide.Recorder) {
	if quiet || cfg.DiagOutput == "off" {
		return
	}
	out := cmd.ErrOrStderr()
	if cfg.DiagOutput == "stdout" {
		out = cmd.OutOrStdout()
	}
	for _, d := range rec.Entries() {
		if d.Severity == decide.SeverityInfo && !verbose {
			continue
		}
		fmt.Fprintf(out, "%s %s\n", d.Severity, d.Message)
	}
}
