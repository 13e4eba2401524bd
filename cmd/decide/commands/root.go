// ABOUTME: Root command for the Decide CLI
// ABOUTME: Registers global flags and wires up all subcommands

package commands

import (
	"github.com/spf13/cobra"
)

// Global flags shared by all subcommands
var (
	verbose      bool
	quiet        bool
	outputFormat string
)

var banner = `
██████╗ ███████╗ ██████╗██╗██████╗ ███████╗
██╔══██╗██╔════╝██╔════╝██║██╔══██╗██╔════╝
██║  ██║█████╗  ██║     ██║██║  ██║█████╗
██║  ██║██╔══╝  ██║     ██║██║  ██║██╔══╝
██████╔╝███████╗╚██████╗██║██████╔╝███████╗
╚═════╝ ╚══════╝ ╚═════╝╚═╝╚═════╝ ╚══════╝
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "decide",
		Short: "Build and resolve conditional decision chains",
		Long: banner + `
Decide builds ordered conditional decision chains: boolean branches,
match/case routing, a chain-level fallback, and first-match-wins
resolution with full introspection.

Evaluate declarative decision scripts from the command line, or serve
the chain builder to LLM agents over MCP.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, text, or json")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	rootCmd.AddCommand(NewEvalCmd())
	rootCmd.AddCommand(NewMCPCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
