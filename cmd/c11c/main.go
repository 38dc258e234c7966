// Package main implements the c11c CLI: build/run/lsp/tokenize/version
// subcommands wiring the driver, cache, progress UI, and interpreter
// packages together. One file per subcommand, RunE handlers, shared
// persistent flags.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:   "c11c",
	Short: "c11c is a self-hosting C11 compiler core",
	Long:  "c11c lowers a typed C11 AST to SSA-form IR and can build, interpret, or serve it over an editor's language server.",
}

func main() {
	rootCmd.Version = versionString()

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize diagnostic output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show per-stage timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
