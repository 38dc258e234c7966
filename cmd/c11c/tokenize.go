package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"c11c/internal/diag"
	"c11c/internal/driver"
	"c11c/internal/ir"
	"c11c/internal/target"
)

// tokenizeCmd dumps the IR op stream a source lowers to. The
// preprocessor/lexer/parser/type-checker live behind an external
// boundary, so there is no token stream of our own to print; the op
// stream is the debug view this core actually owns.
var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.c",
	Short: "Dump the IR op stream a C11 source lowers to",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().String("target", "", "target triple (e.g. x86_64-linux); defaults to x86_64-linux")
}

type opRecord struct {
	Function string `json:"function"`
	ID       int32  `json:"id"`
	Kind     string `json:"kind"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	targetFlag, _ := cmd.Flags().GetString("target")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	desc := target.X86_64Linux()
	if targetFlag != "" {
		var err error
		if desc, err = target.ParseTriple(targetFlag); err != nil {
			return err
		}
	}

	results, err := driver.Run(cmd.Context(), driver.Options{
		Files:  []string{args[0]},
		Target: desc,
	})
	if err != nil {
		return fmt.Errorf("tokenize: %w", err)
	}
	res := results[0]
	if res.Diags != nil && res.Diags.Len() > 0 {
		items := res.Diags.Items()
		if maxDiagnostics > 0 && len(items) > maxDiagnostics {
			items = items[:maxDiagnostics]
		}
		if s := diag.FormatGolden(items, nil); s != "" {
			fmt.Fprintln(os.Stderr, s)
		}
	}
	if res.Err != nil {
		return fmt.Errorf("tokenize: %w", res.Err)
	}

	records := collectOps(res.Unit)
	switch format {
	case "pretty":
		for _, r := range records {
			fmt.Fprintf(os.Stdout, "%-24s op.%-4d %s\n", r.Function, r.ID, r.Kind)
		}
		return nil
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func collectOps(unit *ir.Unit) []opRecord {
	var out []opRecord
	for _, g := range unit.Globals() {
		if g.Kind != ir.GlobalFunc || g.Func == nil {
			continue
		}
		g.Func.ForEachOp(func(op *ir.Op) {
			out = append(out, opRecord{Function: g.Name, ID: int32(op.ID), Kind: op.Kind.String()})
		})
	}
	return out
}
