package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"c11c/internal/diag"
	"c11c/internal/driver"
	"c11c/internal/interp"
	"c11c/internal/target"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] <file.c> [-- program-args...]",
	Short: "Build a C11 source and interpret its entry function",
	Long:  "Run builds one C11 source to IR and executes it directly with the tree-walking interpreter, without producing a native binary.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().String("target", "", "target triple (e.g. x86_64-linux); defaults to x86_64-linux")
	runCmd.Flags().String("entry", "main", "name of the function to execute")
}

func runRun(cmd *cobra.Command, args []string) error {
	targetFlag, _ := cmd.Flags().GetString("target")
	entry, _ := cmd.Flags().GetString("entry")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	file := args[0]
	programArgs := args[1:]
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		// Everything from "--" onward is the interpreted program's argv,
		// not c11c's own arguments.
		programArgs = args[dash:]
	}

	desc := target.X86_64Linux()
	if targetFlag != "" {
		var err error
		if desc, err = target.ParseTriple(targetFlag); err != nil {
			return err
		}
	}

	results, err := driver.Run(cmd.Context(), driver.Options{
		Files:  []string{file},
		Target: desc,
	})
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}
	if len(results) != 1 {
		return fmt.Errorf("run: expected one compiled unit, got %d", len(results))
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
		return fmt.Errorf("run: %w", res.Err)
	}

	rt := interp.NewDefaultRuntime()
	code, runErr := interp.Run(res.Unit, entry, programArgs, rt)
	if runErr != nil {
		if trap, ok := runErr.(*interp.Trap); ok {
			fmt.Fprintf(os.Stderr, "trap: %s\n", trap.Error())
			os.Exit(1)
		}
		return fmt.Errorf("run: %w", runErr)
	}
	os.Exit(code)
	return nil
}
