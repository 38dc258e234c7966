package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"c11c/internal/cache"
	"c11c/internal/diag"
	"c11c/internal/driver"
	"c11c/internal/observ"
	"c11c/internal/project"
	"c11c/internal/target"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [file.c...]",
	Short: "Build C11 sources into IR units",
	Long:  "Build lowers each C11 source to IR, reporting diagnostics; with no file arguments it reads c11c.toml from the current directory tree.",
	RunE:  runBuild,
}

func init() {
	buildCmd.Flags().String("target", "", "target triple (e.g. x86_64-linux); defaults to c11c.toml or x86_64-linux")
	buildCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
	buildCmd.Flags().Int("jobs", 0, "concurrent source compiles (0 = GOMAXPROCS)")
	buildCmd.Flags().Bool("cache", true, "cache IR-build results between runs")
}

func runBuild(cmd *cobra.Command, args []string) error {
	targetFlag, _ := cmd.Flags().GetString("target")
	uiFlag, _ := cmd.Flags().GetString("ui")
	jobs, _ := cmd.Flags().GetInt("jobs")
	useCache, _ := cmd.Flags().GetBool("cache")
	quiet, _ := cmd.Root().PersistentFlags().GetBool("quiet")
	showTimings, _ := cmd.Root().PersistentFlags().GetBool("timings")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	uiModeValue, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	files, desc, err := resolveBuildInputs(args, targetFlag)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no C sources to build (pass file arguments or add [build].sources to c11c.toml)")
	}

	timer := observ.NewTimer()
	opts := driver.Options{
		Files:  files,
		Target: desc,
		Jobs:   jobs,
		Timer:  timer,
	}
	if useCache {
		if disk, cacheErr := cache.Open("c11c"); cacheErr == nil {
			opts.Cache = disk
		}
	}

	var results []driver.Result
	if shouldUseTUI(uiModeValue, quiet) {
		results, err = runWithTUI(cmd.Context(), "c11c build", files, opts)
	} else {
		results, err = runPlain(cmd.Context(), opts, quiet)
	}
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	printBuildDiagnostics(os.Stderr, results, maxDiagnostics)
	if showTimings {
		fmt.Fprint(os.Stdout, timer.Summary())
	}

	os.Exit(driver.ExitCode(results))
	return nil
}

func printBuildDiagnostics(w *os.File, results []driver.Result, max int) {
	for _, r := range results {
		if r.Diags == nil || r.Diags.Len() == 0 {
			continue
		}
		items := r.Diags.Items()
		if max > 0 && len(items) > max {
			items = items[:max]
		}
		if s := diag.FormatGolden(items, nil); s != "" {
			fmt.Fprintln(w, s)
		}
	}
}

// resolveBuildInputs decides which files to compile and which target to
// compile them for. Explicit CLI arguments win; c11c.toml fills in
// whatever they leave unset.
func resolveBuildInputs(args []string, targetFlag string) ([]string, target.Descriptor, error) {
	manifestPath, found, err := project.FindManifest(".")
	if err != nil {
		return nil, target.Descriptor{}, err
	}

	desc := target.X86_64Linux()
	var files []string
	if found {
		manifest, err := project.Load(manifestPath)
		if err != nil {
			return nil, target.Descriptor{}, err
		}
		if desc, err = project.ResolveTarget(manifest); err != nil {
			return nil, target.Descriptor{}, err
		}
		files = project.ResolveSources(filepath.Dir(manifestPath), manifest)
	}
	if len(args) > 0 {
		files = args
	}

	if targetFlag != "" {
		if desc, err = target.ParseTriple(targetFlag); err != nil {
			return nil, target.Descriptor{}, err
		}
	}
	return files, desc, nil
}
