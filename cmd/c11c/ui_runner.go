package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"c11c/internal/driver"
	"c11c/internal/progress"
)

// runWithTUI drives opts through driver.Run behind a Bubble Tea progress
// view: the driver call runs on its own goroutine writing to a buffered
// event channel, and the progress model reads that channel until it
// closes.
func runWithTUI(ctx context.Context, title string, files []string, opts driver.Options) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	opts.Progress = events

	type outcome struct {
		results []driver.Result
		err     error
	}
	outcomeCh := make(chan outcome, 1)
	go func() {
		results, err := driver.Run(ctx, opts)
		outcomeCh <- outcome{results: results, err: err}
	}()

	model := progress.NewModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	out := <-outcomeCh
	if uiErr != nil {
		return out.results, uiErr
	}
	return out.results, out.err
}

// runPlain drives opts through driver.Run with a line-oriented fallback
// reporter instead of the TUI, for non-interactive output or --ui=off.
func runPlain(ctx context.Context, opts driver.Options, quiet bool) ([]driver.Result, error) {
	events := make(chan driver.Event, 256)
	opts.Progress = events

	done := make(chan struct{})
	go func() {
		defer close(done)
		if quiet {
			for range events {
			}
			return
		}
		progress.PlainSink(events, func(format string, args ...any) {
			fmt.Fprintf(os.Stdout, format, args...)
		})
	}()

	results, err := driver.Run(ctx, opts)
	<-done
	return results, err
}
