// Package observ provides the phase timer the driver uses to build
// profiling regions around preprocess/compile/link and to back the
// "--timings" CLI flag.
package observ

import (
	"fmt"
	"time"
)

// Phase records one named timed region.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
}

// Timer accumulates a sequence of named phases for one pipeline run.
type Timer struct {
	phases []Phase
}

// NewTimer creates an empty Timer.
func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a phase and returns a handle used to End it.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End closes the phase started at handle idx.
func (t *Timer) End(idx int) {
	if t == nil || idx < 0 || idx >= len(t.phases) {
		return
	}
	t.phases[idx].Dur = time.Since(t.phases[idx].Start)
}

// Track runs fn as a timed phase and returns fn's error, for the common
// "defer end" call shape.
func (t *Timer) Track(name string, fn func() error) error {
	idx := t.Begin(name)
	err := fn()
	t.End(idx)
	return err
}

// PhaseReport is the serialisable summary of one Phase.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
}

// Report is the aggregated summary of a Timer's phases.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the timer's phases and their total duration.
func (t *Timer) Report() Report {
	if t == nil || len(t.phases) == 0 {
		return Report{}
	}
	r := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, p := range t.phases {
		total += p.Dur
		r.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur)}
	}
	r.TotalMS = millis(total)
	return r
}

// Summary renders a human-readable multi-line timing report.
func (t *Timer) Summary() string {
	r := t.Report()
	out := "timings:\n"
	for _, p := range r.Phases {
		out += fmt.Sprintf("  %-16s %8.2f ms\n", p.Name, p.DurationMS)
	}
	out += fmt.Sprintf("  %-16s %8.2f ms\n", "total", r.TotalMS)
	return out
}

func millis(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
