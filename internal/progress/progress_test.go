package progress

import (
	"testing"

	"c11c/internal/driver"
)

func TestStatusLabelWorkingUsesStageName(t *testing.T) {
	if got := statusLabel(driver.StageLower, driver.StatusWorking); got != "lower" {
		t.Fatalf("statusLabel = %q", got)
	}
	if got := statusLabel(driver.StageLower, driver.StatusDone); got != "done" {
		t.Fatalf("statusLabel = %q", got)
	}
}

func TestTruncateShortensLongNames(t *testing.T) {
	got := truncate("a/very/long/path/to/source.c", 10)
	if len(got) > 10 {
		t.Fatalf("truncate did not shorten: %q", got)
	}
}

func TestProgressFromStageMonotonic(t *testing.T) {
	prev := -1.0
	stages := []driver.Stage{driver.StageFrontend, driver.StageIRBuild, driver.StageOptimize, driver.StageLower, driver.StageEmit, driver.StageLink}
	for _, s := range stages {
		v := progressFromStage(s)
		if v <= prev {
			t.Fatalf("progressFromStage(%v)=%v not increasing from %v", s, v, prev)
		}
		prev = v
	}
}
