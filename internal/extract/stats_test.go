package extract

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLLMStatsSnapshotPercentiles(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		stats.Record(ms, false)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
	if snap.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", snap.P99Ms)
	}
	if snap.Failures != 0 {
		t.Fatalf("expected no failures, got %d", snap.Failures)
	}
}

func TestLLMStatsPrunesExpiredSamples(t *testing.T) {
	stats := NewLLMStats(10 * time.Millisecond)
	stats.Record(100, false)
	time.Sleep(25 * time.Millisecond)

	if snap := stats.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	stats.Record(200, true)
	snap := stats.Snapshot()
	if snap.Count != 1 || snap.Failures != 1 {
		t.Fatalf("expected one failed sample, got count=%d failures=%d", snap.Count, snap.Failures)
	}
}

func TestLLMStatsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewLLMStats(time.Hour)
	stats.Record(-10, false)
	snap := stats.Snapshot()
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}

type stubGenerator struct {
	out string
	err error
}

func (s stubGenerator) Generate(context.Context, Request) (string, error) { return s.out, s.err }
func (s stubGenerator) Name() string                                      { return "stub" }
func (s stubGenerator) Model() string                                     { return "stub-1" }

func TestTimedRecordsFailures(t *testing.T) {
	g := NewTimed(stubGenerator{err: errors.New("boom")}, time.Hour)
	if _, err := g.Generate(context.Background(), Request{Prompt: "x"}); err == nil {
		t.Fatal("expected error to pass through")
	}
	g.Generator = stubGenerator{out: "ok"}
	out, err := g.Generate(context.Background(), Request{Prompt: "x"})
	if err != nil || out != "ok" {
		t.Fatalf("unexpected result %q, %v", out, err)
	}
	snap := g.Stats.Snapshot()
	if snap.Count != 2 || snap.Failures != 1 {
		t.Fatalf("expected count=2 failures=1, got %d/%d", snap.Count, snap.Failures)
	}
	if g.Name() != "stub" {
		t.Fatalf("expected embedded name, got %q", g.Name())
	}
}
