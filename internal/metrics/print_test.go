package metrics

import (
	"PDFReduce/internal/ledger"
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestStats_Snapshot(t *testing.T) {
	var s Stats
	s.Start()
	s.AddFound(4)
	s.IncProcessed()
	s.IncProcessed()
	s.IncCompressed()
	s.IncFallback()
	s.IncSkipped()
	s.IncErrors()
	s.AddHashed(2048)
	s.Finished = s.Started.Add(1500 * time.Millisecond)

	snap := s.Snapshot()
	want := Snapshot{
		DurationMs:  1500,
		Found:       4,
		Processed:   2,
		Compressed:  1,
		Skipped:     1,
		Fallback:    1,
		Errors:      1,
		BytesHashed: 2048,
	}
	if snap != want {
		t.Fatalf("snapshot = %+v, want %+v", snap, want)
	}
}

func TestPrint_TableDriven(t *testing.T) {
	tests := []struct {
		name     string
		snap     Snapshot
		savings  ledger.Savings
		contains []string
		absent   []string
	}{
		{
			name:    "with savings",
			snap:    Snapshot{DurationMs: 2000, Found: 3, Compressed: 2, Skipped: 1},
			savings: ledger.Savings{Files: 2, OriginalMB: 10, CompressedMB: 4},
			contains: []string{
				"Files found: 3",
				"Newly compressed: 2",
				"Skipped (already processed): 1",
				"Original size: 10.00 MB",
				"Compressed size: 4.00 MB",
				"Space saved: 6.00 MB (60.0%)",
			},
		},
		{
			name:     "nothing new",
			snap:     Snapshot{Found: 5, Skipped: 5},
			contains: []string{"Files found: 5", "Errors: 0"},
			absent:   []string{"Space Savings", "Hash throughput"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Print(&buf, tt.snap, tt.savings)
			out := buf.String()
			for _, c := range tt.contains {
				if !strings.Contains(out, c) {
					t.Fatalf("missing %q in\n%s", c, out)
				}
			}
			for _, a := range tt.absent {
				if strings.Contains(out, a) {
					t.Fatalf("unexpected %q in\n%s", a, out)
				}
			}
		})
	}
}
