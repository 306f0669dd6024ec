package metrics

import (
	"PDFReduce/internal/ledger"
	"fmt"
	"io"
	"sync/atomic"
)

type Snapshot struct {
	DurationMs  int64
	Found       int64
	Processed   int64
	Compressed  int64
	Skipped     int64
	Fallback    int64
	Errors      int64
	BytesHashed int64
}

func (s *Stats) Snapshot() Snapshot {
	dur := s.Duration()

	return Snapshot{
		DurationMs:  dur.Milliseconds(),
		Found:       atomic.LoadInt64(&s.Found),
		Processed:   atomic.LoadInt64(&s.Processed),
		Compressed:  atomic.LoadInt64(&s.Compressed),
		Skipped:     atomic.LoadInt64(&s.Skipped),
		Fallback:    atomic.LoadInt64(&s.Fallback),
		Errors:      atomic.LoadInt64(&s.Errors),
		BytesHashed: atomic.LoadInt64(&s.BytesHashed),
	}
}

// Print writes the end-of-run summary. Savings cover the entries recorded
// during this run only.
func Print(w io.Writer, snap Snapshot, savings ledger.Savings) {
	fmt.Fprintln(w, "--- Processing Summary ---")
	fmt.Fprintln(w, "Files found:", snap.Found)
	fmt.Fprintln(w, "Sent to compressor:", snap.Processed)
	fmt.Fprintln(w, "Newly compressed:", snap.Compressed)
	fmt.Fprintln(w, "Skipped (already processed):", snap.Skipped)
	fmt.Fprintln(w, "Copied uncompressed:", snap.Fallback)
	fmt.Fprintln(w, "Errors:", snap.Errors)
	fmt.Fprintf(w, "Duration: %.1fs\n", float64(snap.DurationMs)/1000.0)

	if snap.DurationMs > 0 && snap.BytesHashed > 0 {
		secs := float64(snap.DurationMs) / 1000.0
		fmt.Fprintf(w, "Hash throughput: %.1f MB/s\n", float64(snap.BytesHashed)/secs/1_000_000.0)
	}

	if savings.Files == 0 {
		return
	}
	fmt.Fprintln(w, "--- Space Savings ---")
	fmt.Fprintf(w, "Original size: %.2f MB\n", savings.OriginalMB)
	fmt.Fprintf(w, "Compressed size: %.2f MB\n", savings.CompressedMB)
	fmt.Fprintf(w, "Space saved: %.2f MB (%.1f%%)\n", savings.SavedMB(), savings.PercentSaved())
}
