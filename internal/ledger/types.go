package ledger

import (
	"math"
	"path/filepath"
	"time"
)

// TimeLayout is the processing timestamp format used in the store.
const TimeLayout = "2006-01-02 15:04:05"

const bytesPerMB = 1024 * 1024

// Entry is one successfully compressed file.
type Entry struct {
	Hash             string
	OriginalPath     string
	ProcessedPath    string
	OriginalFilename string
	ProcessedAt      time.Time
	OriginalSizeMB   float64
	ProcessedSizeMB  float64
	Ratio            float64
}

// NewEntry builds an entry from raw byte sizes, deriving the MB columns and the
// ratio. A zero processed size yields a zero ratio.
func NewEntry(hash, originalPath, processedPath string, originalBytes, processedBytes int64, at time.Time) Entry {
	ratio := 0.0
	if processedBytes > 0 {
		ratio = round2(float64(originalBytes) / float64(processedBytes))
	}
	return Entry{
		Hash:             hash,
		OriginalPath:     originalPath,
		ProcessedPath:    processedPath,
		OriginalFilename: filepath.Base(originalPath),
		ProcessedAt:      at,
		OriginalSizeMB:   round2(float64(originalBytes) / bytesPerMB),
		ProcessedSizeMB:  round2(float64(processedBytes) / bytesPerMB),
		Ratio:            ratio,
	}
}

// recomputeRatio replaces a stored ratio with one derived from the sizes when
// the sizes allow it.
func (e *Entry) recomputeRatio() {
	switch {
	case e.ProcessedSizeMB > 0:
		e.Ratio = round2(e.OriginalSizeMB / e.ProcessedSizeMB)
	case e.OriginalSizeMB > 0:
		e.Ratio = 0
	}
	if e.Ratio < 0 {
		e.Ratio = 0
	}
}

// Savings aggregates size columns over a set of entries.
type Savings struct {
	Files        int
	OriginalMB   float64
	CompressedMB float64
}

// SavedMB is the difference between original and compressed totals.
func (s Savings) SavedMB() float64 {
	return s.OriginalMB - s.CompressedMB
}

// PercentSaved is SavedMB relative to the original total, 0 when empty.
func (s Savings) PercentSaved() float64 {
	if s.OriginalMB <= 0 {
		return 0
	}
	return s.SavedMB() / s.OriginalMB * 100
}

// Summarize totals the size columns of entries.
func Summarize(entries []Entry) Savings {
	var s Savings
	for _, e := range entries {
		s.Files++
		s.OriginalMB += e.OriginalSizeMB
		s.CompressedMB += e.ProcessedSizeMB
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
