package ledger_test

import (
	"PDFReduce/internal/ledger"
	"PDFReduce/internal/pkgerror"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
)

const dbPath = "/work/pdf_compression_log.csv"

func writeTempCSV(t *testing.T, fs afero.Fs, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, dbPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func readCSV(t *testing.T, fs afero.Fs) string {
	t.Helper()
	b, err := afero.ReadFile(fs, dbPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(b)
}

var at = time.Date(2025, 3, 4, 5, 6, 7, 0, time.Local)

func TestLoad_TableDriven(t *testing.T) {
	const header = "file_hash,original_path,processed_path,original_filename,date_processed,original_size_mb,processed_size_mb,compression_ratio\n"

	tests := []struct {
		name      string
		csv       *string
		wantErr   bool
		wantLen   int
		wantHash  string
		wantRatio float64
	}{
		{
			name:    "missing store is an empty ledger",
			csv:     nil,
			wantLen: 0,
		},
		{
			name:    "empty file is an empty ledger",
			csv:     strPtr(""),
			wantLen: 0,
		},
		{
			name: "python written rows with crlf and short floats",
			csv: strPtr("file_hash,original_path,processed_path,original_filename,date_processed,original_size_mb,processed_size_mb,compression_ratio\r\n" +
				"aaa,/in/a.pdf,/out/a.pdf,a.pdf,2024-01-02 03:04:05,10.0,2.5,4.0\r\n"),
			wantLen:   1,
			wantHash:  "aaa",
			wantRatio: 4,
		},
		{
			name:      "ratio is recomputed from sizes",
			csv:       strPtr(header + "bbb,/in/b.pdf,/out/b.pdf,b.pdf,2024-01-02 03:04:05,9.00,3.00,99.00\n"),
			wantLen:   1,
			wantHash:  "bbb",
			wantRatio: 3,
		},
		{
			name:      "zero processed size yields zero ratio",
			csv:       strPtr(header + "ccc,/in/c.pdf,/out/c.pdf,c.pdf,2024-01-02 03:04:05,9.00,0.00,5.00\n"),
			wantLen:   1,
			wantHash:  "ccc",
			wantRatio: 0,
		},
		{
			name: "reordered columns are located by header",
			csv: strPtr("original_filename,file_hash,original_path,processed_path,date_processed,original_size_mb,processed_size_mb,compression_ratio\n" +
				"d.pdf,ddd,/in/d.pdf,/out/d.pdf,2024-01-02 03:04:05,4.00,2.00,2.00\n"),
			wantLen:   1,
			wantHash:  "ddd",
			wantRatio: 2,
		},
		{
			name: "torn and malformed rows are skipped",
			csv: strPtr(header +
				"eee,/in/e.pdf,/out/e.pdf,e.pdf,2024-01-02 03:04:05,4.00,2.00,2.00\n" +
				"fff,/in/f.pdf,/out/f.pdf,f.pdf,not-a-date,1.00,1.00,1.00\n" +
				"ggg,/in/g.pdf,/out/g.pd"),
			wantLen:   1,
			wantHash:  "eee",
			wantRatio: 2,
		},
		{
			name:    "header without file_hash is an error",
			csv:     strPtr("a,b,c\n1,2,3\n"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tt.csv != nil {
				writeTempCSV(t, fs, *tt.csv)
			}

			l, err := ledger.Load(ledger.NewCSVStore(fs, dbPath))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !pkgerror.Is(err, pkgerror.KindLedger) {
					t.Fatalf("expected ledger error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if l.Len() != tt.wantLen {
				t.Fatalf("Len mismatch: got %d want %d", l.Len(), tt.wantLen)
			}
			if tt.wantHash == "" {
				return
			}

			e, ok := l.Lookup(tt.wantHash)
			if !ok {
				t.Fatalf("Lookup(%q) not found", tt.wantHash)
			}
			if e.Ratio != tt.wantRatio {
				t.Fatalf("Ratio mismatch: got %v want %v", e.Ratio, tt.wantRatio)
			}
			if !l.Contains(strings.ToUpper(tt.wantHash)) {
				t.Fatalf("Contains should be case-insensitive")
			}
		})
	}
}

func TestAppend_WritesHeaderOnceAndNeverRewrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := ledger.NewCSVStore(fs, dbPath)

	l, err := ledger.Load(store)
	if err != nil {
		t.Fatal(err)
	}

	first := ledger.NewEntry("h1", "/in/a.pdf", "/out/a.pdf", 10*1024*1024, 2*1024*1024, at)
	if err := l.Append(first); err != nil {
		t.Fatalf("Append: %v", err)
	}
	afterFirst := readCSV(t, fs)

	second := ledger.NewEntry("h2", "/in/sub/b.pdf", "/out/sub/b.pdf", 3*1024*1024, 1024*1024, at)
	if err := l.Append(second); err != nil {
		t.Fatalf("Append: %v", err)
	}
	afterSecond := readCSV(t, fs)

	if !strings.HasPrefix(afterSecond, afterFirst) {
		t.Fatalf("earlier rows were altered:\nbefore: %q\nafter:  %q", afterFirst, afterSecond)
	}

	want := strings.Join(ledger.Header, ",") + "\n" +
		"h1,/in/a.pdf,/out/a.pdf,a.pdf,2025-03-04 05:06:07,10.00,2.00,5.00\n" +
		"h2,/in/sub/b.pdf,/out/sub/b.pdf,b.pdf,2025-03-04 05:06:07,3.00,1.00,3.00\n"
	if afterSecond != want {
		t.Fatalf("store content mismatch:\n got: %q\nwant: %q", afterSecond, want)
	}

	if got := strings.Count(afterSecond, "file_hash"); got != 1 {
		t.Fatalf("header written %d times", got)
	}
	if !l.Contains("h1") || !l.Contains("h2") || l.Len() != 2 {
		t.Fatalf("in-memory view out of sync: len=%d", l.Len())
	}

	reloaded, err := ledger.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded Len = %d, want 2", reloaded.Len())
	}
	got := reloaded.Entries()
	if got[0].Hash != "h1" || got[1].Hash != "h2" {
		t.Fatalf("append order lost: %+v", got)
	}
	if !got[0].ProcessedAt.Equal(at) {
		t.Fatalf("timestamp round trip: got %v want %v", got[0].ProcessedAt, at)
	}
}

func TestAppend_TerminatesTornRow(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeTempCSV(t, fs, strings.Join(ledger.Header, ",")+"\n"+
		"h1,/in/a.pdf,/out/a.pdf,a.pdf,2025-03-04 05:06:07,1.00,1.00,1.00\n"+
		"h2,/in/b.pd")

	store := ledger.NewCSVStore(fs, dbPath)
	l, err := ledger.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if l.Len() != 1 {
		t.Fatalf("torn row should be ignored, Len = %d", l.Len())
	}

	if err := l.Append(ledger.NewEntry("h3", "/in/c.pdf", "/out/c.pdf", 2048, 1024, at)); err != nil {
		t.Fatal(err)
	}

	reloaded, err := ledger.Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Len() != 2 || !reloaded.Contains("h1") || !reloaded.Contains("h3") {
		t.Fatalf("expected h1 and h3 after torn row, got %+v", reloaded.Entries())
	}
}

type failingStore struct{ loaded []ledger.Entry }

func (s *failingStore) Load() ([]ledger.Entry, error) { return s.loaded, nil }
func (s *failingStore) Append(ledger.Entry) error {
	return pkgerror.NewLedger("mem", errors.New("disk full"))
}

func TestAppend_StoreFailureLeavesViewUnchanged(t *testing.T) {
	l, err := ledger.Load(&failingStore{})
	if err != nil {
		t.Fatal(err)
	}

	err = l.Append(ledger.NewEntry("h1", "/a.pdf", "/b.pdf", 1, 1, at))
	if !pkgerror.Is(err, pkgerror.KindLedger) {
		t.Fatalf("expected ledger error, got %v", err)
	}
	if l.Len() != 0 || l.Contains("h1") {
		t.Fatalf("failed append leaked into memory")
	}
}

func TestDuplicateHashLastWriteWins(t *testing.T) {
	store := &failingStore{loaded: []ledger.Entry{
		{Hash: "dup", OriginalPath: "/first.pdf"},
		{Hash: "other", OriginalPath: "/other.pdf"},
		{Hash: "DUP", OriginalPath: "/second.pdf"},
	}}
	l, err := ledger.Load(store)
	if err != nil {
		t.Fatal(err)
	}

	e, ok := l.Lookup("dup")
	if !ok || e.OriginalPath != "/second.pdf" {
		t.Fatalf("expected last write to win, got %+v", e)
	}
	if l.Len() != 3 {
		t.Fatalf("ordered list should keep duplicates, Len = %d", l.Len())
	}
}

func TestSinceAndSummarize(t *testing.T) {
	store := &failingStore{loaded: []ledger.Entry{
		{Hash: "old", OriginalSizeMB: 100, ProcessedSizeMB: 100},
		{Hash: "n1", OriginalSizeMB: 10, ProcessedSizeMB: 2},
		{Hash: "n2", OriginalSizeMB: 6, ProcessedSizeMB: 4},
	}}
	l, err := ledger.Load(store)
	if err != nil {
		t.Fatal(err)
	}

	recent := l.Since(1)
	if len(recent) != 2 || recent[0].Hash != "n1" {
		t.Fatalf("Since(1) = %+v", recent)
	}
	if got := l.Since(3); len(got) != 0 {
		t.Fatalf("Since(len) should be empty, got %d", len(got))
	}

	s := ledger.Summarize(recent)
	if s.Files != 2 || s.OriginalMB != 16 || s.CompressedMB != 6 {
		t.Fatalf("Summarize = %+v", s)
	}
	if s.SavedMB() != 10 {
		t.Fatalf("SavedMB = %v", s.SavedMB())
	}
	if s.PercentSaved() != 62.5 {
		t.Fatalf("PercentSaved = %v", s.PercentSaved())
	}
	if (ledger.Savings{}).PercentSaved() != 0 {
		t.Fatalf("empty savings should report 0%%")
	}
}

func TestNewEntry_RatioMatchesSizes(t *testing.T) {
	tests := []struct {
		name      string
		orig      int64
		proc      int64
		wantOrig  float64
		wantProc  float64
		wantRatio float64
	}{
		{"ten to two", 10 * 1024 * 1024, 2 * 1024 * 1024, 10, 2, 5},
		{"thirds", 10 * 1024 * 1024, 3 * 1024 * 1024, 10, 3, 3.33},
		{"fallback equal", 5 * 1024 * 1024, 5 * 1024 * 1024, 5, 5, 1},
		{"zero processed", 1024, 0, 0, 0, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			e := ledger.NewEntry("h", "/in/dir/x.pdf", "/out/dir/x.pdf", tt.orig, tt.proc, at)
			if e.OriginalSizeMB != tt.wantOrig || e.ProcessedSizeMB != tt.wantProc || e.Ratio != tt.wantRatio {
				t.Fatalf("got orig=%v proc=%v ratio=%v", e.OriginalSizeMB, e.ProcessedSizeMB, e.Ratio)
			}
			if e.OriginalFilename != "x.pdf" {
				t.Fatalf("OriginalFilename = %q", e.OriginalFilename)
			}
		})
	}
}

func strPtr(s string) *string { return &s }
