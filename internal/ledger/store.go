package ledger

import (
	"PDFReduce/internal/pkgerror"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Header is the column order written to new stores.
var Header = []string{
	"file_hash",
	"original_path",
	"processed_path",
	"original_filename",
	"date_processed",
	"original_size_mb",
	"processed_size_mb",
	"compression_ratio",
}

// Store is an append-only log of entries. Implementations must never rewrite
// previously appended rows.
type Store interface {
	Load() ([]Entry, error)
	Append(e Entry) error
}

// CSVStore keeps entries as rows of a CSV file with a header row.
type CSVStore struct {
	fs   afero.Fs
	path string
}

func NewCSVStore(fs afero.Fs, path string) *CSVStore {
	return &CSVStore{fs: fs, path: path}
}

func (s *CSVStore) Path() string { return s.path }

// Load reads every row. A missing file yields no entries and no error.
// Columns are located by header name so reordered stores still load.
func (s *CSVStore) Load() ([]Entry, error) {
	f, err := s.fs.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, pkgerror.NewLedger(s.path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, pkgerror.NewLedger(s.path, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	if _, ok := cols["file_hash"]; !ok {
		return nil, pkgerror.NewLedger(s.path, fmt.Errorf("missing file_hash column in header %v", header))
	}

	entries := []Entry{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			// A torn final row from an interrupted append must not hide the
			// rows committed before it.
			slog.Warn("skipping unreadable ledger row", "path", s.path, "line", line, "error", err)
			continue
		}
		if len(record) != len(header) {
			slog.Warn("skipping ledger row with wrong field count", "path", s.path, "line", line,
				"got", len(record), "want", len(header))
			continue
		}

		e, err := parseRecord(record, cols)
		if err != nil {
			slog.Warn("skipping malformed ledger row", "path", s.path, "line", line, "error", err)
			continue
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// Append writes e as one row at the end of the file, writing the header first
// when the file is new or empty, and syncs before returning.
func (s *CSVStore) Append(e Entry) error {
	var size int64
	if info, err := s.fs.Stat(s.path); err == nil {
		size = info.Size()
	} else if !errors.Is(err, os.ErrNotExist) {
		return pkgerror.NewLedger(s.path, err)
	}

	// A row torn by a crash has no trailing newline; terminate it so the new
	// row starts on its own line.
	torn := false
	if size > 0 {
		ok, err := s.endsWithNewline(size)
		if err != nil {
			return pkgerror.NewLedger(s.path, err)
		}
		torn = !ok
	}

	f, err := s.fs.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return pkgerror.NewLedger(s.path, err)
	}

	if torn {
		if _, err := f.Write([]byte("\n")); err != nil {
			_ = f.Close()
			return pkgerror.NewLedger(s.path, err)
		}
	}

	w := csv.NewWriter(f)
	if size == 0 {
		if err := w.Write(Header); err != nil {
			_ = f.Close()
			return pkgerror.NewLedger(s.path, err)
		}
	}
	if err := w.Write(formatRecord(e)); err != nil {
		_ = f.Close()
		return pkgerror.NewLedger(s.path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return pkgerror.NewLedger(s.path, err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return pkgerror.NewLedger(s.path, err)
	}
	if err := f.Close(); err != nil {
		return pkgerror.NewLedger(s.path, err)
	}
	return nil
}

func (s *CSVStore) endsWithNewline(size int64) (bool, error) {
	f, err := s.fs.Open(s.path)
	if err != nil {
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()

	last := make([]byte, 1)
	if _, err := f.ReadAt(last, size-1); err != nil && err != io.EOF {
		return false, err
	}
	return last[0] == '\n', nil
}

func formatRecord(e Entry) []string {
	return []string{
		e.Hash,
		e.OriginalPath,
		e.ProcessedPath,
		e.OriginalFilename,
		e.ProcessedAt.Format(TimeLayout),
		strconv.FormatFloat(e.OriginalSizeMB, 'f', 2, 64),
		strconv.FormatFloat(e.ProcessedSizeMB, 'f', 2, 64),
		strconv.FormatFloat(e.Ratio, 'f', 2, 64),
	}
}

func parseRecord(record []string, cols map[string]int) (Entry, error) {
	get := func(name string) string {
		if i, ok := cols[name]; ok && i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	toFloat := func(name string) (float64, error) {
		v := get(name)
		if v == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", name, err)
		}
		return f, nil
	}

	e := Entry{
		Hash:             get("file_hash"),
		OriginalPath:     get("original_path"),
		ProcessedPath:    get("processed_path"),
		OriginalFilename: get("original_filename"),
	}
	if e.Hash == "" {
		return Entry{}, fmt.Errorf("empty file_hash")
	}

	if ts := get("date_processed"); ts != "" {
		at, err := time.ParseInLocation(TimeLayout, ts, time.Local)
		if err != nil {
			return Entry{}, fmt.Errorf("invalid date_processed: %w", err)
		}
		e.ProcessedAt = at
	}

	var err error
	if e.OriginalSizeMB, err = toFloat("original_size_mb"); err != nil {
		return Entry{}, err
	}
	if e.ProcessedSizeMB, err = toFloat("processed_size_mb"); err != nil {
		return Entry{}, err
	}
	if e.Ratio, err = toFloat("compression_ratio"); err != nil {
		return Entry{}, err
	}
	e.recomputeRatio()

	return e, nil
}
