package verify

import (
	"PDFReduce/internal/digest"
	"PDFReduce/internal/fsutil"
	"PDFReduce/internal/ledger"
	"PDFReduce/internal/metrics"
	"PDFReduce/internal/progress"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// Audit checks every ledger entry against the filesystem: the original must
// still exist and hash to the recorded value, and the processed output must
// exist. Entries are checked in ledger order, one at a time.
func Audit(fs afero.Fs, entries []ledger.Entry, opts Options, stats *metrics.Stats, rep progress.Reporter) *Result {
	if stats == nil {
		stats = &metrics.Stats{}
	}
	if rep == nil {
		rep = progress.Nop{}
	}
	res := &Result{}
	stats.AddFound(int64(len(entries)))

	for i, e := range entries {
		rep.Update(fmt.Sprintf("Verifying %d/%d: %s", i+1, len(entries), filepath.Base(e.OriginalPath)))
		stats.IncProcessed()
		res.Checked++

		if p, ok := check(fs, e, opts, stats); !ok {
			stats.IncErrors()
			res.Problems = append(res.Problems, p)
		} else {
			res.OK++
		}
		progress.Advance(rep)
	}
	return res
}

func check(fs afero.Fs, e ledger.Entry, opts Options, stats *metrics.Stats) (Problem, bool) {
	exists, err := fsutil.Exists(fs, e.OriginalPath)
	if err != nil {
		return Problem{Kind: HashError, Path: e.OriginalPath, Err: err}, false
	}
	if !exists {
		return Problem{Kind: MissingOriginal, Path: e.OriginalPath, Expected: e.Hash}, false
	}

	if !opts.SkipRehash {
		computed, err := digest.FileHashHex(fs, e.OriginalPath, opts.Algorithm, stats.AddHashed)
		if err != nil {
			return Problem{Kind: HashError, Path: e.OriginalPath, Expected: e.Hash, Err: err}, false
		}
		if !digest.Equal(computed, e.Hash) {
			return Problem{Kind: Changed, Path: e.OriginalPath, Expected: e.Hash, Computed: computed}, false
		}
	}

	exists, err = fsutil.Exists(fs, e.ProcessedPath)
	if err != nil {
		return Problem{Kind: HashError, Path: e.ProcessedPath, Err: err}, false
	}
	if !exists {
		return Problem{Kind: MissingOutput, Path: e.ProcessedPath}, false
	}
	return Problem{}, true
}

// Counts groups problems by kind.
func (r *Result) Counts() map[string]int {
	out := make(map[string]int)
	for _, p := range r.Problems {
		out[p.Kind]++
	}
	return out
}

func PrintSummary(w io.Writer, r *Result) {
	counts := r.Counts()
	fmt.Fprintln(w, "--- Ledger Audit ---")
	fmt.Fprintln(w, "Entries checked:", r.Checked)
	fmt.Fprintln(w, "OK:", r.OK)
	for _, kind := range []string{MissingOriginal, Changed, MissingOutput, HashError} {
		if n := counts[kind]; n > 0 {
			fmt.Fprintf(w, "%s: %d\n", kind, n)
		}
	}
}
