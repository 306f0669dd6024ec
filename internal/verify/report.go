package verify

import (
	"PDFReduce/internal/pkgerror"
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/afero"
)

// WriteReport writes one line per problem to path, replacing any previous
// report. Nothing is written when there are no problems.
func WriteReport(fs afero.Fs, path string, r *Result) error {
	if len(r.Problems) == 0 {
		return nil
	}
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return pkgerror.NewIO(path, err)
	}

	w := bufio.NewWriter(f)
	for _, p := range r.Problems {
		line := fmt.Sprintf("%s\t%s", p.Kind, p.Path)
		switch {
		case p.Computed != "":
			line += fmt.Sprintf("\texpected=%s\tcomputed=%s", p.Expected, p.Computed)
		case p.Err != nil:
			line += fmt.Sprintf("\terr=%v", p.Err)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			_ = f.Close()
			return pkgerror.NewIO(path, err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return pkgerror.NewIO(path, err)
	}
	if err := f.Close(); err != nil {
		return pkgerror.NewIO(path, err)
	}
	return nil
}
