package automation

import (
	"PDFReduce/internal/pkgerror"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultPattern selects the presentations ConvertDir exports.
const DefaultPattern = "*.pptx"

type Report struct {
	Converted int
	Failed    int
}

// ConvertDir exports every file in dir matching pattern, in name order, and
// writes one line per file to w. A failed export does not stop the others.
// Office lock files ("~$name") are ignored.
func ConvertDir(ctx context.Context, dir, pattern string, exp Exporter, w io.Writer) (Report, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return Report{}, pkgerror.NewConfig(fmt.Sprintf("bad pattern %q: %v", pattern, err))
	}
	sort.Strings(matches)

	var rep Report
	for _, src := range matches {
		name := filepath.Base(src)
		if strings.HasPrefix(name, "~$") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		target, err := exp.OpenAndExportAsPDF(ctx, src)
		if err != nil {
			rep.Failed++
			slog.Warn("export failed", "file", src, "err", err)
			fmt.Fprintf(w, "❌ Failed to convert %s: %v\n", name, unwrapMsg(err))
			continue
		}
		rep.Converted++
		fmt.Fprintf(w, "✅ Converted %s -> %s\n", name, filepath.Base(target))
	}

	if rep.Converted+rep.Failed == 0 {
		fmt.Fprintf(w, "No files matching %s in %s\n", pattern, dir)
	}
	return rep, nil
}

func unwrapMsg(err error) error {
	if cause := errors.Unwrap(err); cause != nil {
		return cause
	}
	return err
}
