package compress

import (
	"PDFReduce/internal/fsutil"
	"PDFReduce/internal/imaging"
	"PDFReduce/internal/pkgerror"
	"PDFReduce/internal/progress"
	"PDFReduce/internal/toolexec"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

const bytesPerMB = 1024 * 1024

// Options control image bounds and the recompression profile.
type Options struct {
	DPI       int
	Quality   int
	MaxWidth  int
	MaxHeight int
}

// Compressor shrinks one PDF at a time. It works on the OS filesystem because
// the external tools need real paths.
type Compressor struct {
	Extractor    Extractor
	Recompressor Recompressor
	Opts         Options
	Reporter     progress.Reporter
	Log          *slog.Logger

	fs afero.Fs
}

// Engine names accepted by New.
const (
	EngineGhostscript = "gs"
	EnginePdfcpu      = "pdfcpu"
)

// Tools names the external binaries for the gs engine.
type Tools struct {
	Ghostscript string
	Pdfimages   string
}

// New wires the extractor and recompressor for engine.
func New(engine string, tools Tools, runner toolexec.Runner, opts Options, rep progress.Reporter, log *slog.Logger) (*Compressor, error) {
	c := &Compressor{Opts: opts, Reporter: rep, Log: log}
	switch engine {
	case "", EngineGhostscript:
		c.Extractor = Pdfimages{Bin: tools.Pdfimages, Runner: runner}
		c.Recompressor = Ghostscript{Bin: tools.Ghostscript, Runner: runner}
	case EnginePdfcpu:
		c.Extractor = PdfcpuExtractor{}
		c.Recompressor = PdfcpuOptimizer{}
	default:
		return nil, pkgerror.NewConfig(fmt.Sprintf("unknown engine %q", engine))
	}
	return c, nil
}

func (c *Compressor) osFs() afero.Fs {
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	return c.fs
}

func (c *Compressor) reporter() progress.Reporter {
	if c.Reporter == nil {
		return progress.Nop{}
	}
	return c.Reporter
}

func (c *Compressor) logger() *slog.Logger {
	if c.Log == nil {
		return slog.Default()
	}
	return c.Log
}

// Compress writes a compressed version of input to output and reports true.
// When any stage fails the input is copied to output unchanged and false is
// returned; only a failed fallback copy is an error.
func (c *Compressor) Compress(ctx context.Context, input, output string) (bool, error) {
	err := c.compress(ctx, input, output)
	if err == nil {
		return true, nil
	}

	name := filepath.Base(input)
	c.logger().WarnContext(ctx, "compression failed, copying original",
		"file", input, "kind", pkgerror.KindOf(err).String(), "err", err)
	c.reporter().Note(fmt.Sprintf("Error: %s: %v", name, err))

	_ = c.osFs().Remove(output)
	if cerr := fsutil.CopyFile(c.osFs(), input, output); cerr != nil {
		return false, fmt.Errorf("fallback copy: %w", cerr)
	}
	return false, nil
}

func (c *Compressor) compress(ctx context.Context, input, output string) error {
	rep := c.reporter()
	log := c.logger()
	name := filepath.Base(input)

	origSize, err := fsutil.Size(c.osFs(), input)
	if err != nil {
		return err
	}
	origMB := float64(origSize) / bytesPerMB

	status := fmt.Sprintf("Analyzing PDF: %s (%.2f MB)", name, origMB)
	if pages, perr := PageCount(input); perr == nil {
		status = fmt.Sprintf("Analyzing PDF: %s (%.2f MB, %d pages)", name, origMB, pages)
	} else {
		log.Debug("page count unavailable", "file", input, "err", perr)
	}
	rep.Update(status)

	scratch, err := os.MkdirTemp("", "pdfreduce-*")
	if err != nil {
		return pkgerror.NewIO(os.TempDir(), err)
	}
	defer func() {
		if rerr := os.RemoveAll(scratch); rerr != nil {
			log.Warn("scratch cleanup failed", "dir", scratch, "err", rerr)
		}
	}()

	rep.Update(fmt.Sprintf("Extracting images from %s", name))
	if err := c.Extractor.Extract(ctx, input, scratch); err != nil {
		return err
	}

	assets, err := listAssets(scratch)
	if err != nil {
		return err
	}
	c.normalizeAll(assets)

	rep.Update(fmt.Sprintf("Applying PDF compression (DPI: %d, Quality: %d)", c.Opts.DPI, c.Opts.Quality))
	if err := c.Recompressor.Recompress(ctx, input, output, c.Opts); err != nil {
		return err
	}

	newSize, err := fsutil.Size(c.osFs(), output)
	if err != nil {
		return err
	}
	if newSize == 0 {
		return pkgerror.NewTool("recompress", errors.New("empty output"), nil)
	}

	newMB := float64(newSize) / bytesPerMB
	reduction := 0.0
	if origSize > 0 {
		reduction = (1 - float64(newSize)/float64(origSize)) * 100
	}
	rep.Note(fmt.Sprintf("Completed: %s - %.2f MB → %.2f MB (%.1f%% reduction)", name, origMB, newMB, reduction))
	return nil
}

func (c *Compressor) normalizeAll(assets []string) {
	rep := c.reporter()
	if len(assets) == 0 {
		rep.Update("No images found to optimize")
		return
	}

	rep.Update(fmt.Sprintf("Processing %d images", len(assets)))
	opts := imaging.Options{MaxWidth: c.Opts.MaxWidth, MaxHeight: c.Opts.MaxHeight, Quality: c.Opts.Quality}
	for i, path := range assets {
		pct := float64(i+1) / float64(len(assets)) * 100
		rep.Update(fmt.Sprintf("Optimizing image %d/%d (%.1f%%)", i+1, len(assets), pct))

		res, err := imaging.NormalizeFile(path, opts)
		if err != nil {
			c.logger().Debug("image skipped", "asset", filepath.Base(path), "err", err)
			continue
		}
		if res.Resized {
			c.logger().Debug("image resized", "asset", filepath.Base(path),
				"from", fmt.Sprintf("%dx%d", res.Width, res.Height),
				"to", fmt.Sprintf("%dx%d", res.NewW, res.NewH))
		}
	}
}

func listAssets(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, pkgerror.NewIO(dir, err)
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// Probe checks that the configured tools can be started. A missing tool is
// not fatal: every document will then fall back to a plain copy.
func (c *Compressor) Probe() []error {
	var errs []error
	for _, bin := range c.binaries() {
		if err := toolexec.Available(bin); err != nil {
			c.logger().Warn("external tool unavailable, files will be copied uncompressed", "tool", bin, "err", err)
			errs = append(errs, err)
		}
	}
	return errs
}

func (c *Compressor) binaries() []string {
	var bins []string
	if p, ok := c.Extractor.(Pdfimages); ok {
		bins = append(bins, p.Bin)
	}
	if g, ok := c.Recompressor.(Ghostscript); ok {
		bins = append(bins, g.Bin)
	}
	return bins
}
