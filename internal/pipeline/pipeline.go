package pipeline

import (
	"PDFReduce/internal/digest"
	"PDFReduce/internal/fsutil"
	"PDFReduce/internal/ledger"
	"PDFReduce/internal/metrics"
	"PDFReduce/internal/pkgerror"
	"PDFReduce/internal/progress"
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
)

// Compressor produces output from input, reporting false when it fell back to
// a verbatim copy.
type Compressor interface {
	Compress(ctx context.Context, input, output string) (bool, error)
}

type Config struct {
	InputRoot     string
	OutputRoot    string
	Ext           string
	HashAlgorithm string
	DryRun        bool
}

// Pipeline runs one batch over an input tree.
type Pipeline struct {
	Fs         afero.Fs
	Ledger     *ledger.Ledger
	Compressor Compressor
	Reporter   progress.Reporter
	Stats      *metrics.Stats
	Log        *slog.Logger
	Cfg        Config

	// Now stamps ledger entries; time.Now when nil.
	Now func() time.Time

	// NewReporter, when set, is called once the file count is known.
	NewReporter func(total int64) progress.Reporter
}

// Summary is what one run did.
type Summary struct {
	Stats   metrics.Snapshot
	Savings ledger.Savings
	Units   []Unit
}

// Run processes every discovered file in order. Per-file failures are logged
// and counted; ledger failures and cancellation stop the run.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	p.defaults()
	p.Stats.Start()
	defer p.Stats.Stop()

	startLen := p.Ledger.Len()
	units, err := Discover(p.Fs, p.Cfg.InputRoot, p.Cfg.OutputRoot, p.Cfg.Ext, p.Log)
	if err != nil {
		return Summary{}, err
	}
	p.Stats.AddFound(int64(len(units)))
	p.Log.InfoContext(ctx, "discovered files", "count", len(units), "root", p.Cfg.InputRoot, "dry_run", p.Cfg.DryRun)

	if p.NewReporter != nil {
		p.Reporter = p.NewReporter(int64(len(units)))
	}
	defer p.Reporter.Finish()

	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return p.summary(units, startLen), err
		}

		if err := p.processUnit(ctx, u); err != nil {
			if pkgerror.KindOf(err).Fatal() {
				p.Log.ErrorContext(ctx, "stopping run", "file", u.Input, "err", err)
				return p.summary(units, startLen), err
			}
			p.Stats.IncErrors()
			p.Log.WarnContext(ctx, "file failed", "file", u.Input, "kind", pkgerror.KindOf(err).String(), "err", err)
			p.Reporter.Note(fmt.Sprintf("Error: %s: %v", filepath.Base(u.Input), err))
		}
		progress.Advance(p.Reporter)
	}

	return p.summary(units, startLen), nil
}

func (p *Pipeline) defaults() {
	if p.Log == nil {
		p.Log = slog.Default()
	}
	if p.Reporter == nil {
		p.Reporter = progress.Nop{}
	}
	if p.Stats == nil {
		p.Stats = &metrics.Stats{}
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	if p.Cfg.Ext == "" {
		p.Cfg.Ext = ".pdf"
	}
	if p.Cfg.OutputRoot == "" {
		p.Cfg.OutputRoot = DefaultOutputRoot(p.Cfg.InputRoot)
	}
}

func (p *Pipeline) summary(units []Unit, startLen int) Summary {
	p.Stats.Stop()
	return Summary{
		Stats:   p.Stats.Snapshot(),
		Savings: ledger.Summarize(p.Ledger.Since(startLen)),
		Units:   units,
	}
}

func (p *Pipeline) processUnit(ctx context.Context, u Unit) error {
	name := filepath.Base(u.Input)
	p.Reporter.Update(fmt.Sprintf("Hashing %s", name))

	hash, err := digest.FileHashHex(p.Fs, u.Input, p.Cfg.HashAlgorithm, p.Stats.AddHashed)
	if err != nil {
		return err
	}

	if p.Ledger.Contains(hash) {
		p.Stats.IncSkipped()
		p.Reporter.Note(fmt.Sprintf("Skipping: %s (already in database)", name))
		if p.Cfg.DryRun {
			return nil
		}
		return p.copyIfMissing(u)
	}

	if p.Cfg.DryRun {
		p.Stats.IncProcessed()
		p.Reporter.Note(fmt.Sprintf("Would compress: %s -> %s", u.Input, u.Output))
		return nil
	}

	if err := p.Fs.MkdirAll(u.OutputDir, 0o755); err != nil {
		return pkgerror.NewIO(u.OutputDir, err)
	}

	p.Stats.IncProcessed()
	ok, err := p.Compressor.Compress(ctx, u.Input, u.Output)
	if err != nil {
		return err
	}
	if !ok {
		p.Stats.IncFallback()
		p.Log.InfoContext(ctx, "copied uncompressed, will retry next run", "file", u.Input)
		return nil
	}

	origSize, err := fsutil.Size(p.Fs, u.Input)
	if err != nil {
		return err
	}
	procSize, err := fsutil.Size(p.Fs, u.Output)
	if err != nil {
		return err
	}

	entry := ledger.NewEntry(hash, u.Input, u.Output, origSize, procSize, p.Now())
	if err := p.Ledger.Append(entry); err != nil {
		return err
	}
	p.Stats.IncCompressed()
	p.Log.DebugContext(ctx, "recorded", "file", u.Input, "hash", hash, "ratio", entry.Ratio)
	return nil
}

func (p *Pipeline) copyIfMissing(u Unit) error {
	exists, err := fsutil.Exists(p.Fs, u.Output)
	if err != nil || exists {
		return err
	}
	if err := p.Fs.MkdirAll(u.OutputDir, 0o755); err != nil {
		return pkgerror.NewIO(u.OutputDir, err)
	}
	return fsutil.CopyFile(p.Fs, u.Input, u.Output)
}
