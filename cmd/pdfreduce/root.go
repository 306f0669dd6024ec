package main

import (
	"PDFReduce/internal/compress"
	"PDFReduce/internal/config"
	"PDFReduce/internal/ledger"
	"PDFReduce/internal/metrics"
	"PDFReduce/internal/pipeline"
	"PDFReduce/internal/pkglog"
	"PDFReduce/internal/progress"
	"PDFReduce/internal/toolexec"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var rule = strings.Repeat("=", 50)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pdfreduce <input-folder>",
		Short: "Compress PDFs with optimized images",
		Long: `Walks the input folder, compresses every PDF into a mirrored output folder and
records each compressed file by content hash in a CSV ledger. Files already in
the ledger are skipped on later runs.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         runCompress,
	}
	config.RegisterPersistent(root)
	config.RegisterCompress(root)

	root.AddCommand(newVerifyCmd())
	return root
}

// setup loads and validates configuration and installs the logger.
func setup(cmd *cobra.Command, input string, validate func(config.Config) error) (config.Config, *slog.Logger, error) {
	v, err := config.NewViper(cmd)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.FromViper(v, input)
	if err != nil {
		return cfg, nil, err
	}
	if err := validate(cfg); err != nil {
		return cfg, nil, err
	}
	level, _ := pkglog.ParseLevel(cfg.LogLevel)
	return cfg, pkglog.InitLogging(cmd.ErrOrStderr(), level), nil
}

func runCompress(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(cmd, args[0], config.Config.Validate)
	if err != nil {
		return err
	}
	ctx, _ := pkglog.NewRun(cmd.Context())
	out := cmd.OutOrStdout()

	printBanner(out, cfg)
	log.InfoContext(ctx, "run started", "input", cfg.Input, "engine", cfg.Engine, "dry_run", cfg.DryRun)

	fs := afero.NewOsFs()
	fmt.Fprintf(out, "Loading database from: %s\n", cfg.DB)
	l, err := ledger.Load(ledger.NewCSVStore(fs, cfg.DB))
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d previously processed files in database\n", l.Len())

	comp, err := compress.New(cfg.Engine,
		compress.Tools{Ghostscript: cfg.GsBin, Pdfimages: cfg.PdfimagesBin},
		toolexec.NewExecRunner(cfg.ToolTimeout),
		cfg.CompressOptions(), nil, log)
	if err != nil {
		return err
	}
	if !cfg.DryRun {
		comp.Probe()
	}

	fmt.Fprintln(out, "Scanning directories for PDF files...")
	p := &pipeline.Pipeline{
		Fs:         fs,
		Ledger:     l,
		Compressor: comp,
		Stats:      &metrics.Stats{},
		Log:        log,
		Cfg:        cfg.PipelineConfig(),
		NewReporter: func(total int64) progress.Reporter {
			fmt.Fprintf(out, "Found %d PDF files to process\n", total)
			r := progress.New(cfg.Progress, out, total)
			comp.Reporter = r
			return r
		},
	}

	sum, runErr := p.Run(ctx)
	fmt.Fprintln(out, "\n"+rule)
	metrics.Print(out, sum.Stats, sum.Savings)
	fmt.Fprintf(out, "Output folder: %s\n", cfg.Output)
	fmt.Fprintf(out, "Database: %s\n", cfg.DB)
	fmt.Fprintln(out, rule)

	if runErr != nil {
		return fmt.Errorf("run stopped: %w", runErr)
	}
	return nil
}

func printBanner(w io.Writer, cfg config.Config) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "PDF Compression Tool")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Input folder: %s\n", cfg.Input)
	fmt.Fprintf(w, "Output folder: %s\n", cfg.Output)
	fmt.Fprintf(w, "Database: %s\n", cfg.DB)
	fmt.Fprintf(w, "Settings: DPI=%d, Quality=%d, Max dimensions=%dx%d, Engine=%s\n",
		cfg.DPI, cfg.Quality, cfg.MaxWidth, cfg.MaxHeight, cfg.Engine)
	if cfg.DryRun {
		fmt.Fprintln(w, "Dry run: nothing will be written")
	}
	fmt.Fprintln(w, rule)
}
