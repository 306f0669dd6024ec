package main

import (
	"PDFReduce/internal/config"
	"PDFReduce/internal/ledger"
	"PDFReduce/internal/metrics"
	"PDFReduce/internal/pkglog"
	"PDFReduce/internal/progress"
	"PDFReduce/internal/verify"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [input-folder]",
		Short: "Check ledger entries against the files on disk",
		Long: `Re-hashes every original recorded in the ledger and checks that it is
unchanged and that its compressed output still exists. The ledger is taken from
--db, or from beside the input folder when one is given.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runVerify,
	}
	config.RegisterVerify(cmd)
	return cmd
}

func runVerify(cmd *cobra.Command, args []string) error {
	input := ""
	if len(args) == 1 {
		input = args[0]
	}
	cfg, log, err := setup(cmd, input, config.Config.ValidateVerify)
	if err != nil {
		return err
	}
	ctx, _ := pkglog.NewRun(cmd.Context())
	out := cmd.OutOrStdout()

	fs := afero.NewOsFs()
	l, err := ledger.Load(ledger.NewCSVStore(fs, cfg.DB))
	if err != nil {
		return err
	}
	entries := l.Entries()
	fmt.Fprintf(out, "Verifying %d ledger entries from %s\n", len(entries), cfg.DB)

	stats := &metrics.Stats{}
	stats.Start()
	rep := progress.New(cfg.Progress, out, int64(len(entries)))
	res := verify.Audit(fs, entries, verify.Options{Algorithm: cfg.Hash}, stats, rep)
	rep.Finish()
	stats.Stop()

	verify.PrintSummary(out, res)
	log.InfoContext(ctx, "audit finished", "checked", res.Checked, "problems", len(res.Problems),
		"duration_ms", stats.Snapshot().DurationMs)

	if cfg.Report != "" {
		if err := verify.WriteReport(fs, cfg.Report, res); err != nil {
			return err
		}
		if len(res.Problems) > 0 {
			fmt.Fprintf(out, "Problems written to %s\n", cfg.Report)
		}
	}
	for _, p := range res.Problems {
		fmt.Fprintf(out, "%s: %s\n", p.Kind, p.Path)
	}
	return nil
}
