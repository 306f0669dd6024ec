package main

import (
	"PDFReduce/internal/automation"
	"PDFReduce/internal/pkglog"
	"PDFReduce/internal/toolexec"
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		dir     string
		app     string
		pattern string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "pptx2pdf",
		Short:        "Convert presentations in a folder to PDF with PowerPoint (macOS)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pkglog.InitLogging(cmd.ErrOrStderr(), slog.LevelWarn)
			ctx, _ := pkglog.NewRun(cmd.Context())

			exp := automation.NewPowerPoint(app, toolexec.NewExecRunner(timeout))
			_, err := automation.ConvertDir(ctx, dir, pattern, exp, cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "folder containing the presentations")
	cmd.Flags().StringVar(&app, "app", automation.DefaultApp, "application that opens and exports the files")
	cmd.Flags().StringVar(&pattern, "pattern", automation.DefaultPattern, "file name pattern to convert")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "timeout for each export")
	return cmd
}
