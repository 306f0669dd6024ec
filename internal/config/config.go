package config

import (
	"PDFReduce/internal/compress"
	"PDFReduce/internal/digest"
	"PDFReduce/internal/pipeline"
	"PDFReduce/internal/pkgerror"
	"PDFReduce/internal/pkglog"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. PDFREDUCE_DPI.
const EnvPrefix = "PDFREDUCE"

// Flag and config-file keys.
const (
	KeyConfig       = "config"
	KeyOutput       = "output"
	KeyDB           = "db"
	KeyDPI          = "dpi"
	KeyQuality      = "quality"
	KeyMaxWidth     = "max-width"
	KeyMaxHeight    = "max-height"
	KeyEngine       = "engine"
	KeyExt          = "ext"
	KeyHash         = "hash"
	KeyToolTimeout  = "tool-timeout"
	KeyGsBin        = "gs-bin"
	KeyPdfimagesBin = "pdfimages-bin"
	KeyLogLevel     = "log-level"
	KeyProgress     = "progress"
	KeyDryRun       = "dry-run"
	KeyReport       = "report"
)

type Config struct {
	Input  string
	Output string
	DB     string

	DPI       int
	Quality   int
	MaxWidth  int
	MaxHeight int

	Engine       string
	Ext          string
	Hash         string
	ToolTimeout  time.Duration
	GsBin        string
	PdfimagesBin string

	LogLevel string
	Progress string
	DryRun   bool

	Report string
}

// RegisterPersistent adds the flags shared by every subcommand.
func RegisterPersistent(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String(KeyConfig, "", "config file (yaml, toml or json)")
	f.String(KeyDB, "", "path to the CSV ledger (default: pdf_compression_log.csv beside the input folder)")
	f.String(KeyHash, digest.DefaultAlgorithm, "content hash algorithm: SHA256, SHA512, SHA384, SHA1 or MD5")
	f.String(KeyLogLevel, "info", "log level: debug, info, warn or error")
	f.String(KeyProgress, "bar", "progress display: bar, line or none")
}

// RegisterCompress adds the flags of the compress command.
func RegisterCompress(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP(KeyOutput, "o", "", "output folder (default: <input>_compressed beside the input folder)")
	f.Int(KeyDPI, 150, "target image resolution for the recompressor")
	f.Int(KeyQuality, 85, "JPEG quality for extracted images (0-100)")
	f.Int(KeyMaxWidth, 1920, "maximum image width in pixels")
	f.Int(KeyMaxHeight, 1080, "maximum image height in pixels")
	f.String(KeyEngine, compress.EngineGhostscript, "compression engine: gs or pdfcpu")
	f.String(KeyExt, ".pdf", "file extension to process, case-insensitive")
	f.Duration(KeyToolTimeout, 10*time.Minute, "timeout for each external tool run (0 disables)")
	f.String(KeyGsBin, "gs", "ghostscript executable")
	f.String(KeyPdfimagesBin, "pdfimages", "pdfimages executable")
	f.Bool(KeyDryRun, false, "report what would be done without writing anything")
}

// RegisterVerify adds the flags of the verify command.
func RegisterVerify(cmd *cobra.Command) {
	cmd.Flags().String(KeyReport, "", "write problems to this file")
}

// NewViper binds the flags of cmd and the PDFREDUCE_* environment, then reads
// the config file named by --config if any. Precedence is flag, env, file,
// default.
func NewViper(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, pkgerror.NewConfig(err.Error())
	}
	if err := v.BindPFlags(cmd.InheritedFlags()); err != nil {
		return nil, pkgerror.NewConfig(err.Error())
	}

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, pkgerror.NewConfig(fmt.Sprintf("read config %s: %v", file, err))
		}
	}
	return v, nil
}

// FromViper builds a Config for input and fills derived defaults. input may be
// empty for commands that only need the ledger.
func FromViper(v *viper.Viper, input string) (Config, error) {
	cfg := Config{
		Output:       v.GetString(KeyOutput),
		DB:           v.GetString(KeyDB),
		DPI:          v.GetInt(KeyDPI),
		Quality:      v.GetInt(KeyQuality),
		MaxWidth:     v.GetInt(KeyMaxWidth),
		MaxHeight:    v.GetInt(KeyMaxHeight),
		Engine:       strings.ToLower(strings.TrimSpace(v.GetString(KeyEngine))),
		Ext:          v.GetString(KeyExt),
		Hash:         strings.ToUpper(strings.TrimSpace(v.GetString(KeyHash))),
		ToolTimeout:  v.GetDuration(KeyToolTimeout),
		GsBin:        v.GetString(KeyGsBin),
		PdfimagesBin: v.GetString(KeyPdfimagesBin),
		LogLevel:     v.GetString(KeyLogLevel),
		Progress:     strings.ToLower(strings.TrimSpace(v.GetString(KeyProgress))),
		DryRun:       v.GetBool(KeyDryRun),
		Report:       v.GetString(KeyReport),
	}

	if input != "" {
		abs, err := resolve(input)
		if err != nil {
			return cfg, pkgerror.NewConfig(fmt.Sprintf("input folder %s: %v", input, err))
		}
		cfg.Input = abs
		if cfg.Output == "" {
			cfg.Output = pipeline.DefaultOutputRoot(abs)
		}
		if cfg.DB == "" {
			cfg.DB = pipeline.DefaultLedgerPath(abs)
		}
	}
	if cfg.Output != "" {
		abs, err := filepath.Abs(cfg.Output)
		if err != nil {
			return cfg, pkgerror.NewConfig(fmt.Sprintf("output folder %s: %v", cfg.Output, err))
		}
		cfg.Output = abs
	}
	if cfg.Ext != "" && !strings.HasPrefix(cfg.Ext, ".") {
		cfg.Ext = "." + cfg.Ext
	}
	return cfg, nil
}

// resolve makes path absolute and follows a symlinked root so the walk
// descends into it.
func resolve(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// Validate checks the compress settings.
func (c Config) Validate() error {
	var errs []error
	if c.Input == "" {
		errs = append(errs, errors.New("input folder is required"))
	}
	if c.Input != "" && filepath.Clean(c.Input) == filepath.Clean(c.Output) {
		errs = append(errs, errors.New("output folder must differ from the input folder"))
	}
	if c.DB == "" {
		errs = append(errs, errors.New("ledger path is required"))
	}
	if c.DPI <= 0 {
		errs = append(errs, fmt.Errorf("dpi must be positive, got %d", c.DPI))
	}
	if c.Quality < 0 || c.Quality > 100 {
		errs = append(errs, fmt.Errorf("quality must be between 0 and 100, got %d", c.Quality))
	}
	if c.MaxWidth <= 0 || c.MaxHeight <= 0 {
		errs = append(errs, fmt.Errorf("max dimensions must be positive, got %dx%d", c.MaxWidth, c.MaxHeight))
	}
	if c.Engine != compress.EngineGhostscript && c.Engine != compress.EnginePdfcpu {
		errs = append(errs, fmt.Errorf("engine must be %s or %s, got %q", compress.EngineGhostscript, compress.EnginePdfcpu, c.Engine))
	}
	if c.Ext == "" || c.Ext == "." {
		errs = append(errs, errors.New("extension must not be empty"))
	}
	if c.ToolTimeout < 0 {
		errs = append(errs, fmt.Errorf("tool timeout must not be negative, got %v", c.ToolTimeout))
	}
	errs = append(errs, c.validateCommon()...)
	return joinConfig(errs)
}

// ValidateVerify checks the settings the verify command uses.
func (c Config) ValidateVerify() error {
	var errs []error
	if c.DB == "" {
		errs = append(errs, errors.New("ledger path is required: pass --db or an input folder"))
	}
	errs = append(errs, c.validateCommon()...)
	return joinConfig(errs)
}

func (c Config) validateCommon() []error {
	var errs []error
	if !digest.Supported(c.Hash) {
		errs = append(errs, fmt.Errorf("unsupported hash algorithm %q", c.Hash))
	}
	if _, err := pkglog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Progress {
	case "bar", "line", "none":
	default:
		errs = append(errs, fmt.Errorf("progress must be bar, line or none, got %q", c.Progress))
	}
	return errs
}

func joinConfig(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return pkgerror.NewConfig(errors.Join(errs...).Error())
}

// CompressOptions returns the per-document settings.
func (c Config) CompressOptions() compress.Options {
	return compress.Options{DPI: c.DPI, Quality: c.Quality, MaxWidth: c.MaxWidth, MaxHeight: c.MaxHeight}
}

// PipelineConfig returns the batch settings.
func (c Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{
		InputRoot:     c.Input,
		OutputRoot:    c.Output,
		Ext:           c.Ext,
		HashAlgorithm: c.Hash,
		DryRun:        c.DryRun,
	}
}
