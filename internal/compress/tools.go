package compress

import (
	"PDFReduce/internal/pkgerror"
	"PDFReduce/internal/toolexec"
	"context"
	"fmt"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Extractor dumps the raster images embedded in a PDF into dir.
type Extractor interface {
	Extract(ctx context.Context, input, dir string) error
}

// Recompressor writes a recompressed copy of input to output.
type Recompressor interface {
	Recompress(ctx context.Context, input, output string, opts Options) error
}

// Pdfimages extracts images with poppler's pdfimages.
type Pdfimages struct {
	Bin    string
	Runner toolexec.Runner
}

func (p Pdfimages) Extract(ctx context.Context, input, dir string) error {
	_, err := p.Runner.Run(ctx, p.Bin, "-all", input, filepath.Join(dir, "img"))
	return err
}

// Ghostscript recompresses through the pdfwrite device.
type Ghostscript struct {
	Bin    string
	Runner toolexec.Runner
}

// GhostscriptArgs is the pdfwrite profile used for every document.
func GhostscriptArgs(input, output string, dpi int) []string {
	return []string{
		"-sDEVICE=pdfwrite",
		"-dPDFSETTINGS=/ebook",
		"-dCompatibilityLevel=1.4",
		"-dDownsampleColorImages=true",
		fmt.Sprintf("-dColorImageResolution=%d", dpi),
		"-dDownsampleGrayImages=true",
		fmt.Sprintf("-dGrayImageResolution=%d", dpi),
		"-dDownsampleMonoImages=true",
		fmt.Sprintf("-dMonoImageResolution=%d", dpi),
		"-dJPEGQ=85",
		"-dNOPAUSE", "-dQUIET", "-dBATCH",
		"-sOutputFile=" + output,
		input,
	}
}

func (g Ghostscript) Recompress(ctx context.Context, input, output string, opts Options) error {
	_, err := g.Runner.Run(ctx, g.Bin, GhostscriptArgs(input, output, opts.DPI)...)
	return err
}

// PdfcpuExtractor extracts images in-process.
type PdfcpuExtractor struct{}

func (PdfcpuExtractor) Extract(ctx context.Context, input, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.ExtractImagesFile(input, dir, nil, nil); err != nil {
		return pkgerror.NewTool("pdfcpu extract", err, nil)
	}
	return nil
}

// PdfcpuOptimizer recompresses in-process. It does not resample images, so
// DPI is not applied.
type PdfcpuOptimizer struct{}

func (PdfcpuOptimizer) Recompress(ctx context.Context, input, output string, _ Options) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := api.OptimizeFile(input, output, nil); err != nil {
		return pkgerror.NewTool("pdfcpu optimize", err, nil)
	}
	return nil
}
