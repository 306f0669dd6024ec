package automation

import (
	"PDFReduce/internal/pkgerror"
	"PDFReduce/internal/toolexec"
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// DefaultApp is the presentation application driven by PowerPoint.
const DefaultApp = "Microsoft PowerPoint"

// Exporter opens a presentation and saves it as PDF, returning the PDF path.
type Exporter interface {
	OpenAndExportAsPDF(ctx context.Context, sourcePath string) (string, error)
}

// PowerPoint exports through AppleScript run by osascript. It only works on
// macOS.
type PowerPoint struct {
	App    string
	Runner toolexec.Runner

	// GOOS overrides runtime.GOOS.
	GOOS string
}

func NewPowerPoint(app string, runner toolexec.Runner) *PowerPoint {
	if app == "" {
		app = DefaultApp
	}
	return &PowerPoint{App: app, Runner: runner}
}

// TargetPath is source with its extension replaced by .pdf.
func TargetPath(source string) string {
	return strings.TrimSuffix(source, filepath.Ext(source)) + ".pdf"
}

func (p *PowerPoint) OpenAndExportAsPDF(ctx context.Context, sourcePath string) (string, error) {
	goos := p.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	if goos != "darwin" {
		return "", pkgerror.NewAutomation(sourcePath, fmt.Errorf("osascript automation is not available on %s", goos))
	}

	src, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", pkgerror.NewAutomation(sourcePath, err)
	}
	target := TargetPath(src)

	if _, err := p.Runner.Run(ctx, "osascript", "-e", Script(p.App, src, target)); err != nil {
		return "", pkgerror.NewAutomation(sourcePath, err)
	}
	return target, nil
}

// Script builds the AppleScript that opens source in app and saves the active
// presentation as a PDF at target.
func Script(app, source, target string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "set pptPath to POSIX file \"%s\"\n", escape(source))
	fmt.Fprintf(&b, "set pdfPath to POSIX file \"%s\"\n", escape(target))
	fmt.Fprintf(&b, "tell application \"%s\"\n", escape(app))
	b.WriteString("\tactivate\n")
	b.WriteString("\topen pptPath\n")
	b.WriteString("\tdelay 1\n")
	b.WriteString("\tsave active presentation in pdfPath as save as PDF\n")
	b.WriteString("\tdelay 1\n")
	b.WriteString("end tell\n")
	return b.String()
}

// escape makes s safe inside an AppleScript string literal.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
