package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar is an overall per-file progress bar whose description carries the
// current status line.
type Bar struct {
	mu  sync.Mutex
	bar *progressbar.ProgressBar
	w   io.Writer
}

func NewBar(w io.Writer, totalFiles int64) *Bar {
	b := &Bar{w: w}

	b.bar = progressbar.NewOptions64(
		totalFiles,
		progressbar.OptionSetWriter(w),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionThrottle(120*time.Millisecond),
	)

	_ = b.bar.RenderBlank()
	return b
}

func (b *Bar) Update(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bar.Describe(msg)
}

func (b *Bar) Note(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Clear()
	fmt.Fprintln(b.w, msg)
	_ = b.bar.RenderBlank()
}

// Advance moves the bar forward by one file.
func (b *Bar) Advance() {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Add64(1)
}

func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	_ = b.bar.Finish()
	fmt.Fprintln(b.w)
}

// Advancer is implemented by reporters that track per-file completion.
type Advancer interface {
	Advance()
}

// Advance calls r.Advance when r tracks completion.
func Advance(r Reporter) {
	if a, ok := r.(Advancer); ok {
		a.Advance()
	}
}

// New returns the reporter for mode: "bar", "line" or "none".
func New(mode string, w io.Writer, totalFiles int64) Reporter {
	switch mode {
	case "bar":
		return NewBar(w, totalFiles)
	case "line":
		return NewLine(w)
	default:
		return Nop{}
	}
}
