package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Reporter shows transient single-line status during long operations.
// Note prints a message that stays on screen above the status line.
type Reporter interface {
	Update(msg string)
	Note(msg string)
	Finish()
}

// Nop discards everything.
type Nop struct{}

func (Nop) Update(string) {}
func (Nop) Note(string)   {}
func (Nop) Finish()       {}

// Line overwrites one terminal line with carriage returns.
type Line struct {
	mu      sync.Mutex
	w       io.Writer
	lastLen int
}

func NewLine(w io.Writer) *Line {
	return &Line{w: w}
}

func (l *Line) Update(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pad := ""
	if n := l.lastLen - len(msg); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprintf(l.w, "\r%s%s", msg, pad)
	l.lastLen = len(msg)
}

func (l *Line) Note(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clear()
	fmt.Fprintln(l.w, msg)
}

func (l *Line) Finish() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.clear()
}

func (l *Line) clear() {
	if l.lastLen == 0 {
		return
	}
	fmt.Fprintf(l.w, "\r%s\r", strings.Repeat(" ", l.lastLen))
	l.lastLen = 0
}
