package pkgerror

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestKindOf_TableDriven(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name      string
		err       error
		wantKind  Kind
		wantFatal bool
		wantMsg   string
	}{
		{"io", NewIO("/a.pdf", os.ErrNotExist), KindIO, false, "io /a.pdf: file does not exist"},
		{"tool", NewTool("gs", cause, []byte("bad args\n")), KindTool, false, "gs failed (bad args): boom"},
		{"tool no output", NewTool("gs", cause, nil), KindTool, false, "gs failed: boom"},
		{"tool missing", NewToolMissing("pdfimages", cause), KindToolMissing, false, "pdfimages not found: boom"},
		{"decode", NewDecode("img-000.ppm", cause), KindDecode, false, "decode img-000.ppm: boom"},
		{"ledger", NewLedger("db.csv", cause), KindLedger, true, "ledger db.csv: boom"},
		{"automation", NewAutomation("deck.pptx", cause), KindAutomation, false, "export deck.pptx: boom"},
		{"config", NewConfig("quality out of range"), KindConfig, true, "quality out of range"},
		{"wrapped", fmt.Errorf("outer: %w", NewIO("x", cause)), KindIO, false, "outer: io x: boom"},
		{"plain", cause, KindUnknown, false, "boom"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.wantKind {
				t.Fatalf("KindOf: got %v want %v", got, tt.wantKind)
			}
			if got := KindOf(tt.err).Fatal(); got != tt.wantFatal {
				t.Fatalf("Fatal: got %v want %v", got, tt.wantFatal)
			}
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Fatalf("Error(): got %q want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestUnwrapKeepsCause(t *testing.T) {
	err := NewIO("/missing.pdf", os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected errors.Is to find os.ErrNotExist in %v", err)
	}
	if !Is(err, KindIO) {
		t.Fatalf("expected Is(err, KindIO)")
	}
	if Is(nil, KindIO) {
		t.Fatalf("nil must not match any kind")
	}
}

func TestNewToolTrimsLongOutput(t *testing.T) {
	out := []byte(strings.Repeat("x", 500))
	err := NewTool("gs", errors.New("exit status 1"), out)

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error")
	}
	if !strings.HasSuffix(e.Msg(), "...)") {
		t.Fatalf("expected truncated output in message, got %q", e.Msg())
	}
	if len(e.Msg()) > 220 {
		t.Fatalf("message too long: %d", len(e.Msg()))
	}
}
