package pkgerror

import (
	"errors"
	"fmt"
)

// Kind classifies errors by how far they are allowed to propagate.
type Kind int

const (
	KindUnknown     Kind = iota
	KindIO                // Missing or unreadable file; fatal for that file only.
	KindTool              // External tool exited non-zero or timed out.
	KindToolMissing       // External tool executable not found.
	KindDecode            // Image could not be decoded or re-encoded.
	KindLedger            // Durable ledger could not be read or appended.
	KindAutomation        // Desktop automation bridge failed.
	KindConfig            // Invalid configuration.
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindTool:
		return "tool"
	case KindToolMissing:
		return "tool_missing"
	case KindDecode:
		return "decode"
	case KindLedger:
		return "ledger"
	case KindAutomation:
		return "automation"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind must stop the whole run.
func (k Kind) Fatal() bool {
	return k == KindLedger || k == KindConfig
}

// Error is a classified error that can wrap an underlying cause.
type Error struct {
	err  error
	msg  string
	kind Kind
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	default:
		return e.kind.String() + " error"
	}
}

// String returns a verbose representation for debugging.
func (e *Error) String() string {
	return fmt.Sprintf("Kind: %s, Message: %s, Underlying Error: %v", e.kind, e.msg, e.err)
}

// Msg returns the message without the wrapped cause.
func (e *Error) Msg() string {
	return e.msg
}

// Kind returns the error classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.err
}

func new(err error, msg string, kind Kind) error {
	return &Error{err: err, msg: msg, kind: kind}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// NewIO wraps a filesystem failure on path.
func NewIO(path string, err error) error {
	return new(err, fmt.Sprintf("io %s", path), KindIO)
}

// NewTool wraps a failed external tool run. Output is trimmed to keep logs short.
func NewTool(name string, err error, output []byte) error {
	msg := fmt.Sprintf("%s failed", name)
	if out := trimOutput(output); out != "" {
		msg = fmt.Sprintf("%s failed (%s)", name, out)
	}
	return new(err, msg, KindTool)
}

// NewToolMissing reports that an external executable could not be started.
func NewToolMissing(name string, err error) error {
	return new(err, fmt.Sprintf("%s not found", name), KindToolMissing)
}

// NewDecode wraps an image decode/encode failure for path.
func NewDecode(path string, err error) error {
	return new(err, fmt.Sprintf("decode %s", path), KindDecode)
}

// NewLedger wraps a ledger store failure.
func NewLedger(path string, err error) error {
	return new(err, fmt.Sprintf("ledger %s", path), KindLedger)
}

// NewAutomation wraps a desktop automation failure for source.
func NewAutomation(source string, err error) error {
	return new(err, fmt.Sprintf("export %s", source), KindAutomation)
}

// NewConfig reports an invalid configuration value.
func NewConfig(msg string) error {
	return new(nil, msg, KindConfig)
}

func trimOutput(output []byte) string {
	const limit = 200
	s := string(output)
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
