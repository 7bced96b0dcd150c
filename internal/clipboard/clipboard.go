// Package clipboard copies conversion results to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/curtools/cur/internal/conversion"
	"github.com/curtools/cur/internal/format"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("no clipboard utility available")

// Format selects how the target amount is written to the clipboard.
type Format string

// Supported formats.
const (
	FormatDefault Format = "default"
	FormatPlain   Format = "plain"
	FormatShort   Format = "short"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatDefault, FormatPlain, FormatShort}
}

// ParseFormat validates a format name. Empty selects FormatDefault.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatDefault, nil
	case FormatDefault, FormatPlain, FormatShort:
		return f, nil
	default:
		return "", fmt.Errorf("invalid copy format %q (valid: default, plain, short)", s)
	}
}

// Value renders the target amount of r in format f.
func Value(r *conversion.Result, f Format) string {
	switch f {
	case FormatPlain:
		return format.Plain(r.TargetAmount)
	case FormatShort:
		return format.Short(r.TargetAmount)
	default:
		return format.WithCommas(r.TargetAmount)
	}
}

// Copier writes text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// System is the operating system clipboard.
type System struct{}

// Copy writes text to the system clipboard.
func (System) Copy(text string) error {
	if clipboard.Unsupported {
		return ErrUnsupported
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}

// Recorder keeps copied text in memory.
type Recorder struct {
	mu     sync.Mutex
	copies []string
	Err    error
}

// Copy records text, or returns r.Err when set.
func (r *Recorder) Copy(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.copies = append(r.copies, text)
	return nil
}

// Last returns the most recently copied text.
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.copies) == 0 {
		return ""
	}
	return r.copies[len(r.copies)-1]
}

// Copies returns every recorded text in order.
func (r *Recorder) Copies() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.copies...)
}
