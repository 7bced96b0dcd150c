package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/curtools/cur/internal/conversion"
	"github.com/curtools/cur/internal/format"
)

// isWriterTerminal reports whether w is a terminal. Buffers used in tests
// are never terminals.
func isWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isTerminal(f)
	}
	return false
}

// palette styles the parts of a conversion. The zero palette renders plain text.
type palette struct {
	amount   lipgloss.Style
	code     lipgloss.Style
	check    lipgloss.Style
	copied   lipgloss.Style
	errLabel lipgloss.Style
	header   lipgloss.Style
	styled   bool
}

// paletteFor returns the colored palette for terminals and a plain one otherwise.
func paletteFor(w io.Writer) palette {
	if !isWriterTerminal(w) {
		return palette{}
	}
	return palette{
		amount:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		code:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		check:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		copied:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		errLabel: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		header:   lipgloss.NewStyle().Bold(true),
		styled:   true,
	}
}

func (p palette) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

// renderConversion writes the three result lines:
//
//	1,000 USD → 1,385,000 KRW
//	138만 5,000원 (1.4M)
//	Rate: 1 USD = 1385.0 KRW
func renderConversion(w io.Writer, r *conversion.Result) error {
	p := paletteFor(w)
	base := r.BaseCurrency.Code()
	target := r.TargetCurrency.Code()

	_, err := fmt.Fprintf(w, "%s %s → %s %s\n%s (%s)\nRate: 1 %s = %s %s\n",
		p.render(p.amount, format.WithCommas(r.BaseAmount)), p.render(p.code, base),
		p.render(p.amount, format.WithCommas(r.TargetAmount)), p.render(p.code, target),
		p.render(p.amount, format.Korean(r.TargetAmount, r.TargetCurrency)),
		p.render(p.amount, format.Short(r.TargetAmount)),
		p.render(p.code, base), p.render(p.amount, format.Rate(r.Rate)), p.render(p.code, target),
	)
	return err
}

// renderCopied confirms what was placed on the clipboard.
func renderCopied(w io.Writer, value string) error {
	p := paletteFor(w)
	_, err := fmt.Fprintf(w, "%s Copied: %s\n", p.render(p.check, "✓"), p.render(p.copied, value))
	return err
}
