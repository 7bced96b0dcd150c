// Package format renders amounts and rates for display and the clipboard.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer is the locale-aware message printer for thousand separators.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var printer = message.NewPrinter(language.English)

// Thresholds for Short.
const (
	thousand = 1_000
	million  = 1_000_000
	billion  = 1_000_000_000
)

// groupInt formats an integer with thousand separators.
// Example: groupInt(1385000) returns "1,385,000".
func groupInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// WithCommas formats n with two decimals and thousand separators, then drops
// trailing zeros. Example: WithCommas(1234.00) returns "1,234".
func WithCommas(n float64) string {
	fixed := strconv.FormatFloat(n, 'f', 2, 64)

	intPart, fracPart, _ := strings.Cut(fixed, ".")
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return trimZeros(fixed)
	}

	grouped := groupInt(whole)
	if whole == 0 && strings.HasPrefix(intPart, "-") {
		grouped = "-" + grouped
	}
	return trimZeros(grouped + "." + fracPart)
}

// Plain formats n with at most two decimals and no separators.
// Example: Plain(1452.67) returns "1452.67".
func Plain(n float64) string {
	return trimZeros(strconv.FormatFloat(n, 'f', 2, 64))
}

// Short abbreviates n with a K, M or B suffix and one decimal. Values below
// one thousand keep up to two decimals. Example: Short(1_234_000) returns "1.2M".
func Short(n float64) string {
	switch {
	case n >= billion:
		return trimZeros(fmt.Sprintf("%.1f", n/billion)) + "B"
	case n >= million:
		return trimZeros(fmt.Sprintf("%.1f", n/million)) + "M"
	case n >= thousand:
		return trimZeros(fmt.Sprintf("%.1f", n/thousand)) + "K"
	default:
		return trimZeros(fmt.Sprintf("%.2f", n))
	}
}

// Rate formats an exchange rate in its shortest exact form, always with at
// least one decimal. Example: Rate(1385) returns "1385.0".
func Rate(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// trimZeros drops trailing fractional zeros and a dangling decimal point.
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	return strings.TrimRight(strings.TrimRight(s, "0"), ".")
}
