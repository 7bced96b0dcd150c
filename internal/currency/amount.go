package currency

import (
	"regexp"
	"strconv"
	"strings"
)

// Unit multipliers accepted as an amount suffix.
const (
	Thousand = 1_000
	Million  = 1_000_000
	Billion  = 1_000_000_000
)

// MaxAmount is the largest amount ParseAmount accepts (1,000 trillion).
// Converted amounts stay well inside int64 for any realistic rate.
const MaxAmount = 1_000_000_000_000_000

// amountPattern matches a non-negative decimal with an optional K/M/B suffix.
// Signs are rejected.
var amountPattern = regexp.MustCompile(`(?i)^(\d+\.?\d*|\.\d+)([kmb])?$`)

// ParseAmount parses a human-entered amount such as "1,000", ".75", "1.5k"
// or "2.3M". Thousands separators are ignored and the result is always
// greater than zero and at most MaxAmount.
func ParseAmount(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, newParseError("Amount cannot be empty")
	}

	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")

	match := amountPattern.FindStringSubmatch(clean)
	if match == nil {
		return 0, newParseError("Invalid amount format: %s", s)
	}

	number, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, newParseError("Invalid number: %s", match[1])
	}

	switch strings.ToLower(match[2]) {
	case "k":
		number *= Thousand
	case "m":
		number *= Million
	case "b":
		number *= Billion
	}

	if number == 0 {
		return 0, newParseError("Amount must be greater than zero")
	}
	if number > MaxAmount {
		return 0, newParseError("Amount is too large: %s (max 1,000,000,000,000,000)", s)
	}

	return number, nil
}
