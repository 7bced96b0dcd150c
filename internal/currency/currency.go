// Package currency defines the supported currencies and parses user input
// into amounts and currency codes.
package currency

import (
	"strings"
)

// Currency is an ISO 4217 code supported by the converter.
type Currency string

// Supported currencies.
const (
	AUD Currency = "AUD"
	KRW Currency = "KRW"
	USD Currency = "USD"
)

// info holds the Korean display words for a currency.
type info struct {
	koreanName  string
	unit        string
	subunitName string
}

//nolint:gochecknoglobals // Fixed lookup table.
var registry = map[Currency]info{
	AUD: {koreanName: "호주 달러", unit: "달러", subunitName: "센트"},
	KRW: {koreanName: "원", unit: "원"},
	USD: {koreanName: "미국 달러", unit: "달러", subunitName: "센트"},
}

// Supported returns every supported currency in alphabetical order.
func Supported() []Currency {
	return []Currency{AUD, KRW, USD}
}

// Code returns the three-letter code.
func (c Currency) Code() string {
	return string(c)
}

func (c Currency) String() string {
	return string(c)
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	_, ok := registry[c]
	return ok
}

// KoreanName returns the full Korean name, e.g. "미국 달러".
func (c Currency) KoreanName() string {
	return registry[c].koreanName
}

// Unit returns the Korean word written after an amount, e.g. "달러".
func (c Currency) Unit() string {
	return registry[c].unit
}

// SubunitName returns the Korean word for the minor unit, or "" when the
// currency is written in whole units only.
func (c Currency) SubunitName() string {
	return registry[c].subunitName
}

// HasSubunit reports whether amounts are written with a minor unit.
func (c Currency) HasSubunit() bool {
	return c.SubunitName() != ""
}

// ParseCurrency trims and upper-cases s and returns the matching currency.
func ParseCurrency(s string) (Currency, error) {
	code := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if !code.Valid() {
		return "", newParseError("Unsupported currency: %s. Supported: %s", code, supportedList())
	}
	return code, nil
}

func supportedList() string {
	codes := make([]string, 0, len(registry))
	for _, c := range Supported() {
		codes = append(codes, c.Code())
	}
	return strings.Join(codes, ", ")
}
