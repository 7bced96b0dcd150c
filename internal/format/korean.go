package format

import (
	"math"
	"strings"

	"github.com/curtools/cur/internal/currency"
)

// Korean counting units.
const (
	jo  = 1_000_000_000_000
	eok = 100_000_000
	man = 10_000

	centsPerUnit = 100

	// maxWholeUnits caps the integer part so it always fits in an int64.
	maxWholeUnits = 1e18
)

// Korean writes amount the way it is read in Korean: grouped by 조, 억 and
// 만, followed by the currency's Korean unit. Currencies with a minor unit
// show it separately, e.g. "1 달러 50 센트"; KRW rounds to whole won.
func Korean(amount float64, c currency.Currency) string {
	amount = math.Min(amount, maxWholeUnits)
	if c.HasSubunit() {
		return koreanWithSubunit(amount, c)
	}
	return koreanWholeUnits(amount, c)
}

func koreanWholeUnits(amount float64, c currency.Currency) string {
	n := int64(math.RoundToEven(amount))
	if n <= 0 {
		return "0" + c.Unit()
	}
	return strings.Join(koreanGroups(n), " ") + c.Unit()
}

func koreanWithSubunit(amount float64, c currency.Currency) string {
	whole := int64(amount)
	cents := int64(math.RoundToEven((amount - float64(whole)) * centsPerUnit))
	if cents >= centsPerUnit {
		whole++
		cents -= centsPerUnit
	}

	var parts []string
	if whole > 0 {
		parts = append(parts, strings.Join(koreanGroups(whole), " ")+" "+c.Unit())
	}
	if cents > 0 {
		parts = append(parts, groupInt(cents)+" "+c.SubunitName())
	}

	if len(parts) == 0 {
		return "0 " + c.Unit()
	}
	return strings.Join(parts, " ")
}

// koreanGroups splits a positive n into its 조, 억, 만 and remainder groups,
// omitting empty ones. Each group is written with thousand separators.
func koreanGroups(n int64) []string {
	var groups []string
	for _, unit := range []struct {
		size int64
		name string
	}{
		{size: jo, name: "조"},
		{size: eok, name: "억"},
		{size: man, name: "만"},
	} {
		if n >= unit.size {
			groups = append(groups, groupInt(n/unit.size)+unit.name)
			n %= unit.size
		}
	}
	if n > 0 {
		groups = append(groups, groupInt(n))
	}
	return groups
}
