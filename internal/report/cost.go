package report

import (
	"fmt"
	"strings"

	"github.com/trafficlens/trafficlens/internal/config"
)

// CostBreakdown translates time spent on non-productive traffic into money
// and everyday equivalents, priced from the configured rate table.
type CostBreakdown struct {
	Hours         float64
	PLN           float64
	USD           float64
	EUR           float64
	GoldGrams     float64
	BTC           float64
	CoffeeCups    float64
	NetflixMonths float64
}

// Cost prices a millisecond quantity of lost time against the rate table.
func Cost(ms float64, rates config.Rates) CostBreakdown {
	hours := ms / msPerHour
	pln := hours * rates.HourlyPLN
	return CostBreakdown{
		Hours:         hours,
		PLN:           pln,
		USD:           pln / rates.USD,
		EUR:           pln / rates.EUR,
		GoldGrams:     pln / rates.GoldGramPLN,
		BTC:           pln / rates.BTCPLN,
		CoffeeCups:    pln / rates.CoffeePLN,
		NetflixMonths: pln / rates.NetflixPLN,
	}
}

// Render produces the human-readable cost summary lines.
func (c CostBreakdown) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Estimated cost of %s of non-productive traffic:\n", FormatDuration(c.Hours*msPerHour))
	fmt.Fprintf(&b, "- %s PLN (%s USD, %s EUR)\n", FormatCount(c.PLN), FormatCount(c.USD), FormatCount(c.EUR))
	fmt.Fprintf(&b, "- %.3f g of gold, %.6f BTC\n", c.GoldGrams, c.BTC)
	fmt.Fprintf(&b, "- %.0f cups of coffee, %.1f months of Netflix\n", c.CoffeeCups, c.NetflixMonths)
	return b.String()
}
