// Package rates provides the statutory German base interest rate
// (Basiszinssatz, BGB §247) used for variable default interest on claims.
// The Bundesbank announces the rate semi-annually, effective January 1st
// and July 1st.
package rates

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/collection"
)

// Surcharges over the base rate per BGB §288.
var (
	// ConsumerSurcharge applies to claims against consumers (§288 Abs. 1).
	ConsumerSurcharge = decimal.NewFromInt(5)
	// CommercialSurcharge applies between merchants (§288 Abs. 2).
	CommercialSurcharge = decimal.NewFromInt(9)
)

type ratePeriod struct {
	from time.Time
	rate decimal.Decimal
}

// baseRateHistory lists the published Basiszinssatz values in ascending
// order of effective date. Extend at the bottom when the Bundesbank
// announces a new value.
var baseRateHistory = []ratePeriod{
	{date(2016, 7, 1), decimal.RequireFromString("-0.88")},
	{date(2023, 1, 1), decimal.RequireFromString("1.62")},
	{date(2023, 7, 1), decimal.RequireFromString("3.12")},
	{date(2024, 1, 1), decimal.RequireFromString("3.62")},
	{date(2024, 7, 1), decimal.RequireFromString("3.37")},
	{date(2025, 1, 1), decimal.RequireFromString("2.27")},
	{date(2025, 7, 1), decimal.RequireFromString("1.27")},
}

// BaseRateTable resolves the statutory base rate for a date and derives
// the default interest rate by adding the configured surcharge. It
// implements collection.RateLookup.
type BaseRateTable struct {
	surcharge decimal.Decimal
	history   []ratePeriod
}

// NewConsumerRateTable returns the lookup for consumer claims (base + 5)
func NewConsumerRateTable() *BaseRateTable {
	return &BaseRateTable{surcharge: ConsumerSurcharge, history: baseRateHistory}
}

// NewCommercialRateTable returns the lookup for commercial claims (base + 9)
func NewCommercialRateTable() *BaseRateTable {
	return &BaseRateTable{surcharge: CommercialSurcharge, history: baseRateHistory}
}

// BaseRateAt returns the bare Basiszinssatz in effect on the given date.
// Dates before the table start use the earliest known value.
func (t *BaseRateTable) BaseRateAt(at time.Time) decimal.Decimal {
	// First period starting after `at`.
	idx := sort.Search(len(t.history), func(i int) bool {
		return t.history[i].from.After(at)
	})
	if idx == 0 {
		return t.history[0].rate
	}
	return t.history[idx-1].rate
}

// RateAt implements collection.RateLookup: the statutory default interest
// rate (base rate plus surcharge) in effect on the given date.
func (t *BaseRateTable) RateAt(at time.Time) decimal.Decimal {
	return t.BaseRateAt(at).Add(t.surcharge)
}

var _ collection.RateLookup = (*BaseRateTable)(nil)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
