package collection

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/inkasso/backend/internal/domain/shared"
)

var (
	hundred     = decimal.NewFromInt(100)
	daysPerYear = decimal.NewFromInt(365)
)

// RateLookup supplies the annual interest rate (percentage) in effect on a
// given date. It is the seam through which a statutory base-rate history is
// injected for variable-interest claims.
type RateLookup interface {
	RateAt(date time.Time) decimal.Decimal
}

// RateLookupFunc adapts an ordinary function to a RateLookup
type RateLookupFunc func(date time.Time) decimal.Decimal

// RateAt implements RateLookup
func (f RateLookupFunc) RateAt(date time.Time) decimal.Decimal {
	return f(date)
}

// Accrual is the result of a ledger computation as of an evaluation date
type Accrual struct {
	Interest    decimal.Decimal `json:"interest"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// Ledger computes accrued interest and the total claim amount for a case.
// It is a pure domain service: it never mutates its input and holds no
// state beyond the optional rate lookup.
//
// Interest is simple (non-compounding), day count actual/365, rounded
// half-up to 2 decimals. The total is rounded at the point of summation,
// not per component, so rounding error cannot compound across components.
type Ledger struct {
	// Rates is consulted for variable-interest cases. When nil the case's
	// flat InterestRate is used instead.
	Rates RateLookup
}

// NewLedger creates a ledger with the given rate lookup (may be nil)
func NewLedger(rates RateLookup) *Ledger {
	return &Ledger{Rates: rates}
}

// Accrue computes accrued interest and total claim amount as of asOf.
func (l *Ledger) Accrue(c *Case, asOf time.Time) (Accrual, error) {
	if err := validateFinancials(c); err != nil {
		return Accrual{}, err
	}

	interest := decimal.Zero

	if base := c.InterestBase(); base != nil && asOf.After(*base) {
		end := asOf
		// A fixed-interest claim stops accruing at its end date; variable
		// interest is open-ended per contract.
		if !c.IsVariableInterest && c.InterestEndDate != nil && c.InterestEndDate.Before(end) {
			end = *c.InterestEndDate
		}

		principalBase := c.PrincipalAmount
		if c.InterestOnCosts {
			principalBase = principalBase.Add(c.AdditionalCosts).Add(c.ProcedureCosts)
		}

		if c.IsVariableInterest && l.Rates != nil {
			interest = accrueVariable(principalBase, *base, end, l.Rates)
		} else {
			interest = accrueFlat(principalBase, *c.InterestRate, *base, end)
		}

		interest = interest.Round(2)
		if interest.IsNegative() {
			interest = decimal.Zero
		}
	}

	total := c.PrincipalAmount.
		Add(c.Costs).
		Add(interest).
		Add(c.AdditionalCosts).
		Add(c.ProcedureCosts).
		Round(2)

	return Accrual{Interest: interest, TotalAmount: total}, nil
}

// accrueFlat computes simple interest at a single rate over [from, to)
func accrueFlat(base, rate decimal.Decimal, from, to time.Time) decimal.Decimal {
	days := daysBetween(from, to)
	if days <= 0 {
		return decimal.Zero
	}
	return base.Mul(rate).Mul(decimal.NewFromInt(int64(days))).Div(hundred).Div(daysPerYear)
}

// accrueVariable walks the accrual window day by day, grouping consecutive
// days with an unchanged rate into segments. Statutory base rates change at
// most twice a year, so segments stay large.
func accrueVariable(base decimal.Decimal, from, to time.Time, rates RateLookup) decimal.Decimal {
	interest := decimal.Zero

	day := dateOnly(from)
	end := dateOnly(to)
	for day.Before(end) {
		rate := rates.RateAt(day)
		segmentDays := int64(0)
		for day.Before(end) && rates.RateAt(day).Equal(rate) {
			day = day.AddDate(0, 0, 1)
			segmentDays++
		}
		segment := base.Mul(rate).Mul(decimal.NewFromInt(segmentDays)).Div(hundred).Div(daysPerYear)
		interest = interest.Add(segment)
	}

	return interest
}

func validateFinancials(c *Case) error {
	for _, amount := range []decimal.Decimal{
		c.PrincipalAmount, c.Costs, c.AdditionalCosts, c.ProcedureCosts,
	} {
		if amount.IsNegative() {
			return shared.NewDomainError(shared.CodeInvalidFinancialInput, "Monetary amounts cannot be negative")
		}
	}
	if c.InterestRate != nil && c.InterestRate.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidFinancialInput, "Interest rate cannot be negative")
	}
	if c.InterestStartDate != nil && c.InterestEndDate != nil && c.InterestEndDate.Before(*c.InterestStartDate) {
		return shared.NewDomainError(shared.CodeInvalidFinancialInput, "Interest end date cannot precede interest start date")
	}
	return nil
}

// daysBetween counts whole calendar days between two instants, ignoring the
// time-of-day component (actual/365 day count)
func daysBetween(from, to time.Time) int {
	a := dateOnly(from)
	b := dateOnly(to)
	return int(b.Sub(a) / (24 * time.Hour))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
