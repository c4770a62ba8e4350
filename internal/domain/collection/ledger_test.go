package collection

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkasso/backend/internal/domain/shared"
	"github.com/inkasso/backend/internal/domain/shared/valueobject"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func interestCase(t *testing.T, principal, rate string, variable bool, start time.Time, end *time.Time) *Case {
	t.Helper()
	c := newTestCase(t, principal)
	require.NoError(t, c.SetInterestTerms(decimal.RequireFromString(rate), variable, start, end, false))
	return c
}

func TestLedger_Accrue_FlatFullYear(t *testing.T) {
	// 1000.00 at 5% over the 365 days of 2023 is exactly 50.00.
	c := interestCase(t, "1000.00", "5", false, date(2023, 1, 1), nil)

	accrual, err := NewLedger(nil).Accrue(c, date(2024, 1, 1))
	require.NoError(t, err)

	assert.Equal(t, "50.00", accrual.Interest.StringFixed(2))
	assert.Equal(t, "1050.00", accrual.TotalAmount.StringFixed(2))
}

func TestLedger_Accrue_FlatPartialPeriod(t *testing.T) {
	// 73 days is exactly a fifth of the year: 1000 * 5% / 5 = 10.00.
	c := interestCase(t, "1000.00", "5", false, date(2023, 3, 1), nil)

	accrual, err := NewLedger(nil).Accrue(c, date(2023, 5, 13))
	require.NoError(t, err)

	assert.Equal(t, "10.00", accrual.Interest.StringFixed(2))
}

func TestLedger_Accrue_RoundsHalfUp(t *testing.T) {
	// 912.50 * 5% * 1/365 = 0.125 exactly, which rounds up to 0.13.
	c := interestCase(t, "912.50", "5", false, date(2023, 1, 1), nil)

	accrual, err := NewLedger(nil).Accrue(c, date(2023, 1, 2))
	require.NoError(t, err)
	assert.Equal(t, "0.13", accrual.Interest.StringFixed(2))
}

func TestLedger_Accrue_Idempotent(t *testing.T) {
	c := interestCase(t, "1234.56", "9.17", false, date(2023, 2, 14), nil)
	ledger := NewLedger(nil)
	asOf := date(2023, 11, 30)

	first, err := ledger.Accrue(c, asOf)
	require.NoError(t, err)
	second, err := ledger.Accrue(c, asOf)
	require.NoError(t, err)

	assert.True(t, first.Interest.Equal(second.Interest))
	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
}

func TestLedger_Accrue_DoesNotMutateCase(t *testing.T) {
	c := interestCase(t, "1000.00", "5", false, date(2023, 1, 1), nil)
	interestBefore := c.Interest
	versionBefore := c.Version

	_, err := NewLedger(nil).Accrue(c, date(2023, 12, 1))
	require.NoError(t, err)

	assert.True(t, c.Interest.Equal(interestBefore))
	assert.Equal(t, versionBefore, c.Version)
}

func TestLedger_Accrue_NoInterestConfigured(t *testing.T) {
	c := newTestCase(t, "500.00")
	require.NoError(t, c.SetCosts(mustMoney(t, "40.00"), valueobject.ZeroEUR(), valueobject.ZeroEUR()))

	accrual, err := NewLedger(nil).Accrue(c, date(2026, 6, 1))
	require.NoError(t, err)

	assert.True(t, accrual.Interest.IsZero())
	assert.Equal(t, "540.00", accrual.TotalAmount.StringFixed(2))
}

func TestLedger_Accrue_BeforeStartIsZero(t *testing.T) {
	c := interestCase(t, "1000.00", "5", false, date(2026, 6, 1), nil)

	accrual, err := NewLedger(nil).Accrue(c, date(2026, 3, 1))
	require.NoError(t, err)
	assert.True(t, accrual.Interest.IsZero())

	// Same day is zero days of accrual.
	accrual, err = NewLedger(nil).Accrue(c, date(2026, 6, 1))
	require.NoError(t, err)
	assert.True(t, accrual.Interest.IsZero())
}

func TestLedger_Accrue_ClampsToEndDate(t *testing.T) {
	end := date(2024, 1, 1)
	c := interestCase(t, "1000.00", "5", false, date(2023, 1, 1), &end)

	// Two years past the end date still accrues only the 2023 year.
	accrual, err := NewLedger(nil).Accrue(c, date(2026, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "50.00", accrual.Interest.StringFixed(2))
}

func TestLedger_Accrue_InterestOnCosts(t *testing.T) {
	c := interestCase(t, "1000.00", "5", false, date(2023, 3, 1), nil)
	require.NoError(t, c.SetCosts(valueobject.ZeroEUR(), mustMoney(t, "100.00"), mustMoney(t, "100.00")))
	c.InterestOnCosts = true

	// Base 1200 over 73 days at 5%: 1200 * 0.05 / 5 = 12.00.
	accrual, err := NewLedger(nil).Accrue(c, date(2023, 5, 13))
	require.NoError(t, err)
	assert.Equal(t, "12.00", accrual.Interest.StringFixed(2))
	assert.Equal(t, "1212.00", accrual.TotalAmount.StringFixed(2))
}

func TestLedger_Accrue_VariableUsesRateLookup(t *testing.T) {
	cutover := date(2023, 1, 6)
	rates := RateLookupFunc(func(d time.Time) decimal.Decimal {
		if d.Before(cutover) {
			return decimal.RequireFromString("3.65")
		}
		return decimal.RequireFromString("7.3")
	})

	c := interestCase(t, "1000.00", "3.65", true, date(2023, 1, 1), nil)

	// 5 days at 3.65% (0.50) plus 5 days at 7.3% (1.00).
	accrual, err := NewLedger(rates).Accrue(c, date(2023, 1, 11))
	require.NoError(t, err)
	assert.Equal(t, "1.50", accrual.Interest.StringFixed(2))
}

func TestLedger_Accrue_VariableWithoutLookupFallsBackToFlat(t *testing.T) {
	c := interestCase(t, "1000.00", "5", true, date(2023, 1, 1), nil)

	accrual, err := NewLedger(nil).Accrue(c, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "50.00", accrual.Interest.StringFixed(2))
}

func TestLedger_Accrue_VariableIgnoresEndDate(t *testing.T) {
	end := date(2023, 7, 1)
	rates := RateLookupFunc(func(time.Time) decimal.Decimal {
		return decimal.NewFromInt(5)
	})
	c := interestCase(t, "1000.00", "5", true, date(2023, 1, 1), &end)

	accrual, err := NewLedger(rates).Accrue(c, date(2024, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, "50.00", accrual.Interest.StringFixed(2), "variable interest runs past the end date")
}

func TestLedger_Accrue_RejectsCorruptFinancials(t *testing.T) {
	c := newTestCase(t, "100.00")
	c.Costs = decimal.NewFromInt(-10)

	_, err := NewLedger(nil).Accrue(c, date(2026, 1, 1))
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeInvalidFinancialInput))

	c2 := newTestCase(t, "100.00")
	start := date(2026, 5, 1)
	end := date(2026, 4, 1)
	rate := decimal.NewFromInt(5)
	c2.InterestRate = &rate
	c2.InterestStartDate = &start
	c2.InterestEndDate = &end

	_, err = NewLedger(nil).Accrue(c2, date(2026, 6, 1))
	assert.True(t, shared.IsDomainErrorWithCode(err, shared.CodeInvalidFinancialInput))
}
