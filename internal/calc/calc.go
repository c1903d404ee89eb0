// Package calc holds the closed-form estimates shown by the loan and deposit
// screens. Results are rounded to two decimal places and are for display
// only; the backend computes the amounts it actually books.
package calc

import (
	"errors"
	"sort"

	"github.com/dmitrijs2005/bankfront/internal/client/models"
	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid calculator input")

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
	one     = decimal.NewFromInt(1)
)

// powPlaces bounds the intermediate precision of powInt.
const powPlaces = 24

func powInt(base decimal.Decimal, n int) decimal.Decimal {
	result := one
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base).Round(powPlaces)
		}
		base = base.Mul(base).Round(powPlaces)
		n >>= 1
	}
	return result
}

// monthlyRate converts an annual percentage to a monthly fraction.
func monthlyRate(annualPercent decimal.Decimal) decimal.Decimal {
	return annualPercent.Div(twelve).Div(hundred)
}

type EMIResult struct {
	EMI           decimal.Decimal
	TotalPayment  decimal.Decimal
	TotalInterest decimal.Decimal
}

// EMI computes the equated monthly instalment for principal borrowed at
// annualRate percent over months instalments.
func EMI(principal, annualRate decimal.Decimal, months int) (EMIResult, error) {
	if months <= 0 || principal.IsNegative() || annualRate.IsNegative() {
		return EMIResult{}, ErrInvalidInput
	}

	n := decimal.NewFromInt(int64(months))
	i := monthlyRate(annualRate)

	var emi decimal.Decimal
	if i.IsZero() {
		emi = principal.Div(n)
	} else {
		growth := powInt(one.Add(i), months)
		emi = principal.Mul(i).Mul(growth).Div(growth.Sub(one))
	}

	total := emi.Mul(n)
	return EMIResult{
		EMI:           emi.Round(2),
		TotalPayment:  total.Round(2),
		TotalInterest: total.Sub(principal).Round(2),
	}, nil
}

// DefaultFDRate is used when no rate card is available.
var DefaultFDRate = decimal.RequireFromString("5.5")

// DefaultFDRates is the rate card used until the backend supplies one.
func DefaultFDRates() []models.FDRate {
	row := func(months int, regular, senior string) models.FDRate {
		return models.FDRate{
			TenureMonths:      months,
			RegularRate:       decimal.RequireFromString(regular),
			SeniorCitizenRate: decimal.RequireFromString(senior),
		}
	}
	return []models.FDRate{
		row(1, "5.00", "5.50"),
		row(3, "5.50", "6.00"),
		row(6, "6.00", "6.50"),
		row(12, "6.50", "7.00"),
		row(24, "6.75", "7.25"),
		row(36, "7.00", "7.50"),
		row(60, "7.25", "7.75"),
		row(120, "7.50", "8.00"),
	}
}

// FDRateFor picks the rate of the largest breakpoint not above months.
// Tenures below the smallest breakpoint get the smallest breakpoint's rate.
func FDRateFor(rates []models.FDRate, months int, senior bool) decimal.Decimal {
	if len(rates) == 0 {
		return DefaultFDRate
	}
	sorted := append([]models.FDRate(nil), rates...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a].TenureMonths < sorted[b].TenureMonths })

	pick := sorted[0]
	for _, r := range sorted {
		if r.TenureMonths > months {
			break
		}
		pick = r
	}
	if senior {
		return pick.SeniorCitizenRate
	}
	return pick.RegularRate
}

type FDResult struct {
	Rate     decimal.Decimal
	Interest decimal.Decimal
	Maturity decimal.Decimal
}

// FD estimates simple interest on a fixed deposit.
func FD(principal decimal.Decimal, months int, rates []models.FDRate, senior bool) (FDResult, error) {
	if months <= 0 || principal.IsNegative() {
		return FDResult{}, ErrInvalidInput
	}
	rate := FDRateFor(rates, months, senior)
	years := decimal.NewFromInt(int64(months)).Div(twelve)
	interest := principal.Mul(rate).Mul(years).Div(hundred)

	return FDResult{
		Rate:     rate,
		Interest: interest.Round(2),
		Maturity: principal.Add(interest).Round(2),
	}, nil
}

type RDResult struct {
	Maturity       decimal.Decimal
	TotalDeposited decimal.Decimal
	InterestEarned decimal.Decimal
}

// RD estimates the maturity of monthly deposits compounded monthly.
func RD(monthly, annualRate decimal.Decimal, months int) (RDResult, error) {
	if months <= 0 || monthly.IsNegative() || annualRate.IsNegative() {
		return RDResult{}, ErrInvalidInput
	}
	t := decimal.NewFromInt(int64(months))
	i := monthlyRate(annualRate)
	deposited := monthly.Mul(t)

	maturity := deposited
	if !i.IsZero() {
		maturity = monthly.Mul(powInt(one.Add(i), months).Sub(one)).Div(i)
	}

	return RDResult{
		Maturity:       maturity.Round(2),
		TotalDeposited: deposited.Round(2),
		InterestEarned: maturity.Sub(deposited).Round(2),
	}, nil
}
