// Package premium computes the premium of a coverage. It is pure apart from
// the clock used to derive a vehicle's age.
package premium

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gosuda/seguro/internal/domain"
)

// MinVehicleYear is the oldest model year accepted for automobile coverage.
const MinVehicleYear = 1900

var (
	rateAutomobile  = decimal.RequireFromString("0.05")
	rateResidential = decimal.RequireFromString("0.03")
	rateLife        = decimal.RequireFromString("0.01")
	rateGeneric     = decimal.RequireFromString("0.02")

	riskOld    = decimal.RequireFromString("1.5") // vehicle older than 10 years
	riskAged   = decimal.RequireFromString("1.2") // vehicle older than 5 years
	riskRecent = decimal.NewFromInt(1)
)

// Calculator maps a coverage to its premium.
type Calculator struct {
	now func() time.Time
}

// New returns a Calculator that reads the current year from the wall clock.
func New() *Calculator {
	return &Calculator{now: time.Now}
}

// NewWithClock returns a Calculator with a fixed clock, for tests and replays.
func NewWithClock(now func() time.Time) *Calculator {
	return &Calculator{now: now}
}

// Calculate returns the premium for c rounded to cents. Classes without a
// dedicated rate fall back to the generic rate.
func (calc *Calculator) Calculate(c domain.Coverage) (decimal.Decimal, error) {
	if !c.Value.IsPositive() {
		return decimal.Zero, fmt.Errorf("premium.Calculate: value %s: %w", c.Value, domain.ErrInvalidValuation)
	}

	var amount decimal.Decimal
	switch c.Class {
	case domain.ClassAutomobile:
		if c.Vehicle == nil {
			return decimal.Zero, fmt.Errorf("premium.Calculate: %w", domain.ErrInvalidCoverage)
		}
		factor, err := calc.vehicleRisk(c.Vehicle.Year)
		if err != nil {
			return decimal.Zero, err
		}
		amount = c.Value.Mul(rateAutomobile).Mul(factor)
	case domain.ClassResidential:
		amount = c.Value.Mul(rateResidential)
	case domain.ClassLife:
		amount = c.Value.Mul(rateLife)
	default:
		amount = c.Value.Mul(rateGeneric)
	}

	amount = amount.Round(2)
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("premium.Calculate: value %s rounds to a zero premium: %w", c.Value, domain.ErrInvalidValuation)
	}
	return amount, nil
}

// vehicleRisk checks the model year and returns the age multiplier. The
// older bracket must be tested first.
func (calc *Calculator) vehicleRisk(year int) (decimal.Decimal, error) {
	current := calc.now().Year()
	if year < MinVehicleYear || year > current {
		return decimal.Zero, fmt.Errorf("premium.vehicleRisk: year %d not in [%d, %d]: %w",
			year, MinVehicleYear, current, domain.ErrInvalidVehicleYear)
	}

	age := current - year
	switch {
	case age > 10:
		return riskOld, nil
	case age > 5:
		return riskAged, nil
	default:
		return riskRecent, nil
	}
}
