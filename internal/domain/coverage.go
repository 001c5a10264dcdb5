package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InsuranceClass is the variant tag of a policy's coverage.
type InsuranceClass string

const (
	ClassAutomobile  InsuranceClass = "automobile"
	ClassResidential InsuranceClass = "residential"
	ClassLife        InsuranceClass = "life"
)

// Valid reports whether a policy may be issued for the class.
func (c InsuranceClass) Valid() bool {
	switch c {
	case ClassAutomobile, ClassResidential, ClassLife:
		return true
	default:
		return false
	}
}

// Coverage is a tagged union: Class selects which of the payload pointers is
// meaningful. Value is the declared value common to every class.
type Coverage struct {
	Class       InsuranceClass  `json:"class"`
	Value       decimal.Decimal `json:"value"`
	Vehicle     *Vehicle        `json:"vehicle,omitempty"`
	Property    *Property       `json:"property,omitempty"`
	Beneficiary *LifeCover      `json:"life,omitempty"`
}

type Vehicle struct {
	Model string `json:"model"`
	Year  int    `json:"year"`
	Plate string `json:"plate"`
}

type Property struct {
	Address string `json:"address"`
}

type LifeCover struct {
	Beneficiaries []string `json:"beneficiaries"`
}

// Validate checks that the payload matching Class is present and complete
// and that no other payload is set. Valuation and vehicle year are the
// premium calculator's concern.
func (c Coverage) Validate() error {
	if err := c.validateTag(); err != nil {
		return err
	}
	switch c.Class {
	case ClassAutomobile:
		if c.Vehicle == nil {
			return fmt.Errorf("coverage: missing vehicle: %w", ErrInvalidCoverage)
		}
		if strings.TrimSpace(c.Vehicle.Model) == "" || strings.TrimSpace(c.Vehicle.Plate) == "" {
			return fmt.Errorf("coverage: vehicle model and plate are required: %w", ErrInvalidCoverage)
		}
	case ClassResidential:
		if c.Property == nil || strings.TrimSpace(c.Property.Address) == "" {
			return fmt.Errorf("coverage: property address is required: %w", ErrInvalidCoverage)
		}
	case ClassLife:
		if c.Beneficiary == nil || len(c.Beneficiary.Beneficiaries) == 0 {
			return fmt.Errorf("coverage: at least one beneficiary is required: %w", ErrInvalidCoverage)
		}
		for _, b := range c.Beneficiary.Beneficiaries {
			if strings.TrimSpace(b) == "" {
				return fmt.Errorf("coverage: empty beneficiary name: %w", ErrInvalidCoverage)
			}
		}
	default:
		return fmt.Errorf("coverage: unknown class %q: %w", c.Class, ErrInvalidCoverage)
	}
	return nil
}

// validateTag rejects payloads that do not belong to Class.
func (c Coverage) validateTag() error {
	stray := func(name string) error {
		return fmt.Errorf("coverage: %s payload not allowed for class %q: %w", name, c.Class, ErrInvalidCoverage)
	}
	if c.Vehicle != nil && c.Class != ClassAutomobile {
		return stray("vehicle")
	}
	if c.Property != nil && c.Class != ClassResidential {
		return stray("property")
	}
	if c.Beneficiary != nil && c.Class != ClassLife {
		return stray("life")
	}
	return nil
}

// AuditPayload renders the submitted coverage for audit events. Only the
// payload selected by Class is included.
func (c Coverage) AuditPayload() map[string]any {
	out := map[string]any{
		"class": string(c.Class),
		"value": c.Value.StringFixed(2),
	}
	switch c.Class {
	case ClassAutomobile:
		if c.Vehicle != nil {
			out["vehicle"] = map[string]any{"model": c.Vehicle.Model, "year": c.Vehicle.Year, "plate": c.Vehicle.Plate}
		}
	case ClassResidential:
		if c.Property != nil {
			out["property"] = map[string]any{"address": c.Property.Address}
		}
	case ClassLife:
		if c.Beneficiary != nil {
			out["beneficiaries"] = append([]string(nil), c.Beneficiary.Beneficiaries...)
		}
	}
	return out
}
