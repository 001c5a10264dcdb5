package v1

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/gosuda/seguro/internal/domain"
	"github.com/gosuda/seguro/internal/orchestrator"
	"github.com/gosuda/seguro/internal/taxid"
)

// MutationStatus is embedded in every mutation response.
type MutationStatus struct {
	Outcome       orchestrator.Outcome `json:"outcome" enum:"success,partial_success" doc:"partial_success means the change was saved but the secondary audit log write failed"`
	AuditDegraded bool                 `json:"audit_degraded" doc:"True when the secondary audit log is missing this change"`
}

func mutationStatus(o orchestrator.Outcome) MutationStatus {
	return MutationStatus{Outcome: o, AuditDegraded: o.AuditDegraded()}
}

type ClientView struct {
	ID        uuid.UUID `json:"id"`
	TaxID     string    `json:"tax_id" doc:"Formatted national identifier"`
	Name      string    `json:"name"`
	BirthDate string    `json:"birth_date" format:"date"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func clientView(c *domain.Client) ClientView {
	return ClientView{
		ID:        c.ID,
		TaxID:     taxid.Format(c.TaxID),
		Name:      c.Name,
		BirthDate: c.BirthDate.Format(time.DateOnly),
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type VehicleBody struct {
	Model string `json:"model" minLength:"1" maxLength:"120"`
	Year  int    `json:"year" doc:"Model year"`
	Plate string `json:"plate" minLength:"1" maxLength:"16"`
}

type PropertyBody struct {
	Address string `json:"address" minLength:"1" maxLength:"500"`
}

// CoverageBody is the wire form of domain.Coverage. Value is a decimal
// string so that no precision is lost in transit.
type CoverageBody struct {
	Class         domain.InsuranceClass `json:"class" enum:"automobile,residential,life"`
	Value         string                `json:"value" pattern:"^[0-9]+(\\.[0-9]{1,2})?$" example:"20000.00" doc:"Declared value"`
	Vehicle       *VehicleBody          `json:"vehicle,omitempty" doc:"Required for automobile"`
	Property      *PropertyBody         `json:"property,omitempty" doc:"Required for residential"`
	Beneficiaries []string              `json:"beneficiaries,omitempty" doc:"Required for life"`
}

func (b CoverageBody) toDomain() (domain.Coverage, error) {
	value, err := decimal.NewFromString(b.Value)
	if err != nil {
		return domain.Coverage{}, fmt.Errorf("value %q: %w", b.Value, domain.ErrInvalidValuation)
	}

	c := domain.Coverage{Class: b.Class, Value: value}
	if b.Vehicle != nil {
		c.Vehicle = &domain.Vehicle{Model: b.Vehicle.Model, Year: b.Vehicle.Year, Plate: b.Vehicle.Plate}
	}
	if b.Property != nil {
		c.Property = &domain.Property{Address: b.Property.Address}
	}
	if len(b.Beneficiaries) > 0 {
		c.Beneficiary = &domain.LifeCover{Beneficiaries: b.Beneficiaries}
	}
	return c, nil
}

func coverageBody(c domain.Coverage) CoverageBody {
	b := CoverageBody{Class: c.Class, Value: c.Value.StringFixed(2)}
	if c.Vehicle != nil {
		b.Vehicle = &VehicleBody{Model: c.Vehicle.Model, Year: c.Vehicle.Year, Plate: c.Vehicle.Plate}
	}
	if c.Property != nil {
		b.Property = &PropertyBody{Address: c.Property.Address}
	}
	if c.Beneficiary != nil {
		b.Beneficiaries = c.Beneficiary.Beneficiaries
	}
	return b
}

type PolicyView struct {
	ID         uuid.UUID           `json:"id"`
	Number     string              `json:"number"`
	ClientID   uuid.UUID           `json:"client_id"`
	Coverage   CoverageBody        `json:"coverage"`
	Premium    string              `json:"premium" example:"1500.00"`
	IssueDate  string              `json:"issue_date" format:"date"`
	ExpiryDate string              `json:"expiry_date" format:"date"`
	Status     domain.PolicyStatus `json:"status" enum:"active,cancelled"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

func policyView(p *domain.Policy) PolicyView {
	return PolicyView{
		ID:         p.ID,
		Number:     p.Number,
		ClientID:   p.ClientID,
		Coverage:   coverageBody(p.Coverage),
		Premium:    p.Premium.StringFixed(2),
		IssueDate:  p.IssueDate.Format(time.DateOnly),
		ExpiryDate: p.ExpiryDate.Format(time.DateOnly),
		Status:     p.Status,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

type ClaimView struct {
	ID          uuid.UUID          `json:"id"`
	PolicyID    uuid.UUID          `json:"policy_id"`
	OccurredOn  string             `json:"occurred_on" format:"date"`
	Description string             `json:"description"`
	Status      domain.ClaimStatus `json:"status"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func claimView(c *domain.Claim) ClaimView {
	return ClaimView{
		ID:          c.ID,
		PolicyID:    c.PolicyID,
		OccurredOn:  c.OccurredOn.Format(time.DateOnly),
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func claimViews(claims []*domain.Claim) []ClaimView {
	out := make([]ClaimView, 0, len(claims))
	for _, c := range claims {
		out = append(out, claimView(c))
	}
	return out
}
