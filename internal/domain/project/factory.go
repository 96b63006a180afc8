package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFromRequest builds a fresh project owned by ownerID. The caller is
// responsible for validating req first.
func NewFromRequest(req Request, ownerID string) Project {
	now := time.Now().UTC()

	p := Project{
		ID:          uuid.NewString(),
		CreatedByID: ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	p.Apply(req)

	return p
}

// Apply copies the mutable fields of req onto p, filling defaults.
// Ownership and timestamps are left alone.
func (p *Project) Apply(req Request) {
	p.Name = strings.TrimSpace(req.Name)
	p.Number = nullIfEmpty(req.Number)
	p.ClientName = nullIfEmpty(req.ClientName)
	p.ClientContact = nullIfEmpty(req.ClientContact)
	p.Address = nullIfEmpty(req.Address)
	p.StartDate = nullIfEmpty(req.StartDate)
	p.ExpectedEndDate = nullIfEmpty(req.ExpectedEndDate)
	p.Description = nullIfEmpty(req.Description)
	p.ContractValue = req.ContractValue
	p.KeyReferenceNumbers = nullIfEmpty(req.KeyReferenceNumbers)

	p.Status = Status(strings.TrimSpace(req.Status))
	if p.Status == "" {
		p.Status = StatusPlanning
	}

	p.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if p.Currency == "" {
		p.Currency = DefaultCurrency
	}
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
