package qtoitem

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

func NewFromRequest(projectID string, req Request, creatorID string) Item {
	now := time.Now().UTC()

	it := Item{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		CreatedByID: creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	it.Apply(req)

	return it
}

// Apply copies req onto the item and recomputes the total cost.
func (it *Item) Apply(req Request) {
	it.CSICode = nullIfEmpty(req.CSICode)
	it.Description = strings.TrimSpace(req.Description)
	it.Quantity = req.Quantity
	it.Unit = nullIfEmpty(req.Unit)
	it.UnitRate = req.UnitRate
	it.TotalCost = TotalCost(req.Quantity, req.UnitRate)
	it.Notes = nullIfEmpty(req.Notes)
	it.IsBOQItem = req.IsBOQItem
	it.BOQDivision = nullIfEmpty(req.BOQDivision)
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
