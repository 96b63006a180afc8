package qtoitem

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("qto item not found")

type Item struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"projectId"`
	CSICode     *string   `json:"csiCode"`
	Description string    `json:"itemDescription"`
	Quantity    *float64  `json:"quantity"`
	Unit        *string   `json:"unit"`
	UnitRate    *float64  `json:"unitRate"`
	TotalCost   *float64  `json:"totalCost"`
	Notes       *string   `json:"notes"`
	IsBOQItem   bool      `json:"isBoqItem"`
	BOQDivision *string   `json:"boqDivision"`
	CreatedByID string    `json:"createdById"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Request holds the client-editable fields. There is deliberately no total
// cost field: it is always derived.
type Request struct {
	CSICode     string   `json:"csiCode" binding:"omitempty,max=40"`
	Description string   `json:"itemDescription" binding:"max=2000"`
	Quantity    *float64 `json:"quantity"`
	Unit        string   `json:"unit" binding:"omitempty,max=40"`
	UnitRate    *float64 `json:"unitRate"`
	Notes       string   `json:"notes" binding:"omitempty,max=5000"`
	IsBOQItem   bool     `json:"isBoqItem"`
	BOQDivision string   `json:"boqDivision" binding:"omitempty,max=120"`
}

// TotalCost is quantity × unit rate when both are known, nil otherwise.
func TotalCost(quantity, unitRate *float64) *float64 {
	if quantity == nil || unitRate == nil {
		return nil
	}
	total := *quantity * *unitRate
	return &total
}

// SumTotalCost adds up item totals, counting unknown totals as zero.
func SumTotalCost(items []Item) float64 {
	var sum float64
	for _, it := range items {
		if it.TotalCost != nil {
			sum += *it.TotalCost
		}
	}
	return sum
}
