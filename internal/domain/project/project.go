package project

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("project not found")
	ErrNumberTaken = errors.New("project number already in use")
)

type Status string

const (
	StatusPlanning   Status = "Planning"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
	StatusCancelled  Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusInProgress, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

const DefaultCurrency = "USD"

type Project struct {
	ID                  string    `json:"id"`
	Name                string    `json:"projectName"`
	Number              *string   `json:"projectNumber"`
	ClientName          *string   `json:"clientName"`
	ClientContact       *string   `json:"clientContact"`
	Address             *string   `json:"projectAddress"`
	StartDate           *string   `json:"startDate"`
	ExpectedEndDate     *string   `json:"expectedEndDate"`
	Status              Status    `json:"projectStatus"`
	Description         *string   `json:"projectDescription"`
	ContractValue       *float64  `json:"contractValue"`
	Currency            string    `json:"currency"`
	KeyReferenceNumbers *string   `json:"keyReferenceNumbers"`
	CreatedByID         string    `json:"createdById"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// Request is the full set of mutable fields, used for both create and
// update. Empty optional strings are stored as NULL.
type Request struct {
	Name                string   `json:"projectName" binding:"max=200"`
	Number              string   `json:"projectNumber" binding:"omitempty,max=60"`
	ClientName          string   `json:"clientName" binding:"omitempty,max=200"`
	ClientContact       string   `json:"clientContact" binding:"omitempty,max=200"`
	Address             string   `json:"projectAddress" binding:"omitempty,max=500"`
	StartDate           string   `json:"startDate" binding:"omitempty,datetime=2006-01-02"`
	ExpectedEndDate     string   `json:"expectedEndDate" binding:"omitempty,datetime=2006-01-02"`
	Status              string   `json:"projectStatus"`
	Description         string   `json:"projectDescription" binding:"omitempty,max=5000"`
	ContractValue       *float64 `json:"contractValue" binding:"omitempty,gte=0"`
	Currency            string   `json:"currency" binding:"omitempty,len=3"`
	KeyReferenceNumbers string   `json:"keyReferenceNumbers" binding:"omitempty,max=1000"`
}
