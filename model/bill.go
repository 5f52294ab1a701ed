package model

import (
	"errors"
	"fmt"
)

// Bill represents an employee expense report. Field names follow the
// store service's JSON contract.
type Bill struct {
	ID           string  `json:"id,omitempty"`
	Email        string  `json:"email"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	Amount       float64 `json:"amount"`
	Date         string  `json:"date"` // ISO YYYY-MM-DD
	VAT          string  `json:"vat"`
	Pct          int     `json:"pct"`
	Commentary   string  `json:"commentary"`
	FileURL      string  `json:"fileUrl"`
	FileName     string  `json:"fileName"`
	Status       string  `json:"status"`
	CommentAdmin string  `json:"commentAdmin,omitempty"`
}

// Bill status constants. Status is assigned at creation and only ever
// changed by the admin workflow, never by this application.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRefused  = "refused"
)

// DefaultPct is applied when the percentage field is left empty.
const DefaultPct = 20

var ErrNotSubmittable = errors.New("bill is missing required fields")

// Submittable reports whether the bill carries everything the store
// requires for a submission: amount, date, type and a staged receipt
// file (URL and original name).
func (b *Bill) Submittable() error {
	var missing []string
	if b.Amount == 0 {
		missing = append(missing, "amount")
	}
	if b.Date == "" {
		missing = append(missing, "date")
	}
	if b.Type == "" {
		missing = append(missing, "type")
	}
	if b.FileURL == "" {
		missing = append(missing, "fileUrl")
	}
	if b.FileName == "" {
		missing = append(missing, "fileName")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %v", ErrNotSubmittable, missing)
	}
	return nil
}
