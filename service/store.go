package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
)

// Store is the data store client consumed by the page handlers. It
// exposes the bills collection; the transport behind it (remote API or
// embedded database) is a backend concern.
type Store interface {
	Bills() BillsResource
}

// BillsResource is the CRUD surface over bill records. List returns the
// full set for the given scope; Create stages a receipt file and opens a
// draft record; Update fills in the draft and submits it.
type BillsResource interface {
	List(ctx context.Context, email string) ([]model.Bill, error)
	Create(ctx context.Context, in CreateBillInput) (CreateBillResult, error)
	Update(ctx context.Context, bill model.Bill) (model.Bill, error)
}

// CreateBillInput carries the uploaded receipt for the staging step.
// PreviousKey names the draft opened by an earlier staging of the same
// form, so a re-staged receipt replaces it instead of orphaning it.
type CreateBillInput struct {
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
	Email       string
	PreviousKey string
}

// CreateBillResult is what the staging step hands back to the form:
// the stored file's URL and the draft record's key for the later update.
type CreateBillResult struct {
	FileURL string `json:"fileUrl"`
	Key     string `json:"key"`
}

// StoreError is a store operation failure carrying an HTTP-like status
// code. Display copy is selected from the code, never by matching
// message text.
type StoreError struct {
	StatusCode int
	Message    string
}

func (e *StoreError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("store: %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("store: %d", e.StatusCode)
}

// StoreStatus extracts the status code from a store error chain.
// Returns 0 when the error carries no status.
func StoreStatus(err error) int {
	var se *StoreError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
