package handler

import (
	"context"
	"net/http"
	"sort"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/middleware"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/pkg/logger"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/service"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/view"
	"github.com/gin-gonic/gin"
)

// BillsHandler drives the bills list page. The store may be nil when no
// backend is configured; the page then renders an empty list.
type BillsHandler struct {
	store            service.Store
	newBillPath      string
	justificatifPath string
}

func NewBillsHandler(store service.Store, newBillPath, justificatifPath string) *BillsHandler {
	return &BillsHandler{
		store:            store,
		newBillPath:      newBillPath,
		justificatifPath: justificatifPath,
	}
}

// ListPage renders the bills table for the logged-in employee, or the
// error view when the store rejects.
func (h *BillsHandler) ListPage(c *gin.Context) {
	session, _ := middleware.GetSession(c)

	rows, err := h.GetBills(c.Request.Context(), session.Email)
	if err != nil {
		status, title := errorView(err)
		c.Data(status, "text/html; charset=utf-8", []byte(view.BillsUI(view.BillsData{
			Error:       title,
			NewBillPath: h.newBillPath,
		})))
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.BillsUI(view.BillsData{
		Rows:             rows,
		NewBillPath:      h.newBillPath,
		JustificatifPath: h.justificatifPath,
	})))
}

// GetBills fetches the employee's bills and shapes them for display:
// localized date and status labels, sorted reverse-chronologically on
// the raw ISO date.  A nil store yields an empty list, not an error.
func (h *BillsHandler) GetBills(ctx context.Context, email string) ([]view.BillRow, error) {
	if h.store == nil {
		return []view.BillRow{}, nil
	}

	bills, err := h.store.Bills().List(ctx, email)
	if err != nil {
		return nil, err
	}

	rows := make([]view.BillRow, 0, len(bills))
	for _, bill := range bills {
		displayDate, err := view.FormatDate(bill.Date)
		if err != nil {
			// Malformed date: keep the record, fall back to the raw value
			logger.Warn(ctx, "bill has malformed date, using raw value",
				"bill_id", bill.ID,
				"date", bill.Date,
			)
			displayDate = bill.Date
		}
		rows = append(rows, view.BillRow{
			Type:     bill.Type,
			Name:     bill.Name,
			Date:     displayDate,
			RawDate:  bill.Date,
			Amount:   bill.Amount,
			Status:   view.FormatStatus(bill.Status),
			FileURL:  bill.FileURL,
			FileName: bill.FileName,
		})
	}

	// Reverse-chronological on the raw ISO date; stable so equal dates
	// keep the store's order.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RawDate > rows[j].RawDate
	})

	return rows, nil
}

// Justificatif renders the receipt preview modal. The modal always
// renders; a missing or non-image fileUrl gets the placeholder.
func (h *BillsHandler) Justificatif(c *gin.Context) {
	fileURL := c.Query("fileUrl")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(view.JustificatifUI(fileURL)))
}

// errorView maps a store error to the HTTP status and display copy of
// the error page. 404 and 500 get dedicated copy, everything else shows
// the error text.
func errorView(err error) (int, string) {
	switch service.StoreStatus(err) {
	case http.StatusNotFound:
		return http.StatusNotFound, "Erreur 404"
	case http.StatusInternalServerError:
		return http.StatusInternalServerError, "Erreur 500"
	default:
		return http.StatusInternalServerError, err.Error()
	}
}
