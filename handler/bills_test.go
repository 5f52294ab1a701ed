package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/service"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// mockBills is a scriptable BillsResource for handler tests
type mockBills struct {
	bills     []model.Bill
	listErr   error
	created   []service.CreateBillInput
	createRes service.CreateBillResult
	createErr error
	updated   []model.Bill
	updateErr error
}

func (m *mockBills) List(ctx context.Context, email string) ([]model.Bill, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.bills, nil
}

func (m *mockBills) Create(ctx context.Context, in service.CreateBillInput) (service.CreateBillResult, error) {
	if in.File != nil {
		io.Copy(io.Discard, in.File)
	}
	m.created = append(m.created, in)
	if m.createErr != nil {
		return service.CreateBillResult{}, m.createErr
	}
	return m.createRes, nil
}

func (m *mockBills) Update(ctx context.Context, bill model.Bill) (model.Bill, error) {
	m.updated = append(m.updated, bill)
	if m.updateErr != nil {
		return model.Bill{}, m.updateErr
	}
	return bill, nil
}

type mockStore struct {
	resource *mockBills
}

func (s *mockStore) Bills() service.BillsResource {
	return s.resource
}

// fixtureBills mirrors the store's unordered response
func fixtureBills() []model.Bill {
	return []model.Bill{
		{ID: "1", Email: "a@a", Type: "Hôtel et logement", Name: "encore", Amount: 400, Date: "2004-04-04", Status: model.StatusPending, FileURL: "https://storage.test/1.jpg", FileName: "1.jpg"},
		{ID: "2", Email: "a@a", Type: "Transports", Name: "test1", Amount: 100, Date: "2001-01-01", Status: model.StatusRefused, FileURL: "https://storage.test/2.jpg", FileName: "2.jpg"},
		{ID: "3", Email: "a@a", Type: "Services en ligne", Name: "test3", Amount: 300, Date: "2003-03-03", Status: model.StatusAccepted, FileURL: "https://storage.test/3.jpg", FileName: "3.jpg"},
		{ID: "4", Email: "a@a", Type: "Restaurants et bars", Name: "test2", Amount: 200, Date: "2002-02-02", Status: model.StatusRefused, FileURL: "https://storage.test/4.jpg", FileName: "4.jpg"},
	}
}

func TestGetBillsSortsReverseChronologically(t *testing.T) {
	store := &mockStore{resource: &mockBills{bills: fixtureBills()}}
	h := NewBillsHandler(store, "/employee/bill/new", "/employee/bills/justificatif")

	rows, err := h.GetBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("GetBills failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}

	// Non-increasing on the raw ISO date
	for i := 1; i < len(rows); i++ {
		if rows[i-1].RawDate < rows[i].RawDate {
			t.Errorf("Rows out of order: %s before %s", rows[i-1].RawDate, rows[i].RawDate)
		}
	}
	if rows[0].RawDate != "2004-04-04" || rows[3].RawDate != "2001-01-01" {
		t.Errorf("Expected newest first and oldest last, got %s ... %s", rows[0].RawDate, rows[3].RawDate)
	}
}

func TestGetBillsStableForEqualDates(t *testing.T) {
	store := &mockStore{resource: &mockBills{bills: []model.Bill{
		{ID: "first", Name: "first", Date: "2002-02-02"},
		{ID: "second", Name: "second", Date: "2002-02-02"},
		{ID: "third", Name: "third", Date: "2002-02-02"},
	}}}
	h := NewBillsHandler(store, "/new", "/justificatif")

	rows, err := h.GetBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("GetBills failed: %v", err)
	}
	for i, want := range []string{"first", "second", "third"} {
		if rows[i].Name != want {
			t.Errorf("Row %d: expected %s, got %s", i, want, rows[i].Name)
		}
	}
}

func TestGetBillsFormatsForDisplay(t *testing.T) {
	store := &mockStore{resource: &mockBills{bills: []model.Bill{
		{ID: "1", Name: "Vol", Date: "2004-04-04", Status: model.StatusPending},
	}}}
	h := NewBillsHandler(store, "/new", "/justificatif")

	rows, err := h.GetBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("GetBills failed: %v", err)
	}
	if rows[0].Date != "4 Avr. 04" {
		t.Errorf("Expected display date '4 Avr. 04', got %q", rows[0].Date)
	}
	if rows[0].RawDate != "2004-04-04" {
		t.Errorf("Expected raw date kept, got %q", rows[0].RawDate)
	}
	if rows[0].Status != "En attente" {
		t.Errorf("Expected status label 'En attente', got %q", rows[0].Status)
	}
}

func TestGetBillsMalformedDateFallsBack(t *testing.T) {
	store := &mockStore{resource: &mockBills{bills: []model.Bill{
		{ID: "1", Name: "ok", Date: "2004-04-04"},
		{ID: "2", Name: "broken", Date: "not-a-date"},
	}}}
	h := NewBillsHandler(store, "/new", "/justificatif")

	rows, err := h.GetBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("GetBills failed: %v", err)
	}
	// The record is kept, not dropped
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	var broken bool
	for _, row := range rows {
		if row.Name == "broken" {
			broken = true
			if row.Date != "not-a-date" {
				t.Errorf("Expected raw fallback for malformed date, got %q", row.Date)
			}
		}
	}
	if !broken {
		t.Error("Expected malformed-date record to be kept")
	}
}

func TestGetBillsNilStore(t *testing.T) {
	h := NewBillsHandler(nil, "/new", "/justificatif")

	rows, err := h.GetBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("Expected no error with nil store, got %v", err)
	}
	if rows == nil {
		t.Fatal("Expected empty slice, got nil")
	}
	if len(rows) != 0 {
		t.Errorf("Expected 0 rows, got %d", len(rows))
	}
}

func newListRouter(h *BillsHandler) *gin.Engine {
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("session", model.Session{Type: model.RoleEmployee, Email: "a@a"})
		c.Next()
	})
	router.GET("/employee/bills", h.ListPage)
	router.GET("/employee/bills/justificatif", h.Justificatif)
	return router
}

func TestListPageStoreErrors(t *testing.T) {
	tests := []struct {
		name           string
		listErr        error
		expectedStatus int
		expectedText   string
	}{
		{
			name:           "not found",
			listErr:        &service.StoreError{StatusCode: http.StatusNotFound},
			expectedStatus: http.StatusNotFound,
			expectedText:   "Erreur 404",
		},
		{
			name:           "server error",
			listErr:        &service.StoreError{StatusCode: http.StatusInternalServerError},
			expectedStatus: http.StatusInternalServerError,
			expectedText:   "Erreur 500",
		},
		{
			name:           "other status",
			listErr:        &service.StoreError{StatusCode: http.StatusForbidden, Message: "accès refusé"},
			expectedStatus: http.StatusInternalServerError,
			expectedText:   "accès refusé",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockStore{resource: &mockBills{listErr: tt.listErr}}
			router := newListRouter(NewBillsHandler(store, "/employee/bill/new", "/employee/bills/justificatif"))

			req := httptest.NewRequest("GET", "/employee/bills", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			if !strings.Contains(w.Body.String(), tt.expectedText) {
				t.Errorf("Expected body containing %q", tt.expectedText)
			}
		})
	}
}

func TestListPageRendersTable(t *testing.T) {
	store := &mockStore{resource: &mockBills{bills: fixtureBills()}}
	router := newListRouter(NewBillsHandler(store, "/employee/bill/new", "/employee/bills/justificatif"))

	req := httptest.NewRequest("GET", "/employee/bills", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{"Mes notes de frais", "Type", "Nom", "Date", "Montant", "Statut", "Actions", "btn-new-bill"} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected page to contain %q", want)
		}
	}
}

// A bill assembled on submit and listed back keeps its amount, raw
// date and file name unchanged.
func TestSubmitListRoundTrip(t *testing.T) {
	resource := &mockBills{}
	router := newBillRouter(&mockStore{resource: resource}, nil)

	postSubmit(router, submitForm())

	if len(resource.updated) != 1 {
		t.Fatalf("Expected 1 update call, got %d", len(resource.updated))
	}
	resource.bills = resource.updated

	h := NewBillsHandler(&mockStore{resource: resource}, "/new", "/justificatif")
	rows, err := h.GetBills(context.Background(), "employee@test.tld")
	if err != nil {
		t.Fatalf("GetBills failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(rows))
	}
	if rows[0].Amount != 348 {
		t.Errorf("Expected amount 348, got %v", rows[0].Amount)
	}
	if rows[0].RawDate != "2022-04-12" {
		t.Errorf("Expected raw date 2022-04-12, got %q", rows[0].RawDate)
	}
	if rows[0].FileName != "vol.jpg" {
		t.Errorf("Expected file name vol.jpg, got %q", rows[0].FileName)
	}
}

func TestJustificatifAlwaysRendersModal(t *testing.T) {
	router := newListRouter(NewBillsHandler(nil, "/new", "/justificatif"))

	tests := []struct {
		name         string
		query        string
		expectedText string
	}{
		{"image url", "?fileUrl=https%3A%2F%2Fstorage.test%2Fvol.jpg", "<img"},
		{"missing url", "", "Aucun justificatif disponible"},
		{"non-image url", "?fileUrl=https%3A%2F%2Fstorage.test%2Fdoc.pdf", "Aucun justificatif disponible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/employee/bills/justificatif"+tt.query, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			body := w.Body.String()
			if !strings.Contains(body, "Justificatif") {
				t.Error("Expected modal title in response")
			}
			if !strings.Contains(body, tt.expectedText) {
				t.Errorf("Expected body containing %q", tt.expectedText)
			}
		})
	}
}
