package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
)

func newTestAPIStore(baseURL string) *APIStore {
	return NewAPIStore(&config.APIStoreConfig{
		BaseURL:        baseURL,
		APIToken:       "test-token",
		TimeoutSeconds: 5,
	})
}

func TestAPIStoreList(t *testing.T) {
	bills := []model.Bill{
		{ID: "1", Email: "a@a", Type: "Transports", Name: "Vol", Amount: 348, Date: "2004-04-04", Status: model.StatusPending},
		{ID: "2", Email: "a@a", Type: "Restaurants et bars", Name: "Repas", Amount: 50, Date: "2003-03-03", Status: model.StatusAccepted},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bills" {
			t.Errorf("Expected path /bills, got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("email"); got != "a@a" {
			t.Errorf("Expected email query a@a, got %s", got)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Expected bearer token header, got %s", auth)
		}
		json.NewEncoder(w).Encode(bills)
	}))
	defer server.Close()

	store := newTestAPIStore(server.URL)
	got, err := store.Bills().List(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 bills, got %d", len(got))
	}
	if got[0].Name != "Vol" {
		t.Errorf("Expected first bill Vol, got %s", got[0].Name)
	}
}

func TestAPIStoreListErrors(t *testing.T) {
	tests := []struct {
		name           string
		responseStatus int
	}{
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"forbidden", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "store failure", tt.responseStatus)
			}))
			defer server.Close()

			store := newTestAPIStore(server.URL)
			_, err := store.Bills().List(context.Background(), "a@a")
			if err == nil {
				t.Fatal("Expected error")
			}
			if status := StoreStatus(err); status != tt.responseStatus {
				t.Errorf("Expected status %d, got %d", tt.responseStatus, status)
			}
		})
	}
}

func TestAPIStoreCreate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("email"); got != "a@a" {
			t.Errorf("Expected email field a@a, got %s", got)
		}
		f, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("Expected file part: %v", err)
		}
		f.Close()
		if header.Filename != "justificatif.jpg" {
			t.Errorf("Expected filename justificatif.jpg, got %s", header.Filename)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(CreateBillResult{
			FileURL: "https://storage.test/justificatif.jpg",
			Key:     "draft-key",
		})
	}))
	defer server.Close()

	store := newTestAPIStore(server.URL)
	result, err := store.Bills().Create(context.Background(), CreateBillInput{
		FileName:    "justificatif.jpg",
		ContentType: "image/jpeg",
		Size:        5,
		File:        strings.NewReader("image"),
		Email:       "a@a",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if result.Key != "draft-key" {
		t.Errorf("Expected key draft-key, got %s", result.Key)
	}
	if result.FileURL != "https://storage.test/justificatif.jpg" {
		t.Errorf("Unexpected fileUrl %s", result.FileURL)
	}
}

func TestAPIStoreCreateForwardsPreviousKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Fatalf("Failed to parse multipart form: %v", err)
		}
		if got := r.FormValue("previousKey"); got != "draft-old" {
			t.Errorf("Expected previousKey draft-old, got %q", got)
		}
		json.NewEncoder(w).Encode(CreateBillResult{FileURL: "https://storage.test/new.jpg", Key: "draft-new"})
	}))
	defer server.Close()

	store := newTestAPIStore(server.URL)
	_, err := store.Bills().Create(context.Background(), CreateBillInput{
		FileName:    "new.jpg",
		File:        strings.NewReader("image"),
		Email:       "a@a",
		PreviousKey: "draft-old",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
}

func TestAPIStoreUpdate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("Expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/bills/draft-key" {
			t.Errorf("Expected path /bills/draft-key, got %s", r.URL.Path)
		}

		var bill model.Bill
		if err := json.NewDecoder(r.Body).Decode(&bill); err != nil {
			t.Fatalf("Failed to decode bill: %v", err)
		}
		if bill.Status != model.StatusPending {
			t.Errorf("Expected status pending, got %s", bill.Status)
		}
		json.NewEncoder(w).Encode(bill)
	}))
	defer server.Close()

	store := newTestAPIStore(server.URL)
	updated, err := store.Bills().Update(context.Background(), model.Bill{
		ID:     "draft-key",
		Email:  "a@a",
		Type:   "Transports",
		Amount: 100,
		Date:   "2004-04-04",
		Status: model.StatusPending,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != "draft-key" {
		t.Errorf("Expected id draft-key, got %s", updated.ID)
	}
}

func TestStoreStatusWithoutStoreError(t *testing.T) {
	if status := StoreStatus(context.Canceled); status != 0 {
		t.Errorf("Expected 0 for non-store error, got %d", status)
	}
	if status := StoreStatus(nil); status != 0 {
		t.Errorf("Expected 0 for nil error, got %d", status)
	}
}
