package model

import (
	"errors"
	"testing"
)

func TestBillSubmittable(t *testing.T) {
	complete := Bill{
		Email:    "employee@test.tld",
		Type:     "Transports",
		Name:     "Vol Paris Londres",
		Amount:   348,
		Date:     "2004-04-04",
		VAT:      "70",
		Pct:      20,
		FileURL:  "https://storage.test/vol.jpg",
		FileName: "vol.jpg",
		Status:   StatusPending,
	}

	if err := complete.Submittable(); err != nil {
		t.Errorf("Expected complete bill to be submittable, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Bill)
	}{
		{"missing amount", func(b *Bill) { b.Amount = 0 }},
		{"missing date", func(b *Bill) { b.Date = "" }},
		{"missing type", func(b *Bill) { b.Type = "" }},
		{"missing fileUrl", func(b *Bill) { b.FileURL = "" }},
		{"missing fileName", func(b *Bill) { b.FileName = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := complete
			tt.mutate(&bill)
			err := bill.Submittable()
			if err == nil {
				t.Fatal("Expected error for incomplete bill")
			}
			if !errors.Is(err, ErrNotSubmittable) {
				t.Errorf("Expected ErrNotSubmittable, got %v", err)
			}
		})
	}
}
