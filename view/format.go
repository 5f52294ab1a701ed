package view

import (
	"fmt"
	"time"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/model"
)

// French short month names used for the display date.
var shortMonths = [...]string{
	"Jan.", "Fév.", "Mar.", "Avr.", "Mai", "Juin",
	"Juil.", "Aoû.", "Sep.", "Oct.", "Nov.", "Déc.",
}

// FormatDate turns an ISO date (YYYY-MM-DD) into the display form used
// by the bills table, e.g. "4 Avr. 04". The raw value must be kept for
// sorting; this output is display-only.
func FormatDate(iso string) (string, error) {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", iso, err)
	}
	return fmt.Sprintf("%d %s %02d", t.Day(), shortMonths[t.Month()-1], t.Year()%100), nil
}

// FormatStatus maps a bill status to its display label.
func FormatStatus(status string) string {
	switch status {
	case model.StatusPending:
		return "En attente"
	case model.StatusAccepted:
		return "Accepté"
	case model.StatusRefused:
		return "Refusé"
	default:
		return status
	}
}
