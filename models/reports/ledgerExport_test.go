package reports_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/models"
	"github.com/tallersur/presupuestos_backend/models/reports"
)

func d(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return v
}

func sampleLedger(t *testing.T) *models.Ledger {
	t.Helper()

	quoteId := 7
	quote := &models.Quote{ID: quoteId, TotalAmount: d(t, "500")}
	linked := &models.Payment{ID: 3, QuoteId: &quoteId, Amount: d(t, "100")}
	standalone := &models.Payment{ID: 4, Amount: d(t, "50"), Notes: "adelanto en efectivo"}

	entries := []models.LedgerEntry{
		{
			Type:    models.LedgerEntryQuote,
			Quote:   quote,
			Date:    time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
			Balance: d(t, "500"),
		},
		{
			Type:    models.LedgerEntryPayment,
			Payment: linked,
			Date:    time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Balance: d(t, "400"),
		},
		{
			Type:    models.LedgerEntryPayment,
			Payment: standalone,
			Date:    time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
			Balance: d(t, "350"),
		},
	}
	return &models.Ledger{
		Entries:         entries,
		AllEntries:      entries,
		PreviousBalance: decimal.Zero,
	}
}

func TestBuildLedgerRows(t *testing.T) {
	rows := reports.BuildLedgerRows(sampleLedger(t))

	if len(rows) != 5 {
		t.Fatalf("rows = %d, want opening + 3 entries + closing", len(rows))
	}

	opening := rows[0]
	if opening.Concept != "Initial balance" {
		t.Errorf("opening concept = %q, want Initial balance", opening.Concept)
	}
	if !opening.Balance.IsZero() {
		t.Errorf("opening balance = %s, want 0", opening.Balance)
	}

	quoteRow := rows[1]
	if quoteRow.Concept != "Quote #7" {
		t.Errorf("quote concept = %q", quoteRow.Concept)
	}
	if quoteRow.Debit == nil || !quoteRow.Debit.Equal(d(t, "500")) {
		t.Errorf("quote debit = %v, want 500", quoteRow.Debit)
	}
	if quoteRow.Credit != nil {
		t.Error("quote row must not carry a credit")
	}

	linkedRow := rows[2]
	if linkedRow.Concept != "Payment linked to quote #7" {
		t.Errorf("linked payment concept = %q", linkedRow.Concept)
	}
	if linkedRow.Credit == nil || !linkedRow.Credit.Equal(d(t, "100")) {
		t.Errorf("linked payment credit = %v, want 100", linkedRow.Credit)
	}
	if linkedRow.Debit != nil {
		t.Error("payment row must not carry a debit")
	}

	if rows[3].Concept != "adelanto en efectivo" {
		t.Errorf("standalone concept = %q, want the payment notes", rows[3].Concept)
	}

	closing := rows[4]
	if closing.Concept != "Final balance" {
		t.Errorf("closing concept = %q", closing.Concept)
	}
	if !closing.Balance.Equal(d(t, "350")) {
		t.Errorf("closing balance = %s, want 350", closing.Balance)
	}
}

func TestBuildLedgerRowsFilteredOpening(t *testing.T) {
	ledger := sampleLedger(t)
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ledger.StartDate = &start
	ledger.PreviousBalance = d(t, "200")

	rows := reports.BuildLedgerRows(ledger)
	if rows[0].Concept != "Previous balance" {
		t.Errorf("opening concept = %q, want Previous balance", rows[0].Concept)
	}
	if !rows[0].Balance.Equal(d(t, "200")) {
		t.Errorf("opening balance = %s, want 200", rows[0].Balance)
	}
}

func TestBuildLedgerRowsStandalonePaymentFallbacks(t *testing.T) {
	entries := []models.LedgerEntry{
		{
			Type:    models.LedgerEntryPayment,
			Payment: &models.Payment{ID: 1, Amount: d(t, "10")},
			Date:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			Balance: d(t, "-10"),
		},
		{
			Type: models.LedgerEntryPayment,
			Payment: &models.Payment{
				ID:     2,
				Amount: d(t, "10"),
				Notes:  strings.Repeat("x", 80),
			},
			Date:    time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
			Balance: d(t, "-20"),
		},
	}
	ledger := &models.Ledger{Entries: entries, AllEntries: entries}

	rows := reports.BuildLedgerRows(ledger)
	if rows[1].Concept != "Standalone payment" {
		t.Errorf("no-notes concept = %q, want Standalone payment", rows[1].Concept)
	}
	if got := len([]rune(rows[2].Concept)); got != 60 {
		t.Errorf("long notes concept length = %d, want truncated to 60", got)
	}
}

func TestExportLedgerExcel(t *testing.T) {
	var buf bytes.Buffer
	client := &models.Client{ID: 1, Name: "Taller Norte"}

	if err := reports.ExportLedgerExcel(&buf, client, sampleLedger(t)); err != nil {
		t.Fatalf("ExportLedgerExcel: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("workbook is empty")
	}
}
