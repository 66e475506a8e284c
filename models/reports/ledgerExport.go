package reports

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/models"
	"github.com/xuri/excelize/v2"
)

// LedgerHeader is the column layout consumed by external renderers.
var LedgerHeader = []string{"Date", "Concept", "Debit", "Credit", "Balance"}

const conceptMaxLen = 60

// LedgerRow is one export row. A quote entry populates Debit only; a
// payment entry populates Credit only. Balance rows carry neither.
type LedgerRow struct {
	Date    *time.Time       `json:"date,omitempty"`
	Concept string           `json:"concept"`
	Debit   *decimal.Decimal `json:"debit,omitempty"`
	Credit  *decimal.Decimal `json:"credit,omitempty"`
	Balance decimal.Decimal  `json:"balance"`
}

// BuildLedgerRows flattens a computed ledger into export rows: an opening
// balance row, one row per entry (the full sequence, not the current page),
// and a closing balance row.
func BuildLedgerRows(ledger *models.Ledger) []LedgerRow {
	rows := make([]LedgerRow, 0, len(ledger.AllEntries)+2)

	openingLabel := "Initial balance"
	if ledger.StartDate != nil {
		openingLabel = "Previous balance"
	}
	rows = append(rows, LedgerRow{
		Concept: openingLabel,
		Balance: ledger.PreviousBalance,
	})

	for i := range ledger.AllEntries {
		entry := &ledger.AllEntries[i]
		row := LedgerRow{
			Date:    &entry.Date,
			Concept: entryConcept(entry),
			Balance: entry.Balance,
		}
		if entry.Type == models.LedgerEntryQuote {
			amount := entry.Quote.TotalAmount
			row.Debit = &amount
		} else {
			amount := entry.Payment.Amount
			row.Credit = &amount
		}
		rows = append(rows, row)
	}

	finalBalance := ledger.PreviousBalance
	if n := len(ledger.AllEntries); n > 0 {
		finalBalance = ledger.AllEntries[n-1].Balance
	}
	rows = append(rows, LedgerRow{
		Concept: "Final balance",
		Balance: finalBalance,
	})

	return rows
}

func entryConcept(entry *models.LedgerEntry) string {
	if entry.Type == models.LedgerEntryQuote {
		return fmt.Sprintf("Quote #%d", entry.Quote.ID)
	}
	payment := entry.Payment
	if payment.QuoteId != nil {
		return fmt.Sprintf("Payment linked to quote #%d", *payment.QuoteId)
	}
	if payment.Notes != "" {
		return truncate(payment.Notes, conceptMaxLen)
	}
	return "Standalone payment"
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// ExportLedgerExcel writes the ledger rows as an xlsx workbook.
func ExportLedgerExcel(w io.Writer, client *models.Client, ledger *models.Ledger) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Ledger"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("Account ledger - %s", client.Name))
	for col, title := range LedgerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 2)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, title)
	}

	rows := BuildLedgerRows(ledger)
	for i, row := range rows {
		rowNo := i + 3
		if row.Date != nil {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNo), row.Date.Format("2006-01-02"))
		}
		f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNo), row.Concept)
		if row.Debit != nil {
			f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNo), row.Debit.InexactFloat64())
		}
		if row.Credit != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNo), row.Credit.InexactFloat64())
		}
		f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNo), row.Balance.InexactFloat64())
	}

	return f.Write(w)
}
