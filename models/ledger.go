package models

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/utils"
	"gorm.io/gorm"
)

type LedgerEntryType string

const (
	LedgerEntryQuote   LedgerEntryType = "quote"
	LedgerEntryPayment LedgerEntryType = "payment"
)

// LedgerPageLast requests the final page, so a freshly recorded entry is
// visible without the caller knowing the page count.
const LedgerPageLast = -1

const defaultLedgerPerPage = 10

// LedgerEntry is one row of the merged chronological stream. A quote entry
// adds its total to the running balance; a payment entry subtracts its
// amount. Balance is the value after applying this entry.
type LedgerEntry struct {
	Type    LedgerEntryType `json:"type"`
	Quote   *Quote          `json:"quote,omitempty"`
	Payment *Payment        `json:"payment,omitempty"`
	Date    time.Time       `json:"date"`
	Balance decimal.Decimal `json:"balance"`
}

func (e *LedgerEntry) createdAt() time.Time {
	if e.Type == LedgerEntryQuote {
		return e.Quote.CreatedAt
	}
	return e.Payment.CreatedAt
}

func (e *LedgerEntry) recordId() int {
	if e.Type == LedgerEntryQuote {
		return e.Quote.ID
	}
	return e.Payment.ID
}

// signedAmount is the entry's contribution to the running balance.
func (e *LedgerEntry) signedAmount() decimal.Decimal {
	if e.Type == LedgerEntryQuote {
		return e.Quote.TotalAmount
	}
	return e.Payment.Amount.Neg()
}

type LedgerOptions struct {
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PerPage   int
}

type LedgerPagination struct {
	CurrentPage int `json:"current_page"`
	TotalPages  int `json:"total_pages"`
	TotalItems  int `json:"total_items"`
	PerPage     int `json:"per_page"`
}

// Ledger is the reconciled view of a client account: the requested page of
// entries plus the full annotated sequence (exports need every row), the
// balance carried in from before the filter window, and period totals.
type Ledger struct {
	Entries             []LedgerEntry    `json:"entries"`
	AllEntries          []LedgerEntry    `json:"-"`
	PreviousBalance     decimal.Decimal  `json:"previous_balance"`
	PageStartingBalance decimal.Decimal  `json:"page_starting_balance"`
	Filtering           bool             `json:"filtering"`
	StartDate           *time.Time       `json:"start_date,omitempty"`
	EndDate             *time.Time       `json:"end_date,omitempty"`
	TotalInvoiced       decimal.Decimal  `json:"total_invoiced"`
	TotalCollected      decimal.Decimal  `json:"total_collected"`
	Pagination          LedgerPagination `json:"pagination"`
}

// ComputeClientLedger merges the client's qualifying quotes (sent,
// partially_paid, paid) and all payments into one chronological sequence
// with a running balance. Both record sets are read inside one transaction
// so a concurrent payment insert cannot show up in one scope but not the
// other.
func ComputeClientLedger(ctx context.Context, clientId int, opts LedgerOptions) (*Ledger, error) {
	db := config.GetDB()

	var ledger *Ledger
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var client Client
		if err := tx.First(&client, clientId).Error; err != nil {
			return utils.ErrorRecordNotFound
		}

		var quotes []Quote
		err := tx.Where("client_id = ? AND status IN ?", clientId, QualifyingQuoteStatuses).
			Find(&quotes).Error
		if err != nil {
			return err
		}

		var payments []Payment
		err = tx.Preload("Quote").Where("client_id = ?", clientId).
			Find(&payments).Error
		if err != nil {
			return err
		}

		ledger = buildLedger(quotes, payments, opts)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

// buildLedger is the pure merge over already-loaded record sets.
//
// Ordering contract: ascending (date, created_at). The creation-time
// tiebreak keeps same-day quotes and payments in the order the events
// actually happened. Record id and type only break exact creation-time
// ties, for reproducibility.
func buildLedger(quotes []Quote, payments []Payment, opts LedgerOptions) *Ledger {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultLedgerPerPage
	}
	filtering := opts.StartDate != nil || opts.EndDate != nil

	// Previous balance: the debt accumulated before the window starts, so a
	// filtered view still opens from a correct figure.
	previousBalance := decimal.Zero
	if opts.StartDate != nil {
		for _, q := range quotes {
			if q.Date.Before(*opts.StartDate) {
				previousBalance = previousBalance.Add(q.TotalAmount)
			}
		}
		for _, p := range payments {
			if p.Date.Before(*opts.StartDate) {
				previousBalance = previousBalance.Sub(p.Amount)
			}
		}
	}

	inWindow := func(d time.Time) bool {
		if opts.StartDate != nil && d.Before(*opts.StartDate) {
			return false
		}
		if opts.EndDate != nil && d.After(*opts.EndDate) {
			return false
		}
		return true
	}

	totalInvoiced := decimal.Zero
	totalCollected := decimal.Zero

	entries := make([]LedgerEntry, 0, len(quotes)+len(payments))
	for i := range quotes {
		if !inWindow(quotes[i].Date) {
			continue
		}
		totalInvoiced = totalInvoiced.Add(quotes[i].TotalAmount)
		entries = append(entries, LedgerEntry{
			Type:  LedgerEntryQuote,
			Quote: &quotes[i],
			Date:  quotes[i].Date,
		})
	}
	for i := range payments {
		if !inWindow(payments[i].Date) {
			continue
		}
		totalCollected = totalCollected.Add(payments[i].Amount)
		entries = append(entries, LedgerEntry{
			Type:    LedgerEntryPayment,
			Payment: &payments[i],
			Date:    payments[i].Date,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := &entries[i], &entries[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.createdAt().Equal(b.createdAt()) {
			return a.createdAt().Before(b.createdAt())
		}
		if a.Type != b.Type {
			return a.Type == LedgerEntryQuote
		}
		return a.recordId() < b.recordId()
	})

	runningBalance := previousBalance
	for i := range entries {
		runningBalance = runningBalance.Add(entries[i].signedAmount())
		entries[i].Balance = runningBalance
	}

	totalItems := len(entries)
	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	page := opts.Page
	if page == LedgerPageLast {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	from := (page - 1) * perPage
	to := from + perPage
	if from > totalItems {
		from = totalItems
	}
	if to > totalItems {
		to = totalItems
	}
	pageEntries := entries[from:to]

	// Balance shown above the first row of this page: the previous balance
	// on page 1, else the closing balance of the page before.
	pageStartingBalance := previousBalance
	if page > 1 {
		pageStartingBalance = entries[from-1].Balance
	}

	return &Ledger{
		Entries:             pageEntries,
		AllEntries:          entries,
		PreviousBalance:     previousBalance,
		PageStartingBalance: pageStartingBalance,
		Filtering:           filtering,
		StartDate:           opts.StartDate,
		EndDate:             opts.EndDate,
		TotalInvoiced:       totalInvoiced,
		TotalCollected:      totalCollected,
		Pagination: LedgerPagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  totalItems,
			PerPage:     perPage,
		},
	}
}
