package models

import "fmt"

// QuoteStatus is the lifecycle state of a quote.
//
// draft -> sent -> {partially_paid <-> paid} -> cancelled
//
// Payments never move a quote back to draft, and cancelled is terminal
// with respect to payment activity.
type QuoteStatus string

const (
	QuoteStatusDraft         QuoteStatus = "draft"
	QuoteStatusSent          QuoteStatus = "sent"
	QuoteStatusPartiallyPaid QuoteStatus = "partially_paid"
	QuoteStatusPaid          QuoteStatus = "paid"
	QuoteStatusCancelled     QuoteStatus = "cancelled"
)

// QualifyingQuoteStatuses are the statuses that represent a real receivable.
// Draft and cancelled quotes never contribute to balances or the ledger.
var QualifyingQuoteStatuses = []QuoteStatus{
	QuoteStatusSent,
	QuoteStatusPartiallyPaid,
	QuoteStatusPaid,
}

func ParseQuoteStatus(s string) (QuoteStatus, error) {
	switch QuoteStatus(s) {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusPartiallyPaid, QuoteStatusPaid, QuoteStatusCancelled:
		return QuoteStatus(s), nil
	}
	return "", fmt.Errorf("invalid quote status %q", s)
}

// Qualifies reports whether quotes in this status count toward the client
// balance and the ledger.
func (s QuoteStatus) Qualifies() bool {
	for _, q := range QualifyingQuoteStatuses {
		if s == q {
			return true
		}
	}
	return false
}
