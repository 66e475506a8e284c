package models

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/utils"
)

type DashboardSummary struct {
	// TotalReceivables sums positive client balances (money owed to us).
	TotalReceivables decimal.Decimal `json:"total_receivables"`
	// MonthlySales sums qualifying quote totals recorded this month.
	MonthlySales decimal.Decimal `json:"monthly_sales"`
	LastQuotes   []*Quote        `json:"last_quotes"`
	LastPayments []*Payment      `json:"last_payments"`
}

func GetDashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	db := config.GetDB()

	var clients []Client
	err := db.WithContext(ctx).Where("balance > 0").Find(&clients).Error
	if err != nil {
		return nil, err
	}
	totalReceivables := decimal.Zero
	for _, c := range clients {
		totalReceivables = totalReceivables.Add(c.Balance)
	}

	monthStart, _ := utils.GetThisMonthRange()
	var monthQuotes []Quote
	err = db.WithContext(ctx).
		Where("status IN ? AND created_at >= ?", QualifyingQuoteStatuses, monthStart).
		Find(&monthQuotes).Error
	if err != nil {
		return nil, err
	}
	monthlySales := decimal.Zero
	for _, q := range monthQuotes {
		monthlySales = monthlySales.Add(q.TotalAmount)
	}

	var lastQuotes []*Quote
	err = db.WithContext(ctx).Preload("Client").
		Where("status <> ?", QuoteStatusDraft).
		Order("created_at DESC").Limit(10).
		Find(&lastQuotes).Error
	if err != nil {
		return nil, err
	}

	var lastPayments []*Payment
	err = db.WithContext(ctx).Preload("Client").Preload("Quote").
		Order("created_at DESC").Limit(10).
		Find(&lastPayments).Error
	if err != nil {
		return nil, err
	}

	return &DashboardSummary{
		TotalReceivables: totalReceivables,
		MonthlySales:     monthlySales,
		LastQuotes:       lastQuotes,
		LastPayments:     lastPayments,
	}, nil
}
