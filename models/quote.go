package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/utils"
	"gorm.io/gorm"
)

// Domain guard errors. Returned to the caller as structured failures, never
// raised across subsystem boundaries.
var (
	ErrQuoteNotEditable    = errors.New("only draft quotes can be edited")
	ErrQuoteNotDeletable   = errors.New("only draft quotes can be deleted")
	ErrQuoteHasPayments    = errors.New("quote cannot be deleted while payments exist")
	ErrQuoteNotFinalizable = errors.New("only draft quotes can be finalized")
	ErrQuoteNotCancellable = errors.New("only sent or paid quotes can be cancelled")
)

type Quote struct {
	ID             int         `gorm:"primary_key" json:"id"`
	ClientId       int         `gorm:"index;not null" json:"client_id" binding:"required"`
	Client         *Client     `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	UserId         int         `gorm:"index" json:"user_id"`
	User           *User       `gorm:"foreignKey:UserId" json:"user,omitempty"`
	Status         QuoteStatus `gorm:"size:20;not null;default:'draft'" json:"status"`
	Date           time.Time   `gorm:"not null;index" json:"date" binding:"required"`
	ExpirationDate *time.Time  `json:"expiration_date"`
	// TotalAmount is a cache over the line items, recomputed before every
	// persist. Negative totals are allowed (credit-note style quotes).
	TotalAmount decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_amount"`
	Notes       string          `gorm:"type:text" json:"notes"`
	Items       []QuoteItem     `gorm:"foreignKey:QuoteId" json:"items,omitempty"`
	Payments    []Payment       `gorm:"foreignKey:QuoteId" json:"payments,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewQuote struct {
	ClientId       int            `json:"client_id" binding:"required"`
	Date           time.Time      `json:"date" binding:"required"`
	ExpirationDate *time.Time     `json:"expiration_date"`
	Notes          string         `json:"notes"`
	Items          []NewQuoteItem `json:"items" binding:"dive"`
}

func (q *Quote) CanEdit() bool {
	return q.Status == QuoteStatusDraft
}

// CalculateTotal recomputes every loaded item's total and sums them into
// TotalAmount. An empty item set yields zero.
func (q *Quote) CalculateTotal() {
	total := decimal.Zero
	for i := range q.Items {
		q.Items[i].CalculateTotalPrice()
		total = total.Add(q.Items[i].TotalPrice)
	}
	q.TotalAmount = total
}

// AmountPaid sums the loaded payments.
func (q *Quote) AmountPaid() decimal.Decimal {
	total := decimal.Zero
	for _, p := range q.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

func (q *Quote) AmountDue() decimal.Decimal {
	return q.TotalAmount.Sub(q.AmountPaid())
}

func (input *NewQuote) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Client](ctx, input.ClientId); err != nil {
		return errors.New("client not found")
	}
	for i := range input.Items {
		if err := input.Items[i].validate(); err != nil {
			return err
		}
		if input.Items[i].Destroy {
			continue
		}
		if err := utils.ValidateResourceId[Product](ctx, input.Items[i].ProductId); err != nil {
			return errors.New("product not found")
		}
	}
	return nil
}

// CreateQuote always creates drafts; receivables only appear on finalize.
func CreateQuote(ctx context.Context, input *NewQuote) (*Quote, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	userId, _ := utils.GetUserIdFromContext(ctx)

	quote := Quote{
		ClientId:       input.ClientId,
		UserId:         userId,
		Status:         QuoteStatusDraft,
		Date:           input.Date,
		ExpirationDate: input.ExpirationDate,
		Notes:          input.Notes,
	}
	for _, item := range input.Items {
		if item.Destroy {
			continue
		}
		quote.Items = append(quote.Items, QuoteItem{
			ProductId: item.ProductId,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	quote.CalculateTotal()

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

// UpdateQuote edits a draft quote and its line items in one transaction.
// Item inputs carry an optional id and a destroy flag; totals are recomputed
// from the surviving set before the quote row is saved.
func UpdateQuote(ctx context.Context, id int, input *NewQuote) (*Quote, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	quote, err := utils.FetchModel[Quote](ctx, id, "Items")
	if err != nil {
		return nil, err
	}
	if !quote.CanEdit() {
		return nil, ErrQuoteNotEditable
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range input.Items {
			switch {
			case item.Destroy && item.ID == 0:
				// destroy on a never-persisted item is a no-op
				continue
			case item.Destroy:
				err := tx.Where("quote_id = ?", quote.ID).Delete(&QuoteItem{}, item.ID).Error
				if err != nil {
					return err
				}
			case item.ID > 0:
				updated := QuoteItem{
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
				}
				updated.CalculateTotalPrice()
				err := tx.Model(&QuoteItem{}).
					Where("id = ? AND quote_id = ?", item.ID, quote.ID).
					Updates(map[string]interface{}{
						"ProductId":  item.ProductId,
						"Quantity":   updated.Quantity,
						"UnitPrice":  updated.UnitPrice,
						"TotalPrice": updated.TotalPrice,
					}).Error
				if err != nil {
					return err
				}
			default:
				created := QuoteItem{
					QuoteId:   quote.ID,
					ProductId: item.ProductId,
					Quantity:  item.Quantity,
					UnitPrice: item.UnitPrice,
				}
				created.CalculateTotalPrice()
				if err := tx.Create(&created).Error; err != nil {
					return err
				}
			}
		}

		// reload surviving items, then recompute the cached total
		var items []QuoteItem
		if err := tx.Where("quote_id = ?", quote.ID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		quote.Items = items
		quote.CalculateTotal()

		return tx.Model(quote).Updates(map[string]interface{}{
			"ClientId":       input.ClientId,
			"Date":           input.Date,
			"ExpirationDate": input.ExpirationDate,
			"Notes":          input.Notes,
			"TotalAmount":    quote.TotalAmount,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// DeleteQuote removes a draft quote and its items. Quotes with recorded
// payments are never deletable, draft or not.
func DeleteQuote(ctx context.Context, id int) (*Quote, error) {
	quote, err := utils.FetchModel[Quote](ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != QuoteStatusDraft {
		return nil, ErrQuoteNotDeletable
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var paymentCount int64
		err := tx.Model(&Payment{}).Where("quote_id = ?", id).Count(&paymentCount).Error
		if err != nil {
			return err
		}
		if paymentCount > 0 {
			return ErrQuoteHasPayments
		}
		if err := tx.Where("quote_id = ?", id).Delete(&QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Quote{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// MarkQuoteAsSent finalizes a draft: the negotiated unit prices are frozen
// as custom prices for the client, the quote starts counting as a
// receivable, and the client balance is re-derived. One transaction.
func MarkQuoteAsSent(ctx context.Context, id int) (*Quote, error) {
	quote, err := utils.FetchModel[Quote](ctx, id, "Items")
	if err != nil {
		return nil, err
	}
	if quote.Status != QuoteStatusDraft {
		return nil, ErrQuoteNotFinalizable
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range quote.Items {
			if item.ProductId <= 0 {
				continue
			}
			err := upsertCustomPrice(tx, quote.ClientId, item.ProductId, item.UnitPrice)
			if err != nil {
				return err
			}
		}
		err := tx.Model(quote).Update("status", QuoteStatusSent).Error
		if err != nil {
			return err
		}
		return recalculateClientBalance(tx, quote.ClientId)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

// CancelQuote reverses a debt: the quote stops counting toward the balance
// and becomes terminal for payment activity.
func CancelQuote(ctx context.Context, id int) (*Quote, error) {
	quote, err := utils.FetchModel[Quote](ctx, id)
	if err != nil {
		return nil, err
	}
	if !quote.Status.Qualifies() {
		return nil, ErrQuoteNotCancellable
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(quote).Update("status", QuoteStatusCancelled).Error; err != nil {
			return err
		}
		return recalculateClientBalance(tx, quote.ClientId)
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func GetQuote(ctx context.Context, id int) (*Quote, error) {
	return utils.FetchModel[Quote](ctx, id, "Client", "Items", "Items.Product", "Payments")
}

func GetQuotes(ctx context.Context, clientId *int, status *QuoteStatus) ([]*Quote, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Client").Order("created_at DESC")
	if clientId != nil {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	if status != nil {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var quotes []*Quote
	if err := dbCtx.Find(&quotes).Error; err != nil {
		return nil, err
	}
	return quotes, nil
}

// updateQuoteStatusFromPayments re-derives the status from cumulative
// payments after any payment mutation on this quote. Draft and cancelled are
// sticky: payment activity never moves them.
//
// Comparisons use values rounded to 2 places so binary floating artifacts in
// upstream inputs cannot flip the status.
func updateQuoteStatusFromPayments(tx *gorm.DB, quoteId int) error {
	var quote Quote
	if err := tx.First(&quote, quoteId).Error; err != nil {
		return err
	}
	if quote.Status == QuoteStatusDraft || quote.Status == QuoteStatusCancelled {
		return nil
	}

	var payments []Payment
	if err := tx.Where("quote_id = ?", quoteId).Find(&payments).Error; err != nil {
		return err
	}
	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount)
	}
	totalPaid = totalPaid.Round(2)
	totalDue := quote.TotalAmount.Round(2)

	var next QuoteStatus
	switch {
	case totalPaid.GreaterThanOrEqual(totalDue):
		next = QuoteStatusPaid
	case totalPaid.IsPositive():
		next = QuoteStatusPartiallyPaid
	default:
		next = QuoteStatusSent
	}
	if next == quote.Status {
		return nil
	}
	return tx.Model(&quote).Update("status", next).Error
}
