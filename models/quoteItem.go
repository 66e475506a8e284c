package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type QuoteItem struct {
	ID        int      `gorm:"primary_key" json:"id"`
	QuoteId   int      `gorm:"index;not null" json:"quote_id"`
	ProductId int      `gorm:"index;not null" json:"product_id" binding:"required"`
	Product   *Product `gorm:"foreignKey:ProductId" json:"product,omitempty"`
	// Quantity allows fractional units (1.5 kg); must stay positive.
	Quantity decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"quantity"`
	// UnitPrice may go negative for discount/credit lines.
	UnitPrice  decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"total_price"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewQuoteItem struct {
	ID        int             `json:"id"`
	ProductId int             `json:"product_id" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	// Destroy marks an existing item for removal on quote update.
	Destroy bool `json:"destroy"`
}

func (input *NewQuoteItem) validate() error {
	if input.Destroy {
		return nil
	}
	if !input.Quantity.IsPositive() {
		return errors.New("quantity must be greater than 0")
	}
	return nil
}

// CalculateTotalPrice recomputes the cached line total. Runs before every
// persist so quantity/unit price edits can never leave a stale total.
func (item *QuoteItem) CalculateTotalPrice() {
	item.TotalPrice = item.Quantity.Mul(item.UnitPrice)
}
