package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/utils"
	"gorm.io/gorm"
)

// Payment is money received against a client account. QuoteId is optional:
// a payment with no quote is a standalone account credit.
//
// Amount is unrestricted in sign and bound; negative payments record
// adjustments and overpayment is allowed.
type Payment struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ClientId  int             `gorm:"index;not null" json:"client_id" binding:"required"`
	Client    *Client         `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	QuoteId   *int            `gorm:"index" json:"quote_id"`
	Quote     *Quote          `gorm:"foreignKey:QuoteId" json:"quote,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount" binding:"required"`
	Date      time.Time       `gorm:"not null;index" json:"date" binding:"required"`
	Notes     string          `gorm:"type:text" json:"notes"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	ClientId int             `json:"client_id" binding:"required"`
	QuoteId  *int            `json:"quote_id"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
	Date     time.Time       `json:"date" binding:"required"`
	Notes    string          `json:"notes"`
}

// PaymentChanges are the editable fields of an existing payment. The client
// and quote references are fixed at creation.
type PaymentChanges struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Date   time.Time       `json:"date" binding:"required"`
	Notes  string          `json:"notes"`
}

func (input *NewPayment) validate(ctx context.Context) error {
	if err := utils.ValidateResourceId[Client](ctx, input.ClientId); err != nil {
		return errors.New("client not found")
	}
	if input.QuoteId != nil {
		quote, err := utils.FetchModel[Quote](ctx, *input.QuoteId)
		if err != nil {
			return errors.New("quote not found")
		}
		if quote.ClientId != input.ClientId {
			return errors.New("quote does not belong to this client")
		}
	}
	return nil
}

// obtainClientBalanceLock serializes concurrent payment writers per client.
// Best-effort: the lock narrows the write-write race window on the cached
// balance, while the recompute-from-source transaction keeps a lost lock
// safe to re-run.
func obtainClientBalanceLock(ctx context.Context, clientId int) *redislock.Lock {
	locker := config.GetRedisLock()
	if locker == nil {
		return nil
	}
	lock, err := locker.Obtain(ctx, fmt.Sprintf("balance:client:%d", clientId), 10*time.Second, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), 10),
	})
	if err != nil {
		config.LogError(config.GetLogger(), "payment.go", "obtainClientBalanceLock", "locker.Obtain", clientId, err)
		return nil
	}
	return lock
}

// CreatePayment persists the payment, re-derives the linked quote's status,
// and re-derives the client balance — all in one transaction, so no reader
// can observe the payment without its consequential updates.
func CreatePayment(ctx context.Context, input *NewPayment) (*Payment, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	if lock := obtainClientBalanceLock(ctx, input.ClientId); lock != nil {
		defer lock.Release(ctx)
	}

	payment := Payment{
		ClientId: input.ClientId,
		QuoteId:  input.QuoteId,
		Amount:   input.Amount,
		Date:     input.Date,
		Notes:    input.Notes,
	}

	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}
		if payment.QuoteId != nil {
			if err := updateQuoteStatusFromPayments(tx, *payment.QuoteId); err != nil {
				return err
			}
		}
		return recalculateClientBalance(tx, payment.ClientId)
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func UpdatePayment(ctx context.Context, id int, input *PaymentChanges) (*Payment, error) {
	payment, err := utils.FetchModel[Payment](ctx, id)
	if err != nil {
		return nil, err
	}

	if lock := obtainClientBalanceLock(ctx, payment.ClientId); lock != nil {
		defer lock.Release(ctx)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(payment).Updates(map[string]interface{}{
			"Amount": input.Amount,
			"Date":   input.Date,
			"Notes":  input.Notes,
		}).Error
		if err != nil {
			return err
		}
		if payment.QuoteId != nil {
			if err := updateQuoteStatusFromPayments(tx, *payment.QuoteId); err != nil {
				return err
			}
		}
		return recalculateClientBalance(tx, payment.ClientId)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func DeletePayment(ctx context.Context, id int) (*Payment, error) {
	payment, err := utils.FetchModel[Payment](ctx, id)
	if err != nil {
		return nil, err
	}

	if lock := obtainClientBalanceLock(ctx, payment.ClientId); lock != nil {
		defer lock.Release(ctx)
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&Payment{}, id).Error; err != nil {
			return err
		}
		if payment.QuoteId != nil {
			if err := updateQuoteStatusFromPayments(tx, *payment.QuoteId); err != nil {
				return err
			}
		}
		return recalculateClientBalance(tx, payment.ClientId)
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	return utils.FetchModel[Payment](ctx, id, "Client", "Quote")
}

func GetPayments(ctx context.Context, clientId *int, quoteId *int) ([]*Payment, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Preload("Quote").Order("date, created_at")
	if clientId != nil {
		dbCtx = dbCtx.Where("client_id = ?", *clientId)
	}
	if quoteId != nil {
		dbCtx = dbCtx.Where("quote_id = ?", *quoteId)
	}
	var payments []*Payment
	if err := dbCtx.Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}
