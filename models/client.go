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

type Client struct {
	ID           int             `gorm:"primary_key" json:"id"`
	Name         string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Email        string          `gorm:"size:255;not null" json:"email" binding:"required"`
	Phone        string          `gorm:"size:50" json:"phone"`
	TaxId        string          `gorm:"size:50" json:"tax_id"`
	Address      string          `gorm:"type:text" json:"address"`
	Balance      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"balance"`
	CustomPrices []CustomPrice   `gorm:"foreignKey:ClientId" json:"custom_prices,omitempty"`
	Quotes       []Quote         `gorm:"foreignKey:ClientId" json:"quotes,omitempty"`
	Payments     []Payment       `gorm:"foreignKey:ClientId" json:"payments,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewClient struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required"`
	Phone   string `json:"phone"`
	TaxId   string `json:"tax_id"`
	Address string `json:"address"`
}

func (input *NewClient) validate() error {
	if !utils.IsValidEmail(input.Email) {
		return errors.New("email is not valid")
	}
	return nil
}

func CreateClient(ctx context.Context, input *NewClient) (*Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	client := Client{
		Name:    input.Name,
		Email:   input.Email,
		Phone:   input.Phone,
		TaxId:   input.TaxId,
		Address: input.Address,
		Balance: decimal.Zero,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func UpdateClient(ctx context.Context, id int, input *NewClient) (*Client, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	client, err := utils.FetchModel[Client](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(client).Updates(map[string]interface{}{
		"Name":    input.Name,
		"Email":   input.Email,
		"Phone":   input.Phone,
		"TaxId":   input.TaxId,
		"Address": input.Address,
	}).Error
	if err != nil {
		return nil, err
	}
	return client, nil
}

// DeleteClient removes the client together with its quotes, quote items,
// payments and custom prices (the client strictly owns all of them).
func DeleteClient(ctx context.Context, id int) (*Client, error) {
	client, err := utils.FetchModel[Client](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quoteIds := tx.Model(&Quote{}).Select("id").Where("client_id = ?", id)
		if err := tx.Where("quote_id IN (?)", quoteIds).Delete(&QuoteItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&Quote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", id).Delete(&CustomPrice{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Client{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

func GetClient(ctx context.Context, id int, associations ...string) (*Client, error) {
	return utils.FetchModel[Client](ctx, id, associations...)
}

func GetClients(ctx context.Context, name *string) ([]*Client, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Order("name")
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var clients []*Client
	if err := dbCtx.Find(&clients).Error; err != nil {
		return nil, err
	}
	return clients, nil
}

// RecalculateClientBalance re-derives the cached balance from source rows
// and persists it. Safe to call repeatedly: the cache is never read back.
func RecalculateClientBalance(ctx context.Context, clientId int) (*Client, error) {
	db := config.GetDB()
	var client *Client
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := recalculateClientBalance(tx, clientId); err != nil {
			return err
		}
		var c Client
		if err := tx.First(&c, clientId).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		client = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// recalculateClientBalance runs inside the caller's transaction so a payment
// write and its balance update commit atomically.
//
// balance = sum(total_amount of sent/partially_paid/paid quotes) - sum(all payments)
func recalculateClientBalance(tx *gorm.DB, clientId int) error {
	var quotes []Quote
	err := tx.Where("client_id = ? AND status IN ?", clientId, QualifyingQuoteStatuses).
		Find(&quotes).Error
	if err != nil {
		return err
	}

	var payments []Payment
	if err := tx.Where("client_id = ?", clientId).Find(&payments).Error; err != nil {
		return err
	}

	balance := decimal.Zero
	for _, q := range quotes {
		balance = balance.Add(q.TotalAmount)
	}
	for _, p := range payments {
		balance = balance.Sub(p.Amount)
	}

	return tx.Model(&Client{}).Where("id = ?", clientId).
		Update("balance", balance).Error
}
