package models

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomPrice is a negotiated unit price for one (client, product) pair.
// It supersedes the product's base price and is frozen automatically when a
// draft quote is finalized.
type CustomPrice struct {
	ID        int             `gorm:"primary_key" json:"id"`
	ClientId  int             `gorm:"uniqueIndex:idx_custom_prices_client_product;not null" json:"client_id" binding:"required"`
	Client    *Client         `gorm:"foreignKey:ClientId" json:"client,omitempty"`
	ProductId int             `gorm:"uniqueIndex:idx_custom_prices_client_product;not null" json:"product_id" binding:"required"`
	Product   *Product        `gorm:"foreignKey:ProductId" json:"product,omitempty"`
	Price     decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"price"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewCustomPrice struct {
	ProductId int             `json:"product_id" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

func CreateCustomPrice(ctx context.Context, clientId int, input *NewCustomPrice) (*CustomPrice, error) {
	if err := utils.ValidateResourceId[Client](ctx, clientId); err != nil {
		return nil, errors.New("client not found")
	}
	if err := utils.ValidateResourceId[Product](ctx, input.ProductId); err != nil {
		return nil, errors.New("product not found")
	}

	db := config.GetDB()

	var count int64
	err := db.WithContext(ctx).Model(&CustomPrice{}).
		Where("client_id = ? AND product_id = ?", clientId, input.ProductId).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("a custom price already exists for this client and product")
	}

	customPrice := CustomPrice{
		ClientId:  clientId,
		ProductId: input.ProductId,
		Price:     input.Price,
	}
	if err := db.WithContext(ctx).Create(&customPrice).Error; err != nil {
		return nil, err
	}
	return &customPrice, nil
}

func UpdateCustomPrice(ctx context.Context, clientId int, id int, price decimal.Decimal) (*CustomPrice, error) {
	db := config.GetDB()

	var customPrice CustomPrice
	err := db.WithContext(ctx).
		Where("client_id = ?", clientId).
		First(&customPrice, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	err = db.WithContext(ctx).Model(&customPrice).Update("price", price).Error
	if err != nil {
		return nil, err
	}
	return &customPrice, nil
}

func DeleteCustomPrice(ctx context.Context, clientId int, id int) (*CustomPrice, error) {
	db := config.GetDB()

	var customPrice CustomPrice
	err := db.WithContext(ctx).
		Where("client_id = ?", clientId).
		First(&customPrice, id).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}

	if err := db.WithContext(ctx).Delete(&customPrice).Error; err != nil {
		return nil, err
	}
	return &customPrice, nil
}

func GetCustomPricesForClient(ctx context.Context, clientId int) ([]*CustomPrice, error) {
	db := config.GetDB()
	var customPrices []*CustomPrice
	err := db.WithContext(ctx).
		Where("client_id = ?", clientId).
		Preload("Product").
		Joins("JOIN products ON products.id = custom_prices.product_id").
		Order("products.name").
		Find(&customPrices).Error
	if err != nil {
		return nil, err
	}
	return customPrices, nil
}

// upsertCustomPrice freezes a negotiated unit price as the new default for
// the (client, product) pair. Runs inside the finalize transaction.
func upsertCustomPrice(tx *gorm.DB, clientId int, productId int, price decimal.Decimal) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "client_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(&CustomPrice{
		ClientId:  clientId,
		ProductId: productId,
		Price:     price,
	}).Error
}
