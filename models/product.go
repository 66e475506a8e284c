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

type Product struct {
	ID          int             `gorm:"primary_key" json:"id"`
	Name        string          `gorm:"size:255;not null" json:"name" binding:"required"`
	Sku         string          `gorm:"size:100;not null" json:"sku" binding:"required"`
	Description string          `gorm:"type:text" json:"description"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"base_price"`
	// IncludeInStats excludes administrative items (shipping fees, rounding
	// lines) from sales statistics without a separate catalogue.
	IncludeInStats *bool     `gorm:"not null;default:true" json:"include_in_stats"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name           string          `json:"name" binding:"required"`
	Sku            string          `json:"sku" binding:"required"`
	Description    string          `json:"description"`
	BasePrice      decimal.Decimal `json:"base_price"`
	IncludeInStats *bool           `json:"include_in_stats"`
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	includeInStats := input.IncludeInStats
	if includeInStats == nil {
		includeInStats = utils.NewTrue()
	}

	product := Product{
		Name:           input.Name,
		Sku:            input.Sku,
		Description:    input.Description,
		BasePrice:      input.BasePrice,
		IncludeInStats: includeInStats,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func UpdateProduct(ctx context.Context, id int, input *NewProduct) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":        input.Name,
		"Sku":         input.Sku,
		"Description": input.Description,
		"BasePrice":   input.BasePrice,
	}
	if input.IncludeInStats != nil {
		updates["IncludeInStats"] = *input.IncludeInStats
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(product).Updates(updates).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct refuses to remove a product that appears on any non-draft
// quote: those line items back real receivables.
func DeleteProduct(ctx context.Context, id int) (*Product, error) {
	product, err := utils.FetchModel[Product](ctx, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		referenced, err := productHasNonDraftQuotes(tx, id)
		if err != nil {
			return err
		}
		if referenced {
			return errors.New("product cannot be deleted while referenced by non-draft quotes")
		}
		if err := tx.Where("product_id = ?", id).Delete(&CustomPrice{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&QuoteItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Product{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func productHasNonDraftQuotes(tx *gorm.DB, productId int) (bool, error) {
	var count int64
	err := tx.Model(&QuoteItem{}).
		Joins("JOIN quotes ON quotes.id = quote_items.quote_id").
		Where("quote_items.product_id = ? AND quotes.status <> ?", productId, QuoteStatusDraft).
		Count(&count).Error
	return count > 0, err
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	return utils.FetchModel[Product](ctx, id)
}

func GetProducts(ctx context.Context, name *string) ([]*Product, error) {
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Order("name")
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var products []*Product
	if err := dbCtx.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// PriceForClient resolves the effective unit price for this product and
// client: the client's custom price when one exists, else the base price.
func (p *Product) PriceForClient(tx *gorm.DB, clientId int) decimal.Decimal {
	var custom CustomPrice
	err := tx.Where("client_id = ? AND product_id = ?", clientId, p.ID).
		First(&custom).Error
	if err != nil {
		return p.BasePrice
	}
	return custom.Price
}

// GetPriceForClient is the price-lookup boundary: both ids must resolve.
func GetPriceForClient(ctx context.Context, clientId int, productId int) (decimal.Decimal, error) {
	if err := utils.ValidateResourceId[Client](ctx, clientId); err != nil {
		return decimal.Zero, errors.New("client not found")
	}
	product, err := utils.FetchModel[Product](ctx, productId)
	if err != nil {
		return decimal.Zero, errors.New("product not found")
	}

	db := config.GetDB()
	return product.PriceForClient(db.WithContext(ctx), clientId), nil
}
