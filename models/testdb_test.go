package models_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tallersur/presupuestos_backend/config"
	"github.com/tallersur/presupuestos_backend/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB wires an isolated in-memory database into the config layer.
// Each test gets its own named shared-cache database so gorm's connection
// pool sees one store.
func openTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	config.SetDB(db)
	models.MigrateTable()
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("decimal %q: %v", s, err)
	}
	return d
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("date %q: %v", s, err)
	}
	return d
}

func seedClient(t *testing.T, ctx context.Context, name string) *models.Client {
	t.Helper()
	client, err := models.CreateClient(ctx, &models.NewClient{
		Name:  name,
		Email: "billing@cliente.test",
	})
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	return client
}

func seedProduct(t *testing.T, ctx context.Context, name, basePrice string) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(ctx, &models.NewProduct{
		Name:      name,
		Sku:       "SKU-" + name,
		BasePrice: dec(t, basePrice),
	})
	if err != nil {
		t.Fatalf("CreateProduct: %v", err)
	}
	return product
}

// seedSentQuote creates a one-line quote and finalizes it so it counts as a
// receivable.
func seedSentQuote(t *testing.T, ctx context.Context, clientId, productId int, quantity, unitPrice string, date time.Time) *models.Quote {
	t.Helper()
	quote, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: clientId,
		Date:     date,
		Items: []models.NewQuoteItem{
			{ProductId: productId, Quantity: dec(t, quantity), UnitPrice: dec(t, unitPrice)},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	sent, err := models.MarkQuoteAsSent(ctx, quote.ID)
	if err != nil {
		t.Fatalf("MarkQuoteAsSent: %v", err)
	}
	return sent
}

func fetchClientBalance(t *testing.T, ctx context.Context, clientId int) decimal.Decimal {
	t.Helper()
	client, err := models.GetClient(ctx, clientId)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	return client.Balance
}

func fetchQuoteStatus(t *testing.T, ctx context.Context, quoteId int) models.QuoteStatus {
	t.Helper()
	quote, err := models.GetQuote(ctx, quoteId)
	if err != nil {
		t.Fatalf("GetQuote: %v", err)
	}
	return quote.Status
}
