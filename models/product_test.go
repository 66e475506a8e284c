package models_test

import (
	"context"
	"testing"

	"github.com/tallersur/presupuestos_backend/models"
)

func TestPriceResolver(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Precios")
	product := seedProduct(t, ctx, "Chapa", "100")

	price, err := models.GetPriceForClient(ctx, client.ID, product.ID)
	if err != nil {
		t.Fatalf("GetPriceForClient: %v", err)
	}
	if !price.Equal(dec(t, "100")) {
		t.Errorf("price = %s, want base 100", price)
	}

	if _, err := models.CreateCustomPrice(ctx, client.ID, &models.NewCustomPrice{
		ProductId: product.ID,
		Price:     dec(t, "85"),
	}); err != nil {
		t.Fatalf("CreateCustomPrice: %v", err)
	}

	price, err = models.GetPriceForClient(ctx, client.ID, product.ID)
	if err != nil {
		t.Fatalf("GetPriceForClient: %v", err)
	}
	if !price.Equal(dec(t, "85")) {
		t.Errorf("price = %s, want override 85", price)
	}

	// The override is scoped to its client.
	other := seedClient(t, ctx, "Otro Cliente")
	price, err = models.GetPriceForClient(ctx, other.ID, product.ID)
	if err != nil {
		t.Fatalf("GetPriceForClient: %v", err)
	}
	if !price.Equal(dec(t, "100")) {
		t.Errorf("price = %s, want base 100 for other client", price)
	}
}

func TestGetPriceForClientUnknownIds(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Lookup")
	product := seedProduct(t, ctx, "Chapa", "100")

	if _, err := models.GetPriceForClient(ctx, 9999, product.ID); err == nil {
		t.Fatal("expected error for unknown client")
	}
	if _, err := models.GetPriceForClient(ctx, client.ID, 9999); err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestDuplicateCustomPriceRejected(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Duplicado")
	product := seedProduct(t, ctx, "Chapa", "100")

	if _, err := models.CreateCustomPrice(ctx, client.ID, &models.NewCustomPrice{
		ProductId: product.ID,
		Price:     dec(t, "85"),
	}); err != nil {
		t.Fatalf("CreateCustomPrice: %v", err)
	}
	if _, err := models.CreateCustomPrice(ctx, client.ID, &models.NewCustomPrice{
		ProductId: product.ID,
		Price:     dec(t, "80"),
	}); err == nil {
		t.Fatal("expected error for duplicate (client, product) pair")
	}
}

func TestDeleteProductGuard(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Guard")
	referenced := seedProduct(t, ctx, "Chapa", "100")
	draftOnly := seedProduct(t, ctx, "Perfil", "50")

	seedSentQuote(t, ctx, client.ID, referenced.ID, "1", "100", day(t, "2026-05-01"))
	if _, err := models.DeleteProduct(ctx, referenced.ID); err == nil {
		t.Fatal("expected error deleting product on a sent quote")
	}

	if _, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-05-02"),
		Items: []models.NewQuoteItem{
			{ProductId: draftOnly.ID, Quantity: dec(t, "1"), UnitPrice: dec(t, "50")},
		},
	}); err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	if _, err := models.DeleteProduct(ctx, draftOnly.ID); err != nil {
		t.Fatalf("DeleteProduct (draft references only): %v", err)
	}
	if _, err := models.GetProduct(ctx, draftOnly.ID); err == nil {
		t.Fatal("product still present after delete")
	}
}
