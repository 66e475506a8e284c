package models_test

import (
	"context"
	"errors"
	"testing"

	"github.com/tallersur/presupuestos_backend/models"
)

func TestCreateQuoteDerivesTotal(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Taller Centro")
	chapa := seedProduct(t, ctx, "Chapa", "10")
	perfil := seedProduct(t, ctx, "Perfil", "5")

	quote, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{ProductId: chapa.ID, Quantity: dec(t, "2"), UnitPrice: dec(t, "10")},
			{ProductId: perfil.ID, Quantity: dec(t, "3"), UnitPrice: dec(t, "5")},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}

	if quote.Status != models.QuoteStatusDraft {
		t.Errorf("status = %s, want draft", quote.Status)
	}
	if !quote.TotalAmount.Equal(dec(t, "35")) {
		t.Errorf("TotalAmount = %s, want 35", quote.TotalAmount)
	}
	// Drafts never touch the balance.
	if got := fetchClientBalance(t, ctx, client.ID); !got.IsZero() {
		t.Errorf("balance = %s, want 0 while draft", got)
	}
}

func TestCreateQuoteRejectsNonPositiveQuantity(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Qty")
	product := seedProduct(t, ctx, "Chapa", "10")

	_, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{ProductId: product.ID, Quantity: dec(t, "0"), UnitPrice: dec(t, "10")},
		},
	})
	if err == nil {
		t.Fatal("expected error for zero quantity")
	}
}

func TestUpdateQuoteItemLifecycle(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Edit")
	chapa := seedProduct(t, ctx, "Chapa", "10")
	perfil := seedProduct(t, ctx, "Perfil", "5")

	quote, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{ProductId: chapa.ID, Quantity: dec(t, "2"), UnitPrice: dec(t, "10")},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	itemId := quote.Items[0].ID

	// Destroy the original line, add a new one.
	updated, err := models.UpdateQuote(ctx, quote.ID, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-02"),
		Items: []models.NewQuoteItem{
			{ID: itemId, Destroy: true},
			{ProductId: perfil.ID, Quantity: dec(t, "4"), UnitPrice: dec(t, "5")},
		},
	})
	if err != nil {
		t.Fatalf("UpdateQuote: %v", err)
	}

	if len(updated.Items) != 1 {
		t.Fatalf("items = %d, want 1 after destroy+create", len(updated.Items))
	}
	if !updated.TotalAmount.Equal(dec(t, "20")) {
		t.Errorf("TotalAmount = %s, want 20", updated.TotalAmount)
	}
}

func TestUpdateQuoteIgnoresDestroyOnNewItem(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Destroy")
	product := seedProduct(t, ctx, "Chapa", "10")

	quote, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{ProductId: product.ID, Quantity: dec(t, "2"), UnitPrice: dec(t, "10")},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}

	// An item marked for destroy that was never persisted must not create a
	// row.
	updated, err := models.UpdateQuote(ctx, quote.ID, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{Destroy: true},
		},
	})
	if err != nil {
		t.Fatalf("UpdateQuote: %v", err)
	}

	if len(updated.Items) != 1 {
		t.Fatalf("items = %d, want the original item only", len(updated.Items))
	}
	if updated.Items[0].ProductId != product.ID {
		t.Errorf("item productId = %d, want %d", updated.Items[0].ProductId, product.ID)
	}
	if !updated.TotalAmount.Equal(dec(t, "20")) {
		t.Errorf("TotalAmount = %s, want 20", updated.TotalAmount)
	}
}

func TestUpdateQuoteRejectsNonDraft(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Sent")
	product := seedProduct(t, ctx, "Chapa", "10")
	quote := seedSentQuote(t, ctx, client.ID, product.ID, "1", "10", day(t, "2026-03-01"))

	_, err := models.UpdateQuote(ctx, quote.ID, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-02"),
	})
	if !errors.Is(err, models.ErrQuoteNotEditable) {
		t.Fatalf("err = %v, want ErrQuoteNotEditable", err)
	}
}

func TestDeleteQuoteGuards(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Delete")
	product := seedProduct(t, ctx, "Chapa", "10")

	sent := seedSentQuote(t, ctx, client.ID, product.ID, "1", "10", day(t, "2026-03-01"))
	if _, err := models.DeleteQuote(ctx, sent.ID); !errors.Is(err, models.ErrQuoteNotDeletable) {
		t.Fatalf("err = %v, want ErrQuoteNotDeletable", err)
	}

	draft, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-02"),
		Items: []models.NewQuoteItem{
			{ProductId: product.ID, Quantity: dec(t, "1"), UnitPrice: dec(t, "10")},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	if _, err := models.DeleteQuote(ctx, draft.ID); err != nil {
		t.Fatalf("DeleteQuote draft: %v", err)
	}
	if _, err := models.GetQuote(ctx, draft.ID); err == nil {
		t.Fatal("draft still present after delete")
	}
}

func TestDeleteQuoteRejectedWithPayments(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Con Pagos")
	product := seedProduct(t, ctx, "Chapa", "10")

	// Even a draft quote is undeletable once a payment references it.
	draft, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{ProductId: product.ID, Quantity: dec(t, "1"), UnitPrice: dec(t, "10")},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	if _, err := models.CreatePayment(ctx, &models.NewPayment{
		ClientId: client.ID,
		QuoteId:  &draft.ID,
		Amount:   dec(t, "5"),
		Date:     day(t, "2026-03-02"),
	}); err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}

	if _, err := models.DeleteQuote(ctx, draft.ID); !errors.Is(err, models.ErrQuoteHasPayments) {
		t.Fatalf("err = %v, want ErrQuoteHasPayments", err)
	}
	if _, err := models.GetQuote(ctx, draft.ID); err != nil {
		t.Fatalf("quote must survive the rejected delete: %v", err)
	}
}

func TestMarkQuoteAsSentFreezesCustomPrices(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Negociado")
	product := seedProduct(t, ctx, "Chapa", "100")

	seedSentQuote(t, ctx, client.ID, product.ID, "1", "80", day(t, "2026-03-01"))

	price, err := models.GetPriceForClient(ctx, client.ID, product.ID)
	if err != nil {
		t.Fatalf("GetPriceForClient: %v", err)
	}
	if !price.Equal(dec(t, "80")) {
		t.Errorf("price = %s, want frozen 80", price)
	}

	// A second finalize at a new price overwrites the frozen one, no duplicate
	// row for the pair.
	seedSentQuote(t, ctx, client.ID, product.ID, "1", "70", day(t, "2026-03-05"))

	price, err = models.GetPriceForClient(ctx, client.ID, product.ID)
	if err != nil {
		t.Fatalf("GetPriceForClient: %v", err)
	}
	if !price.Equal(dec(t, "70")) {
		t.Errorf("price = %s, want updated 70", price)
	}

	customPrices, err := models.GetCustomPricesForClient(ctx, client.ID)
	if err != nil {
		t.Fatalf("GetCustomPricesForClient: %v", err)
	}
	if len(customPrices) != 1 {
		t.Errorf("custom prices = %d, want 1", len(customPrices))
	}
}

func TestMarkQuoteAsSentRejectsNonDraft(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Refinalize")
	product := seedProduct(t, ctx, "Chapa", "10")
	quote := seedSentQuote(t, ctx, client.ID, product.ID, "1", "10", day(t, "2026-03-01"))

	if _, err := models.MarkQuoteAsSent(ctx, quote.ID); !errors.Is(err, models.ErrQuoteNotFinalizable) {
		t.Fatalf("err = %v, want ErrQuoteNotFinalizable", err)
	}
}

func TestCancelQuote(t *testing.T) {
	openTestDB(t)
	ctx := context.Background()

	client := seedClient(t, ctx, "Cliente Cancel")
	product := seedProduct(t, ctx, "Chapa", "100")

	draft, err := models.CreateQuote(ctx, &models.NewQuote{
		ClientId: client.ID,
		Date:     day(t, "2026-03-01"),
		Items: []models.NewQuoteItem{
			{ProductId: product.ID, Quantity: dec(t, "1"), UnitPrice: dec(t, "100")},
		},
	})
	if err != nil {
		t.Fatalf("CreateQuote: %v", err)
	}
	if _, err := models.CancelQuote(ctx, draft.ID); !errors.Is(err, models.ErrQuoteNotCancellable) {
		t.Fatalf("cancel draft err = %v, want ErrQuoteNotCancellable", err)
	}

	sent := seedSentQuote(t, ctx, client.ID, product.ID, "2", "100", day(t, "2026-03-02"))
	if got := fetchClientBalance(t, ctx, client.ID); !got.Equal(dec(t, "200")) {
		t.Fatalf("balance = %s, want 200 before cancel", got)
	}

	if _, err := models.CancelQuote(ctx, sent.ID); err != nil {
		t.Fatalf("CancelQuote: %v", err)
	}
	if got := fetchQuoteStatus(t, ctx, sent.ID); got != models.QuoteStatusCancelled {
		t.Errorf("status = %s, want cancelled", got)
	}
	if got := fetchClientBalance(t, ctx, client.ID); !got.IsZero() {
		t.Errorf("balance = %s, want 0 after cancel", got)
	}
}
