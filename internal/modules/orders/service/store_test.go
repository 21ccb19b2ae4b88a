package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"signal_server/internal/models"
)

func TestMemory_CreateGetUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	order := &models.Order{
		ID:         "ord-1",
		UserID:     7,
		Action:     models.ActionBuy,
		Instrument: "EURUSD",
		StopLoss:   decimal.RequireFromString("1.0850"),
		TakeProfit: decimal.RequireFromString("1.0890"),
		Status:     models.StatusPending,
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
	if err := store.Create(ctx, order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// the stored row must be insulated from caller mutation
	order.Status = models.StatusClosed

	got, err := store.Get(ctx, "ord-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}

	if err := store.UpdateStatus(ctx, "ord-1", models.StatusExecuted); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if err := store.SetBrokerOrderID(ctx, "ord-1", "ORD-AB12CD34"); err != nil {
		t.Fatalf("SetBrokerOrderID() error = %v", err)
	}

	got, _ = store.Get(ctx, "ord-1")
	if got.Status != models.StatusExecuted {
		t.Errorf("status = %s, want executed", got.Status)
	}
	if got.BrokerOrderID != "ORD-AB12CD34" {
		t.Errorf("broker order id = %s", got.BrokerOrderID)
	}
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
	if err := store.UpdateStatus(ctx, "missing", models.StatusClosed); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrNotFound", err)
	}
}

func TestMemory_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	base := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		_ = store.Create(ctx, &models.Order{
			ID:        id,
			UserID:    1,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}
	_ = store.Create(ctx, &models.Order{ID: "other", UserID: 2, CreatedAt: base})

	got, err := store.ListByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != "c" || got[2].ID != "a" {
		t.Errorf("order = [%s %s %s], want [c b a]", got[0].ID, got[1].ID, got[2].ID)
	}
}
