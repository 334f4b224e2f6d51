package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
)

func TestCreateOrderComputesTotalFromLines(t *testing.T) {
	svc := newTestService()

	order, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		VendorID: "VEN-0000000001",
		LineItems: []domain.OrderLine{
			{Description: "Beras Premium", Measure: "kg", Quantity: 3, UnitPrice: 2.5},
			{Description: "Gula Pasir", Measure: "kg", Quantity: 1, UnitPrice: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.TotalAmount != 17.5 {
		t.Fatalf("expected total 17.5, got %g", order.TotalAmount)
	}
	if !strings.HasPrefix(order.OrderNumber, "PO-") {
		t.Fatalf("expected minted order number with PO- prefix, got %q", order.OrderNumber)
	}
	if order.Branch != "main-branch" {
		t.Fatalf("expected default branch applied, got %q", order.Branch)
	}
}

func TestCreateOrderHonorsExplicitTotal(t *testing.T) {
	svc := newTestService()

	order, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		LineItems: []domain.OrderLine{
			{Description: "Kopi Bubuk", Quantity: 2, UnitPrice: 20},
		},
		TotalAmount: floatPtr(99.99),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.TotalAmount != 99.99 {
		t.Fatalf("expected explicit total 99.99 to survive, got %g", order.TotalAmount)
	}
}

func TestCreateOrderWithoutLinesDefaultsTotalToZero(t *testing.T) {
	svc := newTestService()

	order, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		Notes: "draft order",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.TotalAmount != 0 {
		t.Fatalf("expected zero total on empty order, got %g", order.TotalAmount)
	}
}

func TestCreateOrderMintsSequentialNumbers(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	first, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{})
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.OrderNumber != "PO-000001" {
		t.Fatalf("expected PO-000001, got %q", first.OrderNumber)
	}
	if second.OrderNumber != "PO-000002" {
		t.Fatalf("expected PO-000002, got %q", second.OrderNumber)
	}
}

func TestCreateOrderExplicitDuplicateNumber(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	_, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{OrderNumber: "PO-CUSTOM-01"})
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err = svc.CreateOrder(ctx, domain.OrderCreateRequest{OrderNumber: "PO-CUSTOM-01"})
	if !errors.Is(err, store.ErrDuplicateOrderNumber) {
		t.Fatalf("expected ErrDuplicateOrderNumber, got %v", err)
	}
}

func TestConcurrentMintedOrdersGetDistinctNumbers(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	const workers = 20
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
				Notes: fmt.Sprintf("worker-%d", i),
			})
			if err != nil {
				t.Errorf("concurrent create failed: %v", err)
				return
			}
			numbers <- order.OrderNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool, workers)
	for number := range numbers {
		if seen[number] {
			t.Fatalf("duplicate order number minted: %s", number)
		}
		seen[number] = true
	}
	if len(seen) != workers {
		t.Fatalf("expected %d distinct numbers, got %d", workers, len(seen))
	}
}

func TestUpdateOrderRecomputesTotalOnLineChange(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		LineItems: []domain.OrderLine{
			{Description: "Beras", Quantity: 3, UnitPrice: 2.5},
			{Description: "Gula", Quantity: 1, UnitPrice: 10},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	newLines := []domain.OrderLine{
		{Description: "Beras", Quantity: 4, UnitPrice: 2.5},
	}
	updated, err := svc.UpdateOrder(ctx, order.ID, domain.OrderUpdateRequest{
		LineItems: &newLines,
	})
	if err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	if updated.TotalAmount != 10 {
		t.Fatalf("expected recomputed total 10, got %g", updated.TotalAmount)
	}
}

func TestUpdateOrderKeepsNumberAndCreation(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{Notes: "before"})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	updated, err := svc.UpdateOrder(ctx, order.ID, domain.OrderUpdateRequest{
		Notes: strPtr("after"),
	})
	if err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	if updated.OrderNumber != order.OrderNumber {
		t.Fatalf("expected order number immutable, got %q -> %q", order.OrderNumber, updated.OrderNumber)
	}
	if !updated.CreatedAt.Equal(order.CreatedAt) {
		t.Fatalf("expected created_at immutable, got %v -> %v", order.CreatedAt, updated.CreatedAt)
	}
	if updated.Notes != "after" {
		t.Fatalf("expected notes updated, got %q", updated.Notes)
	}
}

func TestGetOrderByNumber(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	found, err := svc.GetOrderByNumber(ctx, order.OrderNumber)
	if err != nil {
		t.Fatalf("lookup by number failed: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, found.ID)
	}
}

func TestDeleteOrderIsTerminal(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	order, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := svc.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("delete order failed: %v", err)
	}
	if _, err := svc.GetOrder(ctx, order.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.DeleteOrder(ctx, order.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected second delete to report ErrNotFound, got %v", err)
	}
}

func TestCreateOrderRejectsNegativeLine(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateOrder(adminCtx(), domain.OrderCreateRequest{
		LineItems: []domain.OrderLine{
			{Description: "Rusak", Quantity: -2, UnitPrice: 5},
		},
	})
	if !errors.Is(err, store.ErrValidation) {
		t.Fatalf("expected ErrValidation for negative quantity, got %v", err)
	}
}
