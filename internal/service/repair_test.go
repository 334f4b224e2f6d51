package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"katalogtoko/backend/internal/cache"
	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/store/memory"
)

func TestRepairFixesDriftedTotals(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	drifted, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		LineItems: []domain.OrderLine{
			{Description: "Beras", Quantity: 3, UnitPrice: 2.5},
			{Description: "Gula", Quantity: 1, UnitPrice: 10},
		},
		TotalAmount: floatPtr(500),
	})
	if err != nil {
		t.Fatalf("create drifted order failed: %v", err)
	}

	consistent, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		LineItems: []domain.OrderLine{
			{Description: "Kopi", Quantity: 2, UnitPrice: 20},
		},
	})
	if err != nil {
		t.Fatalf("create consistent order failed: %v", err)
	}

	report, err := svc.RepairOrderTotals(ctx)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}

	if report.OrdersExamined != 2 {
		t.Fatalf("expected 2 orders examined, got %d", report.OrdersExamined)
	}
	if report.OrdersUpdated != 1 {
		t.Fatalf("expected 1 order updated, got %d", report.OrdersUpdated)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("expected no failures, got %+v", report.Failures)
	}

	fixed, err := svc.GetOrder(ctx, drifted.ID)
	if err != nil {
		t.Fatalf("get repaired order failed: %v", err)
	}
	if fixed.TotalAmount != 17.5 {
		t.Fatalf("expected repaired total 17.5, got %g", fixed.TotalAmount)
	}

	untouched, err := svc.GetOrder(ctx, consistent.ID)
	if err != nil {
		t.Fatalf("get consistent order failed: %v", err)
	}
	if untouched.TotalAmount != 40 {
		t.Fatalf("expected consistent order untouched at 40, got %g", untouched.TotalAmount)
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	_, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		LineItems: []domain.OrderLine{
			{Description: "Tepung", Quantity: 5, UnitPrice: 12},
		},
		TotalAmount: floatPtr(1),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	first, err := svc.RepairOrderTotals(ctx)
	if err != nil {
		t.Fatalf("first repair failed: %v", err)
	}
	if first.OrdersUpdated != 1 {
		t.Fatalf("expected first run to update 1 order, got %d", first.OrdersUpdated)
	}

	second, err := svc.RepairOrderTotals(ctx)
	if err != nil {
		t.Fatalf("second repair failed: %v", err)
	}
	if second.OrdersExamined != 1 {
		t.Fatalf("expected second run to examine 1 order, got %d", second.OrdersExamined)
	}
	if second.OrdersUpdated != 0 {
		t.Fatalf("expected second run to update nothing, got %d", second.OrdersUpdated)
	}
}

func TestRepairSkipsOrdersWithoutLines(t *testing.T) {
	svc := newTestService()
	ctx := adminCtx()

	_, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		Notes:       "manual total, no lines",
		TotalAmount: floatPtr(250),
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	report, err := svc.RepairOrderTotals(ctx)
	if err != nil {
		t.Fatalf("repair failed: %v", err)
	}
	if report.OrdersExamined != 0 {
		t.Fatalf("expected line-less order to be skipped, examined=%d", report.OrdersExamined)
	}
}

func TestRepairRequiresAdmin(t *testing.T) {
	svc := newTestService()
	ctx := WithActor(context.Background(), domain.Actor{Username: "kasir", Role: "staff"})

	if _, err := svc.RepairOrderTotals(ctx); err == nil {
		t.Fatalf("expected repair to fail for non-admin actor")
	}
}

// brokenUpdateRepo fails UpdateOrder for one order id so the repair job's
// continue-on-failure behavior can be observed.
type brokenUpdateRepo struct {
	store.Repository
	failID string
}

func (r *brokenUpdateRepo) UpdateOrder(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	if order.ID == r.failID {
		return nil, errors.New("disk full")
	}
	return r.Repository.UpdateOrder(ctx, order)
}

func TestRepairContinuesPastPerOrderFailures(t *testing.T) {
	repo := memory.New()
	broken := &brokenUpdateRepo{Repository: repo}
	svc := New(broken, cache.NoopVendorCache{}, 5*time.Second, "main-branch")
	ctx := adminCtx()

	failing, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		LineItems:   []domain.OrderLine{{Description: "A", Quantity: 1, UnitPrice: 5}},
		TotalAmount: floatPtr(100),
	})
	if err != nil {
		t.Fatalf("create failing order: %v", err)
	}
	broken.failID = failing.ID

	repairable, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
		LineItems:   []domain.OrderLine{{Description: "B", Quantity: 2, UnitPrice: 5}},
		TotalAmount: floatPtr(100),
	})
	if err != nil {
		t.Fatalf("create repairable order: %v", err)
	}

	report, err := svc.RepairOrderTotals(ctx)
	if err != nil {
		t.Fatalf("repair should not abort on per-order failure: %v", err)
	}

	if report.OrdersExamined != 2 {
		t.Fatalf("expected 2 orders examined, got %d", report.OrdersExamined)
	}
	if report.OrdersUpdated != 1 {
		t.Fatalf("expected 1 order updated, got %d", report.OrdersUpdated)
	}
	if len(report.Failures) != 1 || report.Failures[0].OrderID != failing.ID {
		t.Fatalf("expected one recorded failure for %s, got %+v", failing.ID, report.Failures)
	}

	fixed, err := svc.GetOrder(ctx, repairable.ID)
	if err != nil {
		t.Fatalf("get repaired order: %v", err)
	}
	if fixed.TotalAmount != 10 {
		t.Fatalf("expected repaired total 10, got %g", fixed.TotalAmount)
	}
}

// outageUpdateRepo fails every save with the store-outage sentinel.
type outageUpdateRepo struct {
	store.Repository
}

func (r *outageUpdateRepo) UpdateOrder(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	return nil, fmt.Errorf("%w: connection reset", store.ErrUnavailable)
}

func TestRepairAbortsWhenSaveHitsOutage(t *testing.T) {
	repo := memory.New()
	svc := New(&outageUpdateRepo{Repository: repo}, cache.NoopVendorCache{}, 5*time.Second, "main-branch")
	ctx := adminCtx()

	for i := 0; i < 2; i++ {
		_, err := svc.CreateOrder(ctx, domain.OrderCreateRequest{
			LineItems:   []domain.OrderLine{{Description: "Minyak", Quantity: 1, UnitPrice: 5}},
			TotalAmount: floatPtr(100),
		})
		if err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	report, err := svc.RepairOrderTotals(ctx)
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable when save path is down, got %v", err)
	}
	if len(report.Failures) != 0 {
		t.Fatalf("an aborted run must not report per-order failures, got %+v", report.Failures)
	}
}

// brokenListRepo makes the full scan itself fail.
type brokenListRepo struct {
	store.Repository
}

func (r *brokenListRepo) ListOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	return nil, errors.New("connection refused")
}

func TestRepairAbortsWhenScanFails(t *testing.T) {
	svc := New(&brokenListRepo{Repository: memory.New()}, cache.NoopVendorCache{}, 5*time.Second, "main-branch")

	_, err := svc.RepairOrderTotals(adminCtx())
	if !errors.Is(err, store.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable when scan fails, got %v", err)
	}
}
