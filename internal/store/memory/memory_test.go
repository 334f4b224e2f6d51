package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
)

func testVendor(id string, products ...domain.Product) domain.Vendor {
	return domain.Vendor{
		VendorID:   id,
		VendorName: "Vendor " + id,
		SearchName: "vendor " + id,
		Products:   products,
	}
}

func testProduct(id string) domain.Product {
	return domain.Product{
		ProductID:   id,
		ProductName: "Product " + id,
		Measure:     "pcs",
		Quantity:    10,
		Price:       1000,
	}
}

func TestCreateVendorRejectsDuplicateID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateVendor(ctx, testVendor("VEN-0000000100")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := s.CreateVendor(ctx, testVendor("VEN-0000000100")); !errors.Is(err, store.ErrDuplicateVendor) {
		t.Fatalf("expected ErrDuplicateVendor, got %v", err)
	}
}

func TestProductIDsAreUniqueAcrossVendors(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateVendor(ctx, testVendor("VEN-0000000101", testProduct("PRD-0000000500"))); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	_, err := s.CreateVendor(ctx, testVendor("VEN-0000000102", testProduct("PRD-0000000500")))
	if !errors.Is(err, store.ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct across vendors, got %v", err)
	}

	_, err = s.AddProduct(ctx, "VEN-0000000101", testProduct("PRD-0000000500"))
	if !errors.Is(err, store.ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct on add, got %v", err)
	}
}

func TestReplaceProductPreservesSiblings(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateVendor(ctx, testVendor("VEN-0000000103",
		testProduct("PRD-0000000501"),
		testProduct("PRD-0000000502"),
		testProduct("PRD-0000000503"),
	))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	replacement := testProduct("PRD-0000000502")
	replacement.ProductName = "Replaced"
	replacement.Quantity = 99

	vendor, err := s.ReplaceProduct(ctx, "VEN-0000000103", replacement)
	if err != nil {
		t.Fatalf("replace failed: %v", err)
	}

	if len(vendor.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(vendor.Products))
	}
	if vendor.Products[0].ProductID != "PRD-0000000501" || vendor.Products[2].ProductID != "PRD-0000000503" {
		t.Fatalf("expected sibling order preserved, got %+v", vendor.Products)
	}
	if vendor.Products[1].ProductName != "Replaced" || vendor.Products[1].Quantity != 99 {
		t.Fatalf("expected matched entry replaced, got %+v", vendor.Products[1])
	}
}

func TestRemoveProductIsIdempotent(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateVendor(ctx, testVendor("VEN-0000000104", testProduct("PRD-0000000504")))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	vendor, err := s.RemoveProduct(ctx, "VEN-0000000104", "PRD-0000000504")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(vendor.Products) != 0 {
		t.Fatalf("expected empty list after remove, got %d", len(vendor.Products))
	}

	if _, err := s.RemoveProduct(ctx, "VEN-0000000104", "PRD-0000000504"); err != nil {
		t.Fatalf("second remove should be a no-op, got %v", err)
	}
	if _, err := s.RemoveProduct(ctx, "VEN-MISSING", "PRD-0000000504"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown vendor, got %v", err)
	}
}

func TestUpdateVendorRebuildsProductIndex(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateVendor(ctx, testVendor("VEN-0000000105", testProduct("PRD-0000000505")))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated := testVendor("VEN-0000000105", testProduct("PRD-0000000506"))
	if _, err := s.UpdateVendor(ctx, updated); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	// The replaced id is no longer indexed and may be reused elsewhere.
	if _, _, err := s.FindProduct(ctx, "PRD-0000000505"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected old product id unindexed, got %v", err)
	}
	if _, err := s.CreateVendor(ctx, testVendor("VEN-0000000106", testProduct("PRD-0000000505"))); err != nil {
		t.Fatalf("expected freed product id to be reusable, got %v", err)
	}
}

func TestFindProductReportsOwner(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateVendor(ctx, testVendor("VEN-0000000107", testProduct("PRD-0000000507")))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	product, ownerID, err := s.FindProduct(ctx, "PRD-0000000507")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if ownerID != "VEN-0000000107" {
		t.Fatalf("expected owner VEN-0000000107, got %q", ownerID)
	}
	if product.ProductID != "PRD-0000000507" {
		t.Fatalf("unexpected product %+v", product)
	}
}

func TestReturnedVendorsDoNotAliasStoreState(t *testing.T) {
	s := New()
	ctx := context.Background()

	_, err := s.CreateVendor(ctx, testVendor("VEN-0000000108", testProduct("PRD-0000000508")))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := s.GetVendor(ctx, "VEN-0000000108")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	first.Products[0].Quantity = 12345
	first.VendorName = "mutated"

	second, err := s.GetVendor(ctx, "VEN-0000000108")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if second.Products[0].Quantity == 12345 || second.VendorName == "mutated" {
		t.Fatalf("store state leaked through returned copy: %+v", second)
	}
}

func TestCreateOrderRejectsDuplicateNumber(t *testing.T) {
	s := New()
	ctx := context.Background()

	order := domain.PurchaseOrder{ID: "ORD-0000000001", OrderNumber: "PO-000001"}
	if _, err := s.CreateOrder(ctx, order); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	order.ID = "ORD-0000000002"
	if _, err := s.CreateOrder(ctx, order); !errors.Is(err, store.ErrDuplicateOrderNumber) {
		t.Fatalf("expected ErrDuplicateOrderNumber, got %v", err)
	}
}

func TestCreateOrderRejectsDuplicateID(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateOrder(ctx, domain.PurchaseOrder{ID: "ORD-0000000009", OrderNumber: "PO-000101"}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	// A colliding minted id is a duplicate-class condition, not bad input.
	_, err := s.CreateOrder(ctx, domain.PurchaseOrder{ID: "ORD-0000000009", OrderNumber: "PO-000102"})
	if !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestUpdateOrderKeepsImmutableFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	_, err := s.CreateOrder(ctx, domain.PurchaseOrder{
		ID:          "ORD-0000000003",
		OrderNumber: "PO-000010",
		CreatedAt:   createdAt,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := s.UpdateOrder(ctx, domain.PurchaseOrder{
		ID:          "ORD-0000000003",
		OrderNumber: "PO-HIJACKED",
		Notes:       "changed",
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.OrderNumber != "PO-000010" {
		t.Fatalf("expected order number immutable, got %q", updated.OrderNumber)
	}
	if !updated.CreatedAt.Equal(createdAt) {
		t.Fatalf("expected created_at immutable, got %v", updated.CreatedAt)
	}
	if updated.Notes != "changed" {
		t.Fatalf("expected notes updated, got %q", updated.Notes)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"ORD-A", "ORD-B", "ORD-C"} {
		_, err := s.CreateOrder(ctx, domain.PurchaseOrder{
			ID:          id,
			OrderNumber: "PO-00002" + string(rune('0'+i)),
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("create %s failed: %v", id, err)
		}
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders))
	}
	if orders[0].ID != "ORD-C" || orders[2].ID != "ORD-A" {
		t.Fatalf("expected newest first, got %s..%s", orders[0].ID, orders[2].ID)
	}
}

func TestNextOrderSequenceIsMonotonic(t *testing.T) {
	s := New()
	ctx := context.Background()

	prev := int64(0)
	for i := 0; i < 5; i++ {
		seq, err := s.NextOrderSequence(ctx)
		if err != nil {
			t.Fatalf("sequence failed: %v", err)
		}
		if seq <= prev {
			t.Fatalf("expected strictly increasing sequence, got %d after %d", seq, prev)
		}
		prev = seq
	}
}

func TestSeededStoreHasDemoCatalog(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	vendors, err := s.ListVendors(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(vendors) == 0 {
		t.Fatalf("expected seeded vendors")
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("list users failed: %v", err)
	}
	if len(users) < 2 {
		t.Fatalf("expected seeded admin and staff accounts, got %d", len(users))
	}
}
