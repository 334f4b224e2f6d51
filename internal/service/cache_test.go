package service

import (
	"context"
	"testing"
	"time"

	"katalogtoko/backend/internal/cache"
	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store/memory"
)

// mapVendorCache is a test double with the same hit/miss contract as the
// redis-backed cache.
type mapVendorCache struct {
	entries map[string]domain.Vendor
	hits    int
	sets    int
}

func newMapVendorCache() *mapVendorCache {
	return &mapVendorCache{entries: make(map[string]domain.Vendor)}
}

func (c *mapVendorCache) Get(_ context.Context, vendorID string) (*domain.Vendor, bool, error) {
	vendor, ok := c.entries[vendorID]
	if !ok {
		return nil, false, nil
	}
	c.hits++
	found := vendor
	return &found, true, nil
}

func (c *mapVendorCache) Set(_ context.Context, vendor *domain.Vendor, _ time.Duration) error {
	c.sets++
	c.entries[vendor.VendorID] = *vendor
	return nil
}

func (c *mapVendorCache) Invalidate(_ context.Context, vendorID string) error {
	delete(c.entries, vendorID)
	return nil
}

var _ cache.VendorCache = (*mapVendorCache)(nil)

func TestGetVendorReadsThroughCache(t *testing.T) {
	vendorCache := newMapVendorCache()
	svc := New(memory.New(), vendorCache, 5*time.Second, "main-branch")
	ctx := adminCtx()

	vendor, err := svc.CreateVendor(ctx, domain.VendorCreateRequest{VendorName: "Cache Uji"})
	if err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}

	if _, err := svc.GetVendor(ctx, vendor.VendorID); err != nil {
		t.Fatalf("first get failed: %v", err)
	}
	if vendorCache.sets != 1 {
		t.Fatalf("expected first read to populate cache, sets=%d", vendorCache.sets)
	}

	if _, err := svc.GetVendor(ctx, vendor.VendorID); err != nil {
		t.Fatalf("second get failed: %v", err)
	}
	if vendorCache.hits != 1 {
		t.Fatalf("expected second read to hit cache, hits=%d", vendorCache.hits)
	}
}

func TestVendorMutationsInvalidateCache(t *testing.T) {
	vendorCache := newMapVendorCache()
	svc := New(memory.New(), vendorCache, 5*time.Second, "main-branch")
	ctx := adminCtx()

	vendor, err := svc.CreateVendor(ctx, domain.VendorCreateRequest{VendorName: "Cache Basi"})
	if err != nil {
		t.Fatalf("create vendor failed: %v", err)
	}
	if _, err := svc.GetVendor(ctx, vendor.VendorID); err != nil {
		t.Fatalf("prime cache failed: %v", err)
	}

	updated, err := svc.UpdateVendor(ctx, vendor.VendorID, domain.VendorUpdateRequest{
		City: strPtr("Medan"),
	})
	if err != nil {
		t.Fatalf("update vendor failed: %v", err)
	}
	if updated.City != "Medan" {
		t.Fatalf("expected city updated, got %q", updated.City)
	}

	// A stale cached copy must not survive the mutation.
	fresh, err := svc.GetVendor(ctx, vendor.VendorID)
	if err != nil {
		t.Fatalf("get after update failed: %v", err)
	}
	if fresh.City != "Medan" {
		t.Fatalf("expected fresh read after invalidation, got city=%q", fresh.City)
	}
}
