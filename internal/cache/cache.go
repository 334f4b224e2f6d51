package cache

import (
	"context"
	"time"

	"katalogtoko/backend/internal/domain"
)

// VendorCache is a read-through cache for vendor documents keyed by vendor
// id. Implementations must treat a miss as (nil, false, nil), not an error.
type VendorCache interface {
	Get(ctx context.Context, vendorID string) (*domain.Vendor, bool, error)
	Set(ctx context.Context, vendor *domain.Vendor, ttl time.Duration) error
	Invalidate(ctx context.Context, vendorID string) error
}

type NoopVendorCache struct{}

func (NoopVendorCache) Get(_ context.Context, _ string) (*domain.Vendor, bool, error) {
	return nil, false, nil
}

func (NoopVendorCache) Set(_ context.Context, _ *domain.Vendor, _ time.Duration) error {
	return nil
}

func (NoopVendorCache) Invalidate(_ context.Context, _ string) error {
	return nil
}
