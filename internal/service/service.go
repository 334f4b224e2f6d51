package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"katalogtoko/backend/internal/cache"
	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// maxMintAttempts bounds how many times a rejected minted identifier is
// redrawn before the operation fails with ErrCollisionExhausted.
const maxMintAttempts = 3

type Service struct {
	repo          store.Repository
	vendorCache   cache.VendorCache
	cacheTTL      time.Duration
	defaultBranch string
}

func New(repo store.Repository, vendorCache cache.VendorCache, cacheTTL time.Duration, defaultBranch string) *Service {
	if vendorCache == nil {
		vendorCache = cache.NoopVendorCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	if defaultBranch == "" {
		defaultBranch = "main-branch"
	}

	return &Service{
		repo:          repo,
		vendorCache:   vendorCache,
		cacheTTL:      cacheTTL,
		defaultBranch: defaultBranch,
	}
}

func (s *Service) CreateVendor(ctx context.Context, req domain.VendorCreateRequest) (domain.Vendor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Vendor{}, fmt.Errorf("admin role required")
	}

	req.VendorName = strings.TrimSpace(req.VendorName)
	req.SearchName = strings.TrimSpace(req.SearchName)
	if req.VendorName == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor name required", store.ErrValidation)
	}
	if req.SearchName == "" {
		req.SearchName = strings.ToLower(req.VendorName)
	}

	products, err := buildProducts(req.Products)
	if err != nil {
		return domain.Vendor{}, err
	}

	var created *domain.Vendor
	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		vendor := domain.Vendor{
			VendorID:   xid.New(xid.VendorPrefix),
			VendorName: req.VendorName,
			SearchName: req.SearchName,
			Phone:      strings.TrimSpace(req.Phone),
			City:       strings.TrimSpace(req.City),
			Products:   remintCollidingIDs(products, req.Products),
			CreatedAt:  time.Now().UTC(),
		}
		created, lastErr = s.repo.CreateVendor(ctx, vendor)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, store.ErrDuplicateVendor) && !errors.Is(lastErr, store.ErrDuplicateProduct) {
			return domain.Vendor{}, lastErr
		}
		products = vendor.Products
	}
	if created == nil {
		return domain.Vendor{}, fmt.Errorf("%w: %v", store.ErrCollisionExhausted, lastErr)
	}

	s.logAudit(ctx, s.defaultBranch, "vendor_create", "vendor", created.VendorID, fmt.Sprintf("name=%s,products=%d", created.VendorName, len(created.Products)))
	return *created, nil
}

func (s *Service) GetVendor(ctx context.Context, vendorID string) (domain.Vendor, error) {
	vendorID = strings.TrimSpace(vendorID)
	if vendorID == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor id required", store.ErrValidation)
	}

	if cached, hit, err := s.vendorCache.Get(ctx, vendorID); err == nil && hit {
		return *cached, nil
	}

	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}
	if err := s.vendorCache.Set(ctx, vendor, s.cacheTTL); err != nil {
		log.Printf("[service] WARN: failed to cache vendor %s: %v", vendorID, err)
	}
	return *vendor, nil
}

func (s *Service) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	return s.repo.ListVendors(ctx)
}

func (s *Service) UpdateVendor(ctx context.Context, vendorID string, req domain.VendorUpdateRequest) (domain.Vendor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Vendor{}, fmt.Errorf("admin role required")
	}

	vendorID = strings.TrimSpace(vendorID)
	if vendorID == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor id required", store.ErrValidation)
	}

	existing, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}

	updated := *existing
	updated.VendorName = strings.TrimSpace(domain.ApplyOrKeep(req.VendorName, existing.VendorName))
	updated.SearchName = strings.TrimSpace(domain.ApplyOrKeep(req.SearchName, existing.SearchName))
	updated.Phone = strings.TrimSpace(domain.ApplyOrKeep(req.Phone, existing.Phone))
	updated.City = strings.TrimSpace(domain.ApplyOrKeep(req.City, existing.City))
	if updated.VendorName == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor name required", store.ErrValidation)
	}

	if req.Products != nil {
		replacement, err := buildProducts(*req.Products)
		if err != nil {
			return domain.Vendor{}, err
		}
		updated.Products = replacement
	}

	saved, err := s.repo.UpdateVendor(ctx, updated)
	if err != nil {
		return domain.Vendor{}, err
	}

	s.invalidateVendor(ctx, vendorID)
	s.logAudit(ctx, s.defaultBranch, "vendor_update", "vendor", saved.VendorID, fmt.Sprintf("products=%d", len(saved.Products)))
	return *saved, nil
}

func (s *Service) DeleteVendor(ctx context.Context, vendorID string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	vendorID = strings.TrimSpace(vendorID)
	if vendorID == "" {
		return fmt.Errorf("%w: vendor id required", store.ErrValidation)
	}

	if err := s.repo.DeleteVendor(ctx, vendorID); err != nil {
		return err
	}

	s.invalidateVendor(ctx, vendorID)
	s.logAudit(ctx, s.defaultBranch, "vendor_delete", "vendor", vendorID, "")
	return nil
}

func (s *Service) AddProduct(ctx context.Context, vendorID string, req domain.ProductInput) (domain.Vendor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Vendor{}, fmt.Errorf("admin role required")
	}

	vendorID = strings.TrimSpace(vendorID)
	req.ProductName = strings.TrimSpace(req.ProductName)
	if vendorID == "" || req.ProductName == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor id and product name required", store.ErrValidation)
	}

	product := domain.Product{
		ProductName: req.ProductName,
		Measure:     strings.TrimSpace(req.Measure),
		Quantity:    req.Quantity,
		Price:       domain.ApplyWithDefault(req.Price, 0),
	}
	if product.Quantity < 0 || product.Price < 0 {
		return domain.Vendor{}, fmt.Errorf("%w: quantity and price must be non-negative", store.ErrValidation)
	}

	var saved *domain.Vendor
	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		product.ProductID = xid.New(xid.ProductPrefix)
		saved, lastErr = s.repo.AddProduct(ctx, vendorID, product)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, store.ErrDuplicateProduct) {
			return domain.Vendor{}, lastErr
		}
	}
	if saved == nil {
		return domain.Vendor{}, fmt.Errorf("%w: %v", store.ErrCollisionExhausted, lastErr)
	}

	s.invalidateVendor(ctx, vendorID)
	s.logAudit(ctx, s.defaultBranch, "product_add", "product", product.ProductID, fmt.Sprintf("vendor=%s,name=%s,price=%g", vendorID, product.ProductName, product.Price))
	return *saved, nil
}

// UpdateProduct applies a partial update to one product in a vendor's list.
// The stored ProductID always wins over anything in the payload, and an
// omitted price keeps the prior value instead of resetting to zero.
func (s *Service) UpdateProduct(ctx context.Context, vendorID string, productID string, req domain.ProductUpdateRequest) (domain.Vendor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Vendor{}, fmt.Errorf("admin role required")
	}

	vendorID = strings.TrimSpace(vendorID)
	productID = strings.TrimSpace(productID)
	if vendorID == "" || productID == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor id and product id required", store.ErrValidation)
	}

	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return domain.Vendor{}, err
	}

	var current *domain.Product
	for i := range vendor.Products {
		if vendor.Products[i].ProductID == productID {
			current = &vendor.Products[i]
			break
		}
	}
	if current == nil {
		return domain.Vendor{}, store.ErrNotFound
	}

	merged := domain.Product{
		ProductID:   current.ProductID,
		ProductName: strings.TrimSpace(domain.ApplyOrKeep(req.ProductName, current.ProductName)),
		Measure:     strings.TrimSpace(domain.ApplyOrKeep(req.Measure, current.Measure)),
		Quantity:    domain.ApplyOrKeep(req.Quantity, current.Quantity),
		Price:       domain.ApplyOrKeep(req.Price, current.Price),
	}
	if merged.ProductName == "" {
		return domain.Vendor{}, fmt.Errorf("%w: product name required", store.ErrValidation)
	}
	if merged.Quantity < 0 || merged.Price < 0 {
		return domain.Vendor{}, fmt.Errorf("%w: quantity and price must be non-negative", store.ErrValidation)
	}

	saved, err := s.repo.ReplaceProduct(ctx, vendorID, merged)
	if err != nil {
		return domain.Vendor{}, err
	}

	s.invalidateVendor(ctx, vendorID)
	s.logAudit(ctx, s.defaultBranch, "product_update", "product", productID, fmt.Sprintf("vendor=%s,price=%g,qty=%g", vendorID, merged.Price, merged.Quantity))
	return *saved, nil
}

// RemoveProduct is idempotent: removing an id that is already absent
// succeeds and leaves the vendor untouched.
func (s *Service) RemoveProduct(ctx context.Context, vendorID string, productID string) (domain.Vendor, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.Vendor{}, fmt.Errorf("admin role required")
	}

	vendorID = strings.TrimSpace(vendorID)
	productID = strings.TrimSpace(productID)
	if vendorID == "" || productID == "" {
		return domain.Vendor{}, fmt.Errorf("%w: vendor id and product id required", store.ErrValidation)
	}

	saved, err := s.repo.RemoveProduct(ctx, vendorID, productID)
	if err != nil {
		return domain.Vendor{}, err
	}

	s.invalidateVendor(ctx, vendorID)
	s.logAudit(ctx, s.defaultBranch, "product_remove", "product", productID, fmt.Sprintf("vendor=%s", vendorID))
	return *saved, nil
}

// FindProduct resolves a product by id alone, across all vendors. Returns
// the product and the id of the vendor that owns it.
func (s *Service) FindProduct(ctx context.Context, productID string) (domain.Product, string, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return domain.Product{}, "", fmt.Errorf("%w: product id required", store.ErrValidation)
	}

	product, vendorID, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		return domain.Product{}, "", err
	}
	return *product, vendorID, nil
}

// buildProducts normalizes inbound product entries for create and
// list-replacement paths: names are required, quantity and price must be
// non-negative, an omitted price defaults to zero, and entries without an
// id get one minted.
func buildProducts(inputs []domain.ProductInput) ([]domain.Product, error) {
	products := make([]domain.Product, 0, len(inputs))
	for _, in := range inputs {
		name := strings.TrimSpace(in.ProductName)
		if name == "" {
			return nil, fmt.Errorf("%w: product name required", store.ErrValidation)
		}
		price := domain.ApplyWithDefault(in.Price, 0)
		if in.Quantity < 0 || price < 0 {
			return nil, fmt.Errorf("%w: quantity and price must be non-negative", store.ErrValidation)
		}
		id := strings.TrimSpace(in.ProductID)
		if id == "" {
			id = xid.New(xid.ProductPrefix)
		}
		products = append(products, domain.Product{
			ProductID:   id,
			ProductName: name,
			Measure:     strings.TrimSpace(in.Measure),
			Quantity:    in.Quantity,
			Price:       price,
		})
	}
	return products, nil
}

// remintCollidingIDs redraws ids for products whose id was minted by us
// (the caller did not supply one); caller-supplied ids are kept so a true
// duplicate surfaces instead of being papered over.
func remintCollidingIDs(products []domain.Product, inputs []domain.ProductInput) []domain.Product {
	reminted := make([]domain.Product, len(products))
	copy(reminted, products)
	for i := range reminted {
		if i < len(inputs) && strings.TrimSpace(inputs[i].ProductID) != "" {
			continue
		}
		reminted[i].ProductID = xid.New(xid.ProductPrefix)
	}
	return reminted
}

func (s *Service) invalidateVendor(ctx context.Context, vendorID string) {
	if err := s.vendorCache.Invalidate(ctx, vendorID); err != nil {
		log.Printf("[service] WARN: failed to invalidate vendor cache %s: %v", vendorID, err)
	}
}

func (s *Service) logAudit(ctx context.Context, branch string, action string, entityType string, entityID string, detail string) {
	actor, _ := ActorFromContext(ctx)
	err := s.repo.CreateAuditLog(ctx, domain.AuditLog{
		ID:            xid.New(xid.AuditPrefix),
		Branch:        branch,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[service] WARN: failed to record audit log action=%s entity=%s: %v", action, entityID, err)
	}
}

func (s *Service) ListAuditLogs(ctx context.Context, branch string, date string, limit int) ([]domain.AuditLog, error) {
	if branch == "" {
		branch = s.defaultBranch
	}
	if limit < 1 {
		limit = 100
	}

	var from time.Time
	if strings.TrimSpace(date) == "" {
		from = time.Now().UTC().Add(-24 * time.Hour)
	} else {
		parsed, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date", store.ErrValidation)
		}
		from = parsed.UTC()
	}
	to := from.Add(24 * time.Hour)

	return s.repo.ListAuditLogs(ctx, branch, from, to, limit)
}
