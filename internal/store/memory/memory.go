package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/xid"
)

// Store is the in-memory repository driver. It is the default when no
// DATABASE_URL is configured and the backing store for unit tests. Global
// product-id uniqueness is enforced through productOwner, an index from
// product id to owning vendor id.
type Store struct {
	mu              sync.RWMutex
	vendorsByID     map[string]domain.Vendor
	productOwner    map[string]string
	ordersByID      map[string]domain.PurchaseOrder
	orderIDByNumber map[string]string
	orderSeq        int64
	posByID         map[string]domain.PosConfig
	banksByID       map[string]domain.Bank
	auditLogs       []domain.AuditLog
	usersByUsername map[string]domain.UserAccount
}

func New() *Store {
	return &Store{
		vendorsByID:     make(map[string]domain.Vendor),
		productOwner:    make(map[string]string),
		ordersByID:      make(map[string]domain.PurchaseOrder),
		orderIDByNumber: make(map[string]string),
		posByID:         make(map[string]domain.PosConfig),
		banksByID:       make(map[string]domain.Bank),
		auditLogs:       make([]domain.AuditLog, 0, 128),
		usersByUsername: make(map[string]domain.UserAccount),
	}
}

// NewSeeded returns a store pre-loaded with dev/demo users and a small
// sample catalog.
func NewSeeded() *Store {
	s := New()
	s.usersByUsername = seedUsers()

	now := time.Now().UTC()
	s.vendorsByID["VEN-0000000001"] = domain.Vendor{
		VendorID:   "VEN-0000000001",
		VendorName: "Sumber Rejeki",
		SearchName: "sumber rejeki",
		Phone:      "0812-0000-0001",
		City:       "Bandung",
		Products: []domain.Product{
			{ProductID: "PRD-0000000001", ProductName: "Beras Premium 5kg", Measure: "sak", Quantity: 40, Price: 78000},
			{ProductID: "PRD-0000000002", ProductName: "Minyak Goreng 1L", Measure: "btl", Quantity: 120, Price: 17500},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.vendorsByID["VEN-0000000002"] = domain.Vendor{
		VendorID:   "VEN-0000000002",
		VendorName: "Maju Jaya Distribusi",
		SearchName: "maju jaya distribusi",
		City:       "Surabaya",
		Products: []domain.Product{
			{ProductID: "PRD-0000000003", ProductName: "Gula Pasir 1kg", Measure: "kg", Quantity: 200, Price: 16800},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	for vendorID, vendor := range s.vendorsByID {
		for _, p := range vendor.Products {
			s.productOwner[p.ProductID] = vendorID
		}
	}
	return s
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD; unset
// variables fall back to hardcoded dev defaults with a warning. Production
// deployments use PostgreSQL and never reach this path.
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	staffPwd := envOr("SEED_STAFF_PASSWORD", "staff123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_STAFF_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_STAFF_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"staff", staffPwd, "staff"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (s *Store) CreateVendor(_ context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	if vendor.VendorID == "" || vendor.VendorName == "" {
		return nil, store.ErrValidation
	}
	for _, p := range vendor.Products {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vendorsByID[vendor.VendorID]; exists {
		return nil, store.ErrDuplicateVendor
	}
	seen := make(map[string]struct{}, len(vendor.Products))
	for _, p := range vendor.Products {
		if _, owned := s.productOwner[p.ProductID]; owned {
			return nil, store.ErrDuplicateProduct
		}
		if _, dup := seen[p.ProductID]; dup {
			return nil, store.ErrDuplicateProduct
		}
		seen[p.ProductID] = struct{}{}
	}

	now := time.Now().UTC()
	if vendor.CreatedAt.IsZero() {
		vendor.CreatedAt = now
	}
	vendor.UpdatedAt = now
	s.vendorsByID[vendor.VendorID] = cloneVendor(vendor)
	for _, p := range vendor.Products {
		s.productOwner[p.ProductID] = vendor.VendorID
	}

	created := cloneVendor(vendor)
	return &created, nil
}

func (s *Store) GetVendor(_ context.Context, vendorID string) (*domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vendor, exists := s.vendorsByID[vendorID]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cloneVendor(vendor)
	return &found, nil
}

func (s *Store) ListVendors(_ context.Context) ([]domain.Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vendors := make([]domain.Vendor, 0, len(s.vendorsByID))
	for _, vendor := range s.vendorsByID {
		vendors = append(vendors, cloneVendor(vendor))
	}
	slices.SortFunc(vendors, func(a, b domain.Vendor) int {
		return strings.Compare(a.SearchName, b.SearchName)
	})
	return vendors, nil
}

// UpdateVendor replaces the whole vendor document; the service layer owns
// the read-merge step. The product-id index is rebuilt against the new list
// after global-uniqueness checks.
func (s *Store) UpdateVendor(_ context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	if vendor.VendorID == "" || vendor.VendorName == "" {
		return nil, store.ErrValidation
	}
	for _, p := range vendor.Products {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.vendorsByID[vendor.VendorID]
	if !exists {
		return nil, store.ErrNotFound
	}
	seen := make(map[string]struct{}, len(vendor.Products))
	for _, p := range vendor.Products {
		if owner, owned := s.productOwner[p.ProductID]; owned && owner != vendor.VendorID {
			return nil, store.ErrDuplicateProduct
		}
		if _, dup := seen[p.ProductID]; dup {
			return nil, store.ErrDuplicateProduct
		}
		seen[p.ProductID] = struct{}{}
	}

	for _, p := range existing.Products {
		delete(s.productOwner, p.ProductID)
	}
	vendor.CreatedAt = existing.CreatedAt
	vendor.UpdatedAt = time.Now().UTC()
	s.vendorsByID[vendor.VendorID] = cloneVendor(vendor)
	for _, p := range vendor.Products {
		s.productOwner[p.ProductID] = vendor.VendorID
	}

	updated := cloneVendor(vendor)
	return &updated, nil
}

func (s *Store) DeleteVendor(_ context.Context, vendorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendor, exists := s.vendorsByID[vendorID]
	if !exists {
		return store.ErrNotFound
	}
	for _, p := range vendor.Products {
		delete(s.productOwner, p.ProductID)
	}
	delete(s.vendorsByID, vendorID)
	return nil
}

func (s *Store) AddProduct(_ context.Context, vendorID string, product domain.Product) (*domain.Vendor, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vendor, exists := s.vendorsByID[vendorID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if _, owned := s.productOwner[product.ProductID]; owned {
		return nil, store.ErrDuplicateProduct
	}

	vendor.Products = append(vendor.Products, product)
	vendor.UpdatedAt = time.Now().UTC()
	s.vendorsByID[vendorID] = vendor
	s.productOwner[product.ProductID] = vendorID

	updated := cloneVendor(vendor)
	return &updated, nil
}

// ReplaceProduct swaps the list entry matching product.ProductID. Siblings
// are untouched; lookup is always by id, never by position.
func (s *Store) ReplaceProduct(_ context.Context, vendorID string, product domain.Product) (*domain.Vendor, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	vendor, exists := s.vendorsByID[vendorID]
	if !exists {
		return nil, store.ErrNotFound
	}
	idx := slices.IndexFunc(vendor.Products, func(p domain.Product) bool {
		return p.ProductID == product.ProductID
	})
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	products := slices.Clone(vendor.Products)
	products[idx] = product
	vendor.Products = products
	vendor.UpdatedAt = time.Now().UTC()
	s.vendorsByID[vendorID] = vendor

	updated := cloneVendor(vendor)
	return &updated, nil
}

func (s *Store) RemoveProduct(_ context.Context, vendorID string, productID string) (*domain.Vendor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vendor, exists := s.vendorsByID[vendorID]
	if !exists {
		return nil, store.ErrNotFound
	}
	idx := slices.IndexFunc(vendor.Products, func(p domain.Product) bool {
		return p.ProductID == productID
	})
	if idx >= 0 {
		vendor.Products = slices.Delete(slices.Clone(vendor.Products), idx, idx+1)
		vendor.UpdatedAt = time.Now().UTC()
		s.vendorsByID[vendorID] = vendor
		delete(s.productOwner, productID)
	}

	updated := cloneVendor(vendor)
	return &updated, nil
}

func (s *Store) FindProduct(_ context.Context, productID string) (*domain.Product, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vendorID, owned := s.productOwner[productID]
	if !owned {
		return nil, "", store.ErrNotFound
	}
	vendor := s.vendorsByID[vendorID]
	for _, p := range vendor.Products {
		if p.ProductID == productID {
			found := p
			return &found, vendorID, nil
		}
	}
	// Index said the product exists but the list disagrees; treat as absent.
	return nil, "", store.ErrNotFound
}

func (s *Store) CreateOrder(_ context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	if order.ID == "" || order.OrderNumber == "" {
		return nil, store.ErrValidation
	}
	for _, line := range order.LineItems {
		if line.Quantity < 0 || line.UnitPrice < 0 {
			return nil, store.ErrValidation
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ordersByID[order.ID]; exists {
		return nil, store.ErrDuplicateID
	}
	if _, taken := s.orderIDByNumber[order.OrderNumber]; taken {
		return nil, store.ErrDuplicateOrderNumber
	}

	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	s.ordersByID[order.ID] = cloneOrder(order)
	s.orderIDByNumber[order.OrderNumber] = order.ID

	created := cloneOrder(order)
	return &created, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.ordersByID[id]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cloneOrder(order)
	return &found, nil
}

func (s *Store) GetOrderByNumber(_ context.Context, orderNumber string) (*domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.orderIDByNumber[orderNumber]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cloneOrder(s.ordersByID[id])
	return &found, nil
}

func (s *Store) ListOrders(_ context.Context) ([]domain.PurchaseOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.PurchaseOrder, 0, len(s.ordersByID))
	for _, order := range s.ordersByID {
		orders = append(orders, cloneOrder(order))
	}
	// Most recent first; order number breaks creation-time ties.
	slices.SortFunc(orders, func(a, b domain.PurchaseOrder) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.OrderNumber, a.OrderNumber)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	return orders, nil
}

func (s *Store) UpdateOrder(_ context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	for _, line := range order.LineItems {
		if line.Quantity < 0 || line.UnitPrice < 0 {
			return nil, store.ErrValidation
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.ordersByID[order.ID]
	if !exists {
		return nil, store.ErrNotFound
	}

	// Order number and creation time are immutable after creation.
	order.OrderNumber = existing.OrderNumber
	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = time.Now().UTC()
	s.ordersByID[order.ID] = cloneOrder(order)

	updated := cloneOrder(order)
	return &updated, nil
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, exists := s.ordersByID[id]
	if !exists {
		return store.ErrNotFound
	}
	delete(s.orderIDByNumber, order.OrderNumber)
	delete(s.ordersByID, id)
	return nil
}

func (s *Store) NextOrderSequence(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderSeq++
	return s.orderSeq, nil
}

func (s *Store) CreatePosConfig(_ context.Context, cfg domain.PosConfig) (*domain.PosConfig, error) {
	if cfg.PosID == "" || cfg.PosName == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posByID[cfg.PosID]; exists {
		return nil, store.ErrDuplicateID
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	s.posByID[cfg.PosID] = cfg
	created := cfg
	return &created, nil
}

func (s *Store) GetPosConfig(_ context.Context, posID string) (*domain.PosConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, exists := s.posByID[posID]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := cfg
	return &found, nil
}

func (s *Store) ListPosConfigs(_ context.Context) ([]domain.PosConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	configs := make([]domain.PosConfig, 0, len(s.posByID))
	for _, cfg := range s.posByID {
		configs = append(configs, cfg)
	}
	slices.SortFunc(configs, func(a, b domain.PosConfig) int {
		return strings.Compare(a.PosID, b.PosID)
	})
	return configs, nil
}

func (s *Store) DeletePosConfig(_ context.Context, posID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.posByID[posID]; !exists {
		return store.ErrNotFound
	}
	delete(s.posByID, posID)
	return nil
}

func (s *Store) CreateBank(_ context.Context, bank domain.Bank) (*domain.Bank, error) {
	if bank.BankID == "" || bank.BankName == "" {
		return nil, store.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.banksByID[bank.BankID]; exists {
		return nil, store.ErrDuplicateID
	}
	if bank.CreatedAt.IsZero() {
		bank.CreatedAt = time.Now().UTC()
	}
	s.banksByID[bank.BankID] = bank
	created := bank
	return &created, nil
}

func (s *Store) GetBank(_ context.Context, bankID string) (*domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bank, exists := s.banksByID[bankID]
	if !exists {
		return nil, store.ErrNotFound
	}
	found := bank
	return &found, nil
}

func (s *Store) ListBanks(_ context.Context) ([]domain.Bank, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	banks := make([]domain.Bank, 0, len(s.banksByID))
	for _, bank := range s.banksByID {
		banks = append(banks, bank)
	}
	slices.SortFunc(banks, func(a, b domain.Bank) int {
		return strings.Compare(a.BankID, b.BankID)
	})
	return banks, nil
}

func (s *Store) DeleteBank(_ context.Context, bankID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.banksByID[bankID]; !exists {
		return store.ErrNotFound
	}
	delete(s.banksByID, bankID)
	return nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New(xid.AuditPrefix)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, branch string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit < 1 {
		limit = 100
	}
	result := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if branch != "" && entry.Branch != branch {
			continue
		}
		if entry.CreatedAt.Before(from) || !entry.CreatedAt.Before(to) {
			continue
		}
		result = append(result, entry)
	}
	slices.SortFunc(result, func(a, b domain.AuditLog) int {
		if a.CreatedAt.Equal(b.CreatedAt) {
			return strings.Compare(b.ID, a.ID)
		}
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.Username == "" {
		return store.ErrValidation
	}
	if _, exists := s.usersByUsername[user.Username]; exists {
		return store.ErrValidation
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

func validateProduct(p domain.Product) error {
	if p.ProductID == "" || p.ProductName == "" {
		return store.ErrValidation
	}
	if p.Quantity < 0 || p.Price < 0 {
		return store.ErrValidation
	}
	return nil
}

func cloneVendor(v domain.Vendor) domain.Vendor {
	v.Products = slices.Clone(v.Products)
	return v
}

func cloneOrder(o domain.PurchaseOrder) domain.PurchaseOrder {
	o.LineItems = slices.Clone(o.LineItems)
	return o
}
