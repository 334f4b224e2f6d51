package store

import (
	"context"
	"errors"
	"time"

	"katalogtoko/backend/internal/domain"
)

// Error taxonomy surfaced by every repository driver. Callers distinguish
// kinds with errors.Is; the HTTP layer maps each kind to a status code.
var (
	ErrNotFound             = errors.New("not found")
	ErrDuplicateVendor      = errors.New("duplicate vendor id")
	ErrDuplicateProduct     = errors.New("duplicate product id")
	ErrDuplicateOrderNumber = errors.New("duplicate order number")
	ErrDuplicateID          = errors.New("duplicate identifier")
	ErrCollisionExhausted   = errors.New("identifier collision retries exhausted")
	ErrValidation           = errors.New("validation failed")
	ErrUnavailable          = errors.New("store unavailable")
)

// Repository is the persistence boundary for the catalog and the order
// ledger. Every operation is atomic at single-document granularity: a
// vendor with its embedded product list, or one purchase order. Nested
// product mutations replace the matched list entry only, never the whole
// vendor document.
type Repository interface {
	CreateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error)
	GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error)
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	UpdateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error)
	DeleteVendor(ctx context.Context, vendorID string) error

	AddProduct(ctx context.Context, vendorID string, product domain.Product) (*domain.Vendor, error)
	ReplaceProduct(ctx context.Context, vendorID string, product domain.Product) (*domain.Vendor, error)
	// RemoveProduct is idempotent: a missing product id is not an error as
	// long as the vendor exists.
	RemoveProduct(ctx context.Context, vendorID string, productID string) (*domain.Vendor, error)
	// FindProduct looks a product up by id alone, across all vendors.
	// Returns the product and its owning vendor id.
	FindProduct(ctx context.Context, productID string) (*domain.Product, string, error)

	CreateOrder(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error)
	GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error)
	GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.PurchaseOrder, error)
	ListOrders(ctx context.Context) ([]domain.PurchaseOrder, error)
	UpdateOrder(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error)
	DeleteOrder(ctx context.Context, id string) error
	// NextOrderSequence atomically increments and returns the order-number
	// counter. Safe under concurrent creates.
	NextOrderSequence(ctx context.Context) (int64, error)

	CreatePosConfig(ctx context.Context, cfg domain.PosConfig) (*domain.PosConfig, error)
	GetPosConfig(ctx context.Context, posID string) (*domain.PosConfig, error)
	ListPosConfigs(ctx context.Context) ([]domain.PosConfig, error)
	DeletePosConfig(ctx context.Context, posID string) error

	CreateBank(ctx context.Context, bank domain.Bank) (*domain.Bank, error)
	GetBank(ctx context.Context, bankID string) (*domain.Bank, error)
	ListBanks(ctx context.Context) ([]domain.Bank, error)
	DeleteBank(ctx context.Context, bankID string) error

	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, branch string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)

	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
