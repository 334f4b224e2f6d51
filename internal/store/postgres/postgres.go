package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/xid"
)

// Store is the PostgreSQL repository driver.
//
// Schema expectations: vendors and a products child table (primary key on
// product_id enforces system-wide product uniqueness, ON DELETE CASCADE
// makes vendor deletion atomic with its list), purchase_orders with a
// UNIQUE order_number and JSONB line_items, a single-row order_sequence
// counter, pos_configs, banks, audit_logs and users.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	if vendor.VendorID == "" || vendor.VendorName == "" {
		return nil, store.ErrValidation
	}
	for _, p := range vendor.Products {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
	}
	if vendor.CreatedAt.IsZero() {
		vendor.CreatedAt = time.Now().UTC()
	}
	vendor.UpdatedAt = time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vendors (vendor_id, vendor_name, search_name, phone, city, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, vendor.VendorID, vendor.VendorName, vendor.SearchName, vendor.Phone, vendor.City, vendor.CreatedAt, vendor.UpdatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	for position, p := range vendor.Products {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (product_id, vendor_id, product_name, measure, quantity, price, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, p.ProductID, vendor.VendorID, p.ProductName, p.Measure, p.Quantity, p.Price, position)
		if err != nil {
			return nil, mapUniqueViolation(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	created := vendor
	return &created, nil
}

func (s *Store) GetVendor(ctx context.Context, vendorID string) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := s.db.QueryRowContext(ctx, `
		SELECT vendor_id, vendor_name, search_name, phone, city, created_at, updated_at
		FROM vendors
		WHERE vendor_id = $1
	`, vendorID).Scan(&vendor.VendorID, &vendor.VendorName, &vendor.SearchName, &vendor.Phone, &vendor.City, &vendor.CreatedAt, &vendor.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	products, err := s.loadProducts(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	vendor.Products = products
	vendor.CreatedAt = vendor.CreatedAt.UTC()
	vendor.UpdatedAt = vendor.UpdatedAt.UTC()
	return &vendor, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor_id, vendor_name, search_name, phone, city, created_at, updated_at
		FROM vendors
		ORDER BY search_name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	vendors := make([]domain.Vendor, 0, 64)
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.VendorID, &v.VendorName, &v.SearchName, &v.Phone, &v.City, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		v.CreatedAt = v.CreatedAt.UTC()
		v.UpdatedAt = v.UpdatedAt.UTC()
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range vendors {
		products, err := s.loadProducts(ctx, vendors[i].VendorID)
		if err != nil {
			return nil, err
		}
		vendors[i].Products = products
	}
	return vendors, nil
}

func (s *Store) UpdateVendor(ctx context.Context, vendor domain.Vendor) (*domain.Vendor, error) {
	if vendor.VendorID == "" || vendor.VendorName == "" {
		return nil, store.ErrValidation
	}
	for _, p := range vendor.Products {
		if err := validateProduct(p); err != nil {
			return nil, err
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE vendors
		SET vendor_name = $2, search_name = $3, phone = $4, city = $5, updated_at = now()
		WHERE vendor_id = $1
	`, vendor.VendorID, vendor.VendorName, vendor.SearchName, vendor.Phone, vendor.City)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE vendor_id = $1`, vendor.VendorID); err != nil {
		return nil, err
	}
	for position, p := range vendor.Products {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO products (product_id, vendor_id, product_name, measure, quantity, price, position)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, p.ProductID, vendor.VendorID, p.ProductName, p.Measure, p.Quantity, p.Price, position)
		if err != nil {
			return nil, mapUniqueViolation(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetVendor(ctx, vendor.VendorID)
}

func (s *Store) DeleteVendor(ctx context.Context, vendorID string) error {
	// products go with the vendor via ON DELETE CASCADE
	res, err := s.db.ExecContext(ctx, `DELETE FROM vendors WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AddProduct(ctx context.Context, vendorID string, product domain.Product) (*domain.Vendor, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE vendors SET updated_at = now() WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO products (product_id, vendor_id, product_name, measure, quantity, price, position)
		VALUES ($1,$2,$3,$4,$5,$6,
			(SELECT COALESCE(MAX(position), -1) + 1 FROM products WHERE vendor_id = $2))
	`, product.ProductID, vendorID, product.ProductName, product.Measure, product.Quantity, product.Price)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetVendor(ctx, vendorID)
}

func (s *Store) ReplaceProduct(ctx context.Context, vendorID string, product domain.Product) (*domain.Vendor, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET product_name = $3, measure = $4, quantity = $5, price = $6
		WHERE vendor_id = $1 AND product_id = $2
	`, vendorID, product.ProductID, product.ProductName, product.Measure, product.Quantity, product.Price)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	if _, err := s.db.ExecContext(ctx, `UPDATE vendors SET updated_at = now() WHERE vendor_id = $1`, vendorID); err != nil {
		return nil, err
	}
	return s.GetVendor(ctx, vendorID)
}

func (s *Store) RemoveProduct(ctx context.Context, vendorID string, productID string) (*domain.Vendor, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE vendors SET updated_at = now() WHERE vendor_id = $1`, vendorID)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}

	// Deleting an absent product id is a no-op: removal is idempotent.
	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM products WHERE vendor_id = $1 AND product_id = $2
	`, vendorID, productID); err != nil {
		return nil, err
	}
	return s.GetVendor(ctx, vendorID)
}

func (s *Store) FindProduct(ctx context.Context, productID string) (*domain.Product, string, error) {
	var p domain.Product
	var vendorID string
	err := s.db.QueryRowContext(ctx, `
		SELECT product_id, vendor_id, product_name, measure, quantity, price
		FROM products
		WHERE product_id = $1
	`, productID).Scan(&p.ProductID, &vendorID, &p.ProductName, &p.Measure, &p.Quantity, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", store.ErrNotFound
		}
		return nil, "", err
	}
	return &p, vendorID, nil
}

func (s *Store) loadProducts(ctx context.Context, vendorID string) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT product_id, product_name, measure, quantity, price
		FROM products
		WHERE vendor_id = $1
		ORDER BY position
	`, vendorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 16)
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ProductID, &p.ProductName, &p.Measure, &p.Quantity, &p.Price); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (s *Store) CreateOrder(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	if order.ID == "" || order.OrderNumber == "" {
		return nil, store.ErrValidation
	}
	for _, line := range order.LineItems {
		if line.Quantity < 0 || line.UnitPrice < 0 {
			return nil, store.ErrValidation
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	order.UpdatedAt = time.Now().UTC()

	lineItems, err := json.Marshal(order.LineItems)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO purchase_orders (id, order_number, vendor_id, branch, notes, line_items, total_amount, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, order.ID, order.OrderNumber, order.VendorID, order.Branch, order.Notes, lineItems, order.TotalAmount, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	created := order
	return &created, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.PurchaseOrder, error) {
	return s.getOrderWhere(ctx, `id = $1`, id)
}

func (s *Store) GetOrderByNumber(ctx context.Context, orderNumber string) (*domain.PurchaseOrder, error) {
	return s.getOrderWhere(ctx, `order_number = $1`, orderNumber)
}

func (s *Store) getOrderWhere(ctx context.Context, where string, arg any) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	var lineItems []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, order_number, vendor_id, branch, notes, line_items, total_amount, created_at, updated_at
		FROM purchase_orders
		WHERE `+where, arg).Scan(&order.ID, &order.OrderNumber, &order.VendorID, &order.Branch, &order.Notes, &lineItems, &order.TotalAmount, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(lineItems, &order.LineItems); err != nil {
		return nil, err
	}
	order.CreatedAt = order.CreatedAt.UTC()
	order.UpdatedAt = order.UpdatedAt.UTC()
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_number, vendor_id, branch, notes, line_items, total_amount, created_at, updated_at
		FROM purchase_orders
		ORDER BY created_at DESC, order_number DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.PurchaseOrder, 0, 128)
	for rows.Next() {
		var order domain.PurchaseOrder
		var lineItems []byte
		if err := rows.Scan(&order.ID, &order.OrderNumber, &order.VendorID, &order.Branch, &order.Notes, &lineItems, &order.TotalAmount, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(lineItems, &order.LineItems); err != nil {
			return nil, err
		}
		order.CreatedAt = order.CreatedAt.UTC()
		order.UpdatedAt = order.UpdatedAt.UTC()
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *Store) UpdateOrder(ctx context.Context, order domain.PurchaseOrder) (*domain.PurchaseOrder, error) {
	for _, line := range order.LineItems {
		if line.Quantity < 0 || line.UnitPrice < 0 {
			return nil, store.ErrValidation
		}
	}

	lineItems, err := json.Marshal(order.LineItems)
	if err != nil {
		return nil, err
	}

	// order_number and created_at are immutable after creation
	res, err := s.db.ExecContext(ctx, `
		UPDATE purchase_orders
		SET vendor_id = $2, branch = $3, notes = $4, line_items = $5, total_amount = $6, updated_at = now()
		WHERE id = $1
	`, order.ID, order.VendorID, order.Branch, order.Notes, lineItems, order.TotalAmount)
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetOrder(ctx, order.ID)
}

func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) NextOrderSequence(ctx context.Context) (int64, error) {
	var value int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO order_sequence (id, value)
		VALUES (1, 1)
		ON CONFLICT (id)
		DO UPDATE SET value = order_sequence.value + 1
		RETURNING value
	`).Scan(&value)
	return value, err
}

func (s *Store) CreatePosConfig(ctx context.Context, cfg domain.PosConfig) (*domain.PosConfig, error) {
	if cfg.PosID == "" || cfg.PosName == "" {
		return nil, store.ErrValidation
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO pos_configs (pos_id, pos_name, branch_code, status, authority, valid_from, valid_until, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, cfg.PosID, cfg.PosName, cfg.BranchCode, cfg.Status, cfg.Authority, cfg.ValidFrom, cfg.ValidUntil, cfg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateID
		}
		return nil, err
	}
	created := cfg
	return &created, nil
}

func (s *Store) GetPosConfig(ctx context.Context, posID string) (*domain.PosConfig, error) {
	var cfg domain.PosConfig
	err := s.db.QueryRowContext(ctx, `
		SELECT pos_id, pos_name, branch_code, status, authority, valid_from, valid_until, created_at
		FROM pos_configs
		WHERE pos_id = $1
	`, posID).Scan(&cfg.PosID, &cfg.PosName, &cfg.BranchCode, &cfg.Status, &cfg.Authority, &cfg.ValidFrom, &cfg.ValidUntil, &cfg.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) ListPosConfigs(ctx context.Context) ([]domain.PosConfig, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pos_id, pos_name, branch_code, status, authority, valid_from, valid_until, created_at
		FROM pos_configs
		ORDER BY pos_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	configs := make([]domain.PosConfig, 0, 32)
	for rows.Next() {
		var cfg domain.PosConfig
		if err := rows.Scan(&cfg.PosID, &cfg.PosName, &cfg.BranchCode, &cfg.Status, &cfg.Authority, &cfg.ValidFrom, &cfg.ValidUntil, &cfg.CreatedAt); err != nil {
			return nil, err
		}
		configs = append(configs, cfg)
	}
	return configs, rows.Err()
}

func (s *Store) DeletePosConfig(ctx context.Context, posID string) error {
	return s.deleteByID(ctx, `DELETE FROM pos_configs WHERE pos_id = $1`, posID)
}

func (s *Store) CreateBank(ctx context.Context, bank domain.Bank) (*domain.Bank, error) {
	if bank.BankID == "" || bank.BankName == "" {
		return nil, store.ErrValidation
	}
	if bank.CreatedAt.IsZero() {
		bank.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO banks (bank_id, bank_name, account_number, account_holder, status, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, bank.BankID, bank.BankName, bank.AccountNumber, bank.AccountHolder, bank.Status, bank.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrDuplicateID
		}
		return nil, err
	}
	created := bank
	return &created, nil
}

func (s *Store) GetBank(ctx context.Context, bankID string) (*domain.Bank, error) {
	var bank domain.Bank
	err := s.db.QueryRowContext(ctx, `
		SELECT bank_id, bank_name, account_number, account_holder, status, created_at
		FROM banks
		WHERE bank_id = $1
	`, bankID).Scan(&bank.BankID, &bank.BankName, &bank.AccountNumber, &bank.AccountHolder, &bank.Status, &bank.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &bank, nil
}

func (s *Store) ListBanks(ctx context.Context) ([]domain.Bank, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bank_id, bank_name, account_number, account_holder, status, created_at
		FROM banks
		ORDER BY bank_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banks := make([]domain.Bank, 0, 32)
	for rows.Next() {
		var bank domain.Bank
		if err := rows.Scan(&bank.BankID, &bank.BankName, &bank.AccountNumber, &bank.AccountHolder, &bank.Status, &bank.CreatedAt); err != nil {
			return nil, err
		}
		banks = append(banks, bank)
	}
	return banks, rows.Err()
}

func (s *Store) DeleteBank(ctx context.Context, bankID string) error {
	return s.deleteByID(ctx, `DELETE FROM banks WHERE bank_id = $1`, bankID)
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New(xid.AuditPrefix)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, branch, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.Branch, entry.ActorUsername, entry.ActorRole, entry.Action, entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, branch string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, branch, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE ($1 = '' OR branch = $1) AND created_at >= $2 AND created_at < $3
		ORDER BY created_at DESC
		LIMIT $4
	`, branch, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Branch, &entry.ActorUsername, &entry.ActorRole, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.CreatedAt = entry.CreatedAt.UTC()
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	if user.Username == "" {
		return store.ErrValidation
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, user.Username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil && isUniqueViolation(err) {
		return store.ErrValidation
	}
	return err
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET password = $2 WHERE username = $1
	`, username, password)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, query string, id string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
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

// mapUniqueViolation translates a SQLSTATE 23505 into the sentinel for the
// table whose constraint fired.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return err
	}
	switch {
	case strings.Contains(pgErr.TableName, "vendors"):
		return store.ErrDuplicateVendor
	case strings.Contains(pgErr.TableName, "products"):
		return store.ErrDuplicateProduct
	case strings.Contains(pgErr.TableName, "purchase_orders"):
		return store.ErrDuplicateOrderNumber
	default:
		return store.ErrDuplicateID
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
