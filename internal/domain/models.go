package domain

import "time"

// Product is a vendor-owned catalog line. It has no lifecycle outside its
// vendor's product list, but its ProductID is unique across the entire
// system because several callers look products up by id alone.
type Product struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Measure     string  `json:"measure"`
	Quantity    float64 `json:"quantity"`
	Price       float64 `json:"price"`
}

type Vendor struct {
	VendorID   string    `json:"vendor_id"`
	VendorName string    `json:"vendor_name"`
	SearchName string    `json:"search_name"`
	Phone      string    `json:"phone,omitempty"`
	City       string    `json:"city,omitempty"`
	Products   []Product `json:"product_list"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ProductInput is the inbound shape for a product being created or supplied
// as part of a replacement product list. Price is a pointer so an omitted
// price can be told apart from an explicit zero.
type ProductInput struct {
	ProductID   string   `json:"product_id,omitempty"`
	ProductName string   `json:"product_name"`
	Measure     string   `json:"measure"`
	Quantity    float64  `json:"quantity"`
	Price       *float64 `json:"price,omitempty"`
}

type VendorCreateRequest struct {
	VendorName string         `json:"vendor_name"`
	SearchName string         `json:"search_name"`
	Phone      string         `json:"phone"`
	City       string         `json:"city"`
	Products   []ProductInput `json:"product_list"`
}

type VendorUpdateRequest struct {
	VendorName *string         `json:"vendor_name,omitempty"`
	SearchName *string         `json:"search_name,omitempty"`
	Phone      *string         `json:"phone,omitempty"`
	City       *string         `json:"city,omitempty"`
	Products   *[]ProductInput `json:"product_list,omitempty"`
}

// ProductUpdateRequest carries a partial update for one product inside a
/// vendor's list. A product_id in the payload is ignored: the stored id is
// always preserved.
type ProductUpdateRequest struct {
	ProductID   string   `json:"product_id,omitempty"`
	ProductName *string  `json:"product_name,omitempty"`
	Measure     *string  `json:"measure,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Price       *float64 `json:"price,omitempty"`
}

type VendorResponse struct {
	Vendor Vendor `json:"vendor"`
}

type VendorListResponse struct {
	Vendors []Vendor `json:"vendors"`
}

// OrderLine is one line item of a purchase order.
type OrderLine struct {
	ProductID   string  `json:"product_id,omitempty"`
	Description string  `json:"description,omitempty"`
	Measure     string  `json:"measure,omitempty"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type PurchaseOrder struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"order_number"`
	VendorID    string      `json:"vendor_id,omitempty"`
	Branch      string      `json:"branch,omitempty"`
	Notes       string      `json:"notes,omitempty"`
	LineItems   []OrderLine `json:"line_items"`
	TotalAmount float64     `json:"total_amount"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

type OrderCreateRequest struct {
	OrderNumber string      `json:"order_number,omitempty"`
	VendorID    string      `json:"vendor_id"`
	Branch      string      `json:"branch"`
	Notes       string      `json:"notes"`
	LineItems   []OrderLine `json:"line_items"`
	TotalAmount *float64    `json:"total_amount,omitempty"`
}

type OrderUpdateRequest struct {
	VendorID    *string      `json:"vendor_id,omitempty"`
	Branch      *string      `json:"branch,omitempty"`
	Notes       *string      `json:"notes,omitempty"`
	LineItems   *[]OrderLine `json:"line_items,omitempty"`
	TotalAmount *float64     `json:"total_amount,omitempty"`
}

type OrderResponse struct {
	Order PurchaseOrder `json:"order"`
}

type OrderListResponse struct {
	Orders []PurchaseOrder `json:"orders"`
}

// RepairFailure records a single order whose repair could not be persisted.
type RepairFailure struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// RepairReport summarizes one run of the total-amount repair job.
// OrdersExamined counts orders with a non-empty line-item list;
// OrdersUpdated counts those whose total was actually rewritten.
type RepairReport struct {
	OrdersExamined int             `json:"orders_examined"`
	OrdersUpdated  int             `json:"orders_updated"`
	Failures       []RepairFailure `json:"failures,omitempty"`
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
}

// PosConfig is a point-of-sale terminal registration with a time-bound
// validity window. It shares the minted-id pattern but carries no derived
// fields.
type PosConfig struct {
	PosID      string    `json:"pos_id"`
	PosName    string    `json:"pos_name"`
	BranchCode string    `json:"branch_code"`
	Status     string    `json:"status"`
	Authority  string    `json:"authority"`
	ValidFrom  time.Time `json:"valid_from"`
	ValidUntil time.Time `json:"valid_until"`
	CreatedAt  time.Time `json:"created_at"`
}

type PosConfigCreateRequest struct {
	PosName    string `json:"pos_name"`
	BranchCode string `json:"branch_code"`
	Status     string `json:"status"`
	Authority  string `json:"authority"`
	ValidFrom  string `json:"valid_from"`
	ValidUntil string `json:"valid_until"`
}

type Bank struct {
	BankID        string    `json:"bank_id"`
	BankName      string    `json:"bank_name"`
	AccountNumber string    `json:"account_number"`
	AccountHolder string    `json:"account_holder"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

type BankCreateRequest struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountHolder string `json:"account_holder"`
	Status        string `json:"status"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type AuditLog struct {
	ID            string    `json:"id"`
	Branch        string    `json:"branch"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type StaffCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type StaffUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	PosStatusActive    = "active"
	PosStatusSuspended = "suspended"
	PosStatusRetired   = "retired"
)

const (
	BankStatusActive   = "active"
	BankStatusInactive = "inactive"
)

// OrderTotal computes the derived total of a line-item list. Every code path
// that establishes or repairs the total-amount invariant goes through this
// one function so a repeated computation always yields the same value.
func OrderTotal(lines []OrderLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Quantity * line.UnitPrice
	}
	return total
}
