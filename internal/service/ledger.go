package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
	"katalogtoko/backend/internal/xid"
)

// CreateOrder persists a new purchase order. When the request carries no
// order number one is derived from the store's atomic sequence counter;
// when line items are present without an explicit total, the total is
// computed from them. An explicitly supplied total is honored even if it
// diverges from the line-item sum (manual overrides stay eligible for
// correction by the repair job).
func (s *Service) CreateOrder(ctx context.Context, req domain.OrderCreateRequest) (domain.PurchaseOrder, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PurchaseOrder{}, fmt.Errorf("admin role required")
	}

	if err := validateLineItems(req.LineItems); err != nil {
		return domain.PurchaseOrder{}, err
	}
	if req.TotalAmount != nil && *req.TotalAmount < 0 {
		return domain.PurchaseOrder{}, fmt.Errorf("%w: total amount must be non-negative", store.ErrValidation)
	}
	if req.Branch == "" {
		req.Branch = s.defaultBranch
	}

	totalAmount := domain.ApplyWithDefault(req.TotalAmount, 0)
	if len(req.LineItems) > 0 && req.TotalAmount == nil {
		totalAmount = domain.OrderTotal(req.LineItems)
	}

	order := domain.PurchaseOrder{
		ID:          xid.New(xid.OrderIDPrefix),
		VendorID:    strings.TrimSpace(req.VendorID),
		Branch:      strings.TrimSpace(req.Branch),
		Notes:       strings.TrimSpace(req.Notes),
		LineItems:   req.LineItems,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now().UTC(),
	}

	explicitNumber := strings.TrimSpace(req.OrderNumber)
	if explicitNumber != "" {
		order.OrderNumber = explicitNumber
		created, err := s.repo.CreateOrder(ctx, order)
		if err != nil {
			return domain.PurchaseOrder{}, err
		}
		s.logAudit(ctx, order.Branch, "order_create", "purchase_order", created.ID, fmt.Sprintf("number=%s,total=%g,lines=%d", created.OrderNumber, created.TotalAmount, len(created.LineItems)))
		return *created, nil
	}

	// Minted numbers come from an atomic counter, so a duplicate means two
	// creates raced; redraw a fresh sequence value and retry, bounded.
	var created *domain.PurchaseOrder
	var lastErr error
	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		seq, err := s.repo.NextOrderSequence(ctx)
		if err != nil {
			return domain.PurchaseOrder{}, err
		}
		order.OrderNumber = xid.OrderNumber(seq)
		created, lastErr = s.repo.CreateOrder(ctx, order)
		if lastErr == nil {
			break
		}
		if !errors.Is(lastErr, store.ErrDuplicateOrderNumber) {
			return domain.PurchaseOrder{}, lastErr
		}
	}
	if created == nil {
		return domain.PurchaseOrder{}, fmt.Errorf("%w: %v", store.ErrCollisionExhausted, lastErr)
	}

	s.logAudit(ctx, order.Branch, "order_create", "purchase_order", created.ID, fmt.Sprintf("number=%s,total=%g,lines=%d", created.OrderNumber, created.TotalAmount, len(created.LineItems)))
	return *created, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.PurchaseOrder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.PurchaseOrder{}, fmt.Errorf("%w: order id required", store.ErrValidation)
	}

	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	return *order, nil
}

func (s *Service) GetOrderByNumber(ctx context.Context, orderNumber string) (domain.PurchaseOrder, error) {
	orderNumber = strings.TrimSpace(orderNumber)
	if orderNumber == "" {
		return domain.PurchaseOrder{}, fmt.Errorf("%w: order number required", store.ErrValidation)
	}

	order, err := s.repo.GetOrderByNumber(ctx, orderNumber)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}
	return *order, nil
}

// ListOrders returns every order, most recently created first.
func (s *Service) ListOrders(ctx context.Context) ([]domain.PurchaseOrder, error) {
	return s.repo.ListOrders(ctx)
}

// UpdateOrder applies a partial merge. Whenever the payload replaces the
// line items and omits the total, the total is recomputed from the new
/// items: a stale total must never survive a line-item change.
func (s *Service) UpdateOrder(ctx context.Context, id string, req domain.OrderUpdateRequest) (domain.PurchaseOrder, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.PurchaseOrder{}, fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return domain.PurchaseOrder{}, fmt.Errorf("%w: order id required", store.ErrValidation)
	}
	if req.TotalAmount != nil && *req.TotalAmount < 0 {
		return domain.PurchaseOrder{}, fmt.Errorf("%w: total amount must be non-negative", store.ErrValidation)
	}

	existing, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	updated := *existing
	updated.VendorID = strings.TrimSpace(domain.ApplyOrKeep(req.VendorID, existing.VendorID))
	updated.Branch = strings.TrimSpace(domain.ApplyOrKeep(req.Branch, existing.Branch))
	updated.Notes = strings.TrimSpace(domain.ApplyOrKeep(req.Notes, existing.Notes))
	updated.TotalAmount = domain.ApplyOrKeep(req.TotalAmount, existing.TotalAmount)

	if req.LineItems != nil {
		if err := validateLineItems(*req.LineItems); err != nil {
			return domain.PurchaseOrder{}, err
		}
		updated.LineItems = *req.LineItems
		if req.TotalAmount == nil {
			updated.TotalAmount = domain.OrderTotal(updated.LineItems)
		}
	}

	saved, err := s.repo.UpdateOrder(ctx, updated)
	if err != nil {
		return domain.PurchaseOrder{}, err
	}

	s.logAudit(ctx, saved.Branch, "order_update", "purchase_order", saved.ID, fmt.Sprintf("number=%s,total=%g,lines=%d", saved.OrderNumber, saved.TotalAmount, len(saved.LineItems)))
	return *saved, nil
}

// DeleteOrder is terminal: the order is removed unconditionally and takes
// no further part in ledger consistency.
func (s *Service) DeleteOrder(ctx context.Context, id string) error {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return fmt.Errorf("admin role required")
	}

	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: order id required", store.ErrValidation)
	}

	if err := s.repo.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.logAudit(ctx, s.defaultBranch, "order_delete", "purchase_order", id, "")
	return nil
}

func validateLineItems(lines []domain.OrderLine) error {
	for _, line := range lines {
		if line.Quantity < 0 || line.UnitPrice < 0 {
			return fmt.Errorf("%w: line quantity and unit price must be non-negative", store.ErrValidation)
		}
	}
	return nil
}
