package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"katalogtoko/backend/internal/domain"
	"katalogtoko/backend/internal/store"
)

// RepairOrderTotals walks every purchase order and re-establishes the
// total-amount invariant for orders with a non-empty line-item list. Each
// order's save is independent: a per-order failure is collected into the
// report and the scan continues. A store-level outage, whether during the
// initial full scan or on a save, aborts the whole job.
func (s *Service) RepairOrderTotals(ctx context.Context) (domain.RepairReport, error) {
	actor, ok := ActorFromContext(ctx)
	if !ok || actor.Role != "admin" {
		return domain.RepairReport{}, fmt.Errorf("admin role required")
	}

	report := domain.RepairReport{StartedAt: time.Now().UTC()}

	orders, err := s.repo.ListOrders(ctx)
	if err != nil {
		return domain.RepairReport{}, fmt.Errorf("%w: listing orders: %v", store.ErrUnavailable, err)
	}

	for _, order := range orders {
		if len(order.LineItems) == 0 {
			continue
		}
		report.OrdersExamined++

		want := domain.OrderTotal(order.LineItems)
		if order.TotalAmount == want {
			continue
		}

		order.TotalAmount = want
		if _, err := s.repo.UpdateOrder(ctx, order); err != nil {
			if errors.Is(err, store.ErrUnavailable) || ctx.Err() != nil {
				return domain.RepairReport{}, fmt.Errorf("%w: saving order %s: %v", store.ErrUnavailable, order.ID, err)
			}
			report.Failures = append(report.Failures, domain.RepairFailure{
				OrderID: order.ID,
				Reason:  err.Error(),
			})
			log.Printf("[service] WARN: repair failed for order %s: %v", order.ID, err)
			continue
		}
		report.OrdersUpdated++
	}

	report.FinishedAt = time.Now().UTC()
	s.logAudit(ctx, s.defaultBranch, "order_totals_repair", "purchase_order", "", fmt.Sprintf("examined=%d,updated=%d,failed=%d", report.OrdersExamined, report.OrdersUpdated, len(report.Failures)))
	return report, nil
}
