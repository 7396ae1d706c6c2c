package store

import (
	"context"
	"fmt"

	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type cartStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Carts() dependency.Carts {
	return &cartStore{MYSQLStore: ms}
}

func (cs *cartStore) GuestCartsInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.GuestCart, error) {
	from, to := windowParams(tr.From, tr.To)
	rows, err := QueryListNamed[entity.GuestCart](ctx, cs.DB(), `
	SELECT id, company_id, cart_id, items, total, created_at, updated_at, expires_at
	FROM guest_cart
	WHERE company_id = :companyId
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)`,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("guest carts in window: %w", err)
	}
	return rows, nil
}

func (cs *cartStore) ConvertedCartIDs(ctx context.Context, companyID int) (map[string]bool, error) {
	rows, err := QueryListNamed[struct {
		CartID string `db:"guest_cart_id"`
	}](ctx, cs.DB(), `
	SELECT DISTINCT guest_cart_id FROM guest_order
	WHERE company_id = :companyId`,
		map[string]any{"companyId": companyID})
	if err != nil {
		return nil, fmt.Errorf("converted cart ids: %w", err)
	}
	result := make(map[string]bool, len(rows))
	for _, r := range rows {
		result[r.CartID] = true
	}
	return result, nil
}
