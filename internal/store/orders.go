package store

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type orderStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Orders() dependency.Orders {
	return &orderStore{MYSQLStore: ms}
}

const orderColumns = `id, company_id, status, total, shipping, payment_method,
	governorate, city, customer_id, created_by, confirmed_by, coupon_id, created_at`

func (os *orderStore) OrdersInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.Order, error) {
	from, to := windowParams(tr.From, tr.To)
	query := fmt.Sprintf(`
	SELECT %s FROM customer_order
	WHERE company_id = :companyId
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)`, orderColumns)
	rows, err := QueryListNamed[entity.Order](ctx, os.DB(), query,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("orders in window: %w", err)
	}
	return rows, nil
}

func (os *orderStore) DeliveredOrdersInWindow(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.Order, error) {
	from, to := windowParams(tr.From, tr.To)
	query := fmt.Sprintf(`
	SELECT %s FROM customer_order
	WHERE company_id = :companyId AND status = 'DELIVERED'
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)`, orderColumns)
	rows, err := QueryListNamed[entity.Order](ctx, os.DB(), query,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("delivered orders in window: %w", err)
	}
	return rows, nil
}

func (os *orderStore) OrderItemsForOrders(ctx context.Context, orderIDs []int) ([]entity.OrderItem, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	query := `
	SELECT id, order_id, product_id, product_name, product_color, product_size, price, quantity
	FROM order_item
	WHERE order_id IN (:orderIds)`
	rows, err := QueryListNamed[entity.OrderItem](ctx, os.DB(), query,
		map[string]any{"orderIds": orderIDs})
	if err != nil {
		return nil, fmt.Errorf("order items for orders: %w", err)
	}
	return rows, nil
}

func (os *orderStore) StatusHistoryForOrders(ctx context.Context, orderIDs []int) ([]entity.OrderStatusChange, error) {
	if len(orderIDs) == 0 {
		return nil, nil
	}
	query := `
	SELECT id, order_id, status, changed_at
	FROM order_status_history
	WHERE order_id IN (:orderIds)
	ORDER BY order_id, changed_at`
	rows, err := QueryListNamed[entity.OrderStatusChange](ctx, os.DB(), query,
		map[string]any{"orderIds": orderIDs})
	if err != nil {
		return nil, fmt.Errorf("status history for orders: %w", err)
	}
	return rows, nil
}

func (os *orderStore) OrderExists(ctx context.Context, companyID, orderID int) (bool, error) {
	count, err := QueryCountNamed(ctx, os.DB(), `
	SELECT COUNT(*) FROM customer_order
	WHERE id = :orderId AND company_id = :companyId`,
		map[string]any{"orderId": orderID, "companyId": companyID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (os *orderStore) OrdersByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]entity.DayOrderTotals, error) {
	from, to := windowParams(tr.From, tr.To)
	rows, err := QueryListNamed[struct {
		D       time.Time       `db:"d"`
		Orders  int             `db:"orders"`
		Revenue decimal.Decimal `db:"revenue"`
	}](ctx, os.DB(), `
	SELECT DATE(created_at) AS d, COUNT(*) AS orders, COALESCE(SUM(total), 0) AS revenue
	FROM customer_order
	WHERE company_id = :companyId
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)
	GROUP BY DATE(created_at)`,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("orders by day: %w", err)
	}
	result := make(map[string]entity.DayOrderTotals, len(rows))
	for _, r := range rows {
		result[r.D.Format("2006-01-02")] = entity.DayOrderTotals{Orders: r.Orders, Revenue: r.Revenue}
	}
	return result, nil
}
