package store

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type eventStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Events() dependency.Events {
	return &eventStore{MYSQLStore: ms}
}

func (es *eventStore) TrackConversionEvent(ctx context.Context, companyID int, e entity.ConversionEventInsert) (int, error) {
	var value any
	if e.Value != nil {
		value = *e.Value
	}
	var productID, orderID any
	if e.ProductID != nil {
		productID = *e.ProductID
	}
	if e.OrderID != nil {
		orderID = *e.OrderID
	}
	query := `
	INSERT INTO conversion_event (company_id, session_id, event_type, product_id, order_id, value, metadata)
	VALUES (:companyId, :sessionId, :eventType, :productId, :orderId, :value, :metadata)`
	id, err := ExecNamedLastId(ctx, es.DB(), query, map[string]any{
		"companyId": companyID,
		"sessionId": e.SessionID,
		"eventType": string(e.EventType),
		"productId": productID,
		"orderId":   orderID,
		"value":     value,
		"metadata":  nullable(e.Metadata),
	})
	if err != nil {
		return 0, fmt.Errorf("can't insert conversion event: %w", err)
	}
	return id, nil
}

func (es *eventStore) CountEventsByType(ctx context.Context, companyID int, tr entity.TimeRange, et entity.ConversionEventType) (int, error) {
	from, to := windowParams(tr.From, tr.To)
	return QueryCountNamed(ctx, es.DB(), `
	SELECT COUNT(*) FROM conversion_event
	WHERE company_id = :companyId AND event_type = :eventType
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)`,
		map[string]any{"companyId": companyID, "eventType": string(et), "from": from, "to": to})
}

func (es *eventStore) CountEventsForProduct(ctx context.Context, companyID, productID int, tr entity.TimeRange, et entity.ConversionEventType) (int, error) {
	from, to := windowParams(tr.From, tr.To)
	return QueryCountNamed(ctx, es.DB(), `
	SELECT COUNT(*) FROM conversion_event
	WHERE company_id = :companyId AND product_id = :productId AND event_type = :eventType
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)`,
		map[string]any{"companyId": companyID, "productId": productID, "eventType": string(et), "from": from, "to": to})
}

func (es *eventStore) SumEventValues(ctx context.Context, companyID int, tr entity.TimeRange, et entity.ConversionEventType) (decimal.Decimal, error) {
	from, to := windowParams(tr.From, tr.To)
	r, err := QueryNamedOne[struct {
		V decimal.Decimal `db:"v"`
	}](ctx, es.DB(), `
	SELECT COALESCE(SUM(value), 0) AS v FROM conversion_event
	WHERE company_id = :companyId AND event_type = :eventType
	AND (:from IS NULL OR created_at >= :from)
	AND (:to IS NULL OR created_at < :to)`,
		map[string]any{"companyId": companyID, "eventType": string(et), "from": from, "to": to})
	if err != nil {
		return decimal.Zero, err
	}
	return r.V, nil
}

// ProductEventBreakdown joins product views with cart/purchase events in one
// grouped read so engines never issue per-product queries.
func (es *eventStore) ProductEventBreakdown(ctx context.Context, companyID int, tr entity.TimeRange) ([]entity.ProductEventCounts, error) {
	from, to := windowParams(tr.From, tr.To)
	query := `
	SELECT pv.product_id,
		COUNT(*) AS views,
		COALESCE(MAX(ev.add_to_carts), 0) AS add_to_carts,
		COALESCE(MAX(ev.purchases), 0) AS purchases
	FROM product_visit pv
	LEFT JOIN (
		SELECT product_id,
			SUM(CASE WHEN event_type = 'add_to_cart' THEN 1 ELSE 0 END) AS add_to_carts,
			SUM(CASE WHEN event_type = 'purchase' THEN 1 ELSE 0 END) AS purchases
		FROM conversion_event
		WHERE company_id = :companyId AND product_id IS NOT NULL
		AND (:from IS NULL OR created_at >= :from)
		AND (:to IS NULL OR created_at < :to)
		GROUP BY product_id
	) ev ON ev.product_id = pv.product_id
	WHERE pv.company_id = :companyId
	AND (:from IS NULL OR pv.visited_at >= :from)
	AND (:to IS NULL OR pv.visited_at < :to)
	GROUP BY pv.product_id`
	rows, err := QueryListNamed[entity.ProductEventCounts](ctx, es.DB(), query,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("product event breakdown: %w", err)
	}
	return rows, nil
}
