package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/souqops/analytics-manager/internal/apperr"
	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type productStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Products() dependency.Products {
	return &productStore{MYSQLStore: ms}
}

const productColumns = `p.id, p.company_id, p.name, p.price, p.cost_price,
	p.stock, p.category_id, pc.name AS category, p.is_active`

func (ps *productStore) ProductsByCompany(ctx context.Context, companyID int, activeOnly bool) ([]entity.Product, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM product p
	LEFT JOIN product_category pc ON p.category_id = pc.id
	WHERE p.company_id = :companyId
	AND (:activeOnly = FALSE OR p.is_active = TRUE)`, productColumns)
	rows, err := QueryListNamed[entity.Product](ctx, ps.DB(), query,
		map[string]any{"companyId": companyID, "activeOnly": activeOnly})
	if err != nil {
		return nil, fmt.Errorf("products by company: %w", err)
	}
	return rows, nil
}

func (ps *productStore) ProductByID(ctx context.Context, companyID, productID int) (*entity.Product, error) {
	query := fmt.Sprintf(`
	SELECT %s FROM product p
	LEFT JOIN product_category pc ON p.category_id = pc.id
	WHERE p.id = :productId AND p.company_id = :companyId`, productColumns)
	p, err := QueryNamedOne[entity.Product](ctx, ps.DB(), query,
		map[string]any{"productId": productID, "companyId": companyID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("product by id: %w", err)
	}
	return &p, nil
}

func (ps *productStore) UnitsSoldByProduct(ctx context.Context, companyID int, tr entity.TimeRange) (map[int]int, error) {
	from, to := windowParams(tr.From, tr.To)
	rows, err := QueryListNamed[struct {
		ProductID int `db:"product_id"`
		Units     int `db:"units"`
	}](ctx, ps.DB(), `
	SELECT oi.product_id, COALESCE(SUM(oi.quantity), 0) AS units
	FROM order_item oi
	JOIN customer_order co ON oi.order_id = co.id
	WHERE co.company_id = :companyId AND co.status = 'DELIVERED'
	AND oi.product_id IS NOT NULL
	AND (:from IS NULL OR co.created_at >= :from)
	AND (:to IS NULL OR co.created_at < :to)
	GROUP BY oi.product_id`,
		map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, fmt.Errorf("units sold by product: %w", err)
	}
	result := make(map[int]int, len(rows))
	for _, r := range rows {
		result[r.ProductID] = r.Units
	}
	return result, nil
}
