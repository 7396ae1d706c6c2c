package store

import (
	"context"
	"fmt"
	"time"

	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type visitStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Visits() dependency.Visits {
	return &visitStore{MYSQLStore: ms}
}

func (vs *visitStore) TrackStoreVisit(ctx context.Context, companyID int, v entity.StoreVisitInsert) (int, error) {
	query := `
	INSERT INTO store_visit (company_id, session_id, ip_address, user_agent, referrer, landing_page)
	VALUES (:companyId, :sessionId, :ipAddress, :userAgent, :referrer, :landingPage)`
	id, err := ExecNamedLastId(ctx, vs.DB(), query, map[string]any{
		"companyId":   companyID,
		"sessionId":   v.SessionID,
		"ipAddress":   nullable(v.IPAddress),
		"userAgent":   nullable(v.UserAgent),
		"referrer":    nullable(v.Referrer),
		"landingPage": nullable(v.LandingPage),
	})
	if err != nil {
		return 0, fmt.Errorf("can't insert store visit: %w", err)
	}
	return id, nil
}

func (vs *visitStore) TrackProductVisit(ctx context.Context, companyID int, v entity.ProductVisitInsert) (int, error) {
	query := `
	INSERT INTO product_visit (company_id, product_id, session_id, source)
	VALUES (:companyId, :productId, :sessionId, :source)`
	id, err := ExecNamedLastId(ctx, vs.DB(), query, map[string]any{
		"companyId": companyID,
		"productId": v.ProductID,
		"sessionId": v.SessionID,
		"source":    nullable(v.Source),
	})
	if err != nil {
		return 0, fmt.Errorf("can't insert product visit: %w", err)
	}
	return id, nil
}

func (vs *visitStore) CountStoreVisits(ctx context.Context, companyID int, tr entity.TimeRange) (int, error) {
	from, to := windowParams(tr.From, tr.To)
	return QueryCountNamed(ctx, vs.DB(), `
	SELECT COUNT(*) FROM store_visit
	WHERE company_id = :companyId
	AND (:from IS NULL OR visited_at >= :from)
	AND (:to IS NULL OR visited_at < :to)`,
		map[string]any{"companyId": companyID, "from": from, "to": to})
}

func (vs *visitStore) CountUniqueVisitors(ctx context.Context, companyID int, tr entity.TimeRange) (int, error) {
	from, to := windowParams(tr.From, tr.To)
	return QueryCountNamed(ctx, vs.DB(), `
	SELECT COUNT(DISTINCT session_id) FROM store_visit
	WHERE company_id = :companyId
	AND (:from IS NULL OR visited_at >= :from)
	AND (:to IS NULL OR visited_at < :to)`,
		map[string]any{"companyId": companyID, "from": from, "to": to})
}

func (vs *visitStore) CountProductVisits(ctx context.Context, companyID int, tr entity.TimeRange) (int, error) {
	from, to := windowParams(tr.From, tr.To)
	return QueryCountNamed(ctx, vs.DB(), `
	SELECT COUNT(*) FROM product_visit
	WHERE company_id = :companyId
	AND (:from IS NULL OR visited_at >= :from)
	AND (:to IS NULL OR visited_at < :to)`,
		map[string]any{"companyId": companyID, "from": from, "to": to})
}

func (vs *visitStore) CountVisitsForProduct(ctx context.Context, companyID, productID int, tr entity.TimeRange) (int, error) {
	from, to := windowParams(tr.From, tr.To)
	return QueryCountNamed(ctx, vs.DB(), `
	SELECT COUNT(*) FROM product_visit
	WHERE company_id = :companyId AND product_id = :productId
	AND (:from IS NULL OR visited_at >= :from)
	AND (:to IS NULL OR visited_at < :to)`,
		map[string]any{"companyId": companyID, "productId": productID, "from": from, "to": to})
}

func (vs *visitStore) StoreVisitsByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]int, error) {
	return vs.visitsByDay(ctx, "store_visit", companyID, tr)
}

func (vs *visitStore) ProductVisitsByDay(ctx context.Context, companyID int, tr entity.TimeRange) (map[string]int, error) {
	return vs.visitsByDay(ctx, "product_visit", companyID, tr)
}

func (vs *visitStore) visitsByDay(ctx context.Context, table string, companyID int, tr entity.TimeRange) (map[string]int, error) {
	from, to := windowParams(tr.From, tr.To)
	query := fmt.Sprintf(`
	SELECT DATE(visited_at) AS d, COUNT(*) AS cnt
	FROM %s
	WHERE company_id = :companyId
	AND (:from IS NULL OR visited_at >= :from)
	AND (:to IS NULL OR visited_at < :to)
	GROUP BY DATE(visited_at)`, table)
	rows, err := QueryListNamed[struct {
		D   time.Time `db:"d"`
		Cnt int       `db:"cnt"`
	}](ctx, vs.DB(), query, map[string]any{"companyId": companyID, "from": from, "to": to})
	if err != nil {
		return nil, err
	}
	result := make(map[string]int, len(rows))
	for _, r := range rows {
		result[r.D.Format("2006-01-02")] = r.Cnt
	}
	return result, nil
}

// nullable maps an empty string to NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
