package store

import (
	"context"
	"fmt"

	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/entity"
)

type customerStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Customers() dependency.Customers {
	return &customerStore{MYSQLStore: ms}
}

func (cs *customerStore) CustomersByCompany(ctx context.Context, companyID int) ([]entity.Customer, error) {
	rows, err := QueryListNamed[entity.Customer](ctx, cs.DB(), `
	SELECT id, company_id, name, phone, governorate, city
	FROM customer
	WHERE company_id = :companyId`,
		map[string]any{"companyId": companyID})
	if err != nil {
		return nil, fmt.Errorf("customers by company: %w", err)
	}
	return rows, nil
}
