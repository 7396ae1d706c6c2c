package store

import (
	"context"

	"github.com/souqops/analytics-manager/internal/dependency"
)

type companyStore struct {
	*MYSQLStore
}

func (ms *MYSQLStore) Companies() dependency.Companies {
	return &companyStore{MYSQLStore: ms}
}

func (cs *companyStore) CompanyExists(ctx context.Context, companyID int) (bool, error) {
	count, err := QueryCountNamed(ctx, cs.DB(),
		`SELECT COUNT(*) FROM company WHERE id = :companyId`,
		map[string]any{"companyId": companyID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
