package budget

import (
	"OpexSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BudgetService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewBudgetService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &BudgetService{config: cfg, pgxPool: pool}
}

func (s *BudgetService) Name() string {
	return "budget"
}

func (s *BudgetService) Start() error {
	go StartBudgetService(s.pgxPool)
	return nil
}

func (s *BudgetService) Stop() error {
	return nil
}
