package closing

import (
	"OpexSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ClosingService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewClosingService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &ClosingService{config: cfg, pgxPool: pool}
}

func (s *ClosingService) Name() string {
	return "closing"
}

func (s *ClosingService) Start() error {
	go StartClosingService(s.pgxPool)
	return nil
}

func (s *ClosingService) Stop() error {
	return nil
}
