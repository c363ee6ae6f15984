package sap

import (
	"OpexSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type SapService struct {
	config  map[string]interface{}
	pgxPool *pgxpool.Pool
}

func NewSapService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &SapService{config: cfg, pgxPool: pool}
}

func (s *SapService) Name() string {
	return "sap"
}

func (s *SapService) Start() error {
	go StartSapService(s.pgxPool)
	return nil
}

func (s *SapService) Stop() error {
	return nil
}
