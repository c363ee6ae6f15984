package jobs

import (
	"fmt"
	"log"

	"OpexSaas/internal/logger"
	"OpexSaas/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	mappingConfig := NewDefaultMappingConfig()

	// Override from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["mapping_schedule"].(string); ok && schedule != "" {
			mappingConfig.Schedule = schedule
		}
		if batchSize, ok := s.config["mapping_batch_size"].(int); ok && batchSize > 0 {
			mappingConfig.BatchSize = batchSize
		}
	}

	if err := RunMappingScheduler(mappingConfig, s.db); err != nil {
		return fmt.Errorf("failed to start auto-mapping scheduler: %v", err)
	}

	logger.Audit("Cron service started, auto-mapping scheduled")
	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
