package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"OpexSaas/internal/config"
	"OpexSaas/internal/logger"
	"OpexSaas/internal/recon"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
)

// MappingConfig holds configuration for the automatic SAP-line mapping job.
type MappingConfig struct {
	Schedule  string // Cron schedule
	BatchSize int    // Rows updated per statement batch
	TimeZone  string // Timezone for scheduling
}

// NewDefaultMappingConfig builds a MappingConfig from env vars with the
// compiled-in defaults as fallback.
func NewDefaultMappingConfig() *MappingConfig {
	schedule := os.Getenv("MAPPING_SCHEDULE")
	if schedule == "" {
		schedule = config.DefaultMappingSchedule
	}

	batchSize := config.MappingBatchSize
	if bs := os.Getenv("MAPPING_BATCH_SIZE"); bs != "" {
		if parsed, err := strconv.Atoi(bs); err == nil && parsed > 0 {
			batchSize = parsed
		}
	}

	return &MappingConfig{
		Schedule:  schedule,
		BatchSize: batchSize,
		TimeZone:  config.DefaultTimeZone,
	}
}

// RunMappingScheduler starts the cron job that retries automatic mapping of
// still-unmapped SAP lines and refreshes monthly actuals afterwards. Both
// steps are idempotent, so overlapping with an operator-triggered run from
// the HTTP endpoint is harmless.
func RunMappingScheduler(cfg *MappingConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultMappingSchedule
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
		logger.Audit(fmt.Sprintf("Invalid timezone %s, falling back to UTC: %v", cfg.TimeZone, err))
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		logger.Audit(fmt.Sprintf("Starting auto-mapping job at %s", time.Now().In(loc).Format(time.RFC3339)))
		mapped, err := ProcessUnmappedLines(db, cfg.BatchSize)
		if err != nil {
			logger.Audit(fmt.Sprintf("Auto-mapping job failed: %v", err))
			log.Printf("ERROR: Auto-mapping job failed: %v", err)
			return
		}
		if mapped > 0 {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
			defer cancel()
			if err := SyncMonthlyActuals(ctx, db); err != nil {
				logger.Audit(fmt.Sprintf("Actuals sync after auto-mapping failed: %v", err))
				return
			}
		}
		logger.Audit(fmt.Sprintf("Auto-mapping job completed, %d lines mapped", mapped))
	})
	if err != nil {
		return fmt.Errorf("unable to schedule auto-mapping processor: %v", err)
	}

	c.Start()
	logger.Audit(fmt.Sprintf("Auto-mapping scheduler started with schedule: %s (timezone: %s)", cfg.Schedule, cfg.TimeZone))
	return nil
}

// scanProjectIDs drains a proj_id result set into a lookup set. Scan and
// iteration errors surface instead of silently shrinking the set: a dropped
// id would strand a matchable line as UNMAPPED with no trace.
func scanProjectIDs(rows pgx.Rows) (map[string]bool, error) {
	defer rows.Close()
	known := make(map[string]bool)
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return nil, err
		}
		known[pid] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return known, nil
}

// ProcessUnmappedLines runs one pass of automatic matching: every UNMAPPED
// staged line whose header text yields a project identifier that exists in
// tb_project_master is flipped to MAPPED. Lines without a match, or whose
// extracted identifier is unknown, stay UNMAPPED and remain eligible for
// later retries. batchSize controls how many updates are queued per wire
// round-trip, not how many lines are considered. Returns the number of
// lines mapped.
func ProcessUnmappedLines(db *pgxpool.Pool, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = config.MappingBatchSize
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	rows, err := db.Query(ctx,
		`SELECT raw_id, COALESCE(header_text, '') FROM tb_sap_upload_raw WHERE mapping_status = 'UNMAPPED'`)
	if err != nil {
		return 0, fmt.Errorf("failed to load unmapped lines: %w", err)
	}

	candidates := make(map[int64]string)
	idSet := make(map[string]struct{})
	for rows.Next() {
		var rawID int64
		var header string
		if err := rows.Scan(&rawID, &header); err != nil {
			continue
		}
		if pid, ok := recon.ExtractProjectID(header); ok {
			candidates[rawID] = pid
			idSet[pid] = struct{}{}
		}
	}
	rows.Close()
	if rows.Err() != nil {
		return 0, rows.Err()
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(idSet))
	for pid := range idSet {
		ids = append(ids, pid)
	}
	projRows, err := db.Query(ctx,
		`SELECT proj_id FROM tb_project_master WHERE proj_id = ANY($1)`, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to verify project ids: %w", err)
	}
	known, err := scanProjectIDs(projRows)
	if err != nil {
		return 0, fmt.Errorf("failed to verify project ids: %w", err)
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start mapping transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	mapped := 0
	batch := &pgx.Batch{}
	flush := func() error {
		if batch.Len() == 0 {
			return nil
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return fmt.Errorf("failed to apply mapping batch: %w", err)
		}
		batch = &pgx.Batch{}
		return nil
	}
	for rawID, pid := range candidates {
		if !known[pid] {
			continue
		}
		batch.Queue(
			`UPDATE tb_sap_upload_raw SET mapped_proj_id = $1, mapping_status = 'MAPPED' WHERE raw_id = $2`,
			pid, rawID)
		mapped++
		if batch.Len() >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
	}
	if err := flush(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit mapping batch: %w", err)
	}
	return mapped, nil
}

// SyncMonthlyActuals recomputes actual_amt for every (project, month) pair
// that currently has MAPPED raw lines and overwrites tb_monthly_data with
// the sums, lazily creating missing rows. The recompute runs over all
// MAPPED lines, so repeated invocations converge on the same stored state;
// rows whose stored value already equals the recomputed sum are not
// rewritten.
func SyncMonthlyActuals(ctx context.Context, db *pgxpool.Pool) error {
	rows, err := db.Query(ctx,
		`SELECT mapped_proj_id, yyyymm, COALESCE(amt_val, 0)::text
		 FROM tb_sap_upload_raw WHERE mapping_status = 'MAPPED'`)
	if err != nil {
		return fmt.Errorf("failed to load mapped lines: %w", err)
	}
	var lines []recon.MappedLine
	for rows.Next() {
		var projID, yyyymm, amt string
		if err := rows.Scan(&projID, &yyyymm, &amt); err != nil {
			continue
		}
		d, err := decimal.NewFromString(amt)
		if err != nil {
			d = decimal.Zero
		}
		lines = append(lines, recon.MappedLine{ProjID: projID, YYYYMM: yyyymm, Amount: d})
	}
	rows.Close()
	if rows.Err() != nil {
		return rows.Err()
	}

	totals := recon.Aggregate(lines)
	if len(totals) == 0 {
		return nil
	}

	stored := make(map[recon.Key]decimal.Decimal)
	curRows, err := db.Query(ctx,
		`SELECT proj_id, yyyymm, COALESCE(actual_amt, 0)::text FROM tb_monthly_data`)
	if err != nil {
		return fmt.Errorf("failed to load monthly data: %w", err)
	}
	for curRows.Next() {
		var projID, yyyymm, amt string
		if err := curRows.Scan(&projID, &yyyymm, &amt); err != nil {
			continue
		}
		d, err := decimal.NewFromString(amt)
		if err != nil {
			continue
		}
		stored[recon.Key{ProjID: projID, YYYYMM: yyyymm}] = d
	}
	curRows.Close()
	if curRows.Err() != nil {
		return curRows.Err()
	}

	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start sync transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updated, created := 0, 0
	for key, total := range totals {
		cur, exists := stored[key]
		switch {
		case exists && cur.Equal(total):
			// unchanged, skip the write
		case exists:
			_, err := tx.Exec(ctx,
				`UPDATE tb_monthly_data SET actual_amt = $1 WHERE proj_id = $2 AND yyyymm = $3`,
				total, key.ProjID, key.YYYYMM)
			if err != nil {
				return fmt.Errorf("failed to update actuals for %s/%s: %w", key.ProjID, key.YYYYMM, err)
			}
			updated++
		default:
			_, err := tx.Exec(ctx,
				`INSERT INTO tb_monthly_data (proj_id, yyyymm, plan_amt, actual_amt, est_amt, confirmed_amt)
				 VALUES ($1, $2, 0, $3, 0, 0)`,
				key.ProjID, key.YYYYMM, total)
			if err != nil {
				return fmt.Errorf("failed to create actuals row for %s/%s: %w", key.ProjID, key.YYYYMM, err)
			}
			created++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit actuals sync: %w", err)
	}
	logger.Audit(fmt.Sprintf("Actuals sync: %d cells updated, %d created, %d mapped lines", updated, created, len(lines)))
	return nil
}
