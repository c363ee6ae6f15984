package closing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusOpen   = "OPEN"
	StatusClosed = "CLOSED"
)

// ValidMonth reports whether s is a six digit YYYYMM string.
func ValidMonth(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// IsMonthClosed is the single closing gate. Every mutation of monthly
// financial records must consult it before writing and refuse with 403
// when it returns true. A month with no row resolves to OPEN here, at the
// storage boundary, so callers never see the missing-row case.
func IsMonthClosed(ctx context.Context, pool *pgxpool.Pool, yyyymm string) (bool, error) {
	var status string
	err := pool.QueryRow(ctx,
		`SELECT close_status FROM tb_monthly_close WHERE yyyymm = $1`,
		yyyymm).Scan(&status)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status == StatusClosed, nil
}
