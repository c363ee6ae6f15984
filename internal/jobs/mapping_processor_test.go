package jobs

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// fakeProjRows replays a fixed proj_id result set, optionally failing the
// iteration after failAfter rows the way a dropped connection would.
type fakeProjRows struct {
	ids       []string
	pos       int
	failAfter int
	iterErr   error
	closed    bool
}

func (r *fakeProjRows) Next() bool {
	if r.iterErr != nil && r.pos >= r.failAfter {
		return false
	}
	if r.pos >= len(r.ids) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeProjRows) Scan(dest ...any) error {
	*(dest[0].(*string)) = r.ids[r.pos-1]
	return nil
}

func (r *fakeProjRows) Err() error {
	if r.iterErr != nil && r.pos >= r.failAfter {
		return r.iterErr
	}
	return nil
}

func (r *fakeProjRows) Close()                                       { r.closed = true }
func (r *fakeProjRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeProjRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeProjRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeProjRows) RawValues() [][]byte                          { return nil }
func (r *fakeProjRows) Conn() *pgx.Conn                              { return nil }

var _ pgx.Rows = (*fakeProjRows)(nil)

func TestScanProjectIDs(t *testing.T) {
	rows := &fakeProjRows{ids: []string{"IT-001", "IT-002", "FIN-001"}}
	known, err := scanProjectIDs(rows)
	assert.NoError(t, err)
	assert.Equal(t, map[string]bool{"IT-001": true, "IT-002": true, "FIN-001": true}, known)
	assert.True(t, rows.closed)
}

func TestScanProjectIDsIterationError(t *testing.T) {
	rows := &fakeProjRows{
		ids:       []string{"IT-001", "IT-002", "FIN-001"},
		failAfter: 1,
		iterErr:   errors.New("unexpected EOF"),
	}
	known, err := scanProjectIDs(rows)
	assert.Error(t, err)
	assert.Nil(t, known)
	assert.True(t, rows.closed)
}
