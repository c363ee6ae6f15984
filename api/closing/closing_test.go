package closing

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
)

func TestCloseStateFromRow(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		err       error
		wantState string
		wantFound bool
		wantErr   bool
	}{
		{"closed row found", StatusClosed, nil, StatusClosed, true, false},
		{"open row found", StatusOpen, nil, StatusOpen, true, false},
		{"no row is open", "", pgx.ErrNoRows, StatusOpen, false, false},
		{"query failure surfaces", "", errors.New("connection refused"), "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, found, err := closeStateFromRow(tt.status, tt.err)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantState, state)
			assert.Equal(t, tt.wantFound, found)
		})
	}
}
