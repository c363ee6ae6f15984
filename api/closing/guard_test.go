package closing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidMonth(t *testing.T) {
	assert.True(t, ValidMonth("202501"))
	assert.True(t, ValidMonth("999912"))
	assert.False(t, ValidMonth("2025"))
	assert.False(t, ValidMonth("2025-01"))
	assert.False(t, ValidMonth("2025011"))
	assert.False(t, ValidMonth("20250x"))
	assert.False(t, ValidMonth(""))
}
