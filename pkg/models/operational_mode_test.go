package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOperationalMode(t *testing.T) {
	for _, valid := range []string{"single_vendor", "multi_vendor", "hybrid"} {
		mode, err := ParseOperationalMode(valid)
		assert.NoError(t, err)
		assert.Equal(t, OperationalMode(valid), mode)
	}

	_, err := ParseOperationalMode("invalid_mode")
	assert.True(t, errors.Is(err, ErrInvalidMode))

	_, err = ParseOperationalMode("")
	assert.True(t, errors.Is(err, ErrInvalidMode))
}

func TestOperationalModeFlags(t *testing.T) {
	multiVendor, darkStore := ModeSingleVendor.Flags()
	assert.False(t, multiVendor)
	assert.False(t, darkStore)

	multiVendor, darkStore = ModeMultiVendor.Flags()
	assert.True(t, multiVendor)
	assert.False(t, darkStore)

	multiVendor, darkStore = ModeHybrid.Flags()
	assert.True(t, multiVendor)
	assert.True(t, darkStore)
}

func TestValidateStockLevels(t *testing.T) {
	assert.NoError(t, ValidateStockLevels(10, 5))
	assert.NoError(t, ValidateStockLevels(0, 0))
	assert.ErrorIs(t, ValidateStockLevels(5, 10), ErrInvalidStockLevels)
	assert.ErrorIs(t, ValidateStockLevels(5, -1), ErrInvalidStockLevels)
}
