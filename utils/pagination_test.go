package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestGetPaginationParams(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		offset, limit := GetPaginationParams(nil, nil)
		assert.Equal(t, 0, offset)
		assert.Equal(t, 20, limit)
	})

	t.Run("Explicit Values", func(t *testing.T) {
		offset, limit := GetPaginationParams(intPtr(40), intPtr(10))
		assert.Equal(t, 40, offset)
		assert.Equal(t, 10, limit)
	})

	t.Run("Limit Capped", func(t *testing.T) {
		_, limit := GetPaginationParams(nil, intPtr(500))
		assert.Equal(t, 100, limit)
	})

	t.Run("Negative Values Fall Back", func(t *testing.T) {
		offset, limit := GetPaginationParams(intPtr(-1), intPtr(-5))
		assert.Equal(t, 0, offset)
		assert.Equal(t, 20, limit)
	})
}
