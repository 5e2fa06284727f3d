package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		page, size   int
		offset, want int
	}{
		{name: "first page", page: 1, size: 10, offset: 0, want: 10},
		{name: "third page", page: 3, size: 5, offset: 10, want: 5},
		{name: "page below one", page: 0, size: 5, offset: 0, want: 5},
		{name: "size defaulted", page: 2, size: 0, offset: 10, want: DefaultPageSize},
		{name: "size capped", page: 1, size: 1000, offset: 0, want: DefaultPageSize},
		{name: "huge page clamped", page: math.MaxInt, size: MaxPageSize, offset: (MaxPage - 1) * MaxPageSize, want: MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.want, limit)
		})
	}
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("abc", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	m := NewMeta(2, 10, 10, 25)
	assert.Equal(t, int64(3), m.TotalPages)
	assert.True(t, m.HasPrev)
	assert.True(t, m.HasNext)

	m = NewMeta(3, 20, 10, 25)
	assert.False(t, m.HasNext)
}

func TestNewMeta_HugePage(t *testing.T) {
	t.Parallel()

	page := math.MaxInt
	offset, limit := Calculate(page, 10)
	assert.GreaterOrEqual(t, offset, 0)

	m := NewMeta(page, offset, limit, 25)
	assert.Equal(t, MaxPage, m.Page)
	assert.True(t, m.HasPrev)
	assert.False(t, m.HasNext)
}
