package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewClampsInvalidInput(t *testing.T) {
	tests := []struct {
		name         string
		page, size   int
		wantPage     int
		wantSize     int
		wantOffset   int
		wantPeek     int
		wantNextPage int
	}{
		{"first page", 1, 30, 1, 30, 0, 31, 2},
		{"third page", 3, 30, 3, 30, 60, 31, 4},
		{"zero page clamped", 0, 30, 1, 30, 0, 31, 2},
		{"negative page clamped", -5, 10, 1, 10, 0, 11, 2},
		{"zero size falls back to default", 2, 0, 2, DefaultPageSize, 30, 31, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.page, tt.size)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantSize, p.Size)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.wantPeek, p.PeekLimit())
			assert.Equal(t, tt.wantNextPage, p.NextPageCount())
		})
	}
}

func TestTrim(t *testing.T) {
	rows := []int{1, 2, 3, 4}

	trimmed, more := Trim(rows, 3)
	assert.Equal(t, []int{1, 2, 3}, trimmed)
	assert.True(t, more)

	trimmed, more = Trim(rows, 4)
	assert.Equal(t, rows, trimmed)
	assert.False(t, more)

	trimmed, more = Trim([]int{}, 3)
	assert.Empty(t, trimmed)
	assert.False(t, more)
}

func TestTrimWalkIsExhaustive(t *testing.T) {
	// Walking pages 1..ceil(N/P) by following the more signal must yield
	// exactly N distinct items with no duplicates and no gaps.
	const n, size = 95, 30
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}

	seen := map[int]bool{}
	page := 1
	for {
		p := New(page, size)
		lo := p.Offset()
		hi := lo + p.PeekLimit()
		if lo > len(items) {
			lo = len(items)
		}
		if hi > len(items) {
			hi = len(items)
		}
		rows, more := Trim(items[lo:hi], p.Size)
		for _, it := range rows {
			assert.False(t, seen[it], "duplicate item %d", it)
			seen[it] = true
		}
		if !more {
			break
		}
		page++
	}

	assert.Len(t, seen, n)
	assert.Equal(t, 4, page)
}
