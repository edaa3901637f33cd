package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDefaults(t *testing.T) {
	p := Parse("", "")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset())
}

func TestParseClampsLimit(t *testing.T) {
	p := Parse("3", "1000")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 2*MaxLimit, p.Offset())
}

func TestParseRejectsGarbage(t *testing.T) {
	p := Parse("-1", "zero")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	assert.Equal(t, []int{1, 2}, Slice(items, Params{Page: 1, Limit: 2}))
	assert.Equal(t, []int{3, 4}, Slice(items, Params{Page: 2, Limit: 2}))
	assert.Equal(t, []int{5}, Slice(items, Params{Page: 3, Limit: 2}))
	assert.Nil(t, Slice(items, Params{Page: 4, Limit: 2}))
}
