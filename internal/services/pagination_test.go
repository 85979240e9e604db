package services

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-go/internal/apperrors"
	"social-go/internal/storage"
)

func TestNewPage(t *testing.T) {
	p, err := NewPage(3, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, storage.PageQuery{Offset: 20, Limit: 10, Desc: true}, p.Query(SortDesc))
	assert.Equal(t, storage.PageQuery{Offset: 20, Limit: 10}, p.Query(SortAsc))

	_, err = NewPage(1, MaxPageSize, 0)
	assert.NoError(t, err)

	for _, tc := range []struct{ page, size int }{{0, 5}, {-1, 5}, {1, 0}, {1, MaxPageSize + 1}} {
		_, err := NewPage(tc.page, tc.size, 0)
		requireKind(t, err, apperrors.KindValidation)
	}

	// offsets that would overflow int
	_, err = NewPage(math.MaxInt, 100, 0)
	requireKind(t, err, apperrors.KindValidation)
	assert.Contains(t, apperrors.FieldsOf(err), "page")
	p, err = NewPage(math.MaxInt/100+1, 100, 0)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt/100*100, p.Offset())
	_, err = NewPage(math.MaxInt/100+2, 100, 0)
	requireKind(t, err, apperrors.KindValidation)

	_, err = NewPage(1, 30, 20)
	requireKind(t, err, apperrors.KindValidation)
	assert.Contains(t, apperrors.FieldsOf(err), "pageSize")
}

func TestParseSortOrder(t *testing.T) {
	for raw, want := range map[string]SortOrder{"": SortDesc, "desc": SortDesc, "ASC": SortAsc, " asc ": SortAsc} {
		got, err := ParseSortOrder(raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, raw)
	}
	_, err := ParseSortOrder("newest")
	requireKind(t, err, apperrors.KindValidation)
}
