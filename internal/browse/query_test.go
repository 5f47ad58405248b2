package browse

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFoldersQueryUsesGroupedDimensionExpr(t *testing.T) {
	opts := DefaultOptions()
	q, err := buildFoldersQuery("storage-1", opts.Dimensions, nil, opts)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "EXTRACT(YEAR FROM COALESCE(p.date_taken, p.created_at)")
	assert.Contains(t, q.SQL, "GROUP BY")
	assert.Contains(t, q.SQL, "ORDER BY")
	assert.Equal(t, []any{"storage-1"}, q.Args)
}

func TestBuildFoldersQueryAppliesPriorSegmentFilters(t *testing.T) {
	opts := DefaultOptions()
	q, err := buildFoldersQuery("storage-1", opts.Dimensions, []string{"2024"}, opts)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "$2")
	assert.Contains(t, q.SQL, "to_char(COALESCE(p.date_taken, p.created_at)")
	require.Len(t, q.Args, 2)
	assert.Equal(t, int32(2024), q.Args[1])
}

func TestBuildFoldersQueryRejectsFullDepth(t *testing.T) {
	opts := DefaultOptions()
	_, err := buildFoldersQuery("storage-1", opts.Dimensions, []string{"2024", "2024-05-10"}, opts)
	require.Error(t, err)
}

func TestBuildPhotosQueryOrdersBySortExprNotRawDateTaken(t *testing.T) {
	opts := DefaultOptions()
	q, _, err := buildPhotosQuery("storage-1", opts.Dimensions, []string{"2024", "2024-05-10"}, opts, 50, nil)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "ORDER BY COALESCE(p.date_taken, p.created_at) DESC, p.id DESC")
	assert.NotContains(t, q.SQL, "ORDER BY p.date_taken")
}

func TestBuildPhotosQueryCursorComparesSameSortExpr(t *testing.T) {
	opts := DefaultOptions()
	cursor := &Cursor{SortDate: time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC), ID: uuid.New()}

	q, _, err := buildPhotosQuery("storage-1", opts.Dimensions, []string{"2024", "2024-05-10"}, opts, 50, cursor)
	require.NoError(t, err)

	assert.Contains(t, q.SQL, "COALESCE(p.date_taken, p.created_at) < $")
	assert.NotContains(t, q.SQL, "p.date_taken <")
}

func TestBuildPhotosQueryClampsPageSize(t *testing.T) {
	opts := DefaultOptions()

	_, size, err := buildPhotosQuery("storage-1", opts.Dimensions, []string{"2024", "2024-05-10"}, opts, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, size)

	_, size, err = buildPhotosQuery("storage-1", opts.Dimensions, []string{"2024", "2024-05-10"}, opts, 10000, nil)
	require.NoError(t, err)
	assert.Equal(t, 200, size)
}

func TestBuildPathFilterRejectsInvalidSegment(t *testing.T) {
	_, _, _, err := buildPathFilter([]Dimension{DimensionYear}, []string{"not-a-year"}, 2)
	require.Error(t, err)
}
