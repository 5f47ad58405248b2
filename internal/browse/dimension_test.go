package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSegmentValueYear(t *testing.T) {
	p, err := newDimensionAdapter(DimensionYear).parseSegmentValue("2024")
	require.NoError(t, err)
	assert.Equal(t, int32(2024), p.value())
}

func TestParseSegmentValueYearRejectsNonNumeric(t *testing.T) {
	_, err := newDimensionAdapter(DimensionYear).parseSegmentValue("twenty-twenty-four")
	require.Error(t, err)
}

func TestParseSegmentValueDate(t *testing.T) {
	p, err := newDimensionAdapter(DimensionDate).parseSegmentValue("2024-05-10")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10", p.value())
}

func TestParseSegmentValueDateRejectsBadFormat(t *testing.T) {
	_, err := newDimensionAdapter(DimensionDate).parseSegmentValue("05/10/2024")
	require.Error(t, err)
}

func TestParseSegmentValueMonth(t *testing.T) {
	p, err := newDimensionAdapter(DimensionMonth).parseSegmentValue("2024-05")
	require.NoError(t, err)
	assert.Equal(t, "2024-05", p.value())
}

func TestParseSegmentValueCameraPassesThrough(t *testing.T) {
	p, err := newDimensionAdapter(DimensionCamera).parseSegmentValue("Canon EOS R5")
	require.NoError(t, err)
	assert.Equal(t, "Canon EOS R5", p.value())
}

func TestParseSegmentValueRating(t *testing.T) {
	p, err := newDimensionAdapter(DimensionRating).parseSegmentValue("5")
	require.NoError(t, err)
	assert.Equal(t, int32(5), p.value())
}

func TestFilterClauseUsesPositionalParam(t *testing.T) {
	clause := newDimensionAdapter(DimensionCamera).filterClause(3)
	assert.Equal(t, "p.camera_model = $3", clause)
}

func TestGroupSelectYearUsesCoalesceSortExpr(t *testing.T) {
	folderSelect, groupExpr := newDimensionAdapter(DimensionYear).groupSelect()
	assert.Contains(t, folderSelect, "COALESCE(p.date_taken, p.created_at)")
	assert.Contains(t, groupExpr, "EXTRACT(YEAR")
}

func TestSortDirectionSQLKeyword(t *testing.T) {
	assert.Equal(t, "ASC", SortAsc.sqlDirection())
	assert.Equal(t, "DESC", SortDesc.sqlDirection())
}
