package browse

import (
	"fmt"
	"strings"

	"github.com/lumenvault/photovault/internal/apperr"
)

// builtQuery is a fully bound SQL statement ready to execute.
type builtQuery struct {
	SQL  string
	Args []any
}

// buildPathFilter turns already-traversed path segments into WHERE
// clauses and bound parameters, starting at paramIndex (the
// storage_id filter always occupies $1).
func buildPathFilter(dimensions []Dimension, segments []string, paramIndex int) ([]string, []any, int, error) {
	clauses := make([]string, 0, len(segments))
	args := make([]any, 0, len(segments))

	for i, segment := range segments {
		adapter := newDimensionAdapter(dimensions[i])
		param, err := adapter.parseSegmentValue(segment)
		if err != nil {
			return nil, nil, 0, err
		}
		clauses = append(clauses, adapter.filterClause(paramIndex))
		args = append(args, param.value())
		paramIndex++
	}

	return clauses, args, paramIndex, nil
}

// buildFoldersQuery lists the distinct folder values one level below
// segments, grouped by the dimension at that depth.
func buildFoldersQuery(storageID string, dimensions []Dimension, segments []string, opts Options) (builtQuery, error) {
	depth := len(segments)
	if depth >= len(dimensions) {
		return builtQuery{}, apperr.Newf(apperr.KindInvalidInput, "browse.buildFoldersQuery", "depth %d has no further dimension", depth)
	}

	where := []string{"p.storage_id = $1"}
	args := []any{storageID}

	segmentClauses, segmentArgs, _, err := buildPathFilter(dimensions, segments, 2)
	if err != nil {
		return builtQuery{}, err
	}
	where = append(where, segmentClauses...)
	args = append(args, segmentArgs...)

	adapter := newDimensionAdapter(dimensions[depth])
	folderSelect, groupExpr := adapter.groupSelect()
	orderDir := opts.SortDirection.sqlDirection()

	sql := fmt.Sprintf(
		`SELECT %s, COUNT(*)::bigint AS file_count
FROM photos p
WHERE %s
GROUP BY %s
ORDER BY %s %s`,
		folderSelect, strings.Join(where, " AND "), groupExpr, groupExpr, orderDir,
	)

	return builtQuery{SQL: sql, Args: args}, nil
}

// buildPhotosQuery lists the leaf photos under segments (a full path
// through every dimension), applying keyset pagination consistently
// against sortExpr — the same non-null expression the folder query
// groups by, which is what keeps a photo with no date_taken reachable
// both as a folder member and as a paginated row (spec §9).
func buildPhotosQuery(storageID string, dimensions []Dimension, segments []string, opts Options, pageSize int, cursor *Cursor) (builtQuery, int, error) {
	where := []string{"p.storage_id = $1"}
	args := []any{storageID}

	segmentClauses, segmentArgs, nextIndex, err := buildPathFilter(dimensions, segments, 2)
	if err != nil {
		return builtQuery{}, 0, err
	}
	where = append(where, segmentClauses...)
	args = append(args, segmentArgs...)

	orderDir := opts.SortDirection.sqlDirection()

	if cursor != nil {
		cmp := ">"
		if orderDir == "DESC" {
			cmp = "<"
		}
		where = append(where, fmt.Sprintf(
			"(%s %s $%d OR (%s = $%d AND p.id %s $%d))",
			sortExpr, cmp, nextIndex, sortExpr, nextIndex, cmp, nextIndex+1,
		))
		args = append(args, cursor.SortDate, cursor.ID)
		nextIndex += 2
	}

	normalizedSize := pageSize
	if normalizedSize < 1 {
		normalizedSize = 1
	}
	if normalizedSize > 200 {
		normalizedSize = 200
	}

	sql := fmt.Sprintf(
		`SELECT p.id, p.name AS file_name, COALESCE(p.hash, '') AS hash, %s AS sort_date, p.width, p.height
FROM photos p
WHERE %s
ORDER BY %s %s, p.id %s
LIMIT $%d`,
		sortExpr, strings.Join(where, " AND "), sortExpr, orderDir, orderDir, nextIndex,
	)
	args = append(args, normalizedSize+1)

	return builtQuery{SQL: sql, Args: args}, normalizedSize, nil
}
