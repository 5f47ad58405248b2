// Package browse implements the dimensional folder/photo browsing
// engine: a storage location is browsed through an ordered list of
// dimensions (year, date, month, camera, rating), each path segment
// narrowing the result set until the configured depth is reached, at
// which point leaf photos are returned as a cursor-paginated page
// (spec §5).
package browse

import (
	"fmt"
	"strconv"
	"time"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Dimension is one axis a storage location can be browsed by.
type Dimension string

const (
	DimensionYear   Dimension = "year"
	DimensionDate   Dimension = "date"
	DimensionMonth  Dimension = "month"
	DimensionCamera Dimension = "camera"
	DimensionRating Dimension = "rating"
)

// SortDirection controls both folder and photo ordering.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// sqlDirection returns the literal SQL keyword for direction.
func (d SortDirection) sqlDirection() string {
	if d == SortAsc {
		return "ASC"
	}
	return "DESC"
}

// sortExpr is the single non-null column expression every ordering
// and every cursor comparison in this package is built from. Using
// one consistent expression everywhere is what avoids the pagination
// bug where a NULL p.date_taken silently drops rows from a cursor
// page while still appearing in a COALESCE-grouped folder listing
// (spec §9).
const sortExpr = "COALESCE(p.date_taken, p.created_at)"

// DefaultDateFormat is the client-display date format used when a
// client binding doesn't specify one (spec §3 "Client binding").
const DefaultDateFormat = "yyyy-MM-dd"

// Options configures a browse call. Dimensions lists the path's axes
// in order; the zero value is not useful on its own — use
// DefaultOptions. DateFormat is a client-display hint only: the
// engine itself always groups/filters by sortExpr regardless of its
// value.
type Options struct {
	Dimensions    []Dimension   `json:"dimensions"`
	SortDirection SortDirection `json:"sortDirection"`
	DateFormat    string        `json:"date_format"`
}

// DefaultOptions matches the original defaults: browse by year then
// by date, newest first, dates displayed as yyyy-MM-dd.
func DefaultOptions() Options {
	return Options{
		Dimensions:    []Dimension{DimensionYear, DimensionDate},
		SortDirection: SortDesc,
		DateFormat:    DefaultDateFormat,
	}
}

// sqlParam is a bound query parameter produced by parsing a path
// segment. Exactly one of Int/Str is meaningful, selected by IsInt.
type sqlParam struct {
	IsInt bool
	Int   int32
	Str   string
}

func (p sqlParam) value() any {
	if p.IsInt {
		return p.Int
	}
	return p.Str
}

// dimensionAdapter translates a Dimension into the SQL fragments the
// query builder needs: a grouped folder SELECT, a point filter for an
// already-parsed path segment, and a segment parser/validator.
type dimensionAdapter struct {
	dimension Dimension
}

func newDimensionAdapter(d Dimension) dimensionAdapter {
	return dimensionAdapter{dimension: d}
}

// groupSelect returns (folderSelectExpr, groupByExpr). folderSelectExpr
// is aliased "AS folder" for use in a SELECT list; groupByExpr is the
// same computation unaliased, for GROUP BY / ORDER BY.
func (a dimensionAdapter) groupSelect() (string, string) {
	switch a.dimension {
	case DimensionYear:
		expr := "EXTRACT(YEAR FROM " + sortExpr + " AT TIME ZONE 'UTC')::int"
		return expr + " AS folder", expr
	case DimensionDate:
		expr := "to_char(" + sortExpr + " AT TIME ZONE 'UTC', 'YYYY-MM-DD')"
		return expr + " AS folder", expr
	case DimensionMonth:
		expr := "to_char(" + sortExpr + " AT TIME ZONE 'UTC', 'YYYY-MM')"
		return expr + " AS folder", expr
	case DimensionCamera:
		return "p.camera_model AS folder", "p.camera_model"
	case DimensionRating:
		return "p.rating AS folder", "p.rating"
	default:
		return "", ""
	}
}

// filterClause returns a point-equality predicate against
// paramIndex, a 1-based positional SQL parameter placeholder ($N).
func (a dimensionAdapter) filterClause(paramIndex int) string {
	switch a.dimension {
	case DimensionYear:
		return fmt.Sprintf("EXTRACT(YEAR FROM %s AT TIME ZONE 'UTC')::int = $%d", sortExpr, paramIndex)
	case DimensionDate:
		return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM-DD') = $%d", sortExpr, paramIndex)
	case DimensionMonth:
		return fmt.Sprintf("to_char(%s AT TIME ZONE 'UTC', 'YYYY-MM') = $%d", sortExpr, paramIndex)
	case DimensionCamera:
		return fmt.Sprintf("p.camera_model = $%d", paramIndex)
	case DimensionRating:
		return fmt.Sprintf("p.rating = $%d", paramIndex)
	default:
		return ""
	}
}

// parseSegmentValue validates and converts a path segment into the
// bound parameter filterClause expects.
func (a dimensionAdapter) parseSegmentValue(segment string) (sqlParam, error) {
	switch a.dimension {
	case DimensionYear:
		year, err := strconv.Atoi(segment)
		if err != nil {
			return sqlParam{}, apperr.Newf(apperr.KindInvalidInput, "browse.parseSegmentValue", "invalid year segment %q", segment)
		}
		return sqlParam{IsInt: true, Int: int32(year)}, nil
	case DimensionDate:
		if _, err := time.Parse("2006-01-02", segment); err != nil {
			return sqlParam{}, apperr.Newf(apperr.KindInvalidInput, "browse.parseSegmentValue", "invalid date segment %q", segment)
		}
		return sqlParam{Str: segment}, nil
	case DimensionMonth:
		if _, err := time.Parse("2006-01-02", segment+"-01"); err != nil {
			return sqlParam{}, apperr.Newf(apperr.KindInvalidInput, "browse.parseSegmentValue", "invalid month segment %q", segment)
		}
		return sqlParam{Str: segment}, nil
	case DimensionCamera:
		return sqlParam{Str: segment}, nil
	case DimensionRating:
		rating, err := strconv.Atoi(segment)
		if err != nil {
			return sqlParam{}, apperr.Newf(apperr.KindInvalidInput, "browse.parseSegmentValue", "invalid rating segment %q", segment)
		}
		return sqlParam{IsInt: true, Int: int32(rating)}, nil
	default:
		return sqlParam{}, apperr.Newf(apperr.KindInvalidInput, "browse.parseSegmentValue", "unknown dimension %q", a.dimension)
	}
}
