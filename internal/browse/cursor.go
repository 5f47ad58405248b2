package browse

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/lumenvault/photovault/internal/apperr"
)

// Cursor is the opaque keyset pagination token: the sort expression's
// value and the tiebreaker id of the last row on the previous page.
// DecodeCursor also accepts the legacy field names the original API
// used (date_taken / dateTaken) so previously issued cursors keep
// working, but Encode only ever writes the canonical sort_date.
type Cursor struct {
	SortDate time.Time `json:"sort_date"`
	ID       uuid.UUID `json:"id"`
}

type cursorWire struct {
	SortDate     *time.Time `json:"sort_date,omitempty"`
	DateTaken    *time.Time `json:"date_taken,omitempty"`
	DateTakenAlt *time.Time `json:"dateTaken,omitempty"`
	ID           uuid.UUID  `json:"id"`
}

// Encode base64-encodes the JSON representation of c.
func (c Cursor) Encode() string {
	wire := cursorWire{SortDate: &c.SortDate, ID: c.ID}
	data, _ := json.Marshal(wire)
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor reverses Encode, accepting any of the sort_date /
// date_taken / dateTaken field spellings.
func DecodeCursor(encoded string) (Cursor, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return Cursor{}, apperr.New(apperr.KindInvalidInput, "browse.DecodeCursor", err)
	}

	var wire cursorWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return Cursor{}, apperr.New(apperr.KindInvalidInput, "browse.DecodeCursor", err)
	}

	sortDate := wire.SortDate
	if sortDate == nil {
		sortDate = wire.DateTaken
	}
	if sortDate == nil {
		sortDate = wire.DateTakenAlt
	}
	if sortDate == nil {
		return Cursor{}, apperr.Newf(apperr.KindInvalidInput, "browse.DecodeCursor", "cursor missing sort date")
	}

	return Cursor{SortDate: *sortDate, ID: wire.ID}, nil
}
