package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/lumenvault/photovault/internal/apperr"
)

// decodeJSON decodes r's body into dest, wrapping a malformed body in
// apperr.KindInvalidInput so Error maps it to a 400.
func decodeJSON(r *http.Request, dest any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperr.New(apperr.KindInvalidInput, "httpapi.decodeJSON", err)
	}
	return nil
}
