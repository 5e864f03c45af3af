package utils

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	apierrors "github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/pkg/errors"
	"github.com/Sania-Ijaz/cpt-healthcare-bidding-platform/v1/models"
)

const msgInvalidBody = "Invalid request body."

// DecodeJSONBody decodes a JSON request body into dst. Unknown fields are ignored;
// an empty body decodes to the zero value.
func DecodeJSONBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return apierrors.NewAPIError(apierrors.ErrorTypeValidation, "PAYLOAD_TOO_LARGE", "Request body too large.", http.StatusRequestEntityTooLarge)
		}
		return apierrors.ValidationError(msgInvalidBody)
	}
	return nil
}

// ParsePageQuery reads page and limit query parameters. Missing or non-numeric
// values fall back to the defaults when the query is normalized.
func ParsePageQuery(r *http.Request) models.PageQuery {
	q := r.URL.Query()
	return models.PageQuery{
		Page:  atoiOrZero(q.Get("page")),
		Limit: atoiOrZero(q.Get("limit")),
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
