package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "blog/internal/errors"
	"blog/internal/validate"
)

// bindJSON decodes the request body into dst after checking that it is a JSON
// object holding every required key. An empty body reads as {}.
func bindJSON(c echo.Context, dst any, required ...string) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return apperrors.ErrInvalidBody
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = []byte("{}")
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return apperrors.ErrInvalidBody
	}
	body, ok := decoded.(map[string]any)
	if !ok {
		return apperrors.ErrIncompleteData
	}
	if len(required) > 0 && !validate.HasFields(body, required...) {
		return apperrors.ErrIncompleteData
	}

	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.ErrInvalidBody
	}
	return nil
}

// parseID reads the :id path parameter. Anything that is not a non-negative
// integer resolves to notFound, as no row can carry such an id.
func parseID(c echo.Context, notFound error) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 63)
	if err != nil {
		return 0, notFound
	}
	return uint(id), nil
}

// respondError converts err into an *echo.HTTPError carrying the mapped
// status and message. err stays attached for the error handler to log.
func respondError(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.Message).SetInternal(err)
}

// refID turns a referenced id from a request body into a row id. Ids no row
// can carry become 0, which never resolves, so the service reports the
// reference as not found in its usual order.
func refID(id int64) uint {
	if id <= 0 {
		return 0
	}
	return uint(id)
}
