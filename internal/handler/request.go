package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"note-bookmark-server/internal/repository"
	"note-bookmark-server/pkg/validate"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = &validate.Error{Message: "Invalid request body"}

// decodeBody checks the raw JSON object against rules, then decodes it into
// dst. Shape errors surface as *validate.Error.
func decodeBody(r *http.Request, rules validate.RuleSet, dst interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return errInvalidBody
	}

	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil || record == nil {
		return errInvalidBody
	}

	if err := validate.Validate(record, rules).Err(); err != nil {
		return err
	}

	if err := json.NewDecoder(bytes.NewReader(raw)).Decode(dst); err != nil {
		return errInvalidBody
	}
	return nil
}

// listFilters turns the supported query parameters into selector entries.
func listFilters(query url.Values, fields ...string) map[string]any {
	filters := make(map[string]any)
	if tag := query.Get("tag"); tag != "" {
		filters["tags"] = repository.ContainsTag(tag)
	}
	for _, field := range fields {
		if v := query.Get(field); v != "" {
			filters[field] = v
		}
	}
	return filters
}
