package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

// maxBodyBytes bounds request bodies; imports of a few thousand rows fit easily.
const maxBodyBytes = 4 << 20

// parseJSON decodes the request body into T. An empty body is an error.
func parseJSON[T any](r *http.Request) (T, error) {
	var out T
	if r.Body == nil {
		return out, errors.New("request body is required")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return out, errors.New("request body is required")
		}
		return out, fmt.Errorf("malformed JSON: %w", err)
	}
	return out, nil
}
