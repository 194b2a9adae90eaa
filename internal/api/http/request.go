package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"driverent-backend/internal/domain"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, &domain.ErrValidation{Field: name, Message: "invalid id " + strconv.Quote(raw)}
	}
	return int32(id), nil
}

func unreadOnly(r *http.Request) bool {
	switch r.URL.Query().Get("unread") {
	case "1", "true":
		return true
	default:
		return false
	}
}

// decodeJSON reads the body into v, rejecting unknown fields. An empty body
// is accepted only when optional is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return &domain.ErrValidation{Message: "request body is required"}
		}
		return &domain.ErrValidation{Message: "invalid JSON body: " + err.Error()}
	}
	if dec.More() {
		return &domain.ErrValidation{Message: "invalid JSON body: trailing data"}
	}
	return nil
}
