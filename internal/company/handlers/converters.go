package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	e "github.com/gartstein/companies/internal/company/errors"
	"github.com/gartstein/companies/internal/company/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// decodeInput reads a CompanyInput from the request body.
func decodeInput(r *http.Request) (models.CompanyInput, error) {
	var in models.CompanyInput
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		return in, fmt.Errorf("%w: malformed company payload: %v", e.ErrInvalidInput, err)
	}
	return in, nil
}

// parseID reads the company id path parameter.
func parseID(pathParams map[string]string) (uuid.UUID, error) {
	id, err := uuid.Parse(pathParams["id"])
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid company ID", e.ErrInvalidInput)
	}
	return id, nil
}

// etag derives a strong validator from the record's identity and version.
func etag(c *models.Company) string {
	return fmt.Sprintf(`"%s-%d"`, c.ID, c.UpdatedAt.UnixNano())
}

// etagMatches reports whether an If-None-Match header lists tag.
func etagMatches(header, tag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == tag {
			return true
		}
	}
	return false
}

func (h *CompanyHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// writeError maps err to a status code and writes the error body.
func (h *CompanyHandler) writeError(w http.ResponseWriter, message string, err error) {
	status := h.mapServiceError(err)
	if status == http.StatusConflict {
		message = "A company with this name already exists"
	}
	h.writeJSON(w, status, errorBody{Message: message, Error: err.Error()})
}

// mapServiceError maps domain or repository errors to HTTP status codes.
func (h *CompanyHandler) mapServiceError(err error) int {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, e.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		h.logger.Error("Internal server error", zap.Error(err))
		return http.StatusInternalServerError
	}
}
