package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/phrazzld/taskhive/internal/api/shared"
)

// maxRequestBodyBytes bounds request bodies to guard against oversized
// payloads.
const maxRequestBodyBytes = 1 << 20 // 1 MB

// DecodeJSON decodes the request body into dst, rejecting unknown
// fields and oversized bodies.
func DecodeJSON(r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("missing %s path parameter", paramName)
	}
	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s path parameter: %w", paramName, err)
	}
	return id, nil
}

// requireIdentity extracts the authenticated user and company from the
// request context. It writes the error response itself when either is
// missing, so callers just return on ok == false.
func requireIdentity(w http.ResponseWriter, r *http.Request) (userID, companyID uuid.UUID, ok bool) {
	userID, found := shared.GetUserID(r.Context())
	if !found {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, uuid.Nil, false
	}
	companyID, found = shared.GetCompanyID(r.Context())
	if !found {
		shared.RespondWithError(w, r, http.StatusBadRequest, "User not associated with any company")
		return uuid.Nil, uuid.Nil, false
	}
	return userID, companyID, true
}
