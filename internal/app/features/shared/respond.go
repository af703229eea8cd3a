// internal/app/features/shared/respond.go
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error string `json:"error"`
}

// Error writes a JSON error body with the given status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Error: msg})
}

// DecodeJSON reads a bounded JSON request body into dst. Unknown fields are
// rejected so typos surface as 400s instead of silently dropped options.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limits.MaxJSONBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// URLObjectID parses the named chi URL parameter as an ObjectID.
func URLObjectID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(chi.URLParam(r, name))
}

// StatusForError maps membership engine errors to HTTP status codes.
// Transient errors (lock timeout, version conflict) come back 409 so
// clients know a retry is reasonable.
func StatusForError(err error) int {
	switch {
	case errors.Is(err, membership.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, membership.ErrAlreadyMember),
		errors.Is(err, membership.ErrNotAMember),
		errors.Is(err, membership.ErrGroupFull),
		errors.Is(err, membership.ErrAlreadyInAnotherGroup),
		errors.Is(err, membership.ErrCannotKickLeader),
		errors.Is(err, membership.ErrCannotModifyLeaderTier),
		errors.Is(err, membership.ErrAlreadyOfficer),
		errors.Is(err, membership.ErrNotAnOfficer),
		errors.Is(err, membership.ErrTargetNotMember),
		errors.Is(err, membership.ErrClanAlreadyAttached),
		errors.Is(err, membership.ErrClanNotAttached),
		errors.Is(err, membership.ErrNotAClan),
		errors.Is(err, membership.ErrNotAFederation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, membership.ErrLockTimeout),
		errors.Is(err, membership.ErrVersionConflict):
		return http.StatusConflict
	case errors.Is(err, membership.ErrSuccessorMissing),
		errors.Is(err, membership.ErrInvariantViolation):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// EngineError writes the JSON error response for a membership engine error.
func EngineError(w http.ResponseWriter, err error) {
	Error(w, StatusForError(err), err.Error())
}
