package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/placeshare/placeshare/internal/errs"
)

type errorBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps sentinel errors to statuses and a {"message": ...} body.
// Internal failures never leak store-level detail.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Message: "invalid inputs passed, please check your data"})
	case errors.Is(err, errs.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorBody{Message: "authentication failed"})
	case errors.Is(err, errs.ErrForbidden):
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: "you are not allowed to modify this place"})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Message: "could not find the requested record"})
	case errors.Is(err, errs.ErrAlreadyExists):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Message: "user already exists, please login instead"})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Message: "something went wrong, please try again"})
	}
}
