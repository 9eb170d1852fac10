package handlers

import (
	"net/http"

	"github.com/abdul-hamid-achik/assetvault/internal/logging"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

// errorStatus maps an error kind to its HTTP status and API code.
var errorStatus = map[string]struct {
	status int
	code   string
}{
	"already_initialized":   {http.StatusConflict, "ALREADY_INITIALIZED"},
	"not_initialized":       {http.StatusConflict, "NOT_INITIALIZED"},
	"record_already_exists": {http.StatusConflict, "RECORD_ALREADY_EXISTS"},
	"already_exists":        {http.StatusConflict, "RECORD_ALREADY_EXISTS"},
	"lock_not_found":        {http.StatusNotFound, "LOCK_NOT_FOUND"},
	"not_found":             {http.StatusNotFound, "NOT_FOUND"},
	"still_locked":          {http.StatusConflict, "STILL_LOCKED"},
	"transfer_failed":       {http.StatusUnprocessableEntity, "TRANSFER_FAILED"},
	"overflow":              {http.StatusUnprocessableEntity, "OVERFLOW"},
	"insufficient_funds":    {http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS"},
	"unauthorized":          {http.StatusForbidden, "UNAUTHORIZED"},
	"invalid_input":         {http.StatusBadRequest, "INVALID_INPUT"},
}

// errorKind classifies err using the vault taxonomy first, then the registry's.
func errorKind(err error) string {
	if kind := vault.Kind(err); kind != "internal" {
		return kind
	}
	return registry.Kind(err)
}

// writeError writes the API error for err. Unclassified errors are logged
// under msg and reported without detail.
func writeError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if s, ok := errorStatus[errorKind(err)]; ok {
		jsonError(w, s.status, s.code, err.Error())
		return
	}
	logging.Logger(r.Context()).Error(msg, "error", err)
	jsonError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
}

// NotFoundHandler handles 404 errors.
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	jsonError(w, http.StatusNotFound, "NOT_FOUND", "The requested resource was not found")
}

// MethodNotAllowedHandler handles 405 errors.
func MethodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	jsonError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "The requested method is not allowed for this resource")
}
