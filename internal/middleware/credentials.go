package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mr-tron/base58"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

// Request headers carrying a signed credential.
const (
	IdentityHeader  = "X-Vault-Identity"
	NonceHeader     = "X-Vault-Nonce"
	SignatureHeader = "X-Vault-Signature"
)

// apiError represents a standardized API error response.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// jsonError writes a standardized JSON error response.
func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiError{}
	resp.Error.Code = code
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}

// CredentialContextKey is the context key for the request credential.
type CredentialContextKey struct{}

// ParseCredential reads the credential headers. ok is false when none of
// them are present.
func ParseCredential(h http.Header) (cred auth.Credential, ok bool, err error) {
	id, nonce, sig := h.Get(IdentityHeader), h.Get(NonceHeader), h.Get(SignatureHeader)
	if id == "" && nonce == "" && sig == "" {
		return auth.Credential{}, false, nil
	}

	if cred.Identity, err = crypto.ParseAddress(id); err != nil {
		return auth.Credential{}, true, err
	}
	if cred.Nonce, err = strconv.ParseUint(nonce, 10, 64); err != nil {
		return auth.Credential{}, true, err
	}
	if cred.Signature, err = base58.Decode(sig); err != nil {
		return auth.Credential{}, true, err
	}
	return cred, true, nil
}

// SetCredentialHeaders writes cred to h. It is the client-side counterpart
// of ParseCredential.
func SetCredentialHeaders(h http.Header, cred auth.Credential) {
	h.Set(IdentityHeader, cred.Identity.String())
	h.Set(NonceHeader, strconv.FormatUint(cred.Nonce, 10))
	h.Set(SignatureHeader, base58.Encode(cred.Signature))
}

// Credentials returns middleware that attaches the request's credential, if
// any, to the context. Signature verification happens in the operation
// itself, against the operation's own payload.
func Credentials() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cred, ok, err := ParseCredential(r.Header)
			if err != nil {
				jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Malformed credential headers")
				return
			}
			if ok {
				r = r.WithContext(context.WithValue(r.Context(), CredentialContextKey{}, &cred))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCredential returns middleware that rejects requests without a credential.
func RequireCredential() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetCredential(r.Context()) == nil {
				jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Signed credential required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetCredential retrieves the request credential from the context.
func GetCredential(ctx context.Context) *auth.Credential {
	cred, _ := ctx.Value(CredentialContextKey{}).(*auth.Credential)
	return cred
}
