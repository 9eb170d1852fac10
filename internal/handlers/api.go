package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/logging"
	"github.com/abdul-hamid-achik/assetvault/internal/middleware"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/validation"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

const defaultEventPage = 100

// APIHandler handles REST API endpoints.
type APIHandler struct {
	vault              *vault.Vault
	registry           *registry.Registry
	maxRequestBodySize int64
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(v *vault.Vault, reg *registry.Registry, maxRequestBodySize int64) *APIHandler {
	return &APIHandler{
		vault:              v,
		registry:           reg,
		maxRequestBodySize: maxRequestBodySize,
	}
}

// Response helpers

type apiResponse struct {
	Data any            `json:"data,omitempty"`
	Meta map[string]any `json:"meta,omitempty"`
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(apiResponse{Data: data})
}

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := apiError{}
	resp.Error.Code = code
	resp.Error.Message = message
	json.NewEncoder(w).Encode(resp)
}

// decode reads a JSON body of at most the configured size into v.
func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body")
		return false
	}
	return true
}

// credential returns the request credential or writes a 401.
func credential(w http.ResponseWriter, r *http.Request) (auth.Credential, bool) {
	cred := middleware.GetCredential(r.Context())
	if cred == nil {
		jsonError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Signed credential required")
		return auth.Credential{}, false
	}
	return *cred, true
}

// addressParam parses the named URL parameter as an address.
func addressParam(w http.ResponseWriter, r *http.Request, name string) (crypto.Address, bool) {
	addr, err := crypto.ParseAddress(chi.URLParam(r, name))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid "+name)
		return crypto.Address{}, false
	}
	return addr, true
}

// Vault

// GetLedger handles GET /api/v1/vault
func (h *APIHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	stats, err := h.vault.Stats(r.Context())
	if err != nil {
		writeError(w, r, "vault_stats_failed", err)
		return
	}
	if !stats.Initialized {
		jsonError(w, http.StatusConflict, "NOT_INITIALIZED", "Vault is not initialized")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

// Initialize handles POST /api/v1/vault/initialize
func (h *APIHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	cred, ok := credential(w, r)
	if !ok {
		return
	}

	ledger, err := h.vault.Initialize(r.Context(), cred)
	if err != nil {
		writeError(w, r, "vault_initialize_failed", err)
		return
	}

	jsonResponse(w, http.StatusCreated, ledger)
}

// Withdraw handles POST /api/v1/vault/withdraw
func (h *APIHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	cred, ok := credential(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount uint64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}

	ledger, err := h.vault.Withdraw(r.Context(), cred, req.Amount)
	if err != nil {
		writeError(w, r, "fees_withdraw_failed", err)
		return
	}

	jsonResponse(w, http.StatusOK, ledger)
}

// Locks

// CreateLock handles POST /api/v1/locks
func (h *APIHandler) CreateLock(w http.ResponseWriter, r *http.Request) {
	cred, ok := credential(w, r)
	if !ok {
		return
	}

	var req struct {
		Asset    string `json:"asset"`
		Duration int64  `json:"duration"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	asset, err := crypto.ParseAddress(req.Asset)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid asset")
		return
	}

	lock, err := h.vault.Lock(r.Context(), cred, asset, req.Duration)
	if err != nil {
		writeError(w, r, "asset_lock_failed", err)
		return
	}

	jsonResponse(w, http.StatusCreated, lock)
}

// GetLock handles GET /api/v1/locks/{depositor}/{asset}
func (h *APIHandler) GetLock(w http.ResponseWriter, r *http.Request) {
	depositor, ok := addressParam(w, r, "depositor")
	if !ok {
		return
	}
	asset, ok := addressParam(w, r, "asset")
	if !ok {
		return
	}

	lock, err := h.vault.GetLock(r.Context(), depositor, asset)
	if err != nil {
		writeError(w, r, "lock_lookup_failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, lock)
}

// QuoteLock handles GET /api/v1/locks/{depositor}/{asset}/quote
func (h *APIHandler) QuoteLock(w http.ResponseWriter, r *http.Request) {
	depositor, ok := addressParam(w, r, "depositor")
	if !ok {
		return
	}
	asset, ok := addressParam(w, r, "asset")
	if !ok {
		return
	}

	quote, err := h.vault.Quote(r.Context(), depositor, asset)
	if err != nil {
		writeError(w, r, "lock_quote_failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, quote)
}

// Unlock handles POST /api/v1/locks/{depositor}/{asset}/unlock
func (h *APIHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	cred, ok := credential(w, r)
	if !ok {
		return
	}
	depositor, ok := addressParam(w, r, "depositor")
	if !ok {
		return
	}
	asset, ok := addressParam(w, r, "asset")
	if !ok {
		return
	}

	receipt, err := h.vault.Unlock(r.Context(), cred, depositor, asset)
	if err != nil {
		writeError(w, r, "asset_unlock_failed", err)
		return
	}

	jsonResponse(w, http.StatusOK, receipt)
}

// Events

// ListEvents handles GET /api/v1/events?after=&limit=
func (h *APIHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	var after uint64
	if s := r.URL.Query().Get("after"); s != "" {
		var err error
		if after, err = strconv.ParseUint(s, 10, 64); err != nil {
			jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid after")
			return
		}
	}

	limit := defaultEventPage
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err == nil {
			err = validation.Limit(n)
		}
		if err != nil {
			jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid limit")
			return
		}
		limit = n
	}

	evs, err := h.vault.Events(r.Context(), after, limit)
	if err != nil {
		writeError(w, r, "events_list_failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(apiResponse{
		Data: evs,
		Meta: map[string]any{"after": after, "limit": limit, "count": len(evs)},
	})
}

// Accounts

// GetAccount handles GET /api/v1/accounts/{account}
func (h *APIHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := addressParam(w, r, "account")
	if !ok {
		return
	}

	info, err := h.vault.Account(r.Context(), id)
	if err != nil {
		writeError(w, r, "account_lookup_failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, info)
}

// Deposit handles POST /api/v1/accounts/{account}/deposit
func (h *APIHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	id, ok := addressParam(w, r, "account")
	if !ok {
		return
	}

	var req struct {
		Amount uint64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	if err := validation.Amount(req.Amount); err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}

	balance, err := h.vault.Fund(r.Context(), id, req.Amount)
	if err != nil {
		writeError(w, r, "account_deposit_failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"account": id,
		"balance": balance,
	})
}

// Assets

// CreateAsset handles POST /api/v1/assets
func (h *APIHandler) CreateAsset(w http.ResponseWriter, r *http.Request) {
	cred, ok := credential(w, r)
	if !ok {
		return
	}

	var req struct {
		ID string `json:"id"`
		registry.Metadata
	}
	if !h.decode(w, r, &req) {
		return
	}
	asset, err := crypto.ParseAddress(req.ID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid asset id")
		return
	}

	rec, err := h.registry.Create(r.Context(), cred, asset, req.Metadata)
	if err != nil {
		writeError(w, r, "asset_create_failed", err)
		return
	}

	logging.Logger(r.Context()).Info("asset_created", "asset", rec.ID, "creator", rec.Creator, "symbol", rec.Symbol)
	jsonResponse(w, http.StatusCreated, rec)
}

// GetAsset handles GET /api/v1/assets/{id}
func (h *APIHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	asset, ok := addressParam(w, r, "id")
	if !ok {
		return
	}

	rec, err := h.registry.Get(r.Context(), asset)
	if err != nil {
		writeError(w, r, "asset_lookup_failed", err)
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

// UpdateAsset handles PATCH /api/v1/assets/{id}
func (h *APIHandler) UpdateAsset(w http.ResponseWriter, r *http.Request) {
	cred, ok := credential(w, r)
	if !ok {
		return
	}
	asset, ok := addressParam(w, r, "id")
	if !ok {
		return
	}

	var changes registry.Changes
	if !h.decode(w, r, &changes) {
		return
	}

	rec, err := h.registry.Update(r.Context(), cred, asset, changes)
	if err != nil {
		writeError(w, r, "asset_update_failed", err)
		return
	}

	logging.Logger(r.Context()).Info("asset_updated", "asset", rec.ID)
	jsonResponse(w, http.StatusOK, rec)
}
