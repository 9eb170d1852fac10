package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/custody"
	"github.com/abdul-hamid-achik/assetvault/internal/middleware"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
	"github.com/abdul-hamid-achik/assetvault/internal/vault"
)

// Client is the AssetVault API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	verbose    bool
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		verbose: isVerbose(),
	}
}

// APIResponse wraps API responses.
type APIResponse struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *APIError       `json:"error,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// codeErrors maps API error codes back to the sentinel errors they report.
var codeErrors = map[string]error{
	"ALREADY_INITIALIZED":   vault.ErrAlreadyInitialized,
	"NOT_INITIALIZED":       vault.ErrNotInitialized,
	"RECORD_ALREADY_EXISTS": vault.ErrRecordAlreadyExists,
	"LOCK_NOT_FOUND":        vault.ErrLockNotFound,
	"STILL_LOCKED":          vault.ErrStillLocked,
	"TRANSFER_FAILED":       vault.ErrTransferFailed,
	"OVERFLOW":              vault.ErrOverflow,
	"INSUFFICIENT_FUNDS":    vault.ErrInsufficientFunds,
	"UNAUTHORIZED":          vault.ErrUnauthorized,
	"NOT_FOUND":             registry.ErrAssetNotFound,
	"INVALID_INPUT":         registry.ErrInvalidInput,
}

// Unwrap lets errors.Is match the sentinel behind the API code.
func (e *APIError) Unwrap() error {
	return codeErrors[e.Code]
}

// request makes a request to the API, signing it with cred when non-nil,
// and decodes the data envelope into out.
func (c *Client) request(ctx context.Context, method, path string, body any, cred *auth.Credential, out any) error {
	var reqBody io.Reader
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if cred != nil {
		middleware.SetCredentialHeaders(req.Header, *cred)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "avault-cli/1.0")

	// Verbose logging: show request details
	if c.verbose {
		Info("%s %s%s", method, c.baseURL, path)
		if len(jsonBody) > 0 {
			Info("request body: %s", string(jsonBody))
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.verbose {
		Info("response status: %d", resp.StatusCode)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		if apiResp.Error != nil {
			return apiResp.Error
		}
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(apiResp.Data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func lockPath(depositor, asset crypto.Address) string {
	return "/api/v1/locks/" + depositor.String() + "/" + asset.String()
}

// Stats returns the vault summary. An uninitialized vault is reported as
// such rather than as an error.
func (c *Client) Stats(ctx context.Context) (*vault.Stats, error) {
	var st vault.Stats
	err := c.request(ctx, http.MethodGet, "/api/v1/vault", nil, nil, &st)
	if errors.Is(err, vault.ErrNotInitialized) {
		return &vault.Stats{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// Initialize makes the credential's identity the vault authority.
func (c *Client) Initialize(ctx context.Context, cred auth.Credential) (*store.Ledger, error) {
	var ledger store.Ledger
	if err := c.request(ctx, http.MethodPost, "/api/v1/vault/initialize", nil, &cred, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// Lock moves asset into custody for duration seconds.
func (c *Client) Lock(ctx context.Context, cred auth.Credential, asset crypto.Address, duration int64) (*store.LockRecord, error) {
	body := map[string]any{"asset": asset.String(), "duration": duration}
	var lock store.LockRecord
	if err := c.request(ctx, http.MethodPost, "/api/v1/locks", body, &cred, &lock); err != nil {
		return nil, err
	}
	return &lock, nil
}

// GetLock returns the lock record for the pair.
func (c *Client) GetLock(ctx context.Context, depositor, asset crypto.Address) (*store.LockRecord, error) {
	var lock store.LockRecord
	if err := c.request(ctx, http.MethodGet, lockPath(depositor, asset), nil, nil, &lock); err != nil {
		return nil, err
	}
	return &lock, nil
}

// Quote returns the fee for releasing the pair now.
func (c *Client) Quote(ctx context.Context, depositor, asset crypto.Address) (*vault.Quote, error) {
	var q vault.Quote
	if err := c.request(ctx, http.MethodGet, lockPath(depositor, asset)+"/quote", nil, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Unlock releases the pair and pays the fee.
func (c *Client) Unlock(ctx context.Context, cred auth.Credential, depositor, asset crypto.Address) (*vault.Receipt, error) {
	var receipt vault.Receipt
	if err := c.request(ctx, http.MethodPost, lockPath(depositor, asset)+"/unlock", nil, &cred, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// Withdraw moves collected fees to the authority.
func (c *Client) Withdraw(ctx context.Context, cred auth.Credential, amount uint64) (*store.Ledger, error) {
	var ledger store.Ledger
	if err := c.request(ctx, http.MethodPost, "/api/v1/vault/withdraw", map[string]any{"amount": amount}, &cred, &ledger); err != nil {
		return nil, err
	}
	return &ledger, nil
}

// Fund credits account through the server's faucet.
func (c *Client) Fund(ctx context.Context, account crypto.Address, amount uint64) (uint64, error) {
	var resp struct {
		Balance uint64 `json:"balance"`
	}
	path := "/api/v1/accounts/" + account.String() + "/deposit"
	if err := c.request(ctx, http.MethodPost, path, map[string]any{"amount": amount}, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Balance, nil
}

// Account returns the balance and holdings of id.
func (c *Client) Account(ctx context.Context, id crypto.Address) (*custody.AccountInfo, error) {
	var info custody.AccountInfo
	if err := c.request(ctx, http.MethodGet, "/api/v1/accounts/"+id.String(), nil, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Events returns committed events after the given sequence.
func (c *Client) Events(ctx context.Context, after uint64, limit int) ([]*store.Event, error) {
	q := url.Values{}
	q.Set("after", strconv.FormatUint(after, 10))
	q.Set("limit", strconv.Itoa(limit))

	var evs []*store.Event
	if err := c.request(ctx, http.MethodGet, "/api/v1/events?"+q.Encode(), nil, nil, &evs); err != nil {
		return nil, err
	}
	return evs, nil
}

// CreateAsset registers asset metadata.
func (c *Client) CreateAsset(ctx context.Context, cred auth.Credential, asset crypto.Address, m registry.Metadata) (*store.AssetRecord, error) {
	body := struct {
		ID string `json:"id"`
		registry.Metadata
	}{ID: asset.String(), Metadata: m}

	var rec store.AssetRecord
	if err := c.request(ctx, http.MethodPost, "/api/v1/assets", body, &cred, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpdateAsset changes asset metadata.
func (c *Client) UpdateAsset(ctx context.Context, cred auth.Credential, asset crypto.Address, changes registry.Changes) (*store.AssetRecord, error) {
	var rec store.AssetRecord
	if err := c.request(ctx, http.MethodPatch, "/api/v1/assets/"+asset.String(), changes, &cred, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetAsset returns asset metadata.
func (c *Client) GetAsset(ctx context.Context, asset crypto.Address) (*store.AssetRecord, error) {
	var rec store.AssetRecord
	if err := c.request(ctx, http.MethodGet, "/api/v1/assets/"+asset.String(), nil, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Close is a no-op; the client holds no resources.
func (c *Client) Close() error { return nil }
