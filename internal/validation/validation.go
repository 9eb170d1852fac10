// Package validation provides input validation functions.
package validation

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ipfs/go-cid"
)

var (
	// ErrAssetNameEmpty is returned when asset name is empty.
	ErrAssetNameEmpty = errors.New("asset name is required")
	// ErrAssetNameTooLong is returned when asset name exceeds 32 characters.
	ErrAssetNameTooLong = errors.New("asset name must be at most 32 characters")

	// ErrSymbolEmpty is returned when symbol is empty.
	ErrSymbolEmpty = errors.New("symbol is required")
	// ErrSymbolTooLong is returned when symbol exceeds 10 characters.
	ErrSymbolTooLong = errors.New("symbol must be at most 10 characters")
	// ErrSymbolInvalidChars is returned when symbol contains whitespace.
	ErrSymbolInvalidChars = errors.New("symbol cannot contain whitespace")

	// ErrURIEmpty is returned when uri is empty.
	ErrURIEmpty = errors.New("uri is required")
	// ErrURITooLong is returned when uri exceeds 200 characters.
	ErrURITooLong = errors.New("uri must be at most 200 characters")
	// ErrURIInvalid is returned when uri is not an absolute URI.
	ErrURIInvalid = errors.New("uri must be an absolute URI with a scheme")

	// ErrContentIDInvalid is returned when content id is not a valid CID.
	ErrContentIDInvalid = errors.New("content id must be a valid CID")

	// ErrAmountZero is returned when an amount must be positive.
	ErrAmountZero = errors.New("amount must be greater than zero")

	// ErrLimitOutOfRange is returned when a page size is outside 1..MaxPageSize.
	ErrLimitOutOfRange = errors.New("limit must be between 1 and 1000")
)

// MaxPageSize is the largest page a list endpoint returns.
const MaxPageSize = 1000

// AssetName validates an asset name.
// Rules: 1-32 characters.
func AssetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrAssetNameEmpty
	}
	if utf8.RuneCountInString(name) > 32 {
		return ErrAssetNameTooLong
	}
	return nil
}

// Symbol validates an asset symbol.
// Rules: 1-10 characters, no whitespace.
func Symbol(symbol string) error {
	if symbol == "" {
		return ErrSymbolEmpty
	}
	if utf8.RuneCountInString(symbol) > 10 {
		return ErrSymbolTooLong
	}
	if strings.ContainsAny(symbol, " \t\r\n") {
		return ErrSymbolInvalidChars
	}
	return nil
}

// URI validates a metadata locator.
// Rules: 1-200 characters, absolute URI (https://, ipfs://, ar://, ...).
func URI(uri string) error {
	if uri == "" {
		return ErrURIEmpty
	}
	if len(uri) > 200 {
		return ErrURITooLong
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "" && u.Path == "") {
		return ErrURIInvalid
	}
	return nil
}

// ContentID validates a content identifier (CIDv0 or CIDv1).
// An empty content id is allowed.
func ContentID(id string) error {
	if id == "" {
		return nil
	}
	if _, err := cid.Parse(id); err != nil {
		return ErrContentIDInvalid
	}
	return nil
}

// Amount validates a transfer amount.
func Amount(amount uint64) error {
	if amount == 0 {
		return ErrAmountZero
	}
	return nil
}

// Limit validates a page size.
func Limit(limit int) error {
	if limit < 1 || limit > MaxPageSize {
		return ErrLimitOutOfRange
	}
	return nil
}
