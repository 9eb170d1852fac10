package validation

import (
	"strings"
	"testing"
)

func TestAssetName(t *testing.T) {
	tests := []struct {
		name      string
		assetName string
		wantErr   error
	}{
		{
			name:      "valid name",
			assetName: "Sunset #42",
			wantErr:   nil,
		},
		{
			name:      "max length valid",
			assetName: strings.Repeat("a", 32),
			wantErr:   nil,
		},
		{
			name:      "multibyte counts runes",
			assetName: strings.Repeat("é", 32),
			wantErr:   nil,
		},
		{
			name:      "empty",
			assetName: "",
			wantErr:   ErrAssetNameEmpty,
		},
		{
			name:      "whitespace only",
			assetName: "   ",
			wantErr:   ErrAssetNameEmpty,
		},
		{
			name:      "too long",
			assetName: strings.Repeat("a", 33),
			wantErr:   ErrAssetNameTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := AssetName(tt.assetName); err != tt.wantErr {
				t.Errorf("AssetName(%q) = %v, want %v", tt.assetName, err, tt.wantErr)
			}
		})
	}
}

func TestSymbol(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		wantErr error
	}{
		{"valid", "SUN", nil},
		{"max length", strings.Repeat("X", 10), nil},
		{"empty", "", ErrSymbolEmpty},
		{"too long", strings.Repeat("X", 11), ErrSymbolTooLong},
		{"space", "SU N", ErrSymbolInvalidChars},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Symbol(tt.symbol); err != tt.wantErr {
				t.Errorf("Symbol(%q) = %v, want %v", tt.symbol, err, tt.wantErr)
			}
		})
	}
}

func TestURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr error
	}{
		{"https", "https://example.com/meta/1.json", nil},
		{"ipfs", "ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", nil},
		{"empty", "", ErrURIEmpty},
		{"relative", "meta/1.json", ErrURIInvalid},
		{"scheme only", "https://", ErrURIInvalid},
		{"too long", "https://example.com/" + strings.Repeat("a", 200), ErrURITooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := URI(tt.uri); err != tt.wantErr {
				t.Errorf("URI(%q) = %v, want %v", tt.uri, err, tt.wantErr)
			}
		})
	}
}

func TestContentID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"empty allowed", "", nil},
		{"cidv0", "QmdfTbBqBPQ7VNxZEYEj14VmRuZBkqFbiwReogJgS1zR1n", nil},
		{"cidv1", "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi", nil},
		{"garbage", "not-a-cid", ErrContentIDInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ContentID(tt.id); err != tt.wantErr {
				t.Errorf("ContentID(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestAmount(t *testing.T) {
	if err := Amount(0); err != ErrAmountZero {
		t.Errorf("Amount(0) = %v, want ErrAmountZero", err)
	}
	if err := Amount(1); err != nil {
		t.Errorf("Amount(1) = %v, want nil", err)
	}
}

func TestLimit(t *testing.T) {
	for _, limit := range []int{0, -1, MaxPageSize + 1} {
		if err := Limit(limit); err != ErrLimitOutOfRange {
			t.Errorf("Limit(%d) = %v, want ErrLimitOutOfRange", limit, err)
		}
	}
	for _, limit := range []int{1, MaxPageSize} {
		if err := Limit(limit); err != nil {
			t.Errorf("Limit(%d) = %v, want nil", limit, err)
		}
	}
}
