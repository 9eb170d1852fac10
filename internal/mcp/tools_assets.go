package mcp

import (
	"context"
	"fmt"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
)

type assetInput struct {
	Asset string `json:"asset" jsonschema:"Base58 asset identifier."`
}

type assetOutput struct {
	Asset     string `json:"asset"`
	Creator   string `json:"creator"`
	Name      string `json:"name"`
	Symbol    string `json:"symbol"`
	URI       string `json:"uri"`
	ContentID string `json:"content_id,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

func (s *VaultMCPServer) registerAssetTools() {
	addTool(s, &sdkmcp.Tool{
		Name:        "asset_get",
		Description: "Get the registry metadata of an asset: name, symbol, URI and content identifier.",
	}, s.handleGetAsset)
}

func (s *VaultMCPServer) handleGetAsset(ctx context.Context, _ *sdkmcp.CallToolRequest, input assetInput) (*sdkmcp.CallToolResult, assetOutput, error) {
	id, err := crypto.ParseAddress(input.Asset)
	if err != nil {
		return nil, assetOutput{}, fmt.Errorf("invalid asset: %w", err)
	}

	rec, err := s.registry.Get(ctx, id)
	if err != nil {
		return nil, assetOutput{}, fmt.Errorf("get asset: %w", err)
	}
	return nil, assetOutput{
		Asset:     rec.ID.String(),
		Creator:   s.identity(rec.Creator),
		Name:      rec.Name,
		Symbol:    rec.Symbol,
		URI:       rec.URI,
		ContentID: rec.ContentID,
		UpdatedAt: rec.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}
