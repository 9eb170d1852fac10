package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/assetvault/internal/auth"
	"github.com/abdul-hamid-achik/assetvault/internal/crypto"
	"github.com/abdul-hamid-achik/assetvault/internal/registry"
	"github.com/abdul-hamid-achik/assetvault/internal/store"
)

var assetName, assetSymbol, assetURI, assetCID string

var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage asset metadata",
}

var assetCreateCmd = &cobra.Command{
	Use:   "create [ASSET]",
	Short: "Register a new asset",
	Long: `Register a new asset with you as its creator. A fresh asset id is generated
when none is given. The creator's account receives the asset.

Examples:
  avault asset create --name "Harbor Deed" --symbol DEED --uri https://example.com/deed.json
  avault asset create 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU --name Art --symbol ART \
    --uri ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi \
    --cid bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAssetCreate,
}

var assetUpdateCmd = &cobra.Command{
	Use:   "update ASSET",
	Short: "Update asset metadata",
	Long: `Replace the given metadata fields. Only the creator may update an asset.
Fields without a flag keep their current value.

Examples:
  avault asset update 7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU --uri https://example.com/v2.json`,
	Args: cobra.ExactArgs(1),
	RunE: runAssetUpdate,
}

var assetShowCmd = &cobra.Command{
	Use:   "show ASSET",
	Short: "Show asset metadata",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetShow,
}

func init() {
	rootCmd.AddCommand(assetCmd)
	assetCmd.AddCommand(assetCreateCmd, assetUpdateCmd, assetShowCmd)

	for _, c := range []*cobra.Command{assetCreateCmd, assetUpdateCmd} {
		c.Flags().StringVar(&assetName, "name", "", "display name")
		c.Flags().StringVar(&assetSymbol, "symbol", "", "ticker symbol")
		c.Flags().StringVar(&assetURI, "uri", "", "metadata URI")
		c.Flags().StringVar(&assetCID, "cid", "", "content identifier of the asset payload")
	}
}

func runAssetCreate(cmd *cobra.Command, args []string) error {
	var id crypto.Address
	var err error
	if len(args) == 1 {
		id, err = parseAddress("asset", args[0])
	} else {
		id, err = crypto.NewRandomAddress()
	}
	if err != nil {
		return err
	}

	m := registry.Metadata{Name: assetName, Symbol: assetSymbol, URI: assetURI, ContentID: assetCID}
	if err := m.Validate(); err != nil {
		return err
	}
	kp, err := loadSigner()
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		cred := auth.Sign(kp, registry.CreatePayload(kp.Identity(), id, m), 0)
		rec, err := b.CreateAsset(ctx, cred, id, m)
		if err != nil {
			return fmt.Errorf("failed to create asset: %w", err)
		}
		return render(rec, func() {
			Success("Asset created")
			printAsset(rec)
		})
	})
}

func runAssetUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseAddress("asset", args[0])
	if err != nil {
		return err
	}

	var c registry.Changes
	flags := cmd.Flags()
	if flags.Changed("name") {
		c.Name = &assetName
	}
	if flags.Changed("symbol") {
		c.Symbol = &assetSymbol
	}
	if flags.Changed("uri") {
		c.URI = &assetURI
	}
	if flags.Changed("cid") {
		c.ContentID = &assetCID
	}
	if c.Empty() {
		return fmt.Errorf("nothing to update, pass at least one of --name, --symbol, --uri, --cid")
	}

	kp, err := loadSigner()
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		cred := auth.Sign(kp, registry.UpdatePayload(kp.Identity(), id, c), 0)
		rec, err := b.UpdateAsset(ctx, cred, id, c)
		if err != nil {
			return fmt.Errorf("failed to update asset: %w", err)
		}
		return render(rec, func() {
			Success("Asset updated")
			printAsset(rec)
		})
	})
}

func runAssetShow(cmd *cobra.Command, args []string) error {
	id, err := parseAddress("asset", args[0])
	if err != nil {
		return err
	}

	return withBackend(cmd, func(ctx context.Context, b backend) error {
		rec, err := b.GetAsset(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to read asset: %w", err)
		}
		return render(rec, func() { printAsset(rec) })
	})
}

func printAsset(rec *store.AssetRecord) {
	PrintKeyValue("Asset", rec.ID.String())
	PrintKeyValue("Creator", rec.Creator.String())
	PrintKeyValue("Name", rec.Name)
	PrintKeyValue("Symbol", rec.Symbol)
	if rec.URI != "" {
		PrintKeyValue("URI", rec.URI)
	}
	if rec.ContentID != "" {
		PrintKeyValue("Content ID", rec.ContentID)
	}
	PrintKeyValue("Updated", rec.UpdatedAt.Local().Format(time.RFC3339))
}
