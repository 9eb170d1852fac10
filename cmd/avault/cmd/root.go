// Package cmd provides the CLI commands for avault.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultDataDir = ".avault"
	keyFilename    = "key.json"
)

var (
	cfgFile      string
	dataDir      string
	keyPath      string
	serverURL    string
	outputFormat string
	jsonOutput   bool
	verbose      bool
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "avault",
	Short: "AssetVault CLI - custody with per-day fees",
	Long: `AssetVault CLI (avault) locks assets into custody, releases them for a
per-day fee and lets the vault authority withdraw collected fees.

Commands run against a local vault database unless --server points at an
AssetVault API.

Get started:
  avault keygen                    Create a signing key
  avault init                      Become the vault authority
  avault lock ASSET --duration 1h  Lock an asset you hold
  avault quote ASSET               Show the fee to release it now
  avault unlock ASSET              Release it and pay the fee

Examples:
  avault asset create ASSET --name "Deed 7" --symbol DEED --uri https://example.com/7
  avault lock ASSET --duration 72h
  avault --server http://localhost:8080 status
  avault events --after 10 --format yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		switch getOutputFormat() {
		case formatText, formatJSON, formatYAML:
			return nil
		default:
			return fmt.Errorf("unknown output format %q (want text, json or yaml)", outputFormat)
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default <data>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default ~/.avault)")
	rootCmd.PersistentFlags().StringVar(&keyPath, "key", "", "signing keyfile (default <data>/key.json)")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "AssetVault API URL; empty uses the local vault")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", formatText, "output format: text, json, yaml")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	viper.BindPFlag("data", rootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("key", rootCmd.PersistentFlags().Lookup("key"))
	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	viper.SetDefault("fee_rate_per_day", 10_000_000)
	viper.SetDefault("allow_faucet", true)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(getDataDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("AVAULT")
	viper.AutomaticEnv()

	// Load config file if it exists.
	_ = viper.ReadInConfig()
}

// getDataDir returns the data directory path.
// Priority: --data flag > AVAULT_DATA env / config > ~/.avault
func getDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if dir := viper.GetString("data"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return defaultDataDir
	}
	return filepath.Join(home, defaultDataDir)
}

// getKeyPath returns the signing keyfile path.
func getKeyPath() string {
	if keyPath != "" {
		return keyPath
	}
	if p := viper.GetString("key"); p != "" {
		return p
	}
	return filepath.Join(getDataDir(), keyFilename)
}

// getServerURL returns the API URL, or "" for local mode.
func getServerURL() string {
	if serverURL != "" {
		return serverURL
	}
	return viper.GetString("server")
}

// isVerbose returns whether verbose mode is enabled.
func isVerbose() bool {
	if verbose {
		return true
	}
	return viper.GetBool("verbose")
}
