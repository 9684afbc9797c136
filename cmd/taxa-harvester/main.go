// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the taxa-harvester CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

const (
	defaultTimeout       = 60 * time.Second
	defaultDelay         = 1 * time.Second
	defaultUserAgent     = "taxa-harvester/0.1"
	defaultCollectionURL = "https://riojournal.com/topical_collection/280/"
	defaultDataDir       = "data"
)

// rootCmd is the base command for the taxa-harvester CLI.
var rootCmd = &cobra.Command{
	Use:   "taxa-harvester",
	Short: "Harvest taxonomic names from journal collections",
	Long: `taxa-harvester extracts species names (genus plus species binomials)
from the publications of a journal topical collection. It scrapes the
collection listing, downloads article XML for each publication, and pulls
taxa from taxonomic markup, falling back to title heuristics when no XML
is available. Results are exported as JSON and indexed in SQLite for
cross-run queries.

Each pipeline stage is a subcommand: collect lists a collection's
publications, extract pulls taxa from single identifiers or titles,
harvest runs the full pipeline, and taxa queries the index.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./taxa-harvester.yaml or ~/.config/taxa-harvester/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taxa-harvester")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "taxa-harvester"))
		}
	}

	viper.SetEnvPrefix("TAXA_HARVESTER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// configString returns the flag value when set on the command line, then
// the config file value, then the flag default.
func configString(cmd *cobra.Command, flag, key string) string {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetString(key)
	}
	v, _ := cmd.Flags().GetString(flag)
	return v
}

func configDuration(cmd *cobra.Command, flag, key string) time.Duration {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetDuration(key)
	}
	v, _ := cmd.Flags().GetDuration(flag)
	return v
}

func configInt(cmd *cobra.Command, flag, key string) int {
	if !cmd.Flags().Changed(flag) && viper.IsSet(key) {
		return viper.GetInt(key)
	}
	v, _ := cmd.Flags().GetInt(flag)
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
