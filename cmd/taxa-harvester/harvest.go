// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mkirov/taxa-harvester/internal/collection"
	"github.com/mkirov/taxa-harvester/internal/harvest"
	"github.com/mkirov/taxa-harvester/internal/store"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Run the full pipeline over a topical collection",
	Long: `Harvest scrapes the collection listing, extracts taxa from every
publication (article XML first, title heuristics as fallback), writes a
JSON export, and indexes the results in SQLite. Article XML is cached
under the data directory, so re-runs only fetch what is missing.`,
	RunE: runHarvest,
}

func init() {
	harvestCmd.Flags().String("collection", defaultCollectionURL, "topical collection URL")
	harvestCmd.Flags().String("data-dir", defaultDataDir, "base directory for cached XML, metadata, and the index")
	harvestCmd.Flags().String("output", "", "JSON export path (default: <data-dir>/harvest.json)")
	harvestCmd.Flags().String("exclusions", "", "YAML file of extra title-mode exclusion words")
	harvestCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	harvestCmd.Flags().Duration("delay", defaultDelay, "delay between consecutive article fetches")
	harvestCmd.Flags().Duration("page-delay", defaultDelay, "delay between listing page fetches")
	harvestCmd.Flags().Int("max-pages", 0, "listing page cap (default 10)")
	harvestCmd.Flags().Bool("no-index", false, "skip the SQLite index update")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	timeout := configDuration(cmd, "timeout", "http.timeout")
	dataDir := configString(cmd, "data-dir", "data_dir")

	collectCfg := types.CollectionConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		URL:        configString(cmd, "collection", "collection.url"),
		PageDelay:  configDuration(cmd, "page-delay", "collection.page_delay"),
		MaxPages:   configInt(cmd, "max-pages", "collection.max_pages"),
	}
	harvestCfg := types.HarvestConfig{
		HTTPConfig:     types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		FetchDelay:     configDuration(cmd, "delay", "harvest.fetch_delay"),
		DataDir:        dataDir,
		ExclusionsFile: configString(cmd, "exclusions", "harvest.exclusions_file"),
	}

	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = filepath.Join(dataDir, "harvest.json")
	}

	client := &http.Client{Timeout: timeout}
	ctx := cmd.Context()

	pubs, err := collection.FetchAll(ctx, client, collectCfg, os.Stdout)
	if err != nil {
		return err
	}
	if len(pubs) == 0 {
		return fmt.Errorf("collection %s lists no publications", collectCfg.URL)
	}
	fmt.Printf("\nharvesting %d publications\n\n", len(pubs))

	h, err := harvest.New(client, harvestCfg)
	if err != nil {
		return err
	}
	summary := h.Run(ctx, pubs, os.Stdout)

	export := harvest.BuildExport(collectCfg.URL, summary)
	if err := harvest.WriteExport(output, export); err != nil {
		return err
	}
	fmt.Printf("export written: %s\n", output)

	if noIndex, _ := cmd.Flags().GetBool("no-index"); !noIndex {
		s, err := store.Open(types.StoreConfig{DataDir: dataDir})
		if err != nil {
			return err
		}
		defer s.Close()
		s.Ingest(ctx, summary.Results, os.Stdout)
	}

	fmt.Println()
	fmt.Print(harvest.FormatReport(summary))

	if summary.HasFailures() {
		return fmt.Errorf("%d publication(s) failed extraction", summary.Failed)
	}
	return nil
}
