// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkirov/taxa-harvester/internal/collection"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "List the publications of a topical collection",
	Long: `Collect scrapes a journal topical collection's paginated listing and
prints the publications it finds: DOIs, article URLs, and titles. Entries
are deduplicated across pages.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("collection", defaultCollectionURL, "topical collection URL")
	collectCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")
	collectCmd.Flags().Duration("page-delay", defaultDelay, "delay between listing page fetches")
	collectCmd.Flags().Int("max-pages", 0, "listing page cap (default 10)")
	collectCmd.Flags().Bool("json", false, "output publications as JSON")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	cfg := types.CollectionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   configDuration(cmd, "timeout", "http.timeout"),
			UserAgent: defaultUserAgent,
		},
		URL:       configString(cmd, "collection", "collection.url"),
		PageDelay: configDuration(cmd, "page-delay", "collection.page_delay"),
		MaxPages:  configInt(cmd, "max-pages", "collection.max_pages"),
	}

	client := &http.Client{Timeout: cfg.Timeout}
	asJSON, _ := cmd.Flags().GetBool("json")

	status := os.Stderr
	pubs, err := collection.FetchAll(cmd.Context(), client, cfg, status)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(pubs)
	}

	for _, p := range pubs {
		fmt.Printf("%s\n    %s\n", p.Key(), p.Title)
	}
	fmt.Printf("\n%d publications\n", len(pubs))
	return nil
}
