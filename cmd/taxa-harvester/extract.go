// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/mkirov/taxa-harvester/internal/harvest"
	"github.com/mkirov/taxa-harvester/internal/jats"
	"github.com/mkirov/taxa-harvester/internal/taxa"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [identifiers...]",
	Short: "Extract taxa from publication identifiers or a title",
	Long: `Extract pulls species names from individual publications. Identifiers
may be DOIs or article URLs; their article XML is fetched (and cached under
the data directory) and scanned for taxonomic markup.

With --title, the heuristic title mode runs instead on the given string,
and with --file the XML mode runs on a local file. Neither touches the
network.`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("title", "", "extract from a title string instead of identifiers")
	extractCmd.Flags().String("file", "", "extract from a local article XML file")
	extractCmd.Flags().String("data-dir", defaultDataDir, "base directory for cached XML and metadata")
	extractCmd.Flags().String("exclusions", "", "YAML file of extra title-mode exclusion words")
	extractCmd.Flags().Duration("timeout", defaultTimeout, "HTTP request timeout")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	exclusionsFile := configString(cmd, "exclusions", "harvest.exclusions_file")

	if title, _ := cmd.Flags().GetString("title"); title != "" {
		excl, err := taxa.LoadExclusions(exclusionsFile)
		if err != nil {
			return fmt.Errorf("loading exclusions: %w", err)
		}
		for _, t := range taxa.FromTitle(title, excl) {
			fmt.Println(t.String())
		}
		return nil
	}

	if file, _ := cmd.Flags().GetString("file"); file != "" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := jats.Parse(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}
		for _, t := range taxa.FromDocument(doc) {
			fmt.Println(t.String())
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("provide one or more identifiers (DOIs or article URLs), --title, or --file")
	}

	cfg := types.HarvestConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   configDuration(cmd, "timeout", "http.timeout"),
			UserAgent: defaultUserAgent,
		},
		DataDir:        configString(cmd, "data-dir", "data_dir"),
		ExclusionsFile: exclusionsFile,
	}

	h, err := harvest.New(&http.Client{Timeout: cfg.Timeout}, cfg)
	if err != nil {
		return err
	}

	failed := 0
	for _, id := range args {
		r, err := h.ExtractIdentifier(cmd.Context(), id, os.Stderr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", id, err)
			failed++
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "failed:  %s (%v)\n", id, r.Err)
			failed++
			continue
		}
		for _, t := range r.Taxa {
			fmt.Printf("%s\t%s\n", id, t.String())
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d identifier(s) failed extraction", failed)
	}
	return nil
}
