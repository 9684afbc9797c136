// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mkirov/taxa-harvester/internal/store"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

var taxaCmd = &cobra.Command{
	Use:   "taxa",
	Short: "Query the taxa index",
	Long: `Taxa queries the SQLite index built by harvest. By default it lists
distinct binomials with the number of publications each appears in,
most-cited first. With --for it lists the publications mentioning one
binomial instead.`,
	RunE: runTaxa,
}

func init() {
	taxaCmd.Flags().String("data-dir", defaultDataDir, "base directory holding the index")
	taxaCmd.Flags().String("genus", "", "restrict to one genus")
	taxaCmd.Flags().String("for", "", `list publications for a binomial ("Genus species")`)
	taxaCmd.Flags().Int("limit", 0, "maximum rows to return (default 50)")
	taxaCmd.Flags().Bool("json", false, "output as JSON")
	taxaCmd.Flags().Bool("stats", false, "print index-wide counts instead")

	rootCmd.AddCommand(taxaCmd)
}

func runTaxa(cmd *cobra.Command, args []string) error {
	s, err := store.Open(types.StoreConfig{
		DataDir:    configString(cmd, "data-dir", "data_dir"),
		MaxResults: configInt(cmd, "limit", "store.max_results"),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	asJSON, _ := cmd.Flags().GetBool("json")

	if showStats, _ := cmd.Flags().GetBool("stats"); showStats {
		stats, err := s.Summary(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(stats)
		}
		fmt.Printf("publications: %d\ndistinct taxa: %d\n", stats.Publications, stats.DistinctTaxa)
		for method, n := range stats.ByMethod {
			fmt.Printf("  %-7s %d\n", method, n)
		}
		return nil
	}

	if binomial, _ := cmd.Flags().GetString("for"); binomial != "" {
		parts := strings.Fields(binomial)
		if len(parts) != 2 {
			return fmt.Errorf(`--for wants "Genus species", got %q`, binomial)
		}
		keys, err := s.PublicationsFor(ctx, types.Taxon{Genus: parts[0], Species: parts[1]})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(keys)
		}
		for _, k := range keys {
			fmt.Println(k)
		}
		return nil
	}

	genus, _ := cmd.Flags().GetString("genus")
	limit, _ := cmd.Flags().GetInt("limit")
	records, err := s.Taxa(ctx, genus, limit)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(records)
	}
	for _, rec := range records {
		fmt.Printf("%-30s %d\n", rec.Taxon.String(), rec.Publications)
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
