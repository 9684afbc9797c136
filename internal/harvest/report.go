// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mkirov/taxa-harvester/internal/taxa"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

// Export is the JSON document written at the end of a harvest run.
type Export struct {
	Collection   string        `json:"collection,omitempty"`
	HarvestedAt  string        `json:"harvested_at"`
	Total        int           `json:"total"`
	Publications []ExportEntry `json:"publications"`
}

// ExportEntry is one publication's outcome in the export.
type ExportEntry struct {
	DOI    string   `json:"doi,omitempty"`
	URL    string   `json:"url"`
	Title  string   `json:"title,omitempty"`
	Method string   `json:"method"`
	Taxa   []string `json:"taxa"`
	Error  string   `json:"error,omitempty"`
}

// BuildExport assembles the export document from a harvest summary.
func BuildExport(collectionURL string, s Summary) Export {
	e := Export{
		Collection:   collectionURL,
		HarvestedAt:  time.Now().UTC().Format(time.RFC3339),
		Total:        s.Total(),
		Publications: make([]ExportEntry, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		entry := ExportEntry{
			DOI:    r.Publication.DOI,
			URL:    r.Publication.URL,
			Title:  r.Publication.Title,
			Method: string(r.Method),
			Taxa:   make([]string, 0, len(r.Taxa)),
		}
		for _, t := range r.Taxa {
			entry.Taxa = append(entry.Taxa, t.String())
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}
		e.Publications = append(e.Publications, entry)
	}
	return e
}

// WriteExport writes the export document as indented JSON.
func WriteExport(path string, e Export) error {
	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling export: %w", err)
	}
	return writeAtomic(path, append(data, '\n'))
}

// UniqueTaxa returns every distinct taxon found in the run, first
// occurrence order.
func UniqueTaxa(s Summary) []types.Taxon {
	var all []types.Taxon
	for _, r := range s.Results {
		all = append(all, r.Taxa...)
	}
	return taxa.Dedupe(all)
}

// FormatReport renders a human-readable run report: per-publication
// outcomes followed by a tally of distinct taxa with the number of
// publications each appears in.
func FormatReport(s Summary) string {
	var b strings.Builder

	b.WriteString("Publications:\n")
	for _, r := range s.Results {
		names := make([]string, 0, len(r.Taxa))
		for _, t := range r.Taxa {
			names = append(names, t.String())
		}
		line := strings.Join(names, "; ")
		if line == "" {
			line = "-"
		}
		fmt.Fprintf(&b, "  %-7s %s: %s\n", r.Method, r.Publication.Key(), line)
	}

	counts := make(map[types.Taxon]int)
	for _, r := range s.Results {
		for _, t := range taxa.Dedupe(r.Taxa) {
			counts[t]++
		}
	}
	uniq := UniqueTaxa(s)
	sort.Slice(uniq, func(i, j int) bool {
		if counts[uniq[i]] != counts[uniq[j]] {
			return counts[uniq[i]] > counts[uniq[j]]
		}
		return uniq[i].String() < uniq[j].String()
	})

	fmt.Fprintf(&b, "\nDistinct taxa (%d):\n", len(uniq))
	for _, t := range uniq {
		fmt.Fprintf(&b, "  %-30s %d\n", t.String(), counts[t])
	}
	return b.String()
}
