// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxa

import (
	"regexp"
	"strings"

	"github.com/mkirov/taxa-harvester/pkg/types"
)

// Shape constraints every surviving pair satisfies, regardless of which
// strategy proposed it: a genus is one capitalized ASCII word, and a
// species is lowercase and longer than two characters (rejects initials
// and Roman-numeral-like tokens).
var (
	genusShapeRe   = regexp.MustCompile(`^[A-Z][a-z]+$`)
	speciesShapeRe = regexp.MustCompile(`^[a-z]{3,}$`)
)

// wellFormed reports whether the pair satisfies the binomial shape
// constraints.
func wellFormed(t types.Taxon) bool {
	return genusShapeRe.MatchString(t.Genus) && speciesShapeRe.MatchString(t.Species)
}

// Dedupe collapses structurally equal pairs, keeping the first occurrence
// and preserving order. It is a fixed point: running it on its own output
// returns the same list.
func Dedupe(taxa []types.Taxon) []types.Taxon {
	seen := make(map[types.Taxon]bool, len(taxa))
	var out []types.Taxon
	for _, t := range taxa {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// filterDocument cleans the pooled XML-mode candidates: trims both
// fields, drops pairs with an empty field or a malformed shape, then
// dedupes. The exclusion set is not consulted here; tagged markup and
// whole-span italics do not produce the capitalized-common-word false
// positives that bare titles do.
func filterDocument(raw []types.Taxon) []types.Taxon {
	kept := make([]types.Taxon, 0, len(raw))
	for _, t := range raw {
		t.Genus = strings.TrimSpace(t.Genus)
		t.Species = strings.TrimSpace(t.Species)
		if t.Genus == "" || t.Species == "" {
			continue
		}
		if !wellFormed(t) {
			continue
		}
		kept = append(kept, t)
	}
	return Dedupe(kept)
}
