// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxa

import (
	"regexp"

	"github.com/mkirov/taxa-harvester/pkg/types"
)

// Title patterns in priority order. Each describes a context where a
// binomial name appears in article titles:
//
//	", Genus species ("      binomial before a parenthesized author citation
//	"(Genus species Author"  citation inside the parentheses, no comma
//	"(Genus species)"        bare parenthesized binomial
//	"of Genus species"       prose reference ("genome of Genus species")
var titleStrategies = []*regexp.Regexp{
	regexp.MustCompile(`,\s+([A-Z][a-z]+)\s+([a-z]+)\s+\(`),
	regexp.MustCompile(`\(([A-Z][a-z]+)\s+([a-z]+)\s+[A-Z]`),
	regexp.MustCompile(`\(([A-Z][a-z]+)\s+([a-z]+)\)`),
	regexp.MustCompile(`of\s+([A-Z][a-z]+)\s+([a-z]+)`),
}

// FromTitle extracts binomial candidates from a bare article title. The
// strategies cascade: the first one yielding at least one candidate that
// survives the exclusion and shape checks wins, and later strategies are
// not attempted. A strategy whose matches are all filtered away counts as
// a miss, so the cascade moves on.
func FromTitle(title string, excl ExclusionSet) []types.Taxon {
	for _, re := range titleStrategies {
		var kept []types.Taxon
		for _, m := range re.FindAllStringSubmatch(title, -1) {
			t := types.Taxon{Genus: m[1], Species: m[2]}
			if excl.Contains(t.Genus) || !wellFormed(t) {
				continue
			}
			kept = append(kept, t)
		}
		if len(kept) > 0 {
			return Dedupe(kept)
		}
	}
	return nil
}
