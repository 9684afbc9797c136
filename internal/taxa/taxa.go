// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package taxa extracts taxonomic binomial names (genus + species) from
// article XML and from bare titles using layered pattern heuristics.
//
// The two entry points run the same strategy shapes under different
// control policies: FromDocument pools the output of every strategy and
// filters afterwards, while FromTitle cascades through its strategies and
// stops at the first one that produces a surviving candidate. Both are
// pure functions over in-memory input; they hold no state and are safe to
// call concurrently.
package taxa

import (
	"regexp"
	"strings"

	"github.com/mkirov/taxa-harvester/internal/jats"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

// taxpubNS is the TaxPub namespace used by Pensoft for explicit taxonomic
// markup.
const taxpubNS = "http://www.plazi.org/taxpub"

var (
	// binomialExactRe matches a whole string that is exactly one
	// capitalized word followed by one lowercase word.
	binomialExactRe = regexp.MustCompile(`^([A-Z][a-z]+)\s+([a-z]+)$`)

	// binomialScanRe finds every capitalized-word lowercase-word pair in
	// running text. The least precise pattern: ordinary two-word phrases
	// match too, so its output leans on the downstream filter.
	binomialScanRe = regexp.MustCompile(`([A-Z][a-z]+)\s+([a-z]+)`)
)

// FromDocument extracts binomial candidates from a parsed article. All
// four strategies run and their output is pooled before filtering and
// deduplication; an explicit tp:taxon-name hit does not suppress the
// weaker scans.
func FromDocument(doc *jats.Document) []types.Taxon {
	var raw []types.Taxon
	raw = append(raw, taggedTaxa(doc)...)
	raw = append(raw, italicTaxa(doc)...)
	raw = append(raw, articleTitleTaxa(doc)...)
	raw = append(raw, keywordTaxa(doc)...)
	return filterDocument(raw)
}

// taggedTaxa reads explicit TaxPub markup: a tp:taxon-name element with
// taxon-name-part children typed "genus" and "species". The highest
// confidence strategy, since the publisher tagged the name itself. A part
// without text content is simply no candidate.
func taggedTaxa(doc *jats.Document) []types.Taxon {
	var out []types.Taxon
	for _, name := range doc.FindAll(taxpubNS, "taxon-name") {
		var genus, species string
		for _, part := range name.FindAll(taxpubNS, "taxon-name-part") {
			switch part.Attr("taxon-name-part-type") {
			case "genus":
				if genus == "" {
					genus = strings.TrimSpace(part.Text())
				}
			case "species":
				if species == "" {
					species = strings.TrimSpace(part.Text())
				}
			}
		}
		if genus != "" && species != "" {
			out = append(out, types.Taxon{Genus: genus, Species: species})
		}
	}
	return out
}

// italicTaxa treats any italic span whose entire text is a two-token
// binomial as a candidate. The whole span must match; a binomial embedded
// in a longer italic phrase does not count.
func italicTaxa(doc *jats.Document) []types.Taxon {
	return exactMatches(doc, "italic")
}

// keywordTaxa applies the same whole-string test to keyword elements.
func keywordTaxa(doc *jats.Document) []types.Taxon {
	return exactMatches(doc, "kwd")
}

func exactMatches(doc *jats.Document, tag string) []types.Taxon {
	var out []types.Taxon
	for _, el := range doc.FindAll("", tag) {
		text := strings.TrimSpace(el.Text())
		if m := binomialExactRe.FindStringSubmatch(text); m != nil {
			out = append(out, types.Taxon{Genus: m[1], Species: m[2]})
		}
	}
	return out
}

// articleTitleTaxa scans every article-title element for all
// capitalized-lowercase word pairs, anywhere in the text.
func articleTitleTaxa(doc *jats.Document) []types.Taxon {
	var out []types.Taxon
	for _, el := range doc.FindAll("", "article-title") {
		for _, m := range binomialScanRe.FindAllStringSubmatch(el.Text(), -1) {
			out = append(out, types.Taxon{Genus: m[1], Species: m[2]})
		}
	}
	return out
}
