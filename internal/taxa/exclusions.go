// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxa

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// ExclusionSet holds capitalized tokens known to collide with the genus
// pattern: articles, geographic adjectives, author surnames, higher-rank
// taxon names. Membership is a case-sensitive whole-token match, applied
// to title-mode candidates only.
type ExclusionSet map[string]struct{}

// NewExclusionSet builds a set from the given words.
func NewExclusionSet(words ...string) ExclusionSet {
	s := make(ExclusionSet, len(words))
	s.Add(words...)
	return s
}

// Add inserts words into the set.
func (s ExclusionSet) Add(words ...string) {
	for _, w := range words {
		if w != "" {
			s[w] = struct{}{}
		}
	}
}

// Contains reports whether word is excluded.
func (s ExclusionSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

// defaultExclusions lists capitalized words observed in genome-report
// titles that are not genus names. New collections introduce new
// collisions indefinitely, so deployments extend this via a word-list
// file rather than a rebuild.
var defaultExclusions = []string{
	"The", "An", "European", "Western", "Northern", "Iberian", "ERGA", "BGE",
	"Reference", "Genome", "Species", "Key", "Evolutionary", "Venom", "Studies",
	"Widespread", "Abundant", "Central", "Eastern", "Europe", "Mediterranean",
	"Endemic", "Sun", "Spider", "Ark", "Shell", "Lessepsian", "Crete", "Mountain",
	"Chromosome", "Assembly", "IUCN", "Endangered", "Common", "Brassy", "Ringlet",
	"Field", "Mouse", "Striped", "False", "Beautiful", "Yellow", "Underwing",
	"Lappet", "Moth", "Small", "Elephant", "Hawk", "Scarce", "Forester",
	"Reiner", "Hohenwarth", "Lepidoptera", "Nymphalidae", "Linnaeus", "Hübner",
	"Leach", "Valenciennes", "Bate",
}

// DefaultExclusions returns a fresh copy of the built-in exclusion list.
func DefaultExclusions() ExclusionSet {
	return NewExclusionSet(defaultExclusions...)
}

// LoadExclusions reads a YAML word list (a plain sequence of strings) and
// returns the built-in set extended with it. An empty path returns the
// built-in set alone.
func LoadExclusions(path string) (ExclusionSet, error) {
	set := DefaultExclusions()
	if path == "" {
		return set, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading exclusions file: %w", err)
	}

	var words []string
	if err := yaml.Unmarshal(data, &words); err != nil {
		return nil, fmt.Errorf("parsing exclusions file %s: %w", path, err)
	}

	set.Add(words...)
	return set, nil
}
