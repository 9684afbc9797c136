// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the taxa-harvester pipeline.
package types

// Publication identifies one article in a journal topical collection.
type Publication struct {
	// DOI is the bare DOI (e.g. "10.3897/rio.11.e174988"). Empty when the
	// listing only exposed an article page link.
	DOI string `json:"doi" yaml:"doi"`

	// URL is the canonical link for the publication: the doi.org resolver
	// URL when a DOI is known, otherwise the article page URL.
	URL string `json:"url" yaml:"url"`

	// Title is the publication title as shown on the collection listing.
	Title string `json:"title" yaml:"title"`

	// ArticleID is the numeric journal article id, when the listing linked
	// to an article page directly.
	ArticleID string `json:"article_id,omitempty" yaml:"article_id,omitempty"`
}

// Key returns the dedup key for the publication: DOI when present,
// otherwise the URL.
func (p Publication) Key() string {
	if p.DOI != "" {
		return p.DOI
	}
	return p.URL
}

// Taxon is one extracted binomial name. Taxa are immutable value records:
// two taxa are the same name exactly when both fields are equal.
type Taxon struct {
	Genus   string `json:"genus" yaml:"genus"`
	Species string `json:"species" yaml:"species"`
}

// String returns the binomial in its written form, "Genus species".
func (t Taxon) String() string {
	return t.Genus + " " + t.Species
}
