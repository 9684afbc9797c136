// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve classifies publication identifiers and derives article
// XML download URLs and cache slugs from them.
package resolve

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"
)

// IdentifierType classifies an input identifier.
type IdentifierType int

const (
	TypeUnknown IdentifierType = iota
	TypeJournalDOI
	TypePreprintDOI
	TypeExternalDOI
	TypeArticleURL
)

func (t IdentifierType) String() string {
	switch t {
	case TypeJournalDOI:
		return "journal-doi"
	case TypePreprintDOI:
		return "preprint-doi"
	case TypeExternalDOI:
		return "external-doi"
	case TypeArticleURL:
		return "article-url"
	default:
		return "unknown"
	}
}

// Base URLs for identifier resolution. Declared as vars so tests can
// substitute httptest servers.
var (
	DOIBase     = "https://doi.org/"
	JournalBase = "https://riojournal.com"
)

// pensoftPrefix is the DOI registrant prefix shared by RIO and the Arpha
// preprint server.
const pensoftPrefix = "10.3897/"

// doiPattern matches bare DOIs: "10.24072/pcjournal.514".
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/[^\s]+$`)

// articleIDPattern extracts the numeric article id from an article page URL.
var articleIDPattern = regexp.MustCompile(`/article/(\d+)`)

// collectionIDPattern extracts the collection id from a topical collection URL.
var collectionIDPattern = regexp.MustCompile(`collection[_/](\d+)`)

// Classify determines the identifier type and returns the trimmed form.
// Journal and preprint DOIs share the Pensoft registrant prefix; the
// preprint server is distinguished by its DOI body.
func Classify(identifier string) (IdentifierType, string) {
	id := strings.TrimSpace(identifier)

	if doiPattern.MatchString(id) {
		switch {
		case strings.HasPrefix(id, pensoftPrefix+"arphapreprints"):
			return TypePreprintDOI, id
		case strings.HasPrefix(id, pensoftPrefix):
			return TypeJournalDOI, id
		default:
			return TypeExternalDOI, id
		}
	}

	if (strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://")) &&
		articleIDPattern.MatchString(id) {
		return TypeArticleURL, id
	}

	return TypeUnknown, id
}

// ArticleID returns the numeric article id embedded in a journal DOI:
// the last dotted segment with its leading "e" stripped
// ("10.3897/rio.11.e174988" → "174988"). For article URLs it returns the
// id from the path.
func ArticleID(idType IdentifierType, id string) string {
	switch idType {
	case TypeJournalDOI:
		seg := id[strings.LastIndex(id, ".")+1:]
		return strings.TrimPrefix(seg, "e")
	case TypeArticleURL:
		if m := articleIDPattern.FindStringSubmatch(id); m != nil {
			return m[1]
		}
	}
	return ""
}

// XMLURL returns the direct XML download URL for the identifier, or ""
// when no direct endpoint exists. Preprint DOIs resolve through their
// landing page (the XML link is discovered there at fetch time), and
// external DOIs have no XML endpoint at all.
func XMLURL(idType IdentifierType, id string) string {
	switch idType {
	case TypeJournalDOI, TypeArticleURL:
		articleID := ArticleID(idType, id)
		if articleID == "" {
			return ""
		}
		return JournalBase + "/article/" + articleID + "/download/xml/"
	default:
		return ""
	}
}

// LandingURL returns the doi.org resolver URL for a DOI.
func LandingURL(doi string) string {
	return DOIBase + doi
}

// CollectionID extracts the numeric collection id from a topical
// collection URL, defaulting to "280" when the URL carries none.
func CollectionID(collectionURL string) string {
	if m := collectionIDPattern.FindStringSubmatch(collectionURL); m != nil {
		return m[1]
	}
	return "280"
}

// Slug returns a filesystem-safe filename stem for the identifier.
func Slug(identifier string) string {
	id := strings.TrimSpace(identifier)
	if id == "" {
		return "unknown"
	}
	if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
		if m := articleIDPattern.FindStringSubmatch(id); m != nil {
			return "article-" + m[1]
		}
		h := sha256.Sum256([]byte(id))
		return fmt.Sprintf("url-%x", h[:8])
	}
	return strings.NewReplacer("/", "-", ":", "-").Replace(id)
}
