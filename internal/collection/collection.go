// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collection lists the publications of a journal topical
// collection by scraping its paginated listing pages.
package collection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mkirov/taxa-harvester/internal/httputil"
	"github.com/mkirov/taxa-harvester/internal/resolve"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

// browseBase is the journal's pagination endpoint. Declared as a var so
// tests can substitute an httptest server.
var browseBase = "https://riojournal.com/browse_topical_collection_documents.php"

const defaultMaxPages = 10

var (
	// pensoftDOIRe matches Pensoft DOI links (RIO and Arpha preprints).
	pensoftDOIRe = regexp.MustCompile(`doi\.org/(10\.3897/[^\s"'>]+)`)

	// anyDOIRe matches DOI links from any registrant, for publications
	// the collection hosts elsewhere (e.g. Peer Community Journal).
	anyDOIRe = regexp.MustCompile(`doi\.org/(10\.\d+/[^\s"'>]+)`)

	// articleHrefRe matches article page links.
	articleHrefRe = regexp.MustCompile(`/article/(\d+)`)

	// trailingPunctRe strips punctuation that listing markup glues onto
	// DOIs.
	trailingPunctRe = regexp.MustCompile(`[,;:)\]}]+$`)
)

// PageURL returns the listing URL for a page. Page 0 is the collection
// landing page itself; later pages go through the browse endpoint.
func PageURL(collectionURL, collectionID string, page int) string {
	if page == 0 {
		return collectionURL
	}
	return fmt.Sprintf("%s?journal_name=rio&collection_id=%s&lang=&journal_id=17&p=%d",
		browseBase, collectionID, page)
}

// FetchAll walks the paginated collection listing and returns every
// publication, deduplicated by DOI (or URL when no DOI is linked) with
// first occurrence kept. Pagination stops when a page lists nothing, when
// no next-page link exists, or at the MaxPages cap. Progress lines go to w.
func FetchAll(ctx context.Context, client *http.Client, cfg types.CollectionConfig, w io.Writer) ([]types.Publication, error) {
	collectionID := resolve.CollectionID(cfg.URL)
	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	var all []types.Publication
	for page := 0; ; page++ {
		if page > 0 && cfg.PageDelay > 0 {
			time.Sleep(cfg.PageDelay)
		}

		url := PageURL(cfg.URL, collectionID, page)
		fmt.Fprintf(w, "fetching page %d: %s\n", page+1, url)

		body, err := httputil.Fetch(ctx, client, url, cfg.HTTPConfig)
		if err != nil {
			return nil, fmt.Errorf("fetching listing page %d: %w", page+1, err)
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("parsing listing page %d: %w", page+1, err)
		}

		pubs := parsePage(doc)
		fmt.Fprintf(w, "  found %d publications\n", len(pubs))
		if len(pubs) == 0 {
			break
		}
		all = append(all, pubs...)

		if !hasNextPage(doc, page+1) {
			break
		}
		if page+1 >= maxPages {
			fmt.Fprintf(w, "  reached page cap (%d), stopping\n", maxPages)
			break
		}
	}

	return dedupe(all), nil
}

// parsePage extracts publications from one listing page in three passes:
// Pensoft DOI links, article page links the DOI scan missed, and DOI
// links from other registrants.
func parsePage(doc *goquery.Document) []types.Publication {
	var pubs []types.Publication

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		m := pensoftDOIRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		doi := trailingPunctRe.ReplaceAllString(m[1], "")
		pubs = append(pubs, types.Publication{
			DOI:   doi,
			URL:   resolve.LandingURL(doi),
			Title: linkTitle(link, "Publication "+doi),
		})
	})

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		if strings.Contains(href, "doi.org") {
			return
		}
		m := articleHrefRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		articleURL := href
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = resolve.JournalBase + articleURL
		}
		for _, p := range pubs {
			if p.URL == articleURL {
				return
			}
		}
		pubs = append(pubs, types.Publication{
			URL:       articleURL,
			ArticleID: m[1],
			Title:     linkTitle(link, "Article "+m[1]),
		})
	})

	doc.Find("a[href]").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		m := anyDOIRe.FindStringSubmatch(href)
		if m == nil {
			return
		}
		doi := trailingPunctRe.ReplaceAllString(m[1], "")
		if strings.HasPrefix(doi, "10.3897/") {
			return
		}
		for _, p := range pubs {
			if p.DOI == doi {
				return
			}
		}
		pubs = append(pubs, types.Publication{
			DOI:   doi,
			URL:   resolve.LandingURL(doi),
			Title: linkTitle(link, "Publication "+doi),
		})
	})

	return pubs
}

// linkTitle returns the anchor text, climbing to the nearest h3/h4/div
// ancestor when the anchor text is too short to be a title.
func linkTitle(link *goquery.Selection, fallback string) string {
	title := strings.TrimSpace(link.Text())
	if len(title) < 10 {
		if parent := link.Closest("h3, h4, div"); parent.Length() > 0 {
			title = strings.TrimSpace(parent.Text())
		}
	}
	if title == "" {
		return fallback
	}
	return title
}

// hasNextPage reports whether the page links to listing page n.
func hasNextPage(doc *goquery.Document, n int) bool {
	marker := fmt.Sprintf("p=%d", n)
	found := false
	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		if strings.Contains(href, marker) {
			found = true
			return false
		}
		return true
	})
	return found
}

// dedupe keeps the first occurrence per publication key.
func dedupe(pubs []types.Publication) []types.Publication {
	seen := make(map[string]bool, len(pubs))
	var out []types.Publication
	for _, p := range pubs {
		k := p.Key()
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, p)
	}
	return out
}
