// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package harvest runs the extraction pipeline over publications:
// fetch article XML, extract taxa from it, and fall back to title
// heuristics when no XML is available.
package harvest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.yaml.in/yaml/v3"

	"github.com/mkirov/taxa-harvester/internal/httputil"
	"github.com/mkirov/taxa-harvester/internal/jats"
	"github.com/mkirov/taxa-harvester/internal/resolve"
	"github.com/mkirov/taxa-harvester/internal/taxa"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

const (
	xmlDir      = "xml"
	metadataDir = "metadata"
)

// Method records which extraction mode produced a publication's taxa.
type Method string

const (
	MethodXML   Method = "xml"
	MethodTitle Method = "title"
	MethodNone  Method = "none"
)

// Result holds the outcome of extracting one publication.
type Result struct {
	Publication types.Publication
	Taxa        []types.Taxon
	Method      Method
	Err         error
}

// Summary holds the outcome of a harvest run.
type Summary struct {
	Extracted int // taxa found in article XML
	Fallback  int // taxa found via title heuristics
	Empty     int // no taxa found, no error
	Failed    int // XML unavailable and title yielded nothing
	Results   []Result
}

// Total returns the number of publications processed.
func (s Summary) Total() int {
	return s.Extracted + s.Fallback + s.Empty + s.Failed
}

// HasFailures reports whether any publications failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}

// Harvester extracts taxa from publications, caching article XML on disk.
type Harvester struct {
	Client     *http.Client
	Config     types.HarvestConfig
	Exclusions taxa.ExclusionSet
}

// New builds a Harvester, loading the title-mode exclusion list from
// Config.ExclusionsFile (built-in defaults when the path is empty).
func New(client *http.Client, cfg types.HarvestConfig) (*Harvester, error) {
	excl, err := taxa.LoadExclusions(cfg.ExclusionsFile)
	if err != nil {
		return nil, fmt.Errorf("loading exclusions: %w", err)
	}
	return &Harvester{Client: client, Config: cfg, Exclusions: excl}, nil
}

// Run processes publications in order, printing per-item status and
// returning a summary. It continues after individual failures and applies
// a delay between consecutive fetches.
func (h *Harvester) Run(ctx context.Context, pubs []types.Publication, w io.Writer) Summary {
	var summary Summary
	for i, pub := range pubs {
		if i > 0 && h.Config.FetchDelay > 0 {
			time.Sleep(h.Config.FetchDelay)
		}

		r := h.ExtractPublication(ctx, pub, w)
		switch {
		case r.Err != nil:
			fmt.Fprintf(w, "failed:  %s (%v)\n", pub.Key(), r.Err)
			summary.Failed++
		case r.Method == MethodXML:
			fmt.Fprintf(w, "xml:     %s (%d taxa)\n", pub.Key(), len(r.Taxa))
			summary.Extracted++
		case r.Method == MethodTitle:
			fmt.Fprintf(w, "title:   %s (%d taxa)\n", pub.Key(), len(r.Taxa))
			summary.Fallback++
		default:
			fmt.Fprintf(w, "empty:   %s\n", pub.Key())
			summary.Empty++
		}

		if err := h.writeMetadata(r); err != nil {
			fmt.Fprintf(w, "  warning: writing metadata: %v\n", err)
		}
		summary.Results = append(summary.Results, r)
	}
	fmt.Fprintf(w, "\nHarvest summary: %d from XML, %d from titles, %d empty, %d failed (total: %d)\n",
		summary.Extracted, summary.Fallback, summary.Empty, summary.Failed, summary.Total())
	return summary
}

// ExtractPublication runs the two extraction modes for one publication:
// article XML when an endpoint can be resolved, then title heuristics
// when the XML mode fails or finds nothing. Err is set only when the XML
// mode errored and the title produced no taxa either.
func (h *Harvester) ExtractPublication(ctx context.Context, pub types.Publication, w io.Writer) Result {
	r := Result{Publication: pub, Method: MethodNone}

	found, xmlErr := h.xmlTaxa(ctx, pub)
	if xmlErr == nil && len(found) > 0 {
		r.Taxa = found
		r.Method = MethodXML
		return r
	}
	if xmlErr != nil {
		fmt.Fprintf(w, "  note: XML mode unavailable for %s: %v\n", pub.Key(), xmlErr)
	}

	if fromTitle := taxa.FromTitle(pub.Title, h.Exclusions); len(fromTitle) > 0 {
		r.Taxa = fromTitle
		r.Method = MethodTitle
		return r
	}

	r.Err = xmlErr
	return r
}

// ExtractIdentifier builds a publication record from a bare identifier
// (DOI or article URL) and extracts its taxa. With no title on record the
// fallback mode has nothing to work with, so only the XML mode applies.
func (h *Harvester) ExtractIdentifier(ctx context.Context, identifier string, w io.Writer) (Result, error) {
	idType, id := resolve.Classify(identifier)
	if idType == resolve.TypeUnknown {
		return Result{}, fmt.Errorf("unrecognized identifier format: %q", identifier)
	}

	var pub types.Publication
	if idType == resolve.TypeArticleURL {
		pub.URL = id
		pub.ArticleID = resolve.ArticleID(idType, id)
	} else {
		pub.DOI = id
		pub.URL = resolve.LandingURL(id)
	}
	return h.ExtractPublication(ctx, pub, w), nil
}

// xmlTaxa fetches and parses the publication's article XML and extracts
// taxa from the parsed document.
func (h *Harvester) xmlTaxa(ctx context.Context, pub types.Publication) ([]types.Taxon, error) {
	data, err := h.fetchXML(ctx, pub)
	if err != nil {
		return nil, err
	}
	doc, err := jats.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing article XML for %s: %w", pub.Key(), err)
	}
	return taxa.FromDocument(doc), nil
}

// fetchXML returns the publication's article XML, reading the disk cache
// when present. Journal DOIs and article URLs resolve to a direct download
// endpoint; preprint DOIs are resolved by scanning their landing page for
// an XML link. External DOIs have no endpoint.
func (h *Harvester) fetchXML(ctx context.Context, pub types.Publication) ([]byte, error) {
	idType, id := resolve.Classify(pub.Key())
	if idType == resolve.TypeUnknown {
		return nil, fmt.Errorf("unrecognized identifier format: %q", pub.Key())
	}

	cachePath := filepath.Join(h.Config.DataDir, xmlDir, resolve.Slug(id)+".xml")
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	xmlURL := resolve.XMLURL(idType, id)
	if xmlURL == "" && idType == resolve.TypePreprintDOI {
		discovered, err := h.discoverXMLLink(ctx, resolve.LandingURL(id))
		if err != nil {
			return nil, fmt.Errorf("resolving preprint %s: %w", id, err)
		}
		xmlURL = discovered
	}
	if xmlURL == "" {
		return nil, fmt.Errorf("no XML endpoint for %s (%s)", pub.Key(), idType)
	}

	data, err := httputil.Fetch(ctx, h.Client, xmlURL, h.Config.HTTPConfig)
	if err != nil {
		return nil, fmt.Errorf("fetching article XML: %w", err)
	}
	if err := writeAtomic(cachePath, data); err != nil {
		return nil, fmt.Errorf("caching article XML: %w", err)
	}
	return data, nil
}

// discoverXMLLink fetches a landing page and returns the first XML
// download link on it, resolved against the page URL.
func (h *Harvester) discoverXMLLink(ctx context.Context, pageURL string) (string, error) {
	body, err := httputil.Fetch(ctx, h.Client, pageURL, h.Config.HTTPConfig)
	if err != nil {
		return "", err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing landing page: %w", err)
	}

	var link string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if strings.HasSuffix(href, ".xml") || strings.Contains(href, "/download/xml") {
			link = href
			return false
		}
		return true
	})
	if link == "" {
		return "", fmt.Errorf("no XML link on landing page %s", pageURL)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("malformed XML link %q: %w", link, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// metadataRecord is the per-publication YAML record written alongside the
// XML cache.
type metadataRecord struct {
	DOI         string   `yaml:"doi,omitempty"`
	URL         string   `yaml:"url"`
	Title       string   `yaml:"title,omitempty"`
	Method      string   `yaml:"method"`
	Taxa        []string `yaml:"taxa"`
	HarvestedAt string   `yaml:"harvested_at"`
	Error       string   `yaml:"error,omitempty"`
}

func (h *Harvester) writeMetadata(r Result) error {
	rec := metadataRecord{
		DOI:         r.Publication.DOI,
		URL:         r.Publication.URL,
		Title:       r.Publication.Title,
		Method:      string(r.Method),
		Taxa:        make([]string, 0, len(r.Taxa)),
		HarvestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	for _, t := range r.Taxa {
		rec.Taxa = append(rec.Taxa, t.String())
	}
	if r.Err != nil {
		rec.Error = r.Err.Error()
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling metadata: %w", err)
	}
	path := filepath.Join(h.Config.DataDir, metadataDir, resolve.Slug(r.Publication.Key())+".yaml")
	return writeAtomic(path, data)
}

// writeAtomic writes data to path via a temporary file in the same
// directory, creating the directory if needed.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".harvest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, writeErr := tmpFile.Write(data)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
