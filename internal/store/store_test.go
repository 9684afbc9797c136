// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mkirov/taxa-harvester/internal/harvest"
	"github.com/mkirov/taxa-harvester/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(types.StoreConfig{DataDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResults() []harvest.Result {
	return []harvest.Result{
		{
			Publication: types.Publication{DOI: "10.3897/rio.11.e174988", Title: "Monitoring protocol"},
			Taxa: []types.Taxon{
				{Genus: "Gluvia", Species: "dorsalis"},
				{Genus: "Erebia", Species: "cassioides"},
			},
			Method: harvest.MethodXML,
		},
		{
			Publication: types.Publication{DOI: "10.3897/rio.11.e163580", Title: "Distribution of Arca noae"},
			Taxa:        []types.Taxon{{Genus: "Gluvia", Species: "dorsalis"}},
			Method:      harvest.MethodTitle,
		},
		{
			Publication: types.Publication{DOI: "10.24072/pcjournal.517"},
			Method:      harvest.MethodNone,
			Err:         errors.New("no XML endpoint"),
		},
	}
}

func TestIngestAndTaxaQuery(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var buf bytes.Buffer
	summary := s.Ingest(ctx, sampleResults(), &buf)
	if summary.Stored != 3 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if !strings.Contains(buf.String(), "Index summary: 3 stored, 0 failed") {
		t.Errorf("summary line missing: %q", buf.String())
	}

	records, err := s.Taxa(ctx, "", 0)
	if err != nil {
		t.Fatalf("Taxa: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Gluvia dorsalis appears in two publications and ranks first.
	if records[0].Taxon != (types.Taxon{Genus: "Gluvia", Species: "dorsalis"}) || records[0].Publications != 2 {
		t.Errorf("records[0] = %+v", records[0])
	}
	if records[1].Taxon != (types.Taxon{Genus: "Erebia", Species: "cassioides"}) || records[1].Publications != 1 {
		t.Errorf("records[1] = %+v", records[1])
	}
}

func TestTaxaGenusFilterAndLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Ingest(ctx, sampleResults(), &bytes.Buffer{})

	records, err := s.Taxa(ctx, "Erebia", 0)
	if err != nil {
		t.Fatalf("Taxa: %v", err)
	}
	if len(records) != 1 || records[0].Taxon.Genus != "Erebia" {
		t.Errorf("genus filter records = %+v", records)
	}

	limited, err := s.Taxa(ctx, "", 1)
	if err != nil {
		t.Fatalf("Taxa: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d records", len(limited))
	}
}

func TestIngestReplacesEarlierRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Ingest(ctx, sampleResults(), &bytes.Buffer{})

	// Re-harvest of the first publication finds fewer taxa.
	rerun := []harvest.Result{{
		Publication: types.Publication{DOI: "10.3897/rio.11.e174988", Title: "Monitoring protocol"},
		Taxa:        []types.Taxon{{Genus: "Gluvia", Species: "dorsalis"}},
		Method:      harvest.MethodXML,
	}}
	s.Ingest(ctx, rerun, &bytes.Buffer{})

	records, err := s.Taxa(ctx, "Erebia", 0)
	if err != nil {
		t.Fatalf("Taxa: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("stale taxa survived re-ingest: %+v", records)
	}

	stats, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if stats.Publications != 3 {
		t.Errorf("Publications = %d, want 3 (upsert, not duplicate)", stats.Publications)
	}
}

func TestPublicationsFor(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Ingest(ctx, sampleResults(), &bytes.Buffer{})

	keys, err := s.PublicationsFor(ctx, types.Taxon{Genus: "Gluvia", Species: "dorsalis"})
	if err != nil {
		t.Fatalf("PublicationsFor: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("got %d publications, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "10.3897/rio.11.e") {
			t.Errorf("unexpected key %q", k)
		}
	}
}

func TestSummaryStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	s.Ingest(ctx, sampleResults(), &bytes.Buffer{})

	stats, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if stats.Publications != 3 || stats.DistinctTaxa != 2 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.ByMethod["xml"] != 1 || stats.ByMethod["title"] != 1 || stats.ByMethod["none"] != 1 {
		t.Errorf("ByMethod = %v", stats.ByMethod)
	}
}

func TestOpenCreatesIndexDirectory(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(types.StoreConfig{DataDir: filepath.Join(dir, "data")})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, err := s.Summary(context.Background()); err != nil {
		t.Errorf("Summary on fresh store: %v", err)
	}
}
