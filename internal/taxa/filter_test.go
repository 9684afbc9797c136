// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package taxa

import (
	"reflect"
	"testing"

	"github.com/mkirov/taxa-harvester/pkg/types"
)

func TestDedupeOrderPreserving(t *testing.T) {
	in := []types.Taxon{
		{Genus: "Arca", Species: "noae"},
		{Genus: "Lepus", Species: "timidus"},
		{Genus: "Arca", Species: "noae"},
	}
	want := []types.Taxon{
		{Genus: "Arca", Species: "noae"},
		{Genus: "Lepus", Species: "timidus"},
	}

	got := Dedupe(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedupe = %v, want %v", got, want)
	}
}

func TestDedupeIdempotent(t *testing.T) {
	in := []types.Taxon{
		{Genus: "Arca", Species: "noae"},
		{Genus: "Lepus", Species: "timidus"},
		{Genus: "Arca", Species: "noae"},
		{Genus: "Lepus", Species: "timidus"},
	}

	once := Dedupe(in)
	twice := Dedupe(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Dedupe is not a fixed point: %v then %v", once, twice)
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); got != nil {
		t.Errorf("Dedupe(nil) = %v, want nil", got)
	}
}

func TestWellFormed(t *testing.T) {
	tests := []struct {
		name  string
		taxon types.Taxon
		want  bool
	}{
		{"valid binomial", types.Taxon{Genus: "Lepus", Species: "timidus"}, true},
		{"single-letter species", types.Taxon{Genus: "Arca", Species: "n"}, false},
		{"two-letter species", types.Taxon{Genus: "Arca", Species: "no"}, false},
		{"three-letter species", types.Taxon{Genus: "Arca", Species: "fax"}, true},
		{"uppercase species", types.Taxon{Genus: "Arca", Species: "N"}, false},
		{"lowercase genus", types.Taxon{Genus: "lepus", Species: "timidus"}, false},
		{"all-caps genus", types.Taxon{Genus: "ERGA", Species: "timidus"}, false},
		{"hyphenated genus", types.Taxon{Genus: "Hawk-moth", Species: "porcellus"}, false},
		{"abbreviated genus", types.Taxon{Genus: "E.", Species: "cassioides"}, false},
		{"empty genus", types.Taxon{Genus: "", Species: "timidus"}, false},
		{"empty species", types.Taxon{Genus: "Lepus", Species: ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := wellFormed(tt.taxon); got != tt.want {
				t.Errorf("wellFormed(%v) = %v, want %v", tt.taxon, got, tt.want)
			}
		})
	}
}

func TestFilterDocumentTrimsAndDrops(t *testing.T) {
	in := []types.Taxon{
		{Genus: "  Gluvia ", Species: " dorsalis "},
		{Genus: "", Species: "dorsalis"},
		{Genus: "Arca", Species: "  "},
		{Genus: "Arca", Species: "N"},
		{Genus: "Gluvia", Species: "dorsalis"},
	}
	want := []types.Taxon{{Genus: "Gluvia", Species: "dorsalis"}}

	got := filterDocument(in)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("filterDocument = %v, want %v", got, want)
	}
}
