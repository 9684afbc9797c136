// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package jats

import (
	"errors"
	"strings"
	"testing"
)

const sampleArticle = `<article xmlns:tp="http://www.plazi.org/taxpub">
  <front>
    <article-meta>
      <title-group>
        <article-title>The genome of <italic>Gluvia dorsalis</italic></article-title>
      </title-group>
    </article-meta>
  </front>
  <body>
    <p>First mention of
      <tp:taxon-name>
        <tp:taxon-name-part taxon-name-part-type="genus">Gluvia</tp:taxon-name-part>
        <tp:taxon-name-part taxon-name-part-type="species">dorsalis</tp:taxon-name-part>
      </tp:taxon-name>.
    </p>
    <p><italic>Gluvia</italic> is a sun spider genus.</p>
  </body>
</article>`

func TestParseAndFindAll(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Root.Local != "article" {
		t.Errorf("root = %q, want article", doc.Root.Local)
	}

	italics := doc.FindAll("", "italic")
	if len(italics) != 2 {
		t.Fatalf("len(italics) = %d, want 2", len(italics))
	}

	const tp = "http://www.plazi.org/taxpub"
	names := doc.FindAll(tp, "taxon-name")
	if len(names) != 1 {
		t.Fatalf("len(taxon-name) = %d, want 1", len(names))
	}
	parts := names[0].FindAll(tp, "taxon-name-part")
	if len(parts) != 2 {
		t.Fatalf("len(taxon-name-part) = %d, want 2", len(parts))
	}
	if got := parts[0].Attr("taxon-name-part-type"); got != "genus" {
		t.Errorf("first part type = %q, want genus", got)
	}
	if got := parts[1].Text(); got != "dorsalis" {
		t.Errorf("species text = %q, want dorsalis", got)
	}
}

func TestNamespaceMatching(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// Wrong namespace finds nothing.
	if got := doc.FindAll("http://example.com/other", "taxon-name"); len(got) != 0 {
		t.Errorf("wrong namespace matched %d elements", len(got))
	}
	// Empty namespace matches any.
	if got := doc.FindAll("", "taxon-name"); len(got) != 1 {
		t.Errorf("empty namespace matched %d elements, want 1", len(got))
	}
}

func TestTextFlattensMixedContent(t *testing.T) {
	doc, err := Parse(strings.NewReader(
		`<article><p>The <italic>Gluvia <bold>dorsalis</bold></italic> record.</p></article>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	italic := doc.Root.Find("", "italic")
	if italic == nil {
		t.Fatal("italic element not found")
	}
	if got := italic.Text(); got != "Gluvia dorsalis" {
		t.Errorf("Text = %q, want %q", got, "Gluvia dorsalis")
	}

	p := doc.Root.Find("", "p")
	if got := p.Text(); got != "The Gluvia dorsalis record." {
		t.Errorf("Text = %q, want %q", got, "The Gluvia dorsalis record.")
	}
}

func TestFindReturnsFirstInDocumentOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(
		`<article><sec><kwd>first</kwd></sec><kwd>second</kwd></article>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	kwd := doc.Root.Find("", "kwd")
	if kwd == nil || kwd.Text() != "first" {
		t.Errorf("Find returned %v, want the first kwd", kwd)
	}
}

func TestAttrAbsent(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<article id="a1"/>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := doc.Root.Attr("id"); got != "a1" {
		t.Errorf("Attr(id) = %q, want a1", got)
	}
	if got := doc.Root.Attr("missing"); got != "" {
		t.Errorf("Attr(missing) = %q, want empty", got)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unclosed element", `<article><p>text`},
		{"mismatched close", `<article><p>text</div></article>`},
		{"empty input", ``},
		{"plain text", `this is an HTML error page, not XML`},
		{"junk after root", `<article/><article/>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error type = %T, want *ParseError", err)
			}
		})
	}
}

func TestParseNamedEntities(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<article><p>Europe&rsquo;s fauna</p></article>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	p := doc.Root.Find("", "p")
	if got := p.Text(); !strings.Contains(got, "Europe") {
		t.Errorf("Text = %q, want the entity resolved in place", got)
	}
}
