// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package jats parses article XML into a minimal element tree that the
// extraction heuristics can search by tag name and namespace. It keeps
// only what the locator needs: descendant lookup, attribute lookup, and
// text concatenation in document order.
package jats

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// ParseError reports malformed article markup. A single bad document is a
// per-publication failure, not a pipeline abort, so callers check for it
// and continue with the next article.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing article XML: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Element is one XML element. Child elements and text chunks are kept in
// a single ordered node list so Text reassembles mixed content correctly.
type Element struct {
	// Space is the resolved namespace URI; empty for elements without one.
	Space string

	// Local is the tag name without prefix.
	Local string

	attrs []xml.Attr
	nodes []any // *Element or string
}

// Document is a parsed article.
type Document struct {
	Root *Element
}

// Parse reads an XML document into a Document. Malformed markup returns a
// *ParseError wrapping the decoder diagnostic.
func Parse(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	// Pensoft XML carries named entities from its DTD.
	dec.Entity = xml.HTMLEntity

	var root *Element
	var stack []*Element

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{
				Space: t.Name.Space,
				Local: t.Name.Local,
				attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &ParseError{Err: fmt.Errorf("junk after document element <%s>", root.Local)}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.nodes = append(parent.nodes, el)
			}
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				cur := stack[len(stack)-1]
				cur.nodes = append(cur.nodes, string(t))
			}
		}
	}

	if root == nil {
		return nil, &ParseError{Err: fmt.Errorf("no document element")}
	}
	return &Document{Root: root}, nil
}

// Attr returns the value of the named attribute, or "" when absent.
// Attribute namespaces are ignored; article markup qualifies elements,
// not attributes.
func (e *Element) Attr(name string) string {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// matches reports whether the element has the given tag. An empty space
// matches any namespace, since journal XML may or may not carry a default
// xmlns; a non-empty space must match exactly.
func (e *Element) matches(space, local string) bool {
	if e.Local != local {
		return false
	}
	return space == "" || e.Space == space
}

// FindAll returns all descendants of e (excluding e itself) with the
// given tag, in document order.
func (e *Element) FindAll(space, local string) []*Element {
	var found []*Element
	for _, n := range e.nodes {
		child, ok := n.(*Element)
		if !ok {
			continue
		}
		if child.matches(space, local) {
			found = append(found, child)
		}
		found = append(found, child.FindAll(space, local)...)
	}
	return found
}

// Find returns the first matching descendant, or nil.
func (e *Element) Find(space, local string) *Element {
	for _, n := range e.nodes {
		child, ok := n.(*Element)
		if !ok {
			continue
		}
		if child.matches(space, local) {
			return child
		}
		if sub := child.Find(space, local); sub != nil {
			return sub
		}
	}
	return nil
}

// Text returns the concatenation of all text in e and its descendants,
// in document order.
func (e *Element) Text() string {
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	for _, n := range e.nodes {
		switch v := n.(type) {
		case string:
			b.WriteString(v)
		case *Element:
			v.writeText(b)
		}
	}
}

// FindAll searches the whole document, including the root element itself.
func (d *Document) FindAll(space, local string) []*Element {
	var found []*Element
	if d.Root.matches(space, local) {
		found = append(found, d.Root)
	}
	return append(found, d.Root.FindAll(space, local)...)
}
