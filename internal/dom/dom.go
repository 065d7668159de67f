// Package dom provides a small read-only query interface over a page snapshot.
// Absent elements are represented by a non-nil Element so lookups can be
// chained without nil checks.
package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Element is a single node (or the absence of one) within a snapshot.
type Element interface {
	// Exists reports whether the element is present in the document.
	Exists() bool
	// Text returns the trimmed text content of the element, or "" when absent.
	Text() string
	// First returns the first descendant matching selector.
	First(selector string) Element
	// All returns every descendant matching selector in document order.
	All(selector string) []Element
	// Parent returns the parent element.
	Parent() Element
}

// Snapshot is a captured page: its document root and the location it was read from.
type Snapshot interface {
	Root() Element
	Location() string
}

// ParseError represents a failure to parse an HTML document
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dom parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("dom parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

type snapshot struct {
	root     Element
	location string
}

func (s *snapshot) Root() Element { return s.root }
func (s *snapshot) Location() string { return s.location }

// FromHTML parses html into a snapshot taken at location.
func FromHTML(html, location string) (Snapshot, error) {
	return FromReader(strings.NewReader(html), location)
}

// FromReader parses an HTML document from r into a snapshot taken at location.
func FromReader(r io.Reader, location string) (Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, &ParseError{Message: "failed to parse HTML", Cause: err}
	}
	return &snapshot{root: wrap(doc.Selection), location: location}, nil
}

// Empty returns a snapshot that contains no elements.
func Empty(location string) Snapshot {
	return &snapshot{root: absent{}, location: location}
}

// selection adapts a goquery selection holding at least one node.
type selection struct {
	sel *goquery.Selection
}

func wrap(sel *goquery.Selection) Element {
	if sel == nil || sel.Length() == 0 {
		return absent{}
	}
	return selection{sel: sel.First()}
}

func (s selection) Exists() bool { return true }

func (s selection) Text() string {
	return strings.TrimSpace(s.sel.Text())
}

func (s selection) First(selector string) Element {
	return wrap(s.sel.Find(selector))
}

func (s selection) All(selector string) []Element {
	found := s.sel.Find(selector)
	elements := make([]Element, 0, found.Length())
	found.Each(func(_ int, item *goquery.Selection) {
		elements = append(elements, selection{sel: item})
	})
	return elements
}

func (s selection) Parent() Element {
	return wrap(s.sel.Parent())
}

// absent is the element returned when a lookup matches nothing.
type absent struct{}

func (absent) Exists() bool { return false }
func (absent) Text() string { return "" }
func (absent) First(string) Element { return absent{} }
func (absent) All(string) []Element { return []Element{} }
func (absent) Parent() Element { return absent{} }
