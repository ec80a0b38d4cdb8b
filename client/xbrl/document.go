package xbrl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
)

// ErrExtraction means the structured-data entry itself couldn't be
// parsed into a document tree. An individual missing fact is never an
// error, see Extract.
var ErrExtraction = errors.New("unreadable structured document")

type ContextKind int

const (
	KindUnknown ContextKind = iota
	KindInstant             // balance sheet snapshot, single point in time
	KindDuration            // income/cash-flow aggregate over a period
)

// Context is one temporal context definition of the filing.
type Context struct {
	ID   string
	Kind ContextKind
}

type factEntry struct {
	contextRef string
	value      string
}

// Document is the structured-data entry of one filing, reduced to what
// extraction needs: context definitions and fact occurrences keyed by
// their prefixed element name, both in document order.
type Document struct {
	contexts []Context
	facts    map[string][]factEntry
}

func (self *Document) Contexts() []Context { return self.contexts }

// ContextKind resolves the kind of a context reference. References to
// undeclared contexts, common in older filings, are classified by the
// conventional Instant/Duration marker in the identifier itself.
func (self *Document) ContextKind(id string) ContextKind {
	for i := range self.contexts {
		if self.contexts[i].ID == id {
			return self.contexts[i].Kind
		}
	}
	switch {
	case strings.Contains(id, "Instant"):
		return KindInstant
	case strings.Contains(id, "Duration"):
		return KindDuration
	}
	return KindUnknown
}

// ParseDocument parses an XBRL instance into a Document. The parser is
// attribute-aware and tolerates a missing XML declaration.
func ParseDocument(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	doc := &Document{facts: make(map[string][]factEntry)}
	doc.parseContexts(root)
	doc.parseFacts(root)
	return doc, nil
}

func (self *Document) parseContexts(root *xmlquery.Node) {
	for _, node := range xmlquery.Find(root, "//*[local-name()='context']") {
		id := node.SelectAttr("id")
		if id == "" {
			continue
		}
		self.contexts = append(self.contexts, Context{
			ID:   id,
			Kind: periodKind(node),
		})
	}
}

func periodKind(ctx *xmlquery.Node) ContextKind {
	period := xmlquery.FindOne(ctx, "*[local-name()='period']")
	if period == nil {
		return KindUnknown
	}
	if xmlquery.FindOne(period, "*[local-name()='instant']") != nil {
		return KindInstant
	}
	start := xmlquery.FindOne(period, "*[local-name()='startDate']")
	end := xmlquery.FindOne(period, "*[local-name()='endDate']")
	if start != nil && end != nil {
		return KindDuration
	}
	return KindUnknown
}

// parseFacts collects every element carrying a contextRef attribute.
// The same concept shows up under different namespace prefixes across
// taxonomy vintages, so facts are keyed by the prefixed name as written.
func (self *Document) parseFacts(root *xmlquery.Node) {
	for _, node := range xmlquery.Find(root, "//*[@contextRef]") {
		name := node.Data
		if node.Prefix != "" {
			name = node.Prefix + ":" + node.Data
		}
		self.facts[name] = append(self.facts[name], factEntry{
			contextRef: node.SelectAttr("contextRef"),
			value:      node.InnerText(),
		})
	}
}

func (self *Document) entries(tag string) []factEntry {
	return self.facts[tag]
}
