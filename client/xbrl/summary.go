package xbrl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Column headers of the tabular summary entry. The file is UTF-16LE,
// tab separated, one row per fact.
const (
	summaryColElement = "要素ID"
	summaryColContext = "コンテキストID"
	summaryColPeriod  = "期間・時点"
	summaryColValue   = "値"

	summaryPeriodInstant  = "時点"
	summaryPeriodDuration = "期間"
)

// Default column positions when the header row doesn't name the needed
// columns.
const (
	summaryIdxElement = 0
	summaryIdxContext = 2
	summaryIdxPeriod  = 5
	summaryIdxValue   = 8
)

// ParseSummary parses the tabular fallback format into a Document. The
// rows carry the same prefixed element ids and context identifiers as
// the XBRL instance, so extraction works on either source unchanged.
func ParseSummary(r io.Reader) (*Document, error) {
	decoded := transform.NewReader(r, unicode.UTF16(
		unicode.LittleEndian, unicode.UseBOM).NewDecoder())

	cr := csv.NewReader(decoded)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read summary header: %w", ErrExtraction, err)
	}
	cols := summaryColumns(header)

	doc := &Document{facts: make(map[string][]factEntry)}
	seenCtx := make(map[string]struct{})

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%w: read summary row: %w", ErrExtraction, err)
		}
		doc.addSummaryRow(row, cols, seenCtx)
	}

	return doc, nil
}

type summaryCols struct {
	element, context, period, value int
}

func summaryColumns(header []string) summaryCols {
	cols := summaryCols{
		element: summaryIdxElement,
		context: summaryIdxContext,
		period:  summaryIdxPeriod,
		value:   summaryIdxValue,
	}
	for i, name := range header {
		switch strings.TrimSpace(strings.Trim(name, "\ufeff\"")) {
		case summaryColElement:
			cols.element = i
		case summaryColContext:
			cols.context = i
		case summaryColPeriod:
			cols.period = i
		case summaryColValue:
			cols.value = i
		}
	}
	return cols
}

func (self *Document) addSummaryRow(row []string, cols summaryCols,
	seenCtx map[string]struct{},
) {
	field := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(strings.Trim(row[i], `"`))
		}
		return ""
	}

	element, ctxID := field(cols.element), field(cols.context)
	if element == "" || ctxID == "" {
		return
	}

	if _, ok := seenCtx[ctxID]; !ok {
		seenCtx[ctxID] = struct{}{}
		self.contexts = append(self.contexts, Context{
			ID:   ctxID,
			Kind: summaryPeriodKind(field(cols.period), ctxID),
		})
	}

	self.facts[element] = append(self.facts[element], factEntry{
		contextRef: ctxID,
		value:      field(cols.value),
	})
}

func summaryPeriodKind(period, ctxID string) ContextKind {
	switch period {
	case summaryPeriodInstant:
		return KindInstant
	case summaryPeriodDuration:
		return KindDuration
	}
	switch {
	case strings.Contains(ctxID, "Instant"):
		return KindInstant
	case strings.Contains(ctxID, "Duration"):
		return KindDuration
	}
	return KindUnknown
}
