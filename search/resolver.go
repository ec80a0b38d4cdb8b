package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/width"

	"github.com/dsh2dsh/edinet/client"
)

const (
	// Stop scanning once this many distinct companies matched.
	defaultMinCompanies = 1

	// Date budget of one resolution call. Discovery is heuristic and
	// bounded: exhausting the budget without a match is an empty result,
	// not an error.
	defaultMaxDates = 10
)

// Company is one resolved company candidate, deduplicated by its stable
// EDINET code. Immutable once returned.
type Company struct {
	EdinetCode     string    `json:"edinetCode"`
	FilerName      string    `json:"filerName"`
	SubmitterName  string    `json:"submitterName,omitempty"`
	SecuritiesCode string    `json:"securitiesCode,omitempty"`
	JCN            string    `json:"jcn,omitempty"`
	LastSeen       time.Time `json:"lastSeen"`
}

type DocumentLister interface {
	ListDocuments(ctx context.Context, date time.Time) ([]client.Document,
		error)
}

func NewResolver(edinet DocumentLister) *Resolver {
	return &Resolver{
		edinet:  edinet,
		planner: NewPlanner(),
		log:     slog.Default(),

		minCompanies: defaultMinCompanies,
		maxDates:     defaultMaxDates,
	}
}

// Resolver finds companies matching a fuzzy name by scanning recent
// submission dates. It owns its candidate accumulation exclusively for
// the duration of one Resolve call; nothing is shared across calls.
type Resolver struct {
	edinet  DocumentLister
	planner *Planner
	log     *slog.Logger

	minCompanies int
	maxDates     int
}

func (self *Resolver) WithPlanner(p *Planner) *Resolver {
	self.planner = p
	return self
}

func (self *Resolver) WithLogger(l *slog.Logger) *Resolver {
	self.log = l
	return self
}

func (self *Resolver) WithMinCompanies(n int) *Resolver {
	self.minCompanies = n
	return self
}

func (self *Resolver) WithMaxDates(n int) *Resolver {
	self.maxDates = n
	return self
}

// Resolve scans the recent-window plan for filings whose filer or
// submitter name matches query. An authorization failure aborts the
// whole resolution; a transient failure on one date is logged and the
// scan continues. An empty result within budget is not an error.
func (self *Resolver) Resolve(ctx context.Context, query string,
) ([]Company, error) {
	companies := make(map[string]*Company)
	var order []string

	dates := self.planner.RecentWindow()
	if len(dates) > self.maxDates {
		dates = dates[:self.maxDates]
	}

	for _, date := range dates {
		docs, err := self.edinet.ListDocuments(ctx, date)
		if err != nil {
			if client.IsAuthError(err) {
				return nil, fmt.Errorf("resolve %q: %w", query, err)
			}
			self.log.Warn("skip search date",
				slog.Time("date", date), slog.Any("error", err))
			continue
		}

		for i := range docs {
			doc := &docs[i]
			if !doc.PeriodicReport() || !matchesName(doc, query) {
				continue
			}
			if known, ok := companies[doc.EdinetCode]; ok {
				refreshCompany(known, doc)
				continue
			}
			companies[doc.EdinetCode] = newCompany(doc, date)
			order = append(order, doc.EdinetCode)
		}

		if len(companies) >= self.minCompanies {
			break
		}
	}

	resolved := make([]Company, len(order))
	for i, code := range order {
		resolved[i] = *companies[code]
	}
	return resolved, nil
}

func newCompany(doc *client.Document, seen time.Time) *Company {
	return &Company{
		EdinetCode:     doc.EdinetCode,
		FilerName:      doc.FilerName,
		SubmitterName:  doc.SubmitterName,
		SecuritiesCode: doc.SecuritiesCode,
		JCN:            doc.JCN,
		LastSeen:       seen,
	}
}

// refreshCompany fills fields a later sighting knows and the first one
// didn't. First-seen wins for everything already set.
func refreshCompany(c *Company, doc *client.Document) {
	if c.SubmitterName == "" {
		c.SubmitterName = doc.SubmitterName
	}
	if c.SecuritiesCode == "" {
		c.SecuritiesCode = doc.SecuritiesCode
	}
	if c.JCN == "" {
		c.JCN = doc.JCN
	}
}

// matchesName tests the filer and submitter names against query with
// three layers: case-insensitive substring, substring after stripping
// legal-entity suffixes, substring after width folding. Any layer on
// either field matches.
func matchesName(doc *client.Document, query string) bool {
	for _, name := range []string{doc.FilerName, doc.SubmitterName} {
		if name == "" {
			continue
		}
		if matchName(name, query) {
			return true
		}
	}
	return false
}

func matchName(name, query string) bool {
	name, query = strings.ToLower(name), strings.ToLower(query)
	if strings.Contains(name, query) {
		return true
	}
	if q := stripLegalSuffixes(query); q != "" &&
		strings.Contains(stripLegalSuffixes(name), q) {
		return true
	}
	if q := foldName(query); q != "" && strings.Contains(foldName(name), q) {
		return true
	}
	return false
}

// Common legal-entity designations, Japanese and transliterated.
var legalSuffixes = []string{
	"株式会社", "(株)", "㈱", "合同会社", "有限会社",
	"co., ltd.", "co.,ltd.", "co., ltd", "co.,ltd", "corporation",
	"corp.", "inc.", "ltd.", "k.k.",
}

func stripLegalSuffixes(s string) string {
	for _, suffix := range legalSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	return strings.TrimSpace(s)
}

// foldName normalizes half/full width variants: archive names mix
// full-width latin and half-width katakana freely.
func foldName(s string) string {
	return strings.ToLower(width.Fold.String(stripLegalSuffixes(s)))
}
