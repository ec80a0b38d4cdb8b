// Package facts retrieves the normalized financial facts of a company
// for requested fiscal years from the EDINET archive, which is indexed
// by submission date only.
package facts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dsh2dsh/edinet/client"
	"github.com/dsh2dsh/edinet/client/xbrl"
	"github.com/dsh2dsh/edinet/search"
)

// Date budgets of one fiscal-year retrieval: the fiscal-season plan
// first, then the exhaustive month-end sweep as a last resort.
const (
	fiscalDatesBudget = 12
	sweepDatesBudget  = 24
)

type Client interface {
	ListDocuments(ctx context.Context, date time.Time) ([]client.Document,
		error)
	FetchDocument(ctx context.Context, docID string) (*client.Payload, error)
}

func NewService(edinet Client) *Service {
	return &Service{
		edinet:   edinet,
		planner:  search.NewPlanner(),
		resolver: search.NewResolver(edinet),
		log:      slog.Default(),
		procs:    1,
	}
}

// Service is the surface consumed by external collaborators: company
// resolution and fiscal-year fact retrieval. One Service shares one
// rate-limited client; no other state crosses call boundaries.
type Service struct {
	edinet   Client
	planner  *search.Planner
	resolver *search.Resolver
	log      *slog.Logger

	procs int
}

func (self *Service) WithPlanner(p *search.Planner) *Service {
	self.planner = p
	self.resolver.WithPlanner(p)
	return self
}

func (self *Service) WithLogger(l *slog.Logger) *Service {
	self.log = l
	self.resolver.WithLogger(l)
	return self
}

// WithProcsLimit allows up to n concurrent year lookups in
// MultiYearFacts. They all share the client's limiter, so the effective
// request rate never exceeds the configured ceiling.
func (self *Service) WithProcsLimit(n int) *Service {
	self.procs = n
	return self
}

func (self *Service) Resolver() *search.Resolver { return self.resolver }

// ResolveCompany finds companies matching a fuzzy name. Discovery is
// heuristic and bounded by the resolver's date budget.
func (self *Service) ResolveCompany(ctx context.Context, query string,
) ([]search.Company, error) {
	return self.resolver.Resolve(ctx, query)
}

// FiscalYearFacts locates the best filing of one fiscal year and
// extracts its financial facts. A *NotFoundError after exhausting the
// date budget is the year's terminal non-fatal outcome.
func (self *Service) FiscalYearFacts(ctx context.Context, edinetCode string,
	year int,
) (*xbrl.FactSet, error) {
	run := &yearRun{
		edinet:     self.edinet,
		log:        self.log,
		edinetCode: edinetCode,
		year:       year,
		dates:      self.planDates(year),
	}

	facts, err := run.run(ctx)
	if err != nil {
		return nil, err
	}
	facts.Metadata = run.metadata()
	return facts, nil
}

// planDates builds one year's probe sequence: the fiscal-season plan,
// then whatever the exhaustive sweep adds, each within its budget.
func (self *Service) planDates(year int) []time.Time {
	dates := self.planner.FiscalYear(year)
	if len(dates) > fiscalDatesBudget {
		dates = dates[:fiscalDatesBudget]
	}

	planned := make(map[time.Time]struct{}, len(dates))
	for _, d := range dates {
		planned[d] = struct{}{}
	}

	sweep := 0
	for _, d := range self.planner.Exhaustive(year) {
		if sweep >= sweepDatesBudget {
			break
		}
		if _, ok := planned[d]; ok {
			continue
		}
		dates = append(dates, d)
		sweep++
	}

	return dates
}

// YearResult is one year of a multi-year batch. Failed years carry their
// error; they never abort the batch.
type YearResult struct {
	Year  int           `json:"year"`
	Facts *xbrl.FactSet `json:"facts,omitempty"`
	Err   error         `json:"-"`
}

// MultiYearFacts retrieves facts for every requested fiscal year,
// collecting partial results past per-year failures. Only an
// authorization failure aborts the whole batch.
func (self *Service) MultiYearFacts(ctx context.Context, edinetCode string,
	years []int,
) ([]YearResult, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(self.procs)

	results := make([]YearResult, len(years))
	for i, year := range years {
		i, year := i, year
		g.Go(func() error {
			facts, err := self.FiscalYearFacts(ctx, edinetCode, year)
			if err != nil {
				if client.IsAuthError(err) {
					return err
				}
				self.log.Warn("fiscal year failed", slog.Int("year", year),
					slog.Any("error", err))
			}
			results[i] = YearResult{Year: year, Facts: facts, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("multi year facts of %v: %w", edinetCode, err)
	}
	return results, nil
}
