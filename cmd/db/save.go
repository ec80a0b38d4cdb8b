package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dsh2dsh/edinet/client"
	"github.com/dsh2dsh/edinet/client/xbrl"
	"github.com/dsh2dsh/edinet/facts"
	"github.com/dsh2dsh/edinet/internal/repo"
)

func NewSave(service *facts.Service, repo Repo) *Save {
	return &Save{
		service: service,
		repo:    repo,

		knownCompanies: newCompanies(),

		years: 1,
		procs: 1,
		log:   slog.Default(),
	}
}

type Repo interface {
	AddCompany(ctx context.Context, edinetCode, name string) (bool, error)
	FilingChanged(ctx context.Context, docID string, hash uint64) (bool, error)
	SaveFiling(ctx context.Context, filing repo.Filing, length int,
		next func(i int) (repo.FactValue, error)) (uint32, error)
}

// Save resolves companies by name and stores their latest fiscal-year
// facts. It writes extracted results only; resolution and extraction
// never read the warehouse back.
type Save struct {
	service *facts.Service
	repo    Repo

	knownCompanies companies

	years int
	procs int
	log   *slog.Logger
}

func (self *Save) WithYears(n int) *Save {
	self.years = n
	return self
}

func (self *Save) WithProcsLimit(n int) *Save {
	self.procs = n
	return self
}

func (self *Save) WithLogger(l *slog.Logger) *Save {
	self.log = l
	self.service.WithLogger(l)
	return self
}

func (self *Save) Save(ctx context.Context, queries []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(self.procs)

	for _, query := range queries {
		query := query
		g.Go(func() error { return self.saveQuery(ctx, query) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("save companies: %w", err)
	}
	return nil
}

func (self *Save) saveQuery(ctx context.Context, query string) error {
	matched, err := self.service.ResolveCompany(ctx, query)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", query, err)
	} else if len(matched) == 0 {
		self.log.Warn("nothing matched", slog.String("query", query))
		return nil
	}

	company := &matched[0]
	log := self.log.With(slog.String("edinetCode", company.EdinetCode))
	log.Info("resolved", slog.String("query", query),
		slog.String("filerName", company.FilerName))

	err = self.knownCompanies.Add(company.EdinetCode, func() error {
		_, err := self.repo.AddCompany(ctx, company.EdinetCode,
			company.FilerName)
		return err
	})
	if err != nil {
		return err
	}

	return self.saveYearFacts(ContextWithLogger(ctx, log), company.EdinetCode)
}

func (self *Save) saveYearFacts(ctx context.Context, edinetCode string,
) error {
	lastYear := time.Now().Year() - 1
	years := make([]int, self.years)
	for i := range years {
		years[i] = lastYear - i
	}

	results, err := self.service.MultiYearFacts(ctx, edinetCode, years)
	if err != nil {
		return err
	}

	log := ContextLogger(ctx, self.log)
	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Facts == nil {
			log.Warn("skip fiscal year", slog.Int("year", r.Year),
				slog.Any("error", r.Err))
			continue
		}
		if err := self.storeYear(ctx, edinetCode, r.Year, r.Facts); err != nil {
			return err
		}
	}
	return nil
}

func (self *Save) storeYear(ctx context.Context, edinetCode string, year int,
	fs *xbrl.FactSet,
) error {
	log := ContextLogger(ctx, self.log).With(slog.Int("year", year))
	descrHash := xxhash.Sum64String(fs.Metadata.Description)

	changed, err := self.repo.FilingChanged(ctx, fs.Metadata.DocID, descrHash)
	if err != nil {
		return err
	} else if !changed {
		log.Info("filing unchanged", slog.String("docID", fs.Metadata.DocID))
		return nil
	}

	filing := repo.Filing{
		EdinetCode: edinetCode,
		DocID:      fs.Metadata.DocID,
		FiscalYear: year,
		FormCode:   fs.Metadata.FormCode,
		Descr:      fs.Metadata.Description,
		DescrHash:  descrHash,
	}
	if d, err := client.ParseSubmitDate(fs.Metadata.SubmitDate); err == nil {
		filing.WithSubmitDate(d)
	}

	values := factValues(fs)
	filingId, err := self.repo.SaveFiling(ctx, filing, len(values),
		func(i int) (repo.FactValue, error) { return values[i], nil })
	if err != nil {
		return err
	}

	log.Info("stored", slog.String("docID", fs.Metadata.DocID),
		slog.Any("filingId", filingId), slog.Int("values", len(values)))
	return nil
}

func factValues(fs *xbrl.FactSet) []repo.FactValue {
	statements := []struct {
		name  string
		items map[xbrl.Item]*float64
	}{
		{"balanceSheet", fs.BalanceSheet},
		{"profitLoss", fs.ProfitLoss},
		{"cashFlow", fs.CashFlow},
	}

	var values []repo.FactValue
	for _, st := range statements {
		for item, v := range st.items {
			value := repo.FactValue{
				Statement: st.name,
				Item:      string(item),
			}
			if v != nil {
				value.WithVal(*v)
			}
			values = append(values, value)
		}
	}
	return values
}
