package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsh2dsh/edinet/cmd/internal/common"
	"github.com/dsh2dsh/edinet/facts"
)

// Number of latest fiscal years fetched by --facts, like the original
// five-year overview.
const searchFactsYears = 5

var (
	searchMin        int
	searchDates      int
	searchShowsFacts bool

	searchCmd = cobra.Command{
		Use:   "search name",
		Short: "Find companies matching a name in recent EDINET submissions",
		Long: `Scans recent submission dates for filings whose filer or submitter
name matches. EDINET has no company search endpoint, so discovery probes
the date-indexed archive and is bounded by a date budget.`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cobra.CheckErr(runSearch(cmd.Context(), args[0]))
		},
	}
)

func init() {
	searchCmd.Flags().IntVar(&searchMin, "min", 1,
		"stop scanning after this many distinct companies matched")
	searchCmd.Flags().IntVar(&searchDates, "dates", 10,
		"date budget of one search")
	searchCmd.Flags().BoolVar(&searchShowsFacts, "facts", false,
		"also fetch the latest five fiscal years of the first match")
	rootCmd.AddCommand(&searchCmd)
}

func runSearch(ctx context.Context, query string) error {
	edinet, err := common.NewClient()
	if err != nil {
		return err
	}

	service := facts.NewService(edinet)
	service.Resolver().WithMinCompanies(searchMin).WithMaxDates(searchDates)

	companies, err := service.ResolveCompany(ctx, query)
	if err != nil {
		return fmt.Errorf("search %q: %w", query, err)
	} else if len(companies) == 0 {
		log.Printf("nothing matched %q, try another name or date range", query)
		return nil
	}

	for i := range companies {
		c := &companies[i]
		log.Printf("%v: %v (securities code %q, last seen %v)",
			c.EdinetCode, c.FilerName, c.SecuritiesCode,
			c.LastSeen.Format(time.DateOnly))
	}

	if !searchShowsFacts {
		return nil
	}
	return searchFacts(ctx, service, companies[0].EdinetCode)
}

func searchFacts(ctx context.Context, service *facts.Service,
	edinetCode string,
) error {
	lastYear := time.Now().Year() - 1
	years := make([]int, searchFactsYears)
	for i := range years {
		years[i] = lastYear - i
	}

	results, err := service.MultiYearFacts(ctx, edinetCode, years)
	if err != nil {
		return err
	}
	return writeYearResults(os.Stdout, results)
}

func writeYearResults(w io.Writer, results []facts.YearResult) error {
	type yearJSON struct {
		facts.YearResult
		Error string `json:"error,omitempty"`
	}

	out := make([]yearJSON, len(results))
	for i, r := range results {
		out[i].YearResult = r
		if r.Err != nil {
			out[i].Error = r.Err.Error()
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode year results: %w", err)
	}
	return nil
}
