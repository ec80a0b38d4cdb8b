package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dsh2dsh/edinet/cmd/internal/common"
	"github.com/dsh2dsh/edinet/facts"
)

var (
	factsProcs int

	factsCmd = cobra.Command{
		Use:   "facts edinetCode year [years...]",
		Short: "Fetch financial facts of a company for fiscal years",
		Example: `
  - Balance sheet, P/L and cash flow of fiscal 2022:

    $ edinet facts E02144 2022

  - Three years at once:

    $ edinet facts E02144 2020 2021 2022`,
		Args: cobra.MinimumNArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			years, err := parseYears(args[1:])
			cobra.CheckErr(err)
			cobra.CheckErr(runFacts(cmd.Context(), args[0], years))
		},
	}
)

func init() {
	factsCmd.Flags().IntVar(&factsProcs, "procs", 1,
		"parallel year lookups (all share one rate limit)")
	rootCmd.AddCommand(&factsCmd)
}

func parseYears(args []string) ([]int, error) {
	years := make([]int, len(args))
	for i, s := range args {
		year, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("failed parse %q as year: %w", s, err)
		}
		years[i] = year
	}
	return years, nil
}

func runFacts(ctx context.Context, edinetCode string, years []int) error {
	edinet, err := common.NewClient()
	if err != nil {
		return err
	}

	service := facts.NewService(edinet).WithProcsLimit(factsProcs)
	results, err := service.MultiYearFacts(ctx, edinetCode, years)
	if err != nil {
		return err
	}

	for i := range results {
		r := &results[i]
		if r.Err != nil {
			log.Printf("fiscal year %v: %v", r.Year, r.Err)
		} else if r.Facts != nil {
			log.Printf("fiscal year %v: filing %v submitted %v", r.Year,
				r.Facts.Metadata.DocID, r.Facts.Metadata.SubmitDate)
		}
	}

	return writeYearResults(os.Stdout, results)
}
