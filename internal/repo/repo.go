package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var factValueCols = [...]string{"filing_id", "statement", "item", "val"}

func New(db Postgreser) *Repo {
	return &Repo{db: db}
}

type Repo struct {
	db Postgreser
}

type Postgreser interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string,
		rowSrc pgx.CopyFromSource) (int64, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

func (self *Repo) AddCompany(ctx context.Context, edinetCode, name string,
) (bool, error) {
	cmdTag, err := self.db.Exec(ctx, `
INSERT INTO companies (edinet_code, filer_name)
  VALUES              ($1,          $2)
  ON CONFLICT DO NOTHING`, edinetCode, name)
	if err != nil {
		return false, fmt.Errorf("add company %v %q: %w", edinetCode, name, err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// SaveFiling stores one filing with its fact values atomically: the
// filing row with its description hash, the delete of stale values and
// the copy of new ones commit or roll back together, so a stored hash
// always describes stored values. Fact values are stamped with the
// filing's id; callers leave FilingId zero.
func (self *Repo) SaveFiling(ctx context.Context, filing Filing, length int,
	next func(i int) (FactValue, error),
) (uint32, error) {
	var filingId uint32
	err := pgx.BeginFunc(ctx, self.db, func(tx pgx.Tx) error {
		id, err := addFiling(ctx, tx, &filing)
		if err != nil {
			return err
		}
		filingId = id

		if err := deleteFactValues(ctx, tx, id); err != nil {
			return err
		}
		return copyFactValues(ctx, tx, length,
			func(i int) (FactValue, error) {
				value, err := next(i)
				if err != nil {
					return value, err
				}
				value.FilingId = id
				return value, nil
			})
	})
	if err != nil {
		return 0, fmt.Errorf("save filing %q: %w", filing.DocID, err)
	}
	return filingId, nil
}

// addFiling upserts one filing and returns its id. Resubmitting the
// same docID refreshes the description and its hash, so a changed
// filing never keeps a stale hash.
func addFiling(ctx context.Context, db Postgreser, filing *Filing,
) (uint32, error) {
	rows, err := db.Query(ctx, `
INSERT INTO filings (edinet_code,  doc_id,  fiscal_year,  form_code,
                     submit_date,  descr,   descr_hash)
  VALUES            (@edinet_code, @doc_id, @fiscal_year, @form_code,
                     @submit_date, @descr,  @descr_hash)
  ON CONFLICT (doc_id) DO UPDATE
    SET fiscal_year = EXCLUDED.fiscal_year,
        form_code   = EXCLUDED.form_code,
        submit_date = EXCLUDED.submit_date,
        descr       = EXCLUDED.descr,
        descr_hash  = EXCLUDED.descr_hash
  RETURNING id`, filing.NamedArgs())
	if err != nil {
		return 0, fmt.Errorf("add filing %q: %w", filing.DocID, err)
	}

	id, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[uint32])
	if err != nil {
		return 0, fmt.Errorf("add filing %q: %w", filing.DocID, err)
	}
	return id, nil
}

// FilingChanged compares the stored description hash of a filing with
// hash. Unknown filings count as changed.
func (self *Repo) FilingChanged(ctx context.Context, docID string,
	hash uint64,
) (bool, error) {
	rows, err := self.db.Query(ctx,
		`SELECT descr_hash FROM filings WHERE doc_id = $1`, docID)
	if err != nil {
		return false, fmt.Errorf("filing %q descr hash: %w", docID, err)
	}

	stored, err := pgx.CollectOneRow(rows, pgx.RowTo[uint64])
	if errors.Is(err, pgx.ErrNoRows) {
		return true, nil
	} else if err != nil {
		return false, fmt.Errorf("filing %q descr hash: %w", docID, err)
	}

	return stored != hash, nil
}

func deleteFactValues(ctx context.Context, db Postgreser, filingId uint32,
) error {
	_, err := db.Exec(ctx,
		`DELETE FROM fact_values WHERE filing_id = $1`, filingId)
	if err != nil {
		return fmt.Errorf("delete fact values of filing %v: %w", filingId, err)
	}
	return nil
}

func copyFactValues(ctx context.Context, db Postgreser, length int,
	next func(i int) (FactValue, error),
) error {
	n, err := db.CopyFrom(ctx, pgx.Identifier{"fact_values"},
		factValueCols[:],
		pgx.CopyFromSlice(length, func(i int) ([]any, error) {
			value, err := next(i)
			if err != nil {
				return nil, err
			}
			values := []any{value.FilingId, value.Statement, value.Item,
				value.Val}
			return values, nil
		}))
	if err != nil {
		return fmt.Errorf("failed copy %v fact values: %w", length, err)
	} else if n != int64(length) {
		return fmt.Errorf("copied %v fact values instead of %v", n, length)
	}
	return nil
}

// FiscalYears returns the stored fiscal years of one company with the
// submission date of each year's filing.
func (self *Repo) FiscalYears(ctx context.Context, edinetCode string,
) (map[int]time.Time, error) {
	rows, err := self.db.Query(ctx, `
SELECT fiscal_year, MAX(submit_date) AS submitted
  FROM filings WHERE edinet_code = $1
  GROUP BY fiscal_year`, edinetCode)
	if err != nil {
		return nil, fmt.Errorf("repo.FiscalYears: %w", err)
	}

	type yearSubmitted struct {
		Year      int       `db:"fiscal_year"`
		Submitted time.Time `db:"submitted"`
	}

	years, err := pgx.CollectRows(rows, pgx.RowToStructByName[yearSubmitted])
	if err != nil {
		return nil, fmt.Errorf("repo.FiscalYears: %w", err)
	}

	byYear := make(map[int]time.Time, len(years))
	for i := range years {
		item := &years[i]
		byYear[item.Year] = item.Submitted
	}

	return byYear, nil
}

func (self *Repo) Companies(ctx context.Context) (map[string]string, error) {
	rows, err := self.db.Query(ctx,
		`SELECT edinet_code, filer_name FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("repo.Companies: %w", err)
	}

	type companyItem struct {
		EdinetCode string `db:"edinet_code"`
		FilerName  string `db:"filer_name"`
	}

	items, err := pgx.CollectRows(rows, pgx.RowToStructByName[companyItem])
	if err != nil {
		return nil, fmt.Errorf("repo.Companies: %w", err)
	}

	companies := make(map[string]string, len(items))
	for _, item := range items {
		companies[item.EdinetCode] = item.FilerName
	}
	return companies, nil
}
