package repo

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type Filing struct {
	EdinetCode string `db:"edinet_code"`
	DocID      string `db:"doc_id"`
	FiscalYear int    `db:"fiscal_year"`
	FormCode   string `db:"form_code"`

	SubmitDate pgtype.Date `db:"submit_date"`
	Descr      string      `db:"descr"`
	DescrHash  uint64      `db:"descr_hash"`
}

func (self *Filing) WithSubmitDate(d time.Time) *Filing {
	self.SubmitDate = pgtype.Date{Time: d, Valid: true}
	return self
}

func (self *Filing) NamedArgs() pgx.NamedArgs {
	return pgx.NamedArgs{
		"edinet_code": self.EdinetCode,
		"doc_id":      self.DocID,
		"fiscal_year": self.FiscalYear,
		"form_code":   self.FormCode,

		"submit_date": self.SubmitDate,
		"descr":       self.Descr,
		"descr_hash":  self.DescrHash,
	}
}

// FactValue is one extracted line item of one filing. Val stays invalid
// (NULL) when no known tag spelling resolved, which is a stored outcome,
// not an absence of the row.
type FactValue struct {
	FilingId  uint32 `db:"filing_id"`
	Statement string `db:"statement"`
	Item      string `db:"item"`

	Val pgtype.Float8 `db:"val"`
}

func (self *FactValue) WithVal(v float64) *FactValue {
	self.Val = pgtype.Float8{Float64: v, Valid: true}
	return self
}
