package client

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const (
	documentsJsonName = "documents.json"

	// type=2 requests the submission list with metadata.
	docListType = "2"

	// Form codes of periodic filings carrying financial statements.
	FormAnnual    = "030000" // 有価証券報告書
	FormQuarterly = "043000" // 四半期報告書
)

const DateLayout = "2006-01-02"

type DocumentList struct {
	Metadata struct {
		Title   string `json:"title"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"metadata"`
	Results []Document `json:"results"`
}

// Document is one filing from the submission list of a single date.
type Document struct {
	DocID          string `json:"docID"`
	EdinetCode     string `json:"edinetCode"`
	FilerName      string `json:"filerName"`
	SubmitterName  string `json:"submitterName"`
	SecuritiesCode string `json:"secCode"`
	JCN            string `json:"JCN"`
	FormCode       string `json:"formCode"`
	DocDescription string `json:"docDescription"`
	SubmitDateTime string `json:"submitDateTime"`
	XbrlFlag       string `json:"xbrlFlag"`
}

// PeriodicReport reports whether this filing is an annual or quarterly
// report, the only form codes that package full financial statements.
func (self *Document) PeriodicReport() bool {
	return self.FormCode == FormAnnual || self.FormCode == FormQuarterly
}

func (self *Document) Annual() bool { return self.FormCode == FormAnnual }

// HasXBRL reports whether the filing declares a machine-readable XBRL
// package. The flag is unreliable across vintages, so it drives priority,
// not filtering.
func (self *Document) HasXBRL() bool { return self.XbrlFlag == "1" }

func (self *Document) SubmitDate() (time.Time, error) {
	if self.SubmitDateTime == "" {
		return time.Time{}, fmt.Errorf("document %v without submitDateTime",
			self.DocID)
	}
	return ParseSubmitDate(self.SubmitDateTime)
}

// ParseSubmitDate parses a submission timestamp as EDINET spells it. The
// document list carries minute precision, the XBRL package header only the
// date, so both layouts are accepted.
func ParseSubmitDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err == nil {
		return t, nil
	}
	if t, err2 := time.Parse(DateLayout, s); err2 == nil {
		return t, nil
	}
	return t, fmt.Errorf("failed parse %q as submitDateTime: %w", s, err)
}

// ListDocuments fetches the submission list for one calendar date. EDINET
// indexes filings by submission date only; there is no company search
// endpoint, which is why callers probe planned dates one by one.
//
// A date without submissions yields an empty slice, not an error. An
// authorization failure wraps ErrAuth, every other failure ErrTransient.
func (self *Client) ListDocuments(ctx context.Context, date time.Time,
) ([]Document, error) {
	endpoint, err := self.endpointURL(documentsJsonName)
	if err != nil {
		return nil, err
	}

	query := make(url.Values, 2)
	query.Set("date", date.Format(DateLayout))
	query.Set("type", docListType)

	var list DocumentList
	if err := self.GetJSON(ctx, endpoint, query, &list); err != nil {
		return nil, fmt.Errorf("list documents of %v: %w",
			date.Format(DateLayout), classifyError(err))
	}

	return list.Results, nil
}
