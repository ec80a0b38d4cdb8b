package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dsh2dsh/edinet/client"
)

type mockLister struct{ mock.Mock }

func (self *mockLister) ListDocuments(ctx context.Context, date time.Time,
) ([]client.Document, error) {
	args := self.Called(ctx, date)
	docs, _ := args.Get(0).([]client.Document)
	return docs, args.Error(1)
}

func testToyotaDoc() client.Document {
	return client.Document{
		DocID:          "S100TEST",
		EdinetCode:     "E02144",
		FilerName:      "トヨタ自動車株式会社",
		SubmitterName:  "TOYOTA MOTOR CORPORATION",
		SecuritiesCode: "72030",
		FormCode:       client.FormAnnual,
		XbrlFlag:       "1",
	}
}

func TestResolver_Resolve(t *testing.T) {
	lister := new(mockLister)
	r := NewResolver(lister).
		WithPlanner(testPlanner(2024, time.June, 28)).
		WithMaxDates(3)

	found := time.Date(2024, time.June, 28, 0, 0, 0, 0, time.UTC)
	lister.On("ListDocuments", mock.Anything, found).
		Return([]client.Document{
			{
				DocID:      "S100NOIS",
				EdinetCode: "E99999",
				FilerName:  "トヨタ紡織株式会社",
				FormCode:   "120000", // not a periodic report
			},
			testToyotaDoc(),
		}, nil).Once()

	companies, err := r.Resolve(context.Background(), "トヨタ自動車")
	require.NoError(t, err)
	require.Len(t, companies, 1)

	c := &companies[0]
	assert.Equal(t, "E02144", c.EdinetCode)
	assert.Equal(t, "トヨタ自動車株式会社", c.FilerName)
	assert.Equal(t, "72030", c.SecuritiesCode)
	assert.Equal(t, found, c.LastSeen)

	// minCompanies reached on the first date, no further probes
	lister.AssertExpectations(t)
}

func TestResolver_Resolve_dedup(t *testing.T) {
	lister := new(mockLister)
	r := NewResolver(lister).
		WithPlanner(testPlanner(2024, time.June, 28)).
		WithMinCompanies(2).WithMaxDates(2)

	first := testToyotaDoc()
	first.SecuritiesCode = ""

	second := testToyotaDoc()
	second.DocID = "S100NEXT"

	lister.On("ListDocuments", mock.Anything, mock.Anything).
		Return([]client.Document{first}, nil).Once()
	lister.On("ListDocuments", mock.Anything, mock.Anything).
		Return([]client.Document{second}, nil).Once()

	companies, err := r.Resolve(context.Background(), "トヨタ")
	require.NoError(t, err)
	require.Len(t, companies, 1)

	// a later sighting fills what the first one didn't know
	assert.Equal(t, "72030", companies[0].SecuritiesCode)
}

func TestResolver_Resolve_authAborts(t *testing.T) {
	lister := new(mockLister)
	r := NewResolver(lister).WithPlanner(testPlanner(2024, time.June, 28))

	lister.On("ListDocuments", mock.Anything, mock.Anything).
		Return(nil, client.ErrAuth).Once()

	_, err := r.Resolve(context.Background(), "トヨタ")
	require.ErrorIs(t, err, client.ErrAuth)
	lister.AssertExpectations(t)
}

func TestResolver_Resolve_transientSkips(t *testing.T) {
	lister := new(mockLister)
	r := NewResolver(lister).
		WithPlanner(testPlanner(2024, time.June, 28)).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithMaxDates(2)

	lister.On("ListDocuments", mock.Anything, mock.Anything).
		Return(nil, errors.Join(client.ErrTransient,
			errors.New("http 500"))).Once()
	lister.On("ListDocuments", mock.Anything, mock.Anything).
		Return([]client.Document{testToyotaDoc()}, nil).Once()

	companies, err := r.Resolve(context.Background(), "トヨタ自動車")
	require.NoError(t, err)
	assert.Len(t, companies, 1)
	lister.AssertExpectations(t)
}

func TestResolver_Resolve_emptyWithinBudget(t *testing.T) {
	lister := new(mockLister)
	r := NewResolver(lister).
		WithPlanner(testPlanner(2024, time.June, 28)).
		WithMaxDates(3)

	lister.On("ListDocuments", mock.Anything, mock.Anything).
		Return([]client.Document{}, nil).Times(3)

	companies, err := r.Resolve(context.Background(), "存在しない会社")
	require.NoError(t, err)
	assert.Empty(t, companies)
	lister.AssertExpectations(t)
}

func TestMatchName(t *testing.T) {
	tests := []struct {
		name, query string
		want        bool
	}{
		{"トヨタ自動車株式会社", "トヨタ自動車", true},
		{"トヨタ自動車株式会社", "トヨタ自動車株式会社", true},
		{"株式会社日立製作所", "日立製作所株式会社", true},
		{"SONY GROUP CORPORATION", "sony group", true},
		{"ソニーグループ株式会社", "ソニーグループ", true},
		// full-width latin folds to half width
		{"ＮＴＴデータ株式会社", "NTTデータ", true},
		{"トヨタ自動車株式会社", "ホンダ", false},
		{"", "トヨタ", false},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, matchName(tt.name, tt.query))
		})
	}
}

func TestStripLegalSuffixes(t *testing.T) {
	assert.Equal(t, "トヨタ自動車", stripLegalSuffixes("トヨタ自動車株式会社"))
	assert.Equal(t, "日立製作所", stripLegalSuffixes("株式会社日立製作所"))
	assert.Equal(t, "acme", stripLegalSuffixes("acme co., ltd."))
	assert.Equal(t, "acme", stripLegalSuffixes("acme corporation"))
}
