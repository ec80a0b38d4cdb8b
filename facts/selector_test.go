package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsh2dsh/edinet/client"
)

func TestSelectBest(t *testing.T) {
	const code = "E00001"

	annual := client.Document{
		DocID: "S100ANNL", EdinetCode: code,
		FormCode: client.FormAnnual, XbrlFlag: "1",
	}
	annualNoXbrl := client.Document{
		DocID: "S100ANNO", EdinetCode: code,
		FormCode: client.FormAnnual,
	}
	quarterly := client.Document{
		DocID: "S100QTRL", EdinetCode: code,
		FormCode: client.FormQuarterly, XbrlFlag: "1",
	}
	otherForm := client.Document{
		DocID: "S100OTHR", EdinetCode: code, FormCode: "120000",
	}
	otherCompany := client.Document{
		DocID: "S100ELSE", EdinetCode: "E99999",
		FormCode: client.FormAnnual, XbrlFlag: "1",
	}

	tests := []struct {
		name    string
		docs    []client.Document
		want    string
		nothing bool
	}{
		{
			name: "annual with xbrl beats everything",
			docs: []client.Document{otherCompany, quarterly, annualNoXbrl,
				annual},
			want: "S100ANNL",
		},
		{
			name: "annual without xbrl beats quarterly with",
			docs: []client.Document{quarterly, annualNoXbrl},
			want: "S100ANNO",
		},
		{
			name: "quarterly as last resort",
			docs: []client.Document{otherForm, quarterly},
			want: "S100QTRL",
		},
		{
			name:    "other forms never selected",
			docs:    []client.Document{otherForm, otherCompany},
			nothing: true,
		},
		{
			name:    "empty list",
			nothing: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, ok := SelectBest(tt.docs, code)
			if tt.nothing {
				assert.False(t, ok)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, doc.DocID)
		})
	}
}

func TestSelectBest_stable(t *testing.T) {
	docs := []client.Document{
		{DocID: "S100FRST", EdinetCode: "E00001",
			FormCode: client.FormAnnual, XbrlFlag: "1"},
		{DocID: "S100SCND", EdinetCode: "E00001",
			FormCode: client.FormAnnual, XbrlFlag: "1"},
	}
	doc, ok := SelectBest(docs, "E00001")
	require.True(t, ok)
	assert.Equal(t, "S100FRST", doc.DocID)
}
