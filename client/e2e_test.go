//go:build e2e

package client

import (
	"context"
	"testing"
	"time"

	"github.com/caarlos0/env/v10"
	dotenv "github.com/dsh2dsh/expx-dotenv"
	"github.com/stretchr/testify/suite"
)

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

type ClientTestSuite struct {
	suite.Suite
	client *Client
}

func (self *ClientTestSuite) SetupSuite() {
	cfg := struct {
		APIKey string `env:"EDINET_API_KEY,notEmpty"`
	}{}
	self.Require().NoError(dotenv.Load(func() error { return env.Parse(&cfg) }))
	self.client = New().WithAPIKey(cfg.APIKey)
}

// lastBusinessDay returns a recent weekday, so the submission list is
// unlikely to be empty.
func lastBusinessDay() time.Time {
	d := time.Now().UTC().AddDate(0, 0, -1)
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, -1)
	}
	return d
}

func (self *ClientTestSuite) TestListDocuments() {
	docs, err := self.client.ListDocuments(context.Background(),
		lastBusinessDay())
	self.Require().NoError(err)
	self.NotEmpty(docs)
	self.NotEmpty(docs[0].DocID)
}

func (self *ClientTestSuite) TestFetchDocument() {
	ctx := context.Background()
	docs, err := self.client.ListDocuments(ctx, lastBusinessDay())
	self.Require().NoError(err)

	var docID string
	for i := range docs {
		if docs[i].PeriodicReport() && docs[i].HasXBRL() {
			docID = docs[i].DocID
			break
		}
	}
	if docID == "" {
		self.T().Skip("no periodic filing with XBRL on that date")
	}

	payload, err := self.client.FetchDocument(ctx, docID)
	self.Require().NoError(err)
	self.Equal(docID, payload.DocID)
	self.True(validZipSignature(payload.Body))
}
