package facts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dsh2dsh/edinet/client"
	"github.com/dsh2dsh/edinet/client/xbrl"
)

// NotFoundError means one fiscal year's filing wasn't found within the
// date budget. Not fatal: a multi-year batch carries it as a per-year
// result and keeps going.
type NotFoundError struct {
	Year       int
	DatesTried int
}

func (self *NotFoundError) Error() string {
	return fmt.Sprintf(
		"no filing found for fiscal year %d after probing %d dates",
		self.Year, self.DatesTried)
}

func (self *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}

// State of one fiscal-year retrieval.
type State int

const (
	StateSearching State = iota
	StateFilingFound
	StateFetching
	StateParsing
	StateExtracting
	StateDone
	StateNotFound
)

var stateNames = map[State]string{
	StateSearching:   "searching",
	StateFilingFound: "filing found",
	StateFetching:    "fetching",
	StateParsing:     "parsing",
	StateExtracting:  "extracting",
	StateDone:        "done",
	StateNotFound:    "not found",
}

func (self State) String() string { return stateNames[self] }

// nextState decides the transition after a step ran: success walks the
// chain towards StateDone, any recoverable failure returns to
// StateSearching while planned dates remain, else StateNotFound.
// Authorization failures never reach here, they abort the run.
func nextState(state State, ok, datesLeft bool) State {
	if !ok {
		if datesLeft {
			return StateSearching
		}
		return StateNotFound
	}
	switch state {
	case StateSearching:
		return StateFilingFound
	case StateFilingFound:
		return StateFetching
	case StateFetching:
		return StateParsing
	case StateParsing:
		return StateExtracting
	case StateExtracting:
		return StateDone
	}
	return state
}

type yearRun struct {
	edinet Client
	log    *slog.Logger

	edinetCode string
	year       int
	dates      []time.Time
	next       int

	foundDate time.Time
	doc       *client.Document
	payload   *client.Payload
	parsed    *xbrl.Document
	facts     *xbrl.FactSet
}

func (self *yearRun) datesLeft() bool { return self.next < len(self.dates) }

// run drives the retrieval state machine for one fiscal year. Every
// recoverable failure is logged where it happens and the machine returns
// to searching; only an authorization failure or context cancellation is
// fatal.
func (self *yearRun) run(ctx context.Context) (*xbrl.FactSet, error) {
	for state := StateSearching; ; {
		var ok bool
		var err error

		switch state {
		case StateSearching:
			ok, err = self.search(ctx)
		case StateFilingFound:
			ok = true
		case StateFetching:
			ok, err = self.fetch(ctx)
		case StateParsing:
			ok = self.parse()
		case StateExtracting:
			self.facts = xbrl.Extract(self.parsed)
			ok = true
		case StateDone:
			return self.facts, nil
		case StateNotFound:
			return nil, &NotFoundError{Year: self.year, DatesTried: self.next}
		}

		if err != nil {
			return nil, err
		}
		state = nextState(state, ok, self.datesLeft())
	}
}

// search consumes one planned date: lists its submissions and selects
// the best filing of the target company.
func (self *yearRun) search(ctx context.Context) (bool, error) {
	date := self.dates[self.next]
	self.next++

	docs, err := self.edinet.ListDocuments(ctx, date)
	if err != nil {
		if client.IsAuthError(err) || ctx.Err() != nil {
			return false, fmt.Errorf("fiscal year %d: %w", self.year, err)
		}
		self.log.Warn("skip date", slog.Time("date", date),
			slog.Any("error", err))
		return false, nil
	}

	doc, ok := SelectBest(docs, self.edinetCode)
	if !ok {
		return false, nil
	}

	self.doc, self.foundDate = doc, date
	return true, nil
}

func (self *yearRun) fetch(ctx context.Context) (bool, error) {
	payload, err := self.edinet.FetchDocument(ctx, self.doc.DocID)
	if err != nil {
		if client.IsAuthError(err) || ctx.Err() != nil {
			return false, fmt.Errorf("fiscal year %d: %w", self.year, err)
		}
		self.log.Warn("skip filing", slog.String("docID", self.doc.DocID),
			slog.Any("error", err))
		return false, nil
	}
	self.payload = payload
	return true, nil
}

func (self *yearRun) parse() bool {
	parsed, err := xbrl.Parse(self.payload.Body)
	if err != nil {
		self.log.Warn("skip archive", slog.String("docID", self.doc.DocID),
			slog.Any("error", err))
		return false
	}
	self.parsed = parsed
	return true
}

func (self *yearRun) metadata() xbrl.Metadata {
	return xbrl.Metadata{
		DocID:       self.doc.DocID,
		FormCode:    self.doc.FormCode,
		Description: self.doc.DocDescription,
		SubmitDate:  self.doc.SubmitDateTime,
		FoundDate:   self.foundDate.Format(client.DateLayout),
	}
}
