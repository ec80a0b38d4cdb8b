package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

const maxExpectedStatusCode = 299

var (
	ErrUnexpectedStatus = fmt.Errorf("unexpected status code (>%d)",
		maxExpectedStatusCode)

	// ErrAuth means the Subscription-Key was missing or rejected. Fatal:
	// callers must abort the whole in-flight operation instead of probing
	// further dates.
	ErrAuth = errors.New("edinet authorization failed")

	// ErrTransient means one request failed for non-auth reasons. Callers
	// recover locally by advancing to the next planned date.
	ErrTransient = errors.New("transient edinet failure")
)

func newUnexpectedStatusError(resp *http.Response) error {
	return errors.Join(
		&UnexpectedStatusError{
			httpStatus:     resp.Status,
			httpStatusCode: resp.StatusCode,
		}, ErrUnexpectedStatus,
	)
}

type UnexpectedStatusError struct {
	httpStatus     string
	httpStatusCode int
}

func (self *UnexpectedStatusError) Error() string {
	return fmt.Sprintf("%d (%v)", self.httpStatusCode, self.httpStatus)
}

func (self *UnexpectedStatusError) Is(target error) bool {
	_, ok := target.(*UnexpectedStatusError)
	return ok
}

func (self *UnexpectedStatusError) StatusCode() int {
	return self.httpStatusCode
}

// classifyError folds a request error into the taxonomy: an upstream 401
// or 403 is an authorization failure, everything else is transient. The
// decision is structural, never based on message contents.
func classifyError(err error) error {
	var statusErr *UnexpectedStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode() {
		case http.StatusUnauthorized, http.StatusForbidden:
			return errors.Join(ErrAuth, err)
		}
	}
	return errors.Join(ErrTransient, err)
}

func IsAuthError(err error) bool { return errors.Is(err, ErrAuth) }

// FetchError reports that every content-type variant of a document
// download failed validation. Variants lists every attempted type with
// the reason it was rejected.
type FetchError struct {
	DocID    string
	Variants []string
}

func (self *FetchError) Error() string {
	return fmt.Sprintf("fetch document %v: all variants failed: %v",
		self.DocID, strings.Join(self.Variants, "; "))
}

func (self *FetchError) Is(target error) bool {
	_, ok := target.(*FetchError)
	return ok
}
