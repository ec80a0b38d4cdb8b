package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strings"
)

// Document download variants, in priority order. The upstream's meaning
// of "type" is honored inconsistently across filing vintages, so every
// variant is tried and the first body that passes validation wins. The
// ordering is empirically tuned; don't reorder without rechecking old
// filings.
var fetchVariants = [...]fetchVariant{
	{DocType: "1", Name: "submitted documents with XBRL"},
	{DocType: "5", Name: "csv alternate"},
	{DocType: "2", Name: "viewer fallback"},
}

type fetchVariant struct {
	DocType string
	Name    string
}

// ZIP container signatures: standard local file header and the header of
// an empty archive.
var zipMagics = [][]byte{
	{'P', 'K', 0x03, 0x04},
	{'P', 'K', 0x05, 0x06},
}

// Payload is the packaged archive of one filing: opaque ZIP bytes plus
// the content type and variant the upstream served them under. Never
// persisted; its lifetime is one extraction call.
type Payload struct {
	DocID       string
	DocType     string
	ContentType string
	Body        []byte

	reason string
}

// FetchDocument downloads the packaged archive of a filing, trying each
// content-type variant in order. A variant is rejected when the response
// declares a JSON or PDF body, is empty, or fails the ZIP signature
// check. Exhausting all variants yields a *FetchError naming every
// attempted type.
func (self *Client) FetchDocument(ctx context.Context, docID string,
) (*Payload, error) {
	endpoint, err := self.endpointURL("documents", docID)
	if err != nil {
		return nil, err
	}

	fetchErr := &FetchError{
		DocID:    docID,
		Variants: make([]string, 0, len(fetchVariants)),
	}

	for _, variant := range fetchVariants {
		payload, err := self.fetchVariant(ctx, endpoint, docID, variant)
		if err != nil {
			return nil, err
		} else if payload.Body == nil {
			fetchErr.Variants = append(fetchErr.Variants, fmt.Sprintf(
				"type=%v (%v): %v", variant.DocType, variant.Name, payload.reason))
			continue
		}
		return payload, nil
	}

	return nil, fetchErr
}

// fetchVariant downloads one variant. A rejected body comes back with
// Body nil and reason set; a request-level failure is returned as error,
// classified like any other request.
func (self *Client) fetchVariant(ctx context.Context, endpoint, docID string,
	variant fetchVariant,
) (*Payload, error) {
	query := make(url.Values, 1)
	query.Set("type", variant.DocType)

	resp, err := self.Get(ctx, endpoint, query)
	if err != nil {
		return nil, fmt.Errorf("fetch document %v: %w", docID,
			classifyError(err))
	}
	defer resp.Body.Close()

	payload := &Payload{DocID: docID, DocType: variant.DocType}
	if resp.StatusCode > maxExpectedStatusCode {
		err := newUnexpectedStatusError(resp)
		if err = classifyError(err); IsAuthError(err) {
			return nil, fmt.Errorf("fetch document %v: %w", docID, err)
		}
		payload.reason = err.Error()
		return payload, nil
	}

	contentType := resp.Header.Get("Content-Type")
	payload.ContentType = contentType
	if reason, ok := rejectContentType(contentType); ok {
		payload.reason = reason
		return payload, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		payload.reason = fmt.Sprintf("read body: %v", err)
		return payload, nil
	}

	switch {
	case len(body) == 0:
		payload.reason = "empty body"
	case !validZipSignature(body):
		payload.reason = "no zip signature"
	default:
		payload.Body = body
	}
	return payload, nil
}

// rejectContentType rejects payloads the upstream served instead of the
// requested package: a JSON body signals an API-level error, a PDF body
// means the human-readable rendition was substituted.
func rejectContentType(contentType string) (string, bool) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	switch mediaType {
	case "application/json":
		return "json error body", true
	case "application/pdf":
		return "pdf body", true
	}
	return "", false
}

func validZipSignature(body []byte) bool {
	for _, magic := range zipMagics {
		if bytes.HasPrefix(body, magic) {
			return true
		}
	}
	return false
}
