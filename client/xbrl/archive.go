// Package xbrl extracts a normalized set of financial facts from the
// ZIP-packaged XBRL archive of one EDINET filing.
package xbrl

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// End of central directory record: signature and minimal record length.
var eocdSignature = []byte{'P', 'K', 0x05, 0x06}

const eocdRecordLen = 22

// ErrCorruptArchive means the container couldn't be opened, even after
// the truncation repair attempt.
var ErrCorruptArchive = errors.New("corrupt filing archive")

// NoStructuredDataError means an otherwise valid archive contains
// neither a primary XBRL instance nor the tabular fallback. Entries
// lists every name inside the archive for diagnostics.
type NoStructuredDataError struct {
	Entries []string
}

func (self *NoStructuredDataError) Error() string {
	return fmt.Sprintf("no structured data entry in archive: %v",
		strings.Join(self.Entries, ", "))
}

func (self *NoStructuredDataError) Is(target error) bool {
	_, ok := target.(*NoStructuredDataError)
	return ok
}

// OpenArchive opens the filing container. Archives arrive truncated or
// with trailing garbage often enough that a failed open is retried on
// the buffer cut at the last end-of-central-directory signature.
func OpenArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		if zr, err2 := repairArchive(data); err2 == nil {
			return &Archive{zr: zr}, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptArchive, err)
	}
	return &Archive{zr: zr}, nil
}

// repairArchive scans backward for the EOCD signature and reopens the
// prefix ending right after the fixed-size record, with the archive
// comment dropped.
func repairArchive(data []byte) (*zip.Reader, error) {
	off := bytes.LastIndex(data, eocdSignature)
	if off < 0 || off+eocdRecordLen > len(data) {
		return nil, errors.New("end of central directory not found")
	}

	buf := make([]byte, off+eocdRecordLen)
	copy(buf, data[:off+eocdRecordLen])
	// zero the comment length, the comment is cut off with the garbage
	buf[off+20], buf[off+21] = 0, 0

	zr, err := zip.NewReader(bytes.NewReader(buf), int64(len(buf)))
	if err != nil {
		return nil, fmt.Errorf("reopen truncated archive: %w", err)
	}
	return zr, nil
}

type Archive struct {
	zr *zip.Reader
}

func (self *Archive) EntryNames() []string {
	names := make([]string, len(self.zr.File))
	for i, f := range self.zr.File {
		names[i] = f.Name
	}
	return names
}

type EntryKind int

const (
	EntryInstance EntryKind = iota // primary XBRL instance document
	EntrySummary                   // tabular fallback carrying the same facts
)

// StructuredEntry locates the entry to extract facts from, most to least
// specific: the instance file under the public document folder, any
// non-companion instance, any instance at all, then the tabular summary
// fallback.
func (self *Archive) StructuredEntry() (*zip.File, EntryKind, error) {
	patterns := []func(string) bool{
		func(name string) bool {
			return strings.Contains(name, "PublicDoc") &&
				instanceEntry(name) && !companionEntry(name)
		},
		func(name string) bool {
			return instanceEntry(name) && !companionEntry(name)
		},
		instanceEntry,
	}
	for _, match := range patterns {
		if f := self.findEntry(match); f != nil {
			return f, EntryInstance, nil
		}
	}

	fallbacks := []func(string) bool{
		func(name string) bool {
			return strings.Contains(name, "XBRL_TO_CSV") && summaryEntry(name)
		},
		summaryEntry,
	}
	for _, match := range fallbacks {
		if f := self.findEntry(match); f != nil {
			return f, EntrySummary, nil
		}
	}

	return nil, 0, &NoStructuredDataError{Entries: self.EntryNames()}
}

func (self *Archive) findEntry(match func(string) bool) *zip.File {
	for _, f := range self.zr.File {
		if match(f.Name) {
			return f
		}
	}
	return nil
}

func instanceEntry(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".xbrl")
}

// companionEntry reports a label/presentation/definition/calculation
// linkbase, which share the instance extension in some vintages.
func companionEntry(name string) bool {
	for _, s := range []string{"_lab", "_pre", "_def", "_cal"} {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func summaryEntry(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".csv")
}

// Parse opens the archive of one filing and parses its structured-data
// entry into a Document, falling back from the XBRL instance to the
// tabular summary.
func Parse(data []byte) (*Document, error) {
	archive, err := OpenArchive(data)
	if err != nil {
		return nil, err
	}

	f, kind, err := archive.StructuredEntry()
	if err != nil {
		return nil, err
	}

	r, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %q: %w", f.Name, err)
	}
	defer r.Close()

	var doc *Document
	switch kind {
	case EntrySummary:
		doc, err = ParseSummary(r)
	default:
		doc, err = ParseDocument(r)
	}
	if err != nil {
		return nil, fmt.Errorf("parse archive entry %q: %w", f.Name, err)
	}
	return doc, nil
}
