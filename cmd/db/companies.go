package db

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

func newCompanies() companies {
	return companies{known: make(map[string]struct{})}
}

// companies remembers which edinet codes were already inserted, so
// parallel saves of queries resolving to the same company hit the
// database once.
type companies struct {
	known map[string]struct{}
	group singleflight.Group
	mu    sync.RWMutex
}

func (self *companies) Add(edinetCode string, insert func() error) error {
	if self.knownCompany(edinetCode) {
		return nil
	}

	_, err, _ := self.group.Do(edinetCode, func() (interface{}, error) {
		if self.knownCompany(edinetCode) {
			return nil, nil
		}

		if err := insert(); err != nil {
			return nil, err
		}

		self.mu.Lock()
		defer self.mu.Unlock()
		self.known[edinetCode] = struct{}{}
		return nil, nil
	})
	if err != nil {
		return err //nolint:wrapcheck // wrapped inside insert
	}
	return nil
}

func (self *companies) knownCompany(edinetCode string) bool {
	self.mu.RLock()
	defer self.mu.RUnlock()
	_, ok := self.known[edinetCode]
	return ok
}
