// Package service owns the in-memory credential collection and its
// persistence to the encrypted store file.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/1mdazam/OfflinePasswordManager/internal/audit"
	"github.com/1mdazam/OfflinePasswordManager/internal/vault"
	"github.com/1mdazam/OfflinePasswordManager/store"
)

var (
	// ErrIndexOutOfRange reports a user-supplied entry index outside 1..Count().
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNoMasterSecret indicates Load or Save was called before SetMaster.
	ErrNoMasterSecret = errors.New("master secret not set")
)

// Service exposes the credential store operations the shell drives. The
// collection is owned exclusively by one Service and mutated only through
// its methods; nothing here is safe for concurrent use.
type Service struct {
	path       string
	secret     *memguard.Enclave // nil while the master secret is unset or empty
	haveSecret bool
	records    []vault.Record
	log        audit.Logger
}

// New returns a service bound to the store file at path. Events go to log;
// pass audit.Nop() to disable auditing.
func New(path string, log audit.Logger) *Service {
	if path == "" {
		path = store.DefaultFilename
	}
	if log == nil {
		log = audit.Nop()
	}
	return &Service{path: path, log: log}
}

// Path reports the store file this service reads and writes.
func (s *Service) Path() string { return s.path }

// SetMaster seals the master secret for the session. The source slice is
// wiped once sealed and the secret only leaves the enclave for the duration
// of a single load or save.
func (s *Service) SetMaster(secret []byte) {
	s.haveSecret = true
	if len(secret) == 0 {
		s.secret = nil
		return
	}
	s.secret = memguard.NewEnclave(secret)
}

// openSecret re-materializes the master secret for one store operation. The
// release func must be called as soon as the operation finishes.
func (s *Service) openSecret() (secret []byte, release func(), err error) {
	if !s.haveSecret {
		return nil, nil, ErrNoMasterSecret
	}
	if s.secret == nil {
		return nil, func() {}, nil
	}

	buf, err := s.secret.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open master secret: %w", err)
	}
	return buf.Bytes(), buf.Destroy, nil
}

// Load replaces the in-memory collection with the records stored on disk.
// On failure the collection is left untouched, so a wrong master secret
// never installs partial state.
func (s *Service) Load() error {
	secret, release, err := s.openSecret()
	if err != nil {
		return err
	}
	defer release()

	records, err := store.Read(s.path, secret)
	if err != nil {
		s.log.Record("store_load_failed", audit.Fields{"path": s.path})
		return err
	}

	s.records = records
	s.log.Record("store_loaded", audit.Fields{"path": s.path, "count": len(records)})
	return nil
}

// Save writes the current collection to disk under a fresh salt and IV.
func (s *Service) Save() error {
	secret, release, err := s.openSecret()
	if err != nil {
		return err
	}
	defer release()

	if err := store.Write(s.path, s.records, secret); err != nil {
		s.log.Record("store_save_failed", audit.Fields{"path": s.path})
		return err
	}

	s.log.Record("store_saved", audit.Fields{"path": s.path, "count": len(s.records)})
	return nil
}

// Add appends a record. Any field combination is accepted; nothing is
// deduplicated.
func (s *Service) Add(r vault.Record) {
	s.records = append(s.records, r)
	s.log.Record("record_added", audit.Fields{"count": len(s.records)})
}

// SiteRef pairs a display index with a site label.
type SiteRef struct {
	Index int
	Site  string
}

// List returns (index, site) pairs for every record in insertion order.
// Indices are 1-based to match what the user sees and types back in.
func (s *Service) List() []SiteRef {
	refs := make([]SiteRef, len(s.records))
	for i, r := range s.records {
		refs[i] = SiteRef{Index: i + 1, Site: r.Site}
	}
	return refs
}

// Search returns the records whose site contains the query, compared
// case-insensitively. An empty query matches every record; collection order
// is preserved.
func (s *Service) Search(query string) []vault.Record {
	q := strings.ToLower(query)
	var found []vault.Record
	for _, r := range s.records {
		if strings.Contains(strings.ToLower(r.Site), q) {
			found = append(found, r)
		}
	}
	return found
}

// Remove deletes the record at the 1-based index and shifts later entries
// down by one. Out-of-range indices leave the collection unchanged.
func (s *Service) Remove(index int) error {
	if index <= 0 || index > len(s.records) {
		return fmt.Errorf("remove entry %d of %d: %w", index, len(s.records), ErrIndexOutOfRange)
	}
	s.records = append(s.records[:index-1], s.records[index:]...)
	s.log.Record("record_removed", audit.Fields{"index": index, "count": len(s.records)})
	return nil
}

// Count reports the number of records currently held.
func (s *Service) Count() int { return len(s.records) }
