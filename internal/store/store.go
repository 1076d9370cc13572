package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/imkarma/isc/internal/criteria"
)

const (
	// CurrentFile is the name of the current-table document.
	CurrentFile = "current-isc.json"
	// CatalogFile is the name of the archive catalog database.
	CatalogFile = "archives.db"
)

// Store persists the current criteria table as a single JSON document
// inside dir. There is no locking: the last writer wins.
type Store struct {
	dir     string
	catalog *Catalog
	Now     func() time.Time
}

// New returns a store rooted at dir. Nothing is created until the first save.
func New(dir string) *Store {
	return &Store{dir: dir, Now: time.Now}
}

// UseCatalog makes ArchiveAndClear record each archive in c.
func (s *Store) UseCatalog(c *Catalog) {
	s.catalog = c
}

// Catalog returns the archive catalog, or nil if none is attached.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

// Close closes the attached catalog, if any.
func (s *Store) Close() error {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Close()
}

// Dir returns the directory holding the documents.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the path of the current-table document.
func (s *Store) Path() string {
	return filepath.Join(s.dir, CurrentFile)
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Load returns the current table, or nil if there is none. A missing or
// empty document means no current table; anything else that fails to
// decode is an ErrParse.
func (s *Store) Load() (*criteria.Table, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read table: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var t criteria.Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", criteria.ErrParse, s.Path(), err)
	}
	return &t, nil
}

// Current is Load with a missing table reported as ErrNoCurrentTable.
func (s *Store) Current() (*criteria.Table, error) {
	t, err := s.Load()
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: run create first", criteria.ErrNoCurrentTable)
	}
	return t, nil
}

// Save stamps LastModified and writes the whole table.
func (s *Store) Save(t *criteria.Table) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", s.dir, err)
	}
	t.LastModified = s.now()

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal table: %w", err)
	}
	if err := atomicWrite(s.Path(), data); err != nil {
		return fmt.Errorf("write table: %w", err)
	}
	return nil
}

// ArchiveAndClear copies the current table to a new archive document and
// empties the current slot. It returns the archive path, or "" when there
// was no current table to archive.
func (s *Store) ArchiveAndClear() (string, error) {
	t, err := s.Load()
	if err != nil {
		return "", err
	}
	if t == nil {
		return "", nil
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal archive: %w", err)
	}

	archivedAt := s.now()
	path, err := s.writeArchive(archivedAt, data)
	if err != nil {
		return "", err
	}

	if err := atomicWrite(s.Path(), nil); err != nil {
		return path, fmt.Errorf("clear table: %w", err)
	}

	if s.catalog != nil {
		sum := criteria.Summarize(t)
		entry := ArchiveEntry{
			TableID:    t.ID,
			Request:    t.Request,
			Effort:     t.Effort,
			Phase:      t.Phase,
			Iteration:  t.Iteration,
			Rows:       sum.Total,
			Done:       sum.Done,
			Path:       path,
			ArchivedAt: archivedAt,
		}
		if _, err := s.catalog.Record(entry); err != nil {
			log.Printf("record archive %s in catalog: %v", path, err)
		}
	}
	return path, nil
}

// writeArchive writes data under archive-<millis>.json. A taken name bumps
// the key by one millisecond until a free one is found.
func (s *Store) writeArchive(at time.Time, data []byte) (string, error) {
	key := at.UnixMilli()
	for {
		path := filepath.Join(s.dir, fmt.Sprintf("archive-%d.json", key))
		err := writeExclusive(path, data)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("write archive: %w", err)
		}
		key++
	}
}

// Archives returns the archive documents in dir, oldest first.
func (s *Store) Archives() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "archive-*.json"))
	if err != nil {
		return nil, err
	}
	sortArchives(matches)
	return matches, nil
}

func sortArchives(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		return archiveKey(paths[i]) < archiveKey(paths[j])
	})
}

func archiveKey(path string) int64 {
	name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "archive-"), ".json")
	n, _ := strconv.ParseInt(name, 10, 64)
	return n
}
