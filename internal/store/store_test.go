package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkarma/isc/internal/criteria"
)

// testStore creates a store in a fresh temp directory that does not exist yet.
func testStore(t *testing.T) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "MEMORY", "Work"))
	s.Now = func() time.Time { return time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC) }
	return s
}

func createTable(t *testing.T, s *Store) (criteria.Engine, *criteria.Table) {
	t.Helper()
	e := criteria.New(s)
	tbl, err := e.Create("Add dark mode", "STANDARD")
	require.NoError(t, err)
	return e, tbl
}

func TestLoad_NoDocument(t *testing.T) {
	s := testStore(t)

	tbl, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, tbl)

	_, err = s.Current()
	assert.ErrorIs(t, err, criteria.ErrNoCurrentTable)
}

func TestSave_CreatesDirectoryAndStampsLastModified(t *testing.T) {
	s := testStore(t)
	_, tbl := createTable(t, s)

	_, err := os.Stat(s.Path())
	require.NoError(t, err, "current document not created")
	assert.Equal(t, time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC), tbl.LastModified)

	loaded, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Add dark mode", loaded.Request)
	assert.Equal(t, "OBSERVE", loaded.Phase)
	assert.Equal(t, 1, loaded.Iteration)
	assert.Len(t, loaded.Log, 1)
	assert.True(t, loaded.LastModified.Equal(tbl.LastModified))
}

func TestSave_RoundTripsRows(t *testing.T) {
	s := testStore(t)
	e, tbl := createTable(t, s)

	_, err := e.AddRow(tbl, "Toggle works", criteria.SourceExplicit, true)
	require.NoError(t, err)
	_, err = e.AddRow(tbl, "Tests pass", criteria.SourceImplicit, false)
	require.NoError(t, err)
	_, err = e.SetCapability(tbl, 1, "research.perplexity")
	require.NoError(t, err)
	_, err = e.SetVerifyResult(tbl, 2, criteria.VerifyBlocked, "CI down")
	require.NoError(t, err)

	loaded, err := s.Current()
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 2)

	r1 := loaded.Rows[0]
	require.NotNil(t, r1.Capability)
	assert.Equal(t, "research.perplexity", r1.Capability.Name())
	assert.Equal(t, "🔬", r1.Capability.Icon())
	assert.True(t, r1.Parallel)

	r2 := loaded.Rows[1]
	assert.Nil(t, r2.Capability)
	assert.Equal(t, criteria.StatusBlocked, r2.Status)
	assert.Equal(t, criteria.VerifyBlocked, r2.VerifyResult)
	assert.Equal(t, "CI down", r2.BlockedReason)
	assert.False(t, r2.Parallel)
	assert.Len(t, loaded.Log, 5)
}

func TestSave_DocumentShape(t *testing.T) {
	s := testStore(t)
	e, tbl := createTable(t, s)
	_, err := e.AddRow(tbl, "Toggle works", criteria.SourceExplicit, true)
	require.NoError(t, err)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	for _, key := range []string{"request", "effort", "created", "lastModified", "phase", "iteration", "rows", "log"} {
		assert.Contains(t, doc, key)
	}
	rows := doc["rows"].([]any)
	row := rows[0].(map[string]any)
	assert.Equal(t, "PENDING", row["status"])
	assert.NotContains(t, row, "capabilityIcon")
}

func TestLoad_CorruptDocument(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0644))

	_, err := s.Load()
	require.Error(t, err)
	assert.True(t, errors.Is(err, criteria.ErrParse), "expected ErrParse, got %v", err)

	_, err = s.ArchiveAndClear()
	assert.ErrorIs(t, err, criteria.ErrParse)

	data, _ := os.ReadFile(s.Path())
	assert.Equal(t, "{not json", string(data), "corrupt document must be left alone")
}

func TestArchiveAndClear(t *testing.T) {
	s := testStore(t)
	e, tbl := createTable(t, s)
	_, err := e.AddRow(tbl, "Toggle works", criteria.SourceExplicit, true)
	require.NoError(t, err)

	path, err := s.ArchiveAndClear()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "archive-1772600767000.json"), path)

	archives, err := s.Archives()
	require.NoError(t, err)
	require.Len(t, archives, 1)

	data, err := os.ReadFile(archives[0])
	require.NoError(t, err)
	var archived criteria.Table
	require.NoError(t, json.Unmarshal(data, &archived))
	require.Len(t, archived.Rows, 1)
	assert.Equal(t, "Toggle works", archived.Rows[0].Description)

	loaded, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, loaded)
	_, err = s.Current()
	assert.ErrorIs(t, err, criteria.ErrNoCurrentTable)
}

func TestArchiveAndClear_NoTable(t *testing.T) {
	s := testStore(t)

	path, err := s.ArchiveAndClear()
	require.NoError(t, err)
	assert.Empty(t, path)

	archives, err := s.Archives()
	require.NoError(t, err)
	assert.Empty(t, archives)
}

func TestArchiveAndClear_SameMillisecond(t *testing.T) {
	s := testStore(t)

	var paths []string
	for i := 0; i < 3; i++ {
		createTable(t, s)
		path, err := s.ArchiveAndClear()
		require.NoError(t, err)
		paths = append(paths, path)
	}

	assert.Len(t, paths, 3)
	assert.NotEqual(t, paths[0], paths[1])
	assert.NotEqual(t, paths[1], paths[2])

	archives, err := s.Archives()
	require.NoError(t, err)
	assert.Equal(t, paths, archives, "archives should sort in creation order")
}

func TestArchiveAndClear_RecordsCatalog(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.MkdirAll(s.Dir(), 0755))
	c, err := OpenCatalog(filepath.Join(s.Dir(), CatalogFile))
	require.NoError(t, err)
	s.UseCatalog(c)
	t.Cleanup(func() { s.Close() })

	e, tbl := createTable(t, s)
	_, err = e.AddRow(tbl, "a", criteria.SourceExplicit, true)
	require.NoError(t, err)
	_, err = e.AddRow(tbl, "b", criteria.SourceExplicit, true)
	require.NoError(t, err)
	_, err = e.UpdateRowStatus(tbl, 1, criteria.StatusDone, "")
	require.NoError(t, err)

	path, err := s.ArchiveAndClear()
	require.NoError(t, err)

	entries, err := s.Catalog().List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, tbl.ID, entries[0].TableID)
	assert.Equal(t, "Add dark mode", entries[0].Request)
	assert.Equal(t, 2, entries[0].Rows)
	assert.Equal(t, 1, entries[0].Done)
	assert.Equal(t, path, entries[0].Path)
}
