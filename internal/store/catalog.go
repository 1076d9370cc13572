package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ArchiveEntry describes one archived table generation.
type ArchiveEntry struct {
	ID         int64     `json:"id"`
	TableID    string    `json:"table_id,omitempty"`
	Request    string    `json:"request"`
	Effort     string    `json:"effort"`
	Phase      string    `json:"phase"`
	Iteration  int       `json:"iteration"`
	Rows       int       `json:"rows"`
	Done       int       `json:"done"`
	Path       string    `json:"path"`
	ArchivedAt time.Time `json:"archived_at"`
}

// Catalog indexes archive documents in a SQLite database. The archive
// files stay authoritative; the catalog only makes them listable.
type Catalog struct {
	db *sql.DB
}

// OpenCatalog opens (or creates) the catalog database at dbPath.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	c := &Catalog{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS archives (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		table_id     TEXT DEFAULT '',
		request      TEXT NOT NULL,
		effort       TEXT DEFAULT '',
		phase        TEXT DEFAULT '',
		iteration    INTEGER NOT NULL DEFAULT 1,
		rows         INTEGER NOT NULL DEFAULT 0,
		done         INTEGER NOT NULL DEFAULT 0,
		path         TEXT NOT NULL,
		archived_at  DATETIME NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Record inserts an entry and returns it with the generated ID.
func (c *Catalog) Record(e ArchiveEntry) (ArchiveEntry, error) {
	if e.ArchivedAt.IsZero() {
		e.ArchivedAt = time.Now().UTC()
	}
	res, err := c.db.Exec(
		`INSERT INTO archives (table_id, request, effort, phase, iteration, rows, done, path, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TableID, e.Request, e.Effort, e.Phase, e.Iteration, e.Rows, e.Done, e.Path, e.ArchivedAt,
	)
	if err != nil {
		return e, fmt.Errorf("insert archive: %w", err)
	}
	e.ID, _ = res.LastInsertId()
	return e, nil
}

// List returns catalog entries, newest first.
func (c *Catalog) List() ([]ArchiveEntry, error) {
	rows, err := c.db.Query(
		`SELECT id, table_id, request, effort, phase, iteration, rows, done, path, archived_at
		 FROM archives ORDER BY archived_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}
	defer rows.Close()

	var entries []ArchiveEntry
	for rows.Next() {
		var e ArchiveEntry
		if err := rows.Scan(&e.ID, &e.TableID, &e.Request, &e.Effort, &e.Phase, &e.Iteration,
			&e.Rows, &e.Done, &e.Path, &e.ArchivedAt); err != nil {
			return nil, fmt.Errorf("scan archive: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
