package cli

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"github.com/imkarma/isc/internal/config"
	"github.com/imkarma/isc/internal/criteria"
	"github.com/imkarma/isc/internal/store"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

// dataDir resolves where the table documents live.
func dataDir() string {
	if dir := viper.GetString("dir"); dir != "" {
		return dir
	}
	if pai := viper.GetString("pai_dir"); pai != "" {
		return filepath.Join(pai, "MEMORY", "Work")
	}
	home := viper.GetString("home")
	if home == "" {
		home = "~"
	}
	return filepath.Join(home, ".config", "pai", "MEMORY", "Work")
}

// loadConfig reads isc.yaml from the data directory, falling back to defaults.
func loadConfig() (*config.Config, error) {
	return config.LoadOptional(config.Path(dataDir()))
}

// openStore opens the store for the data directory and attaches the
// archive catalog when the config enables it.
func openStore(cfg *config.Config) (*store.Store, error) {
	dir := dataDir()
	s := store.New(dir)
	if !cfg.CatalogEnabled() {
		return s, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	c, err := store.OpenCatalog(filepath.Join(dir, store.CatalogFile))
	if err != nil {
		// Archives are still written without the catalog.
		log.Printf("archive catalog unavailable: %v", err)
		return s, nil
	}
	s.UseCatalog(c)
	return s, nil
}

// session bundles what every table command needs.
type session struct {
	cfg    *config.Config
	store  *store.Store
	engine criteria.Engine
}

func (s *session) Close() error {
	return s.store.Close()
}

// openSession loads config and opens the store.
func openSession() (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, store: st, engine: criteria.New(st)}, nil
}

// mustTable opens a session and loads the current table, failing with
// ErrNoCurrentTable if there is none.
func mustTable() (*session, *criteria.Table, error) {
	s, err := openSession()
	if err != nil {
		return nil, nil, err
	}
	t, err := s.store.Current()
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	return s, t, nil
}

// parseRowID parses a --row value.
func parseRowID(v string) (int, error) {
	if v == "" {
		return 0, fmt.Errorf("--row is required: %w", criteria.ErrInvalidArgument)
	}
	id, err := strconv.Atoi(v)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid row ID: %s: %w", v, criteria.ErrInvalidArgument)
	}
	return id, nil
}
