// Package store is the persistence engine backing saved radio interface
// records, implemented over SQLite through Bun.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/rnodetools/rnodectl/internal/radio"
)

// ErrNotFound is returned when no interface record has the requested id.
var ErrNotFound = errors.New("interface not found")

// SavedInterface is one persisted record plus its row id.
type SavedInterface struct {
	ID     int64
	Config radio.RadioInterfaceConfig
}

// Store persists RadioInterfaceConfig records in SQLite.
type Store struct {
	db     *bun.DB
	logger *logrus.Logger
}

// Open opens (creating if needed) the interface database at dsn. Use
// "file::memory:?cache=shared" for an ephemeral store in tests.
func Open(dsn string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open interface database: %w", err)
	}

	s := &Store{
		db:     bun.NewDB(sqlDB, sqlitedialect.New()),
		logger: logger,
	}
	if err := s.migrate(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*RadioInterfaceModel)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create radio_interfaces table: %w", err)
	}
	return nil
}

// Insert stores a new interface record and returns its id.
func (s *Store) Insert(ctx context.Context, cfg radio.RadioInterfaceConfig) (int64, error) {
	m := toModel(cfg)
	if _, err := s.db.NewInsert().Model(m).Returning("id").Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to insert interface: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"id":        m.ID,
		"interface": cfg.Name,
	}).Debug("Inserted interface record")
	return m.ID, nil
}

// Update replaces the record with the given id.
func (s *Store) Update(ctx context.Context, id int64, cfg radio.RadioInterfaceConfig) error {
	m := toModel(cfg)
	m.ID = id

	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update interface %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}

	s.logger.WithFields(logrus.Fields{
		"id":        id,
		"interface": cfg.Name,
	}).Debug("Updated interface record")
	return nil
}

// Get retrieves one record by id.
func (s *Store) Get(ctx context.Context, id int64) (*SavedInterface, error) {
	m := new(RadioInterfaceModel)
	err := s.db.NewSelect().Model(m).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load interface %d: %w", id, err)
	}

	cfg, err := fromModel(m)
	if err != nil {
		return nil, err
	}
	return &SavedInterface{ID: m.ID, Config: cfg}, nil
}

// List returns all saved interfaces ordered by name.
func (s *Store) List(ctx context.Context) ([]SavedInterface, error) {
	var models []RadioInterfaceModel
	if err := s.db.NewSelect().Model(&models).OrderExpr("name").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	out := make([]SavedInterface, 0, len(models))
	for i := range models {
		cfg, err := fromModel(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, SavedInterface{ID: models[i].ID, Config: cfg})
	}
	return out, nil
}

// Delete removes the record with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().Model((*RadioInterfaceModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete interface %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
