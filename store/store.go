package store

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SVG-campus/ContractKit/config"
	"github.com/SVG-campus/ContractKit/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Store is the persistent entity store backing every core operation.
// All status changes go through conditional updates keyed by id and
// current status; callers never replace whole rows after a read.
type Store struct {
	db *gorm.DB

	// Per-contract locks serialize version minting (read-max-then-insert)
	// within this process; the unique index on (contract_id,
	// version_number) is the cross-process backstop.
	mu            sync.Mutex
	contractLocks map[string]*sync.Mutex
}

// Open connects to Postgres and migrates the schema.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store, err := New(db)
	if err != nil {
		return nil, err
	}

	slog.Info("database connected")
	return store, nil
}

// New wraps an existing GORM connection and migrates the schema. Tests use
// this with an in-memory SQLite connection.
func New(db *gorm.DB) (*Store, error) {
	err := db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Contract{},
		&model.Invoice{},
		&model.ContractVersion{},
		&model.Signature{},
		&model.AuditLog{},
		&model.Subscription{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Store{
		db:            db,
		contractLocks: make(map[string]*sync.Mutex),
	}, nil
}

// lockContract acquires the per-contract lock and returns its release.
func (s *Store) lockContract(contractID string) func() {
	s.mu.Lock()
	lock, ok := s.contractLocks[contractID]
	if !ok {
		lock = &sync.Mutex{}
		s.contractLocks[contractID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// notFound maps GORM's record-not-found onto the domain error.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.ErrNotFound
	}
	return err
}
