// Package storage persists topic maps in SQLite.
//
// Every mutation runs in a single transaction: the entity row, its base
// names, member row, attributes, the injected creation timestamp and any
// full-text index rows are written together or not at all. Reads go straight
// to the connection pool and report a missing entity as a nil result rather
// than an error.
package storage

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/topicdb/db"
	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// querier is satisfied by both *sql.DB and *sql.Tx so that helpers compose
// inside a caller's transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the topic map storage engine
type Store struct {
	db     *sql.DB
	logger *zap.SugaredLogger
	index  topicmap.SearchIndex
	now    func() time.Time
}

// Option configures a Store
type Option func(*Store)

// WithSearchIndex mirrors occurrence text into an external search index
func WithSearchIndex(index topicmap.SearchIndex) Option {
	return func(s *Store) {
		s.index = index
	}
}

// WithClock overrides the clock used for creation timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a store over an open database. A nil logger disables logging.
func NewStore(database *sql.DB, log *zap.SugaredLogger, opts ...Option) *Store {
	s := &Store{
		db:     database,
		logger: logger.OrNop(log).Named("storage"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying database handle
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateDatabase applies the schema. Safe to call on an initialized database.
func (s *Store) CreateDatabase(ctx context.Context) error {
	return db.CreateDatabase(ctx, s.db, s.logger)
}

// withTx runs fn in a transaction, committing only if fn succeeds
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIntegrity(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIntegrity(err, "failed to commit transaction")
	}
	return nil
}

// check applies the ontology policy against the committed state of the map
func (s *Store) check(ctx context.Context, mapID int64, mode ontology.Mode, entity any) error {
	return s.refused(mapID, mode, ontology.Policy{Checker: s}.Check(ctx, mapID, mode, entity))
}

// checkScope applies the ontology policy to a scope on its own
func (s *Store) checkScope(ctx context.Context, mapID int64, mode ontology.Mode, scope string) error {
	return s.refused(mapID, mode, ontology.Policy{Checker: s}.CheckScope(ctx, mapID, mode, scope))
}

// refused logs an ontology refusal and passes err through
func (s *Store) refused(mapID int64, mode ontology.Mode, err error) error {
	if errors.IsOntologyViolation(err) {
		s.logger.Warnw("Ontology check refused write",
			logger.FieldMapID, mapID,
			logger.FieldMode, mode.String(),
			logger.FieldError, err.Error(),
		)
	}
	return err
}

// timestamp returns the creation timestamp attribute for an entity
func (s *Store) timestamp(entityIdentifier string) *types.Attribute {
	return types.NewAttribute(
		types.CreationTimestampAttribute,
		s.now().UTC().Format(time.RFC3339Nano),
		entityIdentifier,
		types.TimestampType,
	)
}

// withTimestamp appends a creation timestamp unless the entity already carries one
func (s *Store) withTimestamp(entity *types.Entity) {
	if entity.GetAttributeByName(types.CreationTimestampAttribute) == nil {
		entity.AddAttribute(s.timestamp(entity.Identifier))
	}
}

func validMapID(mapID int64) error {
	if mapID <= 0 {
		return errors.NewInvalidRequestError("map identifier must be positive, got %d", mapID)
	}
	return nil
}

func validPage(offset, limit int) error {
	if offset < 0 || limit < 0 {
		return errors.NewInvalidRequestError("offset and limit must be >= 0, got %d and %d", offset, limit)
	}
	return nil
}

// nullable stores empty strings as NULL
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// rowsAffected reports whether an UPDATE or DELETE touched anything
func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.WrapIntegrity(err, "failed to read affected rows")
	}
	return n > 0, nil
}
