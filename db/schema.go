package db

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"

	"github.com/teranos/topicdb/errors"
)

//go:embed sqlite/schema.sql
var schemaSQL string

// SchemaVersion is the version written to schema_info by CreateDatabase.
const SchemaVersion = "1.0.0"

// schemaConstraint is the range of stored schema versions this build can read.
const schemaConstraint = "^1.0"

// CreateDatabase creates every table, index and the full-text index the topic
// map engine needs. It is idempotent: running it against an initialized
// database leaves the data untouched and only verifies the stored schema
// version is compatible.
func CreateDatabase(ctx context.Context, db *sql.DB, logger *zap.SugaredLogger) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIntegrity(err, "failed to begin schema transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return errors.WrapIntegrity(err, "failed to apply schema")
	}

	stored, err := storedSchemaVersion(ctx, tx)
	if err != nil {
		return err
	}

	if stored == "" {
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_info (version) VALUES (?)", SchemaVersion); err != nil {
			return errors.WrapIntegrity(err, "failed to record schema version")
		}
		stored = SchemaVersion
	} else if err := CheckSchemaVersion(stored); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIntegrity(err, "failed to commit schema")
	}

	if logger != nil {
		logger.Infow("Database schema ready", "schema_version", stored)
	}
	return nil
}

// CheckSchemaVersion verifies that a stored schema version can be served by this build.
func CheckSchemaVersion(stored string) error {
	v, err := semver.NewVersion(stored)
	if err != nil {
		return errors.WrapIntegrityf(err, "invalid schema version %q", stored)
	}
	c, err := semver.NewConstraint(schemaConstraint)
	if err != nil {
		return errors.Wrap(err, "invalid schema constraint")
	}
	if !c.Check(v) {
		return errors.WithHintf(
			errors.Mark(errors.Newf("schema version %s does not satisfy %s", stored, schemaConstraint), errors.ErrIntegrity),
			"the database was created by an incompatible release; export it with that release first",
		)
	}
	return nil
}

// GetSchemaVersion returns the schema version recorded in the database, or ""
// if the database has not been initialized.
func GetSchemaVersion(ctx context.Context, db *sql.DB) (string, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_info'").Scan(&exists)
	if err != nil {
		return "", errors.WrapIntegrity(err, "failed to inspect schema")
	}
	if exists == 0 {
		return "", nil
	}
	return storedSchemaVersion(ctx, db)
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func storedSchemaVersion(ctx context.Context, q rowQuerier) (string, error) {
	var version string
	err := q.QueryRowContext(ctx, "SELECT version FROM schema_info LIMIT 1").Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.WrapIntegrity(err, "failed to read schema version")
	}
	return version, nil
}
