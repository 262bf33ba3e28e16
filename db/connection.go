package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/teranos/topicdb/errors"
)

// SQLiteBusyTimeoutMS is the default time a connection waits on a locked database.
const SQLiteBusyTimeoutMS = 5000

// Options tunes how a database file is opened.
type Options struct {
	BusyTimeoutMS int
}

// Option mutates Options.
type Option func(*Options)

// WithBusyTimeout overrides the busy timeout in milliseconds (values <= 0 keep the default).
func WithBusyTimeout(ms int) Option {
	return func(o *Options) {
		if ms > 0 {
			o.BusyTimeoutMS = ms
		}
	}
}

// Open opens a SQLite database at the specified path with the settings the
// topic map engine relies on:
//   - WAL journal, so readers proceed while a writer holds the lock
//   - immediate transactions, so writers serialize instead of failing on lock upgrade
//   - a busy timeout, so serialized writers wait rather than erroring
//
// The settings travel in the DSN so that every pooled connection gets them.
// If logger is provided, logs database operations; otherwise operates silently.
func Open(path string, logger *zap.SugaredLogger, opts ...Option) (*sql.DB, error) {
	options := Options{BusyTimeoutMS: SQLiteBusyTimeoutMS}
	for _, opt := range opts {
		opt(&options)
	}

	if logger != nil {
		logger.Debugw("Opening database", "path", path)
	}

	db, err := sql.Open("sqlite3", dsn(path, options))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	// sql.Open is lazy; surface bad paths here rather than on first query
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to database at %s", path)
	}

	if logger != nil {
		logger.Infow("Database opened successfully",
			"path", path,
			"wal_mode", true,
			"busy_timeout_ms", options.BusyTimeoutMS,
		)
	}

	return db, nil
}

func dsn(path string, options Options) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_journal_mode=WAL&_foreign_keys=on&_busy_timeout=%d&_txlock=immediate",
		path, sep, options.BusyTimeoutMS)
}
