package commands

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teranos/topicdb/am"
	"github.com/teranos/topicdb/db"
	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/storage"
)

// Persistent flags shared by every command, bound in main
var (
	DBPath       string
	UserID       int64
	OntologyMode string
)

// session is an open database plus the store and settings a command works with
type session struct {
	cfg   *am.Config
	db    *sql.DB
	store *storage.Store
	user  topicmap.UserIdentity
}

// openSession loads configuration, opens the database and makes sure the
// schema is in place. Callers must Close the session.
func openSession(ctx context.Context) (*session, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	path := DBPath
	if path == "" {
		path = cfg.GetDatabasePath()
	}

	log := componentLogger(ctx, "storage")
	database, err := db.Open(path, log, db.WithBusyTimeout(cfg.Database.BusyTimeoutMS))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}

	store := storage.NewStore(database, log)
	if err := store.CreateDatabase(ctx); err != nil {
		database.Close()
		return nil, errors.Wrapf(err, "failed to prepare schema in %s", path)
	}

	return &session{
		cfg:   cfg,
		db:    database,
		store: store,
		user:  topicmap.StaticUser(UserID),
	}, nil
}

// componentLogger names a logger for one component and tags it with the
// invocation and user carried by ctx
func componentLogger(ctx context.Context, component string) *zap.SugaredLogger {
	ctx = logger.WithUserID(ctx, UserID)
	return logger.LoggerFromContext(ctx, logger.ComponentLogger(component))
}

func (s *session) Close() error {
	return s.db.Close()
}

// mode resolves the ontology mode for writes: the --mode flag wins over config
func (s *session) mode() (ontology.Mode, error) {
	if OntologyMode != "" {
		return ontology.ParseMode(OntologyMode)
	}
	return ontology.ParseMode(s.cfg.Ontology.Mode)
}

func (s *session) userID(ctx context.Context) (int64, error) {
	return s.user.UserIdentifier(ctx)
}

// withSession runs fn against an open session and closes it afterwards
func withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s, args)
	}
}

func parseMapID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequestError("map identifier must be a positive integer, got %q", arg)
	}
	return id, nil
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequestError("user identifier must be a positive integer, got %q", arg)
	}
	return id, nil
}
