package storage

import (
	"context"
	"database/sql"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

func insertBaseName(ctx context.Context, q querier, mapID int64, topicIdentifier string, name types.BaseName) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO basename (map_identifier, identifier, name, topic_identifier, scope, language) VALUES (?, ?, ?, ?, ?, ?)",
		mapID, name.Identifier, name.Name, topicIdentifier, name.Scope, string(name.Language))
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to insert base name of %s", topicIdentifier)
	}
	return nil
}

// loadBaseNames returns a topic's base names in creation order, optionally
// restricted to a scope and/or language.
func loadBaseNames(ctx context.Context, q querier, mapID int64, topicIdentifier, scope string, language types.Language) ([]types.BaseName, error) {
	qb := newQueryBuilder("map_identifier", mapID)
	qb.addClause("topic_identifier = ?", topicIdentifier)
	qb.addEqual("scope", slug.Normalize(scope))
	qb.addEqual("language", string(language))

	rows, err := q.QueryContext(ctx,
		"SELECT identifier, name, scope, language FROM basename"+qb.where()+" ORDER BY rowid",
		qb.args...)
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to query base names of %s", topicIdentifier)
	}
	defer rows.Close()

	var names []types.BaseName
	for rows.Next() {
		var b types.BaseName
		var language string
		if err := rows.Scan(&b.Identifier, &b.Name, &b.Scope, &language); err != nil {
			return nil, errors.WrapIntegrity(err, "failed to scan base name")
		}
		b.Language = types.Language(language)
		names = append(names, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate base names")
	}
	return names, nil
}

// CreateBaseName adds a name to an existing topic or association.
// In strict mode the name's scope must exist as a topic.
func (s *Store) CreateBaseName(ctx context.Context, mapID int64, topicIdentifier string, name types.BaseName, mode ontology.Mode) error {
	topicIdentifier, err := slug.Required("topic_identifier", topicIdentifier)
	if err != nil {
		return err
	}
	if err := name.Normalize(); err != nil {
		return err
	}

	if err := s.checkScope(ctx, mapID, mode, name.Scope); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := topicExists(ctx, tx, mapID, topicIdentifier)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NewNotFoundError("topic %q in map %d", topicIdentifier, mapID)
		}
		return insertBaseName(ctx, tx, mapID, topicIdentifier, name)
	})
}

// UpdateBaseName replaces the text, scope and language of a base name
func (s *Store) UpdateBaseName(ctx context.Context, mapID int64, identifier, name, scope string, language types.Language) error {
	if name == "" {
		return errors.NewEmptyFieldError("name")
	}
	scope = slug.Optional(scope, types.UniversalScope)
	if language == "" {
		language = types.DefaultLanguage
	}
	if !language.Valid() {
		return errors.NewInvalidRequestError("unknown language %q", string(language))
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE basename SET name = ?, scope = ?, language = ? WHERE map_identifier = ? AND identifier = ?",
			name, scope, string(language), mapID, identifier)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to update base name %s", identifier)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("base name %q in map %d", identifier, mapID)
		}
		return nil
	})
}

// DeleteBaseName removes a base name. A topic's last base name cannot be removed.
func (s *Store) DeleteBaseName(ctx context.Context, mapID int64, identifier string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		var topicIdentifier string
		err := tx.QueryRowContext(ctx,
			"SELECT topic_identifier FROM basename WHERE map_identifier = ? AND identifier = ?",
			mapID, identifier).Scan(&topicIdentifier)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("base name %q in map %d", identifier, mapID)
		}
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to look up base name %s", identifier)
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM basename WHERE map_identifier = ? AND topic_identifier = ?",
			mapID, topicIdentifier).Scan(&count); err != nil {
			return errors.WrapIntegrityf(err, "failed to count base names of %s", topicIdentifier)
		}
		if count <= 1 {
			return errors.NewInvalidRequestError("cannot remove the last base name of %q", topicIdentifier)
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM basename WHERE map_identifier = ? AND identifier = ?",
			mapID, identifier); err != nil {
			return errors.WrapIntegrityf(err, "failed to delete base name %s", identifier)
		}

		s.logger.Debugw("Deleted base name", logger.FieldMapID, mapID, logger.FieldTopicID, topicIdentifier)
		return nil
	})
}
