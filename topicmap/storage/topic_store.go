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

// TopicExists reports whether identifier is a topic or association in the map
func (s *Store) TopicExists(ctx context.Context, mapID int64, identifier string) (bool, error) {
	return topicExists(ctx, s.db, mapID, identifier)
}

func topicExists(ctx context.Context, q querier, mapID int64, identifier string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM topic WHERE map_identifier = ? AND identifier = ? LIMIT 1",
		mapID, identifier).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIntegrityf(err, "failed to check topic %s", identifier)
	}
	return true, nil
}

// CreateTopic persists a topic with its base names, attributes and
// occurrences, adding a creation timestamp attribute when none is present.
func (s *Store) CreateTopic(ctx context.Context, mapID int64, topic *types.Topic, mode ontology.Mode) error {
	if err := validMapID(mapID); err != nil {
		return err
	}
	if topic == nil {
		return errors.NewInvalidRequestError("nil topic")
	}
	if err := topic.Normalize(); err != nil {
		return err
	}
	if err := s.check(ctx, mapID, mode, topic); err != nil {
		return err
	}
	for _, occurrence := range topic.Occurrences {
		if err := s.check(ctx, mapID, mode, occurrence); err != nil {
			return err
		}
	}

	s.withTimestamp(&topic.Entity)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.insertTopic(ctx, tx, mapID, topic, sql.NullString{})
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Created topic",
		logger.FieldMapID, mapID,
		logger.FieldTopicID, topic.Identifier,
		logger.FieldInstanceOf, topic.InstanceOf,
	)
	return nil
}

// insertTopic writes the topic row and everything hanging off it.
// A valid scope marks the row as an association.
func (s *Store) insertTopic(ctx context.Context, q querier, mapID int64, topic *types.Topic, scope sql.NullString) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO topic (map_identifier, identifier, instance_of, scope) VALUES (?, ?, ?, ?)",
		mapID, topic.Identifier, topic.InstanceOf, scope)
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to insert topic %s", topic.Identifier)
	}

	for _, name := range topic.BaseNames {
		if err := insertBaseName(ctx, q, mapID, topic.Identifier, name); err != nil {
			return err
		}
	}

	for _, attribute := range topic.Attributes {
		if err := insertAttribute(ctx, q, mapID, attribute); err != nil {
			return err
		}
	}

	for _, occurrence := range topic.Occurrences {
		s.withTimestamp(&occurrence.Entity)
		if err := s.insertOccurrence(ctx, q, mapID, occurrence); err != nil {
			return err
		}
	}
	return nil
}

// GetTopic returns the topic, or nil if the map has no topic with that
// identifier. Associations are never returned here.
func (s *Store) GetTopic(ctx context.Context, mapID int64, identifier string, opts types.TopicOptions) (*types.Topic, error) {
	return getTopic(ctx, s.db, mapID, slug.Normalize(identifier), opts)
}

func getTopic(ctx context.Context, q querier, mapID int64, identifier string, opts types.TopicOptions) (*types.Topic, error) {
	topic := &types.Topic{}
	err := q.QueryRowContext(ctx,
		"SELECT identifier, instance_of FROM topic WHERE map_identifier = ? AND identifier = ? AND scope IS NULL",
		mapID, identifier).Scan(&topic.Identifier, &topic.InstanceOf)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get topic %s", identifier)
	}

	if err := resolveTopic(ctx, q, mapID, topic, opts); err != nil {
		return nil, err
	}
	return topic, nil
}

// resolveTopic fills base names and, on request, attributes and occurrences
func resolveTopic(ctx context.Context, q querier, mapID int64, topic *types.Topic, opts types.TopicOptions) error {
	names, err := loadBaseNames(ctx, q, mapID, topic.Identifier, opts.Scope, opts.Language)
	if err != nil {
		return err
	}
	topic.BaseNames = names

	if opts.ResolveAttributes {
		attributes, err := loadAttributes(ctx, q, mapID, topic.Identifier, types.AttributeFilter{
			Scope:    opts.Scope,
			Language: opts.Language,
		})
		if err != nil {
			return err
		}
		topic.Attributes = attributes
	}

	if opts.ResolveOccurrences {
		occurrences, err := loadOccurrences(ctx, q, mapID, topic.Identifier, types.OccurrenceFilter{
			Scope:    opts.Scope,
			Language: opts.Language,
		})
		if err != nil {
			return err
		}
		topic.Occurrences = occurrences
	}
	return nil
}

// applyListOptions adds the ListOptions filters for a topic table aliased as prefix
func applyListOptions(qb *queryBuilder, prefix string, opts types.ListOptions) {
	qb.addEqual(prefix+"instance_of", slug.Normalize(opts.InstanceOf))
	qb.addPrefix(prefix+"identifier", slug.Normalize(opts.Query))
	if opts.FilterBaseTopics {
		qb.addNotIn(prefix+"identifier", ontology.BaseTopicIdentifiers())
	}
}

// GetTopicIdentifiers lists plain topic identifiers in identifier order
func (s *Store) GetTopicIdentifiers(ctx context.Context, mapID int64, opts types.ListOptions) ([]string, error) {
	if err := validPage(opts.Offset, opts.Limit); err != nil {
		return nil, err
	}

	qb := newQueryBuilder("map_identifier", mapID)
	qb.addClause("scope IS NULL")
	applyListOptions(qb, "", opts)

	query := "SELECT identifier FROM topic" + qb.where() + " ORDER BY identifier"
	query += qb.paginate(opts.Offset, opts.Limit)

	return queryStrings(ctx, s.db, query, qb.args...)
}

// GetTopics lists plain topics in identifier order with their base names
func (s *Store) GetTopics(ctx context.Context, mapID int64, opts types.ListOptions) ([]*types.Topic, error) {
	identifiers, err := s.GetTopicIdentifiers(ctx, mapID, opts)
	if err != nil {
		return nil, err
	}
	return getTopics(ctx, s.db, mapID, identifiers, types.TopicOptions{Language: opts.Language})
}

func getTopics(ctx context.Context, q querier, mapID int64, identifiers []string, opts types.TopicOptions) ([]*types.Topic, error) {
	topics := make([]*types.Topic, 0, len(identifiers))
	for _, identifier := range identifiers {
		topic, err := getTopic(ctx, q, mapID, identifier, opts)
		if err != nil {
			return nil, err
		}
		if topic != nil {
			topics = append(topics, topic)
		}
	}
	return topics, nil
}

// GetTopicNames lists identifier, type and first base name of plain topics
func (s *Store) GetTopicNames(ctx context.Context, mapID int64, opts types.ListOptions) ([]types.TopicName, error) {
	if err := validPage(opts.Offset, opts.Limit); err != nil {
		return nil, err
	}

	nameQuery := "SELECT b.name FROM basename b WHERE b.map_identifier = t.map_identifier AND b.topic_identifier = t.identifier"
	var args []interface{}
	if opts.Language != "" {
		nameQuery += " AND b.language = ?"
		args = append(args, string(opts.Language))
	}
	nameQuery += " ORDER BY b.rowid LIMIT 1"
	args = append(args, types.UndefinedName)

	qb := newQueryBuilder("t.map_identifier", mapID)
	qb.addClause("t.scope IS NULL")
	applyListOptions(qb, "t.", opts)

	query := "SELECT t.identifier, t.instance_of, COALESCE((" + nameQuery + "), ?) FROM topic t" +
		qb.where() + " ORDER BY t.identifier"
	query += qb.paginate(opts.Offset, opts.Limit)
	args = append(args, qb.args...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIntegrity(err, "failed to list topic names")
	}
	defer rows.Close()

	var names []types.TopicName
	for rows.Next() {
		var n types.TopicName
		if err := rows.Scan(&n.Identifier, &n.InstanceOf, &n.Name); err != nil {
			return nil, errors.WrapIntegrity(err, "failed to scan topic name")
		}
		names = append(names, n)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate topic names")
	}
	return names, nil
}

// UpdateTopicInstanceOf retypes a topic
func (s *Store) UpdateTopicInstanceOf(ctx context.Context, mapID int64, identifier, instanceOf string, mode ontology.Mode) error {
	identifier, err := slug.Required("identifier", identifier)
	if err != nil {
		return err
	}
	instanceOf, err = slug.Required("instance_of", instanceOf)
	if err != nil {
		return err
	}
	probe := &types.Topic{Entity: types.Entity{Identifier: identifier, InstanceOf: instanceOf}}
	if err := s.check(ctx, mapID, mode, probe); err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE topic SET instance_of = ? WHERE map_identifier = ? AND identifier = ? AND scope IS NULL",
			instanceOf, mapID, identifier)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to update instance-of of %s", identifier)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("topic %q in map %d", identifier, mapID)
		}
		return nil
	})
}

// identifierReferences lists every column that holds a topic reference.
// Renaming a topic rewrites all of them in one transaction.
var identifierReferences = []struct{ table, column string }{
	{"topic", "identifier"},
	{"topic", "instance_of"},
	{"topic", "scope"},
	{"basename", "topic_identifier"},
	{"basename", "scope"},
	{"occurrence", "topic_identifier"},
	{"occurrence", "instance_of"},
	{"occurrence", "scope"},
	{"attribute", "entity_identifier"},
	{"attribute", "scope"},
	{"member", "src_topic_ref"},
	{"member", "dest_topic_ref"},
}

// UpdateTopicIdentifier renames a topic and every reference to it.
// Fails when the new identifier is taken, or in strict mode when the topic
// is a base topic.
func (s *Store) UpdateTopicIdentifier(ctx context.Context, mapID int64, oldIdentifier, newIdentifier string, mode ontology.Mode) error {
	oldIdentifier, err := slug.Required("identifier", oldIdentifier)
	if err != nil {
		return err
	}
	newIdentifier, err = slug.Required("new_identifier", newIdentifier)
	if err != nil {
		return err
	}
	if oldIdentifier == newIdentifier {
		return nil
	}
	if mode == ontology.Strict && ontology.IsBaseTopic(oldIdentifier) {
		s.logger.Warnw("Refused to rename base topic", logger.FieldMapID, mapID, logger.FieldTopicID, oldIdentifier)
		return errors.NewProtectedTopicError("%q is a base topic", oldIdentifier)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		topic, err := getTopic(ctx, tx, mapID, oldIdentifier, types.TopicOptions{})
		if err != nil {
			return err
		}
		if topic == nil {
			return errors.NewNotFoundError("topic %q in map %d", oldIdentifier, mapID)
		}

		taken, err := topicExists(ctx, tx, mapID, newIdentifier)
		if err != nil {
			return err
		}
		if taken {
			return errors.NewDuplicateIdentifierError("%q already exists in map %d", newIdentifier, mapID)
		}

		for _, ref := range identifierReferences {
			query := "UPDATE " + ref.table + " SET " + ref.column + " = ? WHERE map_identifier = ? AND " + ref.column + " = ?"
			if _, err := tx.ExecContext(ctx, query, newIdentifier, mapID, oldIdentifier); err != nil {
				return errors.WrapIntegrityf(err, "failed to rename %s.%s", ref.table, ref.column)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Renamed topic",
		logger.FieldMapID, mapID,
		logger.FieldTopicID, newIdentifier,
		"previous_identifier", oldIdentifier,
	)
	return nil
}

// DeleteTopic deletes a topic together with every association it takes part
// in, its occurrences, attributes and base names. Associations must go
// through DeleteAssociation; base topics are protected in strict mode.
func (s *Store) DeleteTopic(ctx context.Context, mapID int64, identifier string, mode ontology.Mode) error {
	identifier, err := slug.Required("identifier", identifier)
	if err != nil {
		return err
	}
	if mode == ontology.Strict && ontology.IsBaseTopic(identifier) {
		s.logger.Warnw("Refused to delete base topic", logger.FieldMapID, mapID, logger.FieldTopicID, identifier)
		return errors.NewProtectedTopicError("%q is a base topic", identifier)
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var scope sql.NullString
		err := tx.QueryRowContext(ctx,
			"SELECT scope FROM topic WHERE map_identifier = ? AND identifier = ?",
			mapID, identifier).Scan(&scope)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("topic %q in map %d", identifier, mapID)
		}
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to look up topic %s", identifier)
		}
		if scope.Valid {
			return errors.NewInvalidRequestError("%q is an association; delete it as an association", identifier)
		}

		associations, err := queryStrings(ctx, tx,
			"SELECT association_identifier FROM member WHERE map_identifier = ? AND (src_topic_ref = ? OR dest_topic_ref = ?) ORDER BY rowid",
			mapID, identifier, identifier)
		if err != nil {
			return err
		}
		for _, association := range associations {
			if err := s.deleteAssociation(ctx, tx, mapID, association); err != nil {
				return err
			}
		}

		return s.deleteTopicRows(ctx, tx, mapID, identifier)
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Deleted topic", logger.FieldMapID, mapID, logger.FieldTopicID, identifier)
	return nil
}

// deleteTopicRows removes a topic row (plain or association) with its
// occurrences, attributes and base names. Member rows are left to the caller.
func (s *Store) deleteTopicRows(ctx context.Context, q querier, mapID int64, identifier string) error {
	if err := s.deleteTopicOccurrences(ctx, q, mapID, identifier); err != nil {
		return err
	}

	statements := []string{
		"DELETE FROM attribute WHERE map_identifier = ? AND entity_identifier = ?",
		"DELETE FROM basename WHERE map_identifier = ? AND topic_identifier = ?",
		"DELETE FROM topic WHERE map_identifier = ? AND identifier = ?",
	}
	for _, statement := range statements {
		if _, err := q.ExecContext(ctx, statement, mapID, identifier); err != nil {
			return errors.WrapIntegrityf(err, "failed to delete %s", identifier)
		}
	}
	return nil
}

// GetTopicIdentifiersByAttributeName lists plain topics carrying an attribute with the given name
func (s *Store) GetTopicIdentifiersByAttributeName(ctx context.Context, mapID int64, name string, filter types.AttributeFilter) ([]string, error) {
	name, err := slug.Required("name", name)
	if err != nil {
		return nil, err
	}

	qb := newQueryBuilder("t.map_identifier", mapID)
	qb.addClause("t.scope IS NULL")
	qb.addClause("a.name = ?", name)
	qb.addEqual("t.instance_of", slug.Normalize(filter.InstanceOf))
	qb.addEqual("a.scope", slug.Normalize(filter.Scope))
	qb.addEqual("a.language", string(filter.Language))

	query := "SELECT DISTINCT t.identifier FROM topic t JOIN attribute a" +
		" ON a.map_identifier = t.map_identifier AND a.entity_identifier = t.identifier" +
		qb.where() + " ORDER BY t.identifier"

	return queryStrings(ctx, s.db, query, qb.args...)
}

// GetTopicsByAttributeName resolves the topics carrying an attribute with the given name
func (s *Store) GetTopicsByAttributeName(ctx context.Context, mapID int64, name string, filter types.AttributeFilter) ([]*types.Topic, error) {
	identifiers, err := s.GetTopicIdentifiersByAttributeName(ctx, mapID, name, filter)
	if err != nil {
		return nil, err
	}
	return getTopics(ctx, s.db, mapID, identifiers, types.TopicOptions{Language: filter.Language})
}

// queryStrings runs a single-column query and collects the values
func queryStrings(ctx context.Context, q querier, query string, args ...interface{}) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIntegrity(err, "query failed")
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, errors.WrapIntegrity(err, "failed to scan row")
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate rows")
	}
	return values, nil
}
