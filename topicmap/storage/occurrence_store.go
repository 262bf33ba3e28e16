package storage

import (
	"context"
	"database/sql"
	"strconv"
	"unicode/utf8"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// occurrenceColumns selects resource_data only when the caller asks for it
func occurrenceColumns(inline bool) string {
	data := "NULL"
	if inline {
		data = "resource_data"
	}
	return "identifier, instance_of, scope, resource_ref, " + data + ", topic_identifier, language"
}

func scanOccurrence(row rowScanner) (*types.Occurrence, error) {
	var o types.Occurrence
	var language string
	if err := row.Scan(&o.Identifier, &o.InstanceOf, &o.Scope, &o.ResourceRef, &o.ResourceData, &o.TopicIdentifier, &language); err != nil {
		return nil, err
	}
	o.Language = types.Language(language)
	return &o, nil
}

// textPayload returns the data as text when it can be full-text indexed
func textPayload(data []byte) (string, bool) {
	if len(data) == 0 || !utf8.Valid(data) {
		return "", false
	}
	return string(data), true
}

func (s *Store) insertOccurrence(ctx context.Context, q querier, mapID int64, o *types.Occurrence) error {
	var data interface{}
	if o.HasData() {
		data = o.ResourceData
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO occurrence (map_identifier, identifier, instance_of, scope, resource_ref, resource_data, topic_identifier, language) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		mapID, o.Identifier, o.InstanceOf, o.Scope, o.ResourceRef, data, o.TopicIdentifier, string(o.Language))
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to insert occurrence %s", o.Identifier)
	}

	for _, a := range o.Attributes {
		if err := insertAttribute(ctx, q, mapID, a); err != nil {
			return err
		}
	}

	return s.indexOccurrence(ctx, q, mapID, o.Identifier, o.ResourceData)
}

// indexOccurrence writes the text payload to the full-text table and the external index
func (s *Store) indexOccurrence(ctx context.Context, q querier, mapID int64, identifier string, data []byte) error {
	text, ok := textPayload(data)
	if !ok {
		return nil
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO occurrence_text (map_identifier, occurrence_identifier, resource_data) VALUES (?, ?, ?)",
		strconv.FormatInt(mapID, 10), identifier, text)
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to index occurrence %s", identifier)
	}
	if s.index != nil {
		if err := s.index.IndexOccurrence(ctx, mapID, identifier, text); err != nil {
			return errors.Wrapf(err, "search index rejected occurrence %s", identifier)
		}
	}
	return nil
}

// unindexOccurrence removes an occurrence from the full-text table and the external index
func (s *Store) unindexOccurrence(ctx context.Context, q querier, mapID int64, identifier string) error {
	_, err := q.ExecContext(ctx,
		"DELETE FROM occurrence_text WHERE map_identifier = ? AND occurrence_identifier = ?",
		strconv.FormatInt(mapID, 10), identifier)
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to unindex occurrence %s", identifier)
	}
	if s.index != nil {
		if err := s.index.RemoveOccurrence(ctx, mapID, identifier); err != nil {
			return errors.Wrapf(err, "search index failed to remove occurrence %s", identifier)
		}
	}
	return nil
}

// OccurrenceExists reports whether the occurrence exists
func (s *Store) OccurrenceExists(ctx context.Context, mapID int64, identifier string) (bool, error) {
	return occurrenceExists(ctx, s.db, mapID, slug.Normalize(identifier))
}

func occurrenceExists(ctx context.Context, q querier, mapID int64, identifier string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM occurrence WHERE map_identifier = ? AND identifier = ? LIMIT 1",
		mapID, identifier).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIntegrityf(err, "failed to check occurrence %s", identifier)
	}
	return true, nil
}

// CreateOccurrence persists an occurrence with its attributes and a creation
// timestamp, indexing text payloads for search.
func (s *Store) CreateOccurrence(ctx context.Context, mapID int64, occurrence *types.Occurrence, mode ontology.Mode) error {
	if err := validMapID(mapID); err != nil {
		return err
	}
	if occurrence == nil {
		return errors.NewInvalidRequestError("nil occurrence")
	}
	if err := occurrence.Normalize(); err != nil {
		return err
	}
	if err := s.check(ctx, mapID, mode, occurrence); err != nil {
		return err
	}

	s.withTimestamp(&occurrence.Entity)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		return s.insertOccurrence(ctx, tx, mapID, occurrence)
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Created occurrence",
		logger.FieldMapID, mapID,
		logger.FieldOccurrenceID, occurrence.Identifier,
		logger.FieldTopicID, occurrence.TopicIdentifier,
	)
	return nil
}

// GetOccurrence returns the occurrence, or nil if it does not exist
func (s *Store) GetOccurrence(ctx context.Context, mapID int64, identifier string, opts types.OccurrenceOptions) (*types.Occurrence, error) {
	identifier = slug.Normalize(identifier)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+occurrenceColumns(opts.InlineResourceData)+" FROM occurrence WHERE map_identifier = ? AND identifier = ?",
		mapID, identifier)
	o, err := scanOccurrence(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get occurrence %s", identifier)
	}

	if opts.ResolveAttributes {
		if o.Attributes, err = loadAttributes(ctx, s.db, mapID, o.Identifier, types.AttributeFilter{}); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// GetOccurrences lists the occurrences of a map
func (s *Store) GetOccurrences(ctx context.Context, mapID int64, filter types.OccurrenceFilter) ([]*types.Occurrence, error) {
	return loadOccurrences(ctx, s.db, mapID, "", filter)
}

// GetTopicOccurrences lists the occurrences attached to a topic
func (s *Store) GetTopicOccurrences(ctx context.Context, mapID int64, topicIdentifier string, filter types.OccurrenceFilter) ([]*types.Occurrence, error) {
	topicIdentifier, err := slug.Required("topic_identifier", topicIdentifier)
	if err != nil {
		return nil, err
	}
	return loadOccurrences(ctx, s.db, mapID, topicIdentifier, filter)
}

// loadOccurrences lists occurrences in insertion order; an empty topic
// identifier lists the whole map.
func loadOccurrences(ctx context.Context, q querier, mapID int64, topicIdentifier string, filter types.OccurrenceFilter) ([]*types.Occurrence, error) {
	if err := validPage(filter.Offset, filter.Limit); err != nil {
		return nil, err
	}

	qb := newQueryBuilder("map_identifier", mapID)
	qb.addEqual("topic_identifier", topicIdentifier)
	qb.addEqual("instance_of", slug.Normalize(filter.InstanceOf))
	qb.addEqual("scope", slug.Normalize(filter.Scope))
	qb.addEqual("language", string(filter.Language))

	query := "SELECT " + occurrenceColumns(filter.InlineResourceData) + " FROM occurrence" + qb.where() + " ORDER BY rowid"
	query += qb.paginate(filter.Offset, filter.Limit)

	rows, err := q.QueryContext(ctx, query, qb.args...)
	if err != nil {
		return nil, errors.WrapIntegrity(err, "failed to query occurrences")
	}

	var occurrences []*types.Occurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			rows.Close()
			return nil, errors.WrapIntegrity(err, "failed to scan occurrence")
		}
		occurrences = append(occurrences, o)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate occurrences")
	}

	if filter.ResolveAttributes {
		for _, o := range occurrences {
			if o.Attributes, err = loadAttributes(ctx, q, mapID, o.Identifier, types.AttributeFilter{}); err != nil {
				return nil, err
			}
		}
	}
	return occurrences, nil
}

// GetOccurrenceData returns the inline payload, or nil if the occurrence has
// none or does not exist.
func (s *Store) GetOccurrenceData(ctx context.Context, mapID int64, identifier string) ([]byte, error) {
	identifier = slug.Normalize(identifier)
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT resource_data FROM occurrence WHERE map_identifier = ? AND identifier = ?",
		mapID, identifier).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get data of occurrence %s", identifier)
	}
	return data, nil
}

// updateOccurrence runs a single-row UPDATE on an occurrence inside tx
func updateOccurrence(ctx context.Context, q querier, mapID int64, identifier, set string, value interface{}) error {
	result, err := q.ExecContext(ctx,
		"UPDATE occurrence SET "+set+" = ? WHERE map_identifier = ? AND identifier = ?",
		value, mapID, identifier)
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to update %s of occurrence %s", set, identifier)
	}
	if ok, err := rowsAffected(result); err != nil {
		return err
	} else if !ok {
		return errors.NewNotFoundError("occurrence %q in map %d", identifier, mapID)
	}
	return nil
}

// UpdateOccurrenceData replaces the inline payload and re-indexes it
func (s *Store) UpdateOccurrenceData(ctx context.Context, mapID int64, identifier string, data []byte) error {
	identifier = slug.Normalize(identifier)
	var value interface{}
	if len(data) > 0 {
		value = data
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := updateOccurrence(ctx, tx, mapID, identifier, "resource_data", value); err != nil {
			return err
		}
		if err := s.unindexOccurrence(ctx, tx, mapID, identifier); err != nil {
			return err
		}
		return s.indexOccurrence(ctx, tx, mapID, identifier, data)
	})
}

// UpdateOccurrenceResourceRef replaces the external reference
func (s *Store) UpdateOccurrenceResourceRef(ctx context.Context, mapID int64, identifier, resourceRef string) error {
	identifier = slug.Normalize(identifier)
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateOccurrence(ctx, tx, mapID, identifier, "resource_ref", resourceRef)
	})
}

// UpdateOccurrenceScope rescopes an occurrence; in strict mode the scope must exist
func (s *Store) UpdateOccurrenceScope(ctx context.Context, mapID int64, identifier, scope string, mode ontology.Mode) error {
	identifier = slug.Normalize(identifier)
	scope = slug.Optional(scope, types.UniversalScope)
	if err := s.checkScope(ctx, mapID, mode, scope); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return updateOccurrence(ctx, tx, mapID, identifier, "scope", scope)
	})
}

// UpdateOccurrenceTopicIdentifier moves an occurrence to another existing topic
func (s *Store) UpdateOccurrenceTopicIdentifier(ctx context.Context, mapID int64, identifier, topicIdentifier string) error {
	identifier = slug.Normalize(identifier)
	topicIdentifier, err := slug.Required("topic_identifier", topicIdentifier)
	if err != nil {
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
		return updateOccurrence(ctx, tx, mapID, identifier, "topic_identifier", topicIdentifier)
	})
}

// DeleteOccurrence removes an occurrence, its attributes and its index entries
func (s *Store) DeleteOccurrence(ctx context.Context, mapID int64, identifier string) error {
	identifier = slug.Normalize(identifier)
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		exists, err := occurrenceExists(ctx, tx, mapID, identifier)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NewNotFoundError("occurrence %q in map %d", identifier, mapID)
		}
		return s.deleteOccurrence(ctx, tx, mapID, identifier)
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Deleted occurrence", logger.FieldMapID, mapID, logger.FieldOccurrenceID, identifier)
	return nil
}

func (s *Store) deleteOccurrence(ctx context.Context, q querier, mapID int64, identifier string) error {
	if err := s.unindexOccurrence(ctx, q, mapID, identifier); err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx,
		"DELETE FROM attribute WHERE map_identifier = ? AND entity_identifier = ?",
		mapID, identifier); err != nil {
		return errors.WrapIntegrityf(err, "failed to delete attributes of occurrence %s", identifier)
	}
	if _, err := q.ExecContext(ctx,
		"DELETE FROM occurrence WHERE map_identifier = ? AND identifier = ?",
		mapID, identifier); err != nil {
		return errors.WrapIntegrityf(err, "failed to delete occurrence %s", identifier)
	}
	return nil
}

// deleteTopicOccurrences removes every occurrence attached to a topic
func (s *Store) deleteTopicOccurrences(ctx context.Context, q querier, mapID int64, topicIdentifier string) error {
	identifiers, err := queryStrings(ctx, q,
		"SELECT identifier FROM occurrence WHERE map_identifier = ? AND topic_identifier = ?",
		mapID, topicIdentifier)
	if err != nil {
		return err
	}
	for _, identifier := range identifiers {
		if err := s.deleteOccurrence(ctx, q, mapID, identifier); err != nil {
			return err
		}
	}
	return nil
}
