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

const attributeColumns = "identifier, entity_identifier, name, value, data_type, scope, language"

func insertAttribute(ctx context.Context, q querier, mapID int64, a *types.Attribute) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO attribute (map_identifier, "+attributeColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		mapID, a.Identifier, a.EntityIdentifier, a.Name, a.Value, string(a.DataType), a.Scope, string(a.Language))
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to insert attribute %s of %s", a.Name, a.EntityIdentifier)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttribute(row rowScanner) (*types.Attribute, error) {
	var a types.Attribute
	var dataType, language string
	if err := row.Scan(&a.Identifier, &a.EntityIdentifier, &a.Name, &a.Value, &dataType, &a.Scope, &language); err != nil {
		return nil, err
	}
	a.DataType = types.DataType(dataType)
	a.Language = types.Language(language)
	return &a, nil
}

// loadAttributes returns an entity's attributes in creation order
func loadAttributes(ctx context.Context, q querier, mapID int64, entityIdentifier string, filter types.AttributeFilter) ([]*types.Attribute, error) {
	qb := newQueryBuilder("map_identifier", mapID)
	qb.addClause("entity_identifier = ?", entityIdentifier)
	qb.addEqual("scope", slug.Normalize(filter.Scope))
	qb.addEqual("language", string(filter.Language))

	rows, err := q.QueryContext(ctx,
		"SELECT "+attributeColumns+" FROM attribute"+qb.where()+" ORDER BY rowid",
		qb.args...)
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to query attributes of %s", entityIdentifier)
	}
	defer rows.Close()

	var attributes []*types.Attribute
	for rows.Next() {
		a, err := scanAttribute(rows)
		if err != nil {
			return nil, errors.WrapIntegrity(err, "failed to scan attribute")
		}
		attributes = append(attributes, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate attributes")
	}
	return attributes, nil
}

// CreateAttribute persists one attribute. A second attribute with the same
// entity, name, scope and language fails with an integrity error.
func (s *Store) CreateAttribute(ctx context.Context, mapID int64, attribute *types.Attribute, mode ontology.Mode) error {
	return s.CreateAttributes(ctx, mapID, []*types.Attribute{attribute}, mode)
}

// CreateAttributes persists several attributes in one transaction
func (s *Store) CreateAttributes(ctx context.Context, mapID int64, attributes []*types.Attribute, mode ontology.Mode) error {
	if err := validMapID(mapID); err != nil {
		return err
	}
	for _, a := range attributes {
		if a == nil {
			return errors.NewInvalidRequestError("nil attribute")
		}
		if err := a.Normalize(); err != nil {
			return err
		}
		if err := s.check(ctx, mapID, mode, a); err != nil {
			return err
		}
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, a := range attributes {
			if err := insertAttribute(ctx, tx, mapID, a); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Created attributes", logger.FieldMapID, mapID, logger.FieldCount, len(attributes))
	return nil
}

// GetAttribute returns the attribute, or nil if it does not exist
func (s *Store) GetAttribute(ctx context.Context, mapID int64, identifier string) (*types.Attribute, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+attributeColumns+" FROM attribute WHERE map_identifier = ? AND identifier = ?",
		mapID, identifier)
	a, err := scanAttribute(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get attribute %s", identifier)
	}
	return a, nil
}

// GetAttributes lists an entity's attributes, optionally by scope and language
func (s *Store) GetAttributes(ctx context.Context, mapID int64, entityIdentifier string, filter types.AttributeFilter) ([]*types.Attribute, error) {
	entityIdentifier, err := slug.Required("entity_identifier", entityIdentifier)
	if err != nil {
		return nil, err
	}
	return loadAttributes(ctx, s.db, mapID, entityIdentifier, filter)
}

// UpdateAttributeValue replaces an attribute's value; the only mutable attribute field
func (s *Store) UpdateAttributeValue(ctx context.Context, mapID int64, identifier, value string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE attribute SET value = ? WHERE map_identifier = ? AND identifier = ?",
			value, mapID, identifier)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to update attribute %s", identifier)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("attribute %q in map %d", identifier, mapID)
		}
		return nil
	})
}

// DeleteAttribute removes one attribute
func (s *Store) DeleteAttribute(ctx context.Context, mapID int64, identifier string) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM attribute WHERE map_identifier = ? AND identifier = ?",
			mapID, identifier)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to delete attribute %s", identifier)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("attribute %q in map %d", identifier, mapID)
		}
		return nil
	})
}
