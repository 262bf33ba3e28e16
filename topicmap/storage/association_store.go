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

func insertMember(ctx context.Context, q querier, mapID int64, associationIdentifier string, m types.Member) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO member (map_identifier, identifier, association_identifier, src_topic_ref, src_role_spec, dest_topic_ref, dest_role_spec) VALUES (?, ?, ?, ?, ?, ?, ?)",
		mapID, m.Identifier, associationIdentifier, m.SrcTopicRef, m.SrcRoleSpec, m.DestTopicRef, m.DestRoleSpec)
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to insert member of association %s", associationIdentifier)
	}
	return nil
}

// CreateAssociation persists an association: a scoped topic row, its base
// names, attributes, occurrences and the member row, in one transaction.
func (s *Store) CreateAssociation(ctx context.Context, mapID int64, association *types.Association, mode ontology.Mode) error {
	if err := validMapID(mapID); err != nil {
		return err
	}
	if association == nil {
		return errors.NewInvalidRequestError("nil association")
	}
	if err := association.Normalize(); err != nil {
		return err
	}
	if err := s.check(ctx, mapID, mode, association); err != nil {
		return err
	}

	s.withTimestamp(&association.Entity)

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := s.insertTopic(ctx, tx, mapID, &association.Topic, nullable(association.Scope)); err != nil {
			return err
		}
		return insertMember(ctx, tx, mapID, association.Identifier, association.Member)
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Created association",
		logger.FieldMapID, mapID,
		logger.FieldAssociation, association.Identifier,
		logger.FieldInstanceOf, association.InstanceOf,
		"src", association.Member.SrcTopicRef,
		"dest", association.Member.DestTopicRef,
	)
	return nil
}

// GetAssociation returns the association, or nil if the map has none with
// that identifier. Plain topics are never returned here.
func (s *Store) GetAssociation(ctx context.Context, mapID int64, identifier string, opts types.TopicOptions) (*types.Association, error) {
	return getAssociation(ctx, s.db, mapID, slug.Normalize(identifier), opts)
}

func getAssociation(ctx context.Context, q querier, mapID int64, identifier string, opts types.TopicOptions) (*types.Association, error) {
	a := &types.Association{}
	err := q.QueryRowContext(ctx,
		"SELECT identifier, instance_of, scope FROM topic WHERE map_identifier = ? AND identifier = ? AND scope IS NOT NULL",
		mapID, identifier).Scan(&a.Identifier, &a.InstanceOf, &a.Scope)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get association %s", identifier)
	}

	err = q.QueryRowContext(ctx,
		"SELECT identifier, src_topic_ref, src_role_spec, dest_topic_ref, dest_role_spec FROM member WHERE map_identifier = ? AND association_identifier = ?",
		mapID, identifier).Scan(&a.Member.Identifier, &a.Member.SrcTopicRef, &a.Member.SrcRoleSpec, &a.Member.DestTopicRef, &a.Member.DestRoleSpec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Mark(
			errors.Newf("association %s in map %d has no member row", identifier, mapID),
			errors.ErrIntegrity,
		)
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get member of association %s", identifier)
	}

	if err := resolveTopic(ctx, q, mapID, &a.Topic, opts); err != nil {
		return nil, err
	}
	return a, nil
}

// DeleteAssociation deletes an association with its member row, base names,
// attributes and occurrences. Plain topics are refused as not found.
func (s *Store) DeleteAssociation(ctx context.Context, mapID int64, identifier string) error {
	identifier, err := slug.Required("identifier", identifier)
	if err != nil {
		return err
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx,
			"SELECT 1 FROM topic WHERE map_identifier = ? AND identifier = ? AND scope IS NOT NULL",
			mapID, identifier).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("association %q in map %d", identifier, mapID)
		}
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to look up association %s", identifier)
		}
		return s.deleteAssociation(ctx, tx, mapID, identifier)
	})
	if err != nil {
		return err
	}

	s.logger.Debugw("Deleted association", logger.FieldMapID, mapID, logger.FieldAssociation, identifier)
	return nil
}

func (s *Store) deleteAssociation(ctx context.Context, q querier, mapID int64, identifier string) error {
	if _, err := q.ExecContext(ctx,
		"DELETE FROM member WHERE map_identifier = ? AND association_identifier = ?",
		mapID, identifier); err != nil {
		return errors.WrapIntegrityf(err, "failed to delete member of association %s", identifier)
	}
	return s.deleteTopicRows(ctx, q, mapID, identifier)
}

// GetTopicAssociations returns every association that binds identifier at
// either end, in creation order.
func (s *Store) GetTopicAssociations(ctx context.Context, mapID int64, identifier string, filter types.AssociationFilter) ([]*types.Association, error) {
	identifier = slug.Normalize(identifier)

	instanceOfs := make([]string, 0, len(filter.InstanceOfs))
	for _, instanceOf := range filter.InstanceOfs {
		if normalized := slug.Normalize(instanceOf); normalized != "" {
			instanceOfs = append(instanceOfs, normalized)
		}
	}

	qb := newQueryBuilder("m.map_identifier", mapID)
	qb.addClause("(m.src_topic_ref = ? OR m.dest_topic_ref = ?)", identifier, identifier)
	qb.addIn("t.instance_of", instanceOfs)
	qb.addEqual("t.scope", slug.Normalize(filter.Scope))

	query := "SELECT m.association_identifier FROM member m JOIN topic t" +
		" ON t.map_identifier = m.map_identifier AND t.identifier = m.association_identifier" +
		qb.where() + " ORDER BY m.rowid"

	identifiers, err := queryStrings(ctx, s.db, query, qb.args...)
	if err != nil {
		return nil, err
	}

	opts := types.TopicOptions{
		Language:           filter.Language,
		ResolveAttributes:  filter.ResolveAttributes,
		ResolveOccurrences: filter.ResolveOccurrences,
	}
	associations := make([]*types.Association, 0, len(identifiers))
	for _, id := range identifiers {
		a, err := getAssociation(ctx, s.db, mapID, id, opts)
		if err != nil {
			return nil, err
		}
		if a != nil {
			associations = append(associations, a)
		}
	}
	return associations, nil
}

// GetAssociationGroups groups the topics related to identifier by
// association type and the role they play.
func (s *Store) GetAssociationGroups(ctx context.Context, mapID int64, identifier string, filter types.AssociationFilter) (*types.AssociationGroups, error) {
	identifier = slug.Normalize(identifier)
	associations, err := s.GetTopicAssociations(ctx, mapID, identifier, filter)
	if err != nil {
		return nil, err
	}

	groups := types.NewAssociationGroups()
	for _, a := range associations {
		groups.AddAssociation(identifier, a)
	}
	return groups, nil
}

// GetRelatedTopics returns the distinct topics associated with identifier.
// Refs that do not resolve to a plain topic are skipped.
func (s *Store) GetRelatedTopics(ctx context.Context, mapID int64, identifier string, filter types.AssociationFilter) ([]*types.Topic, error) {
	groups, err := s.GetAssociationGroups(ctx, mapID, identifier, filter)
	if err != nil {
		return nil, err
	}
	return getTopics(ctx, s.db, mapID, groups.TopicRefs(), types.TopicOptions{Language: filter.Language})
}
