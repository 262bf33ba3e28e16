package storage

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

const mapColumns = "m.identifier, m.name, m.description, m.image_path, m.initialised, m.published, m.promoted"

// contentTables hold map content keyed by map_identifier
var contentTables = []string{"topic", "basename", "member", "occurrence", "attribute"}

func scanMap(row rowScanner, withUser bool) (*types.TopicMap, error) {
	var m types.TopicMap
	dest := []any{&m.Identifier, &m.Name, &m.Description, &m.ImagePath, &m.Initialised, &m.Published, &m.Promoted}
	var mode string
	if withUser {
		dest = append(dest, &m.UserIdentifier, &m.Owner, &mode)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	m.CollaborationMode = types.CollaborationMode(mode)
	return &m, nil
}

func (s *Store) queryMaps(ctx context.Context, withUser bool, query string, args ...any) ([]*types.TopicMap, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapIntegrity(err, "failed to query maps")
	}
	defer rows.Close()

	var maps []*types.TopicMap
	for rows.Next() {
		m, err := scanMap(rows, withUser)
		if err != nil {
			return nil, errors.WrapIntegrity(err, "failed to scan map")
		}
		maps = append(maps, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate maps")
	}
	return maps, nil
}

// CreateMap creates a map owned by userID with edit rights and returns its identifier
func (s *Store) CreateMap(ctx context.Context, userID int64, m *types.TopicMap) (int64, error) {
	if m == nil {
		return 0, errors.NewInvalidRequestError("nil map")
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return 0, errors.NewEmptyFieldError("name")
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"INSERT INTO map (name, description, image_path, initialised, published, promoted) VALUES (?, ?, ?, ?, ?, ?)",
			m.Name, m.Description, m.ImagePath, boolToInt(m.Initialised), boolToInt(m.Published), boolToInt(m.Promoted))
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to insert map %s", m.Name)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return errors.WrapIntegrity(err, "failed to read map identifier")
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT INTO user_map (user_identifier, map_identifier, owner, collaboration_mode) VALUES (?, ?, 1, ?)",
			userID, id, string(types.EditMode)); err != nil {
			return errors.WrapIntegrityf(err, "failed to record owner of map %d", id)
		}
		m.Identifier = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	m.UserIdentifier = userID
	m.Owner = true
	m.CollaborationMode = types.EditMode

	s.logger.Infow("Created map", logger.FieldMapID, m.Identifier, logger.FieldUserID, userID, "name", m.Name)
	return m.Identifier, nil
}

// GetMap returns the map, or nil if it does not exist
func (s *Store) GetMap(ctx context.Context, mapID int64) (*types.TopicMap, error) {
	m, err := scanMap(s.db.QueryRowContext(ctx,
		"SELECT "+mapColumns+" FROM map m WHERE m.identifier = ?", mapID), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get map %d", mapID)
	}
	return m, nil
}

// GetUserMap returns the map as seen by userID, or nil if the user has no
// relationship to it.
func (s *Store) GetUserMap(ctx context.Context, userID, mapID int64) (*types.TopicMap, error) {
	m, err := scanMap(s.db.QueryRowContext(ctx,
		"SELECT "+mapColumns+", um.user_identifier, um.owner, um.collaboration_mode FROM map m"+
			" JOIN user_map um ON um.map_identifier = m.identifier"+
			" WHERE um.user_identifier = ? AND m.identifier = ?",
		userID, mapID), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to get map %d for user %d", mapID, userID)
	}
	return m, nil
}

// GetMaps lists the maps userID owns
func (s *Store) GetMaps(ctx context.Context, userID int64) ([]*types.TopicMap, error) {
	return s.userMaps(ctx, userID, true)
}

// GetCollaborationMaps lists the maps userID collaborates on without owning
func (s *Store) GetCollaborationMaps(ctx context.Context, userID int64) ([]*types.TopicMap, error) {
	return s.userMaps(ctx, userID, false)
}

func (s *Store) userMaps(ctx context.Context, userID int64, owner bool) ([]*types.TopicMap, error) {
	return s.queryMaps(ctx, true,
		"SELECT "+mapColumns+", um.user_identifier, um.owner, um.collaboration_mode FROM map m"+
			" JOIN user_map um ON um.map_identifier = m.identifier"+
			" WHERE um.user_identifier = ? AND um.owner = ? ORDER BY m.identifier",
		userID, boolToInt(owner))
}

// GetPublishedMaps lists every published map
func (s *Store) GetPublishedMaps(ctx context.Context) ([]*types.TopicMap, error) {
	return s.queryMaps(ctx, false, "SELECT "+mapColumns+" FROM map m WHERE m.published = 1 ORDER BY m.identifier")
}

// GetPromotedMaps lists every promoted map
func (s *Store) GetPromotedMaps(ctx context.Context) ([]*types.TopicMap, error) {
	return s.queryMaps(ctx, false, "SELECT "+mapColumns+" FROM map m WHERE m.promoted = 1 ORDER BY m.identifier")
}

// UpdateMap rewrites the descriptive fields and flags of a map
func (s *Store) UpdateMap(ctx context.Context, m *types.TopicMap) error {
	if m == nil {
		return errors.NewInvalidRequestError("nil map")
	}
	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		return errors.NewEmptyFieldError("name")
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE map SET name = ?, description = ?, image_path = ?, initialised = ?, published = ?, promoted = ? WHERE identifier = ?",
			m.Name, m.Description, m.ImagePath, boolToInt(m.Initialised), boolToInt(m.Published), boolToInt(m.Promoted), m.Identifier)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to update map %d", m.Identifier)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("map %d", m.Identifier)
		}
		return nil
	})
}

// IsMapOwner reports whether userID owns the map
func (s *Store) IsMapOwner(ctx context.Context, userID, mapID int64) (bool, error) {
	return isMapOwner(ctx, s.db, userID, mapID)
}

func isMapOwner(ctx context.Context, q querier, userID, mapID int64) (bool, error) {
	var owner bool
	err := q.QueryRowContext(ctx,
		"SELECT owner FROM user_map WHERE user_identifier = ? AND map_identifier = ?",
		userID, mapID).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.WrapIntegrityf(err, "failed to check owner of map %d", mapID)
	}
	return owner, nil
}

// requireMap fails with a not-found error unless the map exists
func requireMap(ctx context.Context, q querier, mapID int64) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM map WHERE identifier = ?", mapID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError("map %d", mapID)
	}
	if err != nil {
		return errors.WrapIntegrityf(err, "failed to look up map %d", mapID)
	}
	return nil
}

// DeleteMap deletes a map and all of its content. Only the owner may delete it.
func (s *Store) DeleteMap(ctx context.Context, userID, mapID int64) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMap(ctx, tx, mapID); err != nil {
			return err
		}

		owner, err := isMapOwner(ctx, tx, userID, mapID)
		if err != nil {
			return err
		}
		if !owner {
			s.logger.Warnw("Refused to delete map", logger.FieldMapID, mapID, logger.FieldUserID, userID)
			return errors.NewForbiddenError("user %d does not own map %d", userID, mapID)
		}

		if s.index != nil {
			occurrences, err := queryStrings(ctx, tx,
				"SELECT occurrence_identifier FROM occurrence_text WHERE map_identifier = ?",
				strconv.FormatInt(mapID, 10))
			if err != nil {
				return err
			}
			for _, identifier := range occurrences {
				if err := s.index.RemoveOccurrence(ctx, mapID, identifier); err != nil {
					return errors.Wrapf(err, "search index failed to remove occurrence %s", identifier)
				}
			}
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM occurrence_text WHERE map_identifier = ?", strconv.FormatInt(mapID, 10)); err != nil {
			return errors.WrapIntegrityf(err, "failed to delete text index of map %d", mapID)
		}

		for _, table := range contentTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE map_identifier = ?", mapID); err != nil {
				return errors.WrapIntegrityf(err, "failed to delete %s rows of map %d", table, mapID)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM user_map WHERE map_identifier = ?", mapID); err != nil {
			return errors.WrapIntegrityf(err, "failed to delete users of map %d", mapID)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM map WHERE identifier = ?", mapID); err != nil {
			return errors.WrapIntegrityf(err, "failed to delete map %d", mapID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infow("Deleted map", logger.FieldMapID, mapID, logger.FieldUserID, userID)
	return nil
}

// PopulateMap seeds the base ontology in lenient mode and marks the map
// initialised. A map that already has the home topic is left alone.
func (s *Store) PopulateMap(ctx context.Context, mapID int64) error {
	m, err := s.GetMap(ctx, mapID)
	if err != nil {
		return err
	}
	if m == nil {
		return errors.NewNotFoundError("map %d", mapID)
	}

	populated, err := s.TopicExists(ctx, mapID, ontology.HomeTopic)
	if err != nil {
		return err
	}
	if populated {
		s.logger.Debugw("Map already populated", logger.FieldMapID, mapID)
		return nil
	}

	seeded := 0
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, base := range ontology.BaseTopics() {
			exists, err := topicExists(ctx, tx, mapID, base.Identifier)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			topic := types.NewTopic(base.Identifier, types.DefaultTopicType, base.Name, types.DefaultLanguage)
			if err := topic.Normalize(); err != nil {
				return err
			}
			s.withTimestamp(&topic.Entity)
			if err := s.insertTopic(ctx, tx, mapID, topic, sql.NullString{}); err != nil {
				return err
			}
			seeded++
		}

		if _, err := tx.ExecContext(ctx, "UPDATE map SET initialised = 1 WHERE identifier = ?", mapID); err != nil {
			return errors.WrapIntegrityf(err, "failed to mark map %d initialised", mapID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Infow("Populated map", logger.FieldMapID, mapID, logger.FieldCount, seeded)
	return nil
}

// Collaborate grants userID access to an existing map with the given mode.
// The owner's own row is never downgraded.
func (s *Store) Collaborate(ctx context.Context, mapID, userID int64, mode types.CollaborationMode) error {
	if !mode.Valid() {
		return errors.NewInvalidRequestError("unknown collaboration mode %q", mode)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := requireMap(ctx, tx, mapID); err != nil {
			return err
		}
		owner, err := isMapOwner(ctx, tx, userID, mapID)
		if err != nil {
			return err
		}
		if owner {
			return errors.NewInvalidRequestError("user %d owns map %d", userID, mapID)
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO user_map (user_identifier, map_identifier, owner, collaboration_mode) VALUES (?, ?, 0, ?)"+
				" ON CONFLICT (user_identifier, map_identifier) DO UPDATE SET collaboration_mode = excluded.collaboration_mode",
			userID, mapID, string(mode))
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to add collaborator %d to map %d", userID, mapID)
		}
		return nil
	})
}

// UpdateCollaborationMode changes the mode of an existing collaborator
func (s *Store) UpdateCollaborationMode(ctx context.Context, mapID, userID int64, mode types.CollaborationMode) error {
	if !mode.Valid() {
		return errors.NewInvalidRequestError("unknown collaboration mode %q", mode)
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"UPDATE user_map SET collaboration_mode = ? WHERE map_identifier = ? AND user_identifier = ? AND owner = 0",
			string(mode), mapID, userID)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to update collaborator %d of map %d", userID, mapID)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("collaborator %d of map %d", userID, mapID)
		}
		return nil
	})
}

// StopCollaboration removes a collaborator. The owner row is never removed.
func (s *Store) StopCollaboration(ctx context.Context, mapID, userID int64) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			"DELETE FROM user_map WHERE map_identifier = ? AND user_identifier = ? AND owner = 0",
			mapID, userID)
		if err != nil {
			return errors.WrapIntegrityf(err, "failed to remove collaborator %d from map %d", userID, mapID)
		}
		if ok, err := rowsAffected(result); err != nil {
			return err
		} else if !ok {
			return errors.NewNotFoundError("collaborator %d of map %d", userID, mapID)
		}
		return nil
	})
}

// GetCollaborationMode returns userID's mode on the map, or "" when the user
// has no access. Callers make the authorization decision.
func (s *Store) GetCollaborationMode(ctx context.Context, mapID, userID int64) (types.CollaborationMode, error) {
	var mode string
	err := s.db.QueryRowContext(ctx,
		"SELECT collaboration_mode FROM user_map WHERE map_identifier = ? AND user_identifier = ?",
		mapID, userID).Scan(&mode)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.WrapIntegrityf(err, "failed to get collaboration mode of user %d", userID)
	}
	return types.CollaborationMode(mode), nil
}

// GetCollaborators lists the non-owner users of a map
func (s *Store) GetCollaborators(ctx context.Context, mapID int64) ([]types.Collaborator, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT map_identifier, user_identifier, collaboration_mode FROM user_map WHERE map_identifier = ? AND owner = 0 ORDER BY user_identifier",
		mapID)
	if err != nil {
		return nil, errors.WrapIntegrityf(err, "failed to query collaborators of map %d", mapID)
	}
	defer rows.Close()

	var collaborators []types.Collaborator
	for rows.Next() {
		var c types.Collaborator
		var mode string
		if err := rows.Scan(&c.MapIdentifier, &c.UserIdentifier, &mode); err != nil {
			return nil, errors.WrapIntegrity(err, "failed to scan collaborator")
		}
		c.CollaborationMode = types.CollaborationMode(mode)
		collaborators = append(collaborators, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapIntegrity(err, "failed to iterate collaborators")
	}
	return collaborators, nil
}
