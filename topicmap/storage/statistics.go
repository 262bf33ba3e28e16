package storage

import (
	"context"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// GetTopicOccurrencesStatistics counts a topic's occurrences per category.
// An empty scope counts every scope.
func (s *Store) GetTopicOccurrencesStatistics(ctx context.Context, mapID int64, topicIdentifier, scope string) (types.OccurrenceStatistics, error) {
	var stats types.OccurrenceStatistics

	qb := newQueryBuilder("map_identifier", mapID)
	qb.addClause("topic_identifier = ?", slug.Normalize(topicIdentifier))
	qb.addEqual("scope", slug.Normalize(scope))
	qb.addIn("instance_of", types.OccurrenceCategories())

	rows, err := s.db.QueryContext(ctx,
		"SELECT instance_of, COUNT(*) FROM occurrence"+qb.where()+" GROUP BY instance_of",
		qb.args...)
	if err != nil {
		return stats, errors.WrapIntegrityf(err, "failed to count occurrences of %s", topicIdentifier)
	}
	defer rows.Close()

	for rows.Next() {
		var instanceOf string
		var count int
		if err := rows.Scan(&instanceOf, &count); err != nil {
			return stats, errors.WrapIntegrity(err, "failed to scan occurrence count")
		}
		stats.Add(instanceOf, count)
	}
	if err := rows.Err(); err != nil {
		return stats, errors.WrapIntegrity(err, "failed to iterate occurrence counts")
	}
	return stats, nil
}

// GetMapStatistics counts topics, associations and occurrences of a map.
// With filterBaseTopics the seeded ontology topics are not counted.
func (s *Store) GetMapStatistics(ctx context.Context, mapID int64, filterBaseTopics bool) (types.MapStatistics, error) {
	var stats types.MapStatistics

	topics := newQueryBuilder("map_identifier", mapID)
	topics.addClause("scope IS NULL")
	if filterBaseTopics {
		topics.addNotIn("identifier", ontology.BaseTopicIdentifiers())
	}

	counts := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&stats.Topics, "SELECT COUNT(*) FROM topic" + topics.where(), topics.args},
		{&stats.Associations, "SELECT COUNT(*) FROM topic WHERE map_identifier = ? AND scope IS NOT NULL", []any{mapID}},
		{&stats.Occurrences, "SELECT COUNT(*) FROM occurrence WHERE map_identifier = ?", []any{mapID}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return stats, errors.WrapIntegrityf(err, "failed to count map %d", mapID)
		}
	}
	return stats, nil
}
