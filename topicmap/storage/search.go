package storage

import (
	"context"
	"strconv"
	"strings"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/logger"
)

// SearchOccurrences returns the identifiers of occurrences whose text payload
// matches every term of query, in indexing order. A zero limit is unlimited.
func (s *Store) SearchOccurrences(ctx context.Context, mapID int64, query string, limit int) ([]string, error) {
	if limit < 0 {
		return nil, errors.NewInvalidRequestError("limit must be >= 0, got %d", limit)
	}
	match := sanitizeFTS(query)
	if match == "" {
		return nil, nil
	}
	if limit == 0 {
		limit = -1
	}

	identifiers, err := queryStrings(ctx, s.db,
		"SELECT occurrence_identifier FROM occurrence_text WHERE occurrence_text MATCH ? AND map_identifier = ? ORDER BY rowid LIMIT ?",
		match, strconv.FormatInt(mapID, 10), limit)
	if err != nil {
		return nil, errors.Wrapf(err, "search %q failed", query)
	}

	s.logger.Debugw("Searched occurrences",
		logger.FieldMapID, mapID,
		logger.FieldQuery, query,
		logger.FieldCount, len(identifiers),
	)
	return identifiers, nil
}

// sanitizeFTS wraps each term in double quotes so MATCH syntax characters in
// user input are taken literally. FTS4 phrases cannot escape a quote, so
// quotes inside a term are dropped.
func sanitizeFTS(query string) string {
	words := strings.Fields(query)
	terms := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(w, `"`, "")
		if w == "" {
			continue
		}
		terms = append(terms, `"`+w+`"`)
	}
	return strings.Join(terms, " ")
}
