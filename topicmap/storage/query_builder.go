package storage

import (
	"strings"
)

// queryBuilder accumulates SQL WHERE clauses and parameters from optional filters
type queryBuilder struct {
	whereClauses []string
	args         []interface{}
}

// newQueryBuilder starts with the clause every topic map query carries
func newQueryBuilder(mapColumn string, mapID int64) *queryBuilder {
	qb := &queryBuilder{}
	qb.addClause(mapColumn+" = ?", mapID)
	return qb
}

// addClause appends a WHERE clause with its arguments
func (qb *queryBuilder) addClause(clause string, args ...interface{}) {
	qb.whereClauses = append(qb.whereClauses, clause)
	qb.args = append(qb.args, args...)
}

// addEqual appends column = value, skipping empty values
func (qb *queryBuilder) addEqual(column, value string) {
	if value == "" {
		return
	}
	qb.addClause(column+" = ?", value)
}

// addIn appends column IN (...), skipping empty lists
func (qb *queryBuilder) addIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	qb.addClause(column+" IN ("+placeholders(len(values))+")", stringArgs(values)...)
}

// addNotIn appends column NOT IN (...), skipping empty lists
func (qb *queryBuilder) addNotIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	qb.addClause(column+" NOT IN ("+placeholders(len(values))+")", stringArgs(values)...)
}

// addPrefix appends a LIKE prefix match, skipping empty prefixes
func (qb *queryBuilder) addPrefix(column, prefix string) {
	if prefix == "" {
		return
	}
	qb.addClause(column+" LIKE ? ESCAPE '\\'", escapeLikePattern(prefix)+"%")
}

// build returns the WHERE clauses joined with AND
func (qb *queryBuilder) build() string {
	return strings.Join(qb.whereClauses, " AND ")
}

// where returns " WHERE ..." or "" when there are no clauses
func (qb *queryBuilder) where() string {
	if len(qb.whereClauses) == 0 {
		return ""
	}
	return " WHERE " + qb.build()
}

// paginate returns a LIMIT/OFFSET suffix and appends its arguments.
// A zero limit means unlimited.
func (qb *queryBuilder) paginate(offset, limit int) string {
	if limit == 0 && offset == 0 {
		return ""
	}
	if limit == 0 {
		limit = -1
	}
	qb.args = append(qb.args, limit, offset)
	return " LIMIT ? OFFSET ?"
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// escapeLikePattern escapes special characters in LIKE patterns for SQL ESCAPE clause
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}
