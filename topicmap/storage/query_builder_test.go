package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryBuilder(t *testing.T) {
	t.Run("skips empty filters", func(t *testing.T) {
		qb := newQueryBuilder("map_identifier", 7)
		qb.addEqual("scope", "")
		qb.addIn("instance_of", nil)
		qb.addNotIn("identifier", nil)
		qb.addPrefix("identifier", "")

		assert.Equal(t, " WHERE map_identifier = ?", qb.where())
		assert.Equal(t, []interface{}{int64(7)}, qb.args)
	})

	t.Run("composes every filter in order", func(t *testing.T) {
		qb := newQueryBuilder("t.map_identifier", 1)
		qb.addEqual("t.scope", "work")
		qb.addIn("t.instance_of", []string{"person", "organisation"})
		qb.addNotIn("t.identifier", []string{"home"})
		qb.addPrefix("t.identifier", "ac_m")

		assert.Equal(t,
			"t.map_identifier = ? AND t.scope = ? AND t.instance_of IN (?, ?) AND t.identifier NOT IN (?) AND t.identifier LIKE ? ESCAPE '\\'",
			qb.build())
		assert.Equal(t, []interface{}{int64(1), "work", "person", "organisation", "home", "ac\\_m%"}, qb.args)
	})

	t.Run("pagination", func(t *testing.T) {
		qb := newQueryBuilder("map_identifier", 1)
		assert.Equal(t, "", qb.paginate(0, 0))
		assert.Len(t, qb.args, 1)

		assert.Equal(t, " LIMIT ? OFFSET ?", qb.paginate(20, 0))
		assert.Equal(t, []interface{}{int64(1), -1, 20}, qb.args)
	})

	t.Run("empty builder", func(t *testing.T) {
		qb := &queryBuilder{}
		assert.Equal(t, "", qb.where())
	})
}

func TestEscapeLikePattern(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"acme", "acme"},
		{"100%", "100\\%"},
		{"snake_case", "snake\\_case"},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, escapeLikePattern(tt.input))
		})
	}
}
