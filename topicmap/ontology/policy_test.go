package ontology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/topicmap/types"
)

// fakeChecker knows a fixed set of topics and records every lookup
type fakeChecker struct {
	topics  map[string]bool
	err     error
	lookups []string
}

func (f *fakeChecker) TopicExists(_ context.Context, _ int64, identifier string) (bool, error) {
	f.lookups = append(f.lookups, identifier)
	if f.err != nil {
		return false, f.err
	}
	return f.topics[identifier], nil
}

func newChecker(ids ...string) *fakeChecker {
	f := &fakeChecker{topics: make(map[string]bool)}
	for _, id := range ids {
		f.topics[id] = true
	}
	return f
}

func TestPolicy_Check(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		known       []string
		entity      any
		wantErr     bool
		wantLookups []string
	}{
		{
			name:        "topic with known type",
			known:       []string{"person"},
			entity:      types.NewTopic("jane", "person", "Jane", types.English),
			wantLookups: []string{"person"},
		},
		{
			name:        "topic with missing type",
			entity:      types.NewTopic("jane", "nonexistent", "Jane", types.English),
			wantErr:     true,
			wantLookups: []string{"nonexistent"},
		},
		{
			name:        "association checks type then scope",
			known:       []string{"employment"},
			entity:      types.NewAssociation("", "employment", "acme", "jane"),
			wantErr:     true,
			wantLookups: []string{"employment", "*"},
		},
		{
			name:        "association with both present",
			known:       []string{"employment", "*"},
			entity:      types.NewAssociation("", "employment", "acme", "jane"),
			wantLookups: []string{"employment", "*"},
		},
		{
			name:        "occurrence checks type and scope",
			known:       []string{"image", "*"},
			entity:      types.NewOccurrence("", "image", "jane"),
			wantLookups: []string{"image", "*"},
		},
		{
			name:        "attribute checks only scope",
			known:       []string{"*"},
			entity:      types.NewAttribute("size", "12", "jane", types.NumberType),
			wantLookups: []string{"*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := newChecker(tt.known...)
			err := Policy{Checker: checker}.Check(ctx, 1, Strict, tt.entity)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsOntologyViolation(err))
				assert.NotEmpty(t, errors.GetAllHints(err))
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantLookups, checker.lookups)
		})
	}
}

func TestPolicy_LenientSkipsLookups(t *testing.T) {
	checker := newChecker()
	err := Policy{Checker: checker}.Check(context.Background(), 1, Lenient, types.NewTopic("x", "nonexistent", "", ""))

	require.NoError(t, err)
	assert.Empty(t, checker.lookups)
}

func TestPolicy_CheckerFailure(t *testing.T) {
	checker := newChecker()
	checker.err = errors.New("disk I/O error")

	err := Policy{Checker: checker}.Check(context.Background(), 1, Strict, types.NewTopic("x", "person", "", ""))
	require.Error(t, err)
	assert.False(t, errors.IsOntologyViolation(err))
}

func TestPolicy_CheckScope(t *testing.T) {
	ctx := context.Background()
	checker := newChecker("*", "work")
	policy := Policy{Checker: checker}

	require.NoError(t, policy.CheckScope(ctx, 1, Strict, "work"))

	err := policy.CheckScope(ctx, 1, Strict, "home-office")
	assert.True(t, errors.IsOntologyViolation(err))
	assert.Contains(t, err.Error(), `scope "home-office"`)
	assert.Equal(t, []string{"work", "home-office"}, checker.lookups)

	require.NoError(t, policy.CheckScope(ctx, 1, Lenient, "home-office"))
	assert.Len(t, checker.lookups, 2, "lenient mode does no lookups")
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("LENIENT")
	require.NoError(t, err)
	assert.Equal(t, Lenient, m)
	assert.Equal(t, "lenient", m.String())

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Strict, m)

	_, err = ParseMode("loose")
	assert.True(t, errors.IsInvalidArgumentError(err))
}

func TestBaseTopics(t *testing.T) {
	ids := BaseTopicIdentifiers()

	assert.Equal(t, "*", ids[0])
	assert.Contains(t, ids, HomeTopic)
	assert.Len(t, ids, len(BaseTopics()))

	seen := make(map[string]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate base topic %s", id)
		seen[id] = true
	}

	for _, want := range []string{"topic", "association", "occurrence", "categorization", "tags", "eng", "nld", "3d-scene", "related"} {
		assert.True(t, IsBaseTopic(want), want)
	}
	assert.False(t, IsBaseTopic("acme"))

	name, ok := BaseTopicName("3d-scene")
	assert.True(t, ok)
	assert.Equal(t, "3D Scene", name)
}

func TestReferences_Unknown(t *testing.T) {
	assert.Nil(t, References("not an entity"))
}
