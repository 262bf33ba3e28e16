package storage

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// recordingIndex is a SearchIndex that keeps the text it receives
type recordingIndex struct {
	mu   sync.Mutex
	docs map[string]string
	err  error
}

func newRecordingIndex() *recordingIndex {
	return &recordingIndex{docs: make(map[string]string)}
}

func (r *recordingIndex) IndexOccurrence(_ context.Context, _ int64, occurrenceID, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.docs[occurrenceID] = text
	return nil
}

func (r *recordingIndex) RemoveOccurrence(_ context.Context, _ int64, occurrenceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.docs, occurrenceID)
	return nil
}

func (r *recordingIndex) text(occurrenceID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	text, ok := r.docs[occurrenceID]
	return text, ok
}

// note creates a text note on topicIdentifier
func note(t *testing.T, store *Store, mapID int64, topicIdentifier, text string) *types.Occurrence {
	t.Helper()
	o := types.NewOccurrence("", types.NoteOccurrence, topicIdentifier)
	o.ResourceData = []byte(text)
	require.NoError(t, store.CreateOccurrence(context.Background(), mapID, o, ontology.Strict))
	return o
}

func TestCreateOccurrence_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	o := types.NewOccurrence("", types.URLOccurrence, "acme")
	o.ResourceRef = "https://acme.example"
	o.ResourceData = []byte("Acme home page")
	o.Language = types.German
	require.NoError(t, store.CreateOccurrence(ctx, mapID, o, ontology.Strict))

	t.Run("data is lazy", func(t *testing.T) {
		got, err := store.GetOccurrence(ctx, mapID, o.Identifier, types.OccurrenceOptions{})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Nil(t, got.ResourceData)
		assert.Empty(t, got.Attributes)
		assert.Equal(t, "https://acme.example", got.ResourceRef)
		assert.Equal(t, types.German, got.Language)
		assert.Equal(t, "acme", got.TopicIdentifier)
		assert.Equal(t, types.UniversalScope, got.Scope)
	})

	t.Run("inline on request", func(t *testing.T) {
		got, err := store.GetOccurrence(ctx, mapID, o.Identifier, types.OccurrenceOptions{InlineResourceData: true, ResolveAttributes: true})
		require.NoError(t, err)
		assert.Equal(t, o, got)
	})

	t.Run("data accessor", func(t *testing.T) {
		data, err := store.GetOccurrenceData(ctx, mapID, o.Identifier)
		require.NoError(t, err)
		assert.Equal(t, []byte("Acme home page"), data)

		data, err = store.GetOccurrenceData(ctx, mapID, "missing")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("missing occurrence is nil", func(t *testing.T) {
		got, err := store.GetOccurrence(ctx, mapID, "missing", types.OccurrenceOptions{})
		require.NoError(t, err)
		assert.Nil(t, got)

		exists, err := store.OccurrenceExists(ctx, mapID, "missing")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestCreateOccurrence_Ontology(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	invoice := types.NewOccurrence("", "invoice", "acme")
	assert.True(t, errors.IsOntologyViolation(store.CreateOccurrence(ctx, mapID, invoice, ontology.Strict)))

	scoped := types.NewOccurrence("", types.NoteOccurrence, "acme")
	scoped.Scope = "finance"
	assert.True(t, errors.IsOntologyViolation(store.CreateOccurrence(ctx, mapID, scoped, ontology.Strict)))

	require.NoError(t, store.CreateOccurrence(ctx, mapID, invoice, ontology.Lenient))

	orphan := types.NewOccurrence("", types.NoteOccurrence, "")
	assert.True(t, errors.IsEmptyFieldError(store.CreateOccurrence(ctx, mapID, orphan, ontology.Strict)))
}

func TestCreateTopic_WithOccurrences(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	topic := types.NewTopic("acme", "", "Acme", "")
	first := types.NewOccurrence("", types.NoteOccurrence, "")
	first.ResourceData = []byte("first note")
	topic.AddOccurrence(first)
	topic.AddOccurrence(types.NewOccurrence("", types.ImageOccurrence, ""))
	require.NoError(t, store.CreateTopic(ctx, mapID, topic, ontology.Strict))

	got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{ResolveOccurrences: true})
	require.NoError(t, err)
	require.Len(t, got.Occurrences, 2)
	assert.Equal(t, first.Identifier, got.Occurrences[0].Identifier)
	assert.Equal(t, types.ImageOccurrence, got.Occurrences[1].InstanceOf)

	attributes, err := store.GetAttributes(ctx, mapID, first.Identifier, types.AttributeFilter{})
	require.NoError(t, err)
	assert.Len(t, attributes, 1, "each occurrence gets its own timestamp")

	hits, err := store.SearchOccurrences(ctx, mapID, "first", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{first.Identifier}, hits)
}

func TestGetOccurrences(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme", "jane")

	note(t, store, mapID, "acme", "one")
	note(t, store, mapID, "acme", "two")
	note(t, store, mapID, "jane", "three")
	image := types.NewOccurrence("", types.ImageOccurrence, "acme")
	image.ResourceRef = "logo.png"
	require.NoError(t, store.CreateOccurrence(ctx, mapID, image, ontology.Strict))

	all, err := store.GetOccurrences(ctx, mapID, types.OccurrenceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	notes, err := store.GetTopicOccurrences(ctx, mapID, "acme", types.OccurrenceFilter{InstanceOf: "note", InlineResourceData: true})
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, []byte("one"), notes[0].ResourceData)
	assert.Equal(t, []byte("two"), notes[1].ResourceData)

	paged, err := store.GetTopicOccurrences(ctx, mapID, "acme", types.OccurrenceFilter{Offset: 2, Limit: 5})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, image.Identifier, paged[0].Identifier)

	_, err = store.GetTopicOccurrences(ctx, mapID, "", types.OccurrenceFilter{})
	assert.True(t, errors.IsEmptyFieldError(err))
}

func TestUpdateOccurrence(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme", "jane")
	o := note(t, store, mapID, "acme", "quarterly report")

	t.Run("data is re-indexed", func(t *testing.T) {
		require.NoError(t, store.UpdateOccurrenceData(ctx, mapID, o.Identifier, []byte("annual summary")))

		hits, err := store.SearchOccurrences(ctx, mapID, "quarterly", 0)
		require.NoError(t, err)
		assert.Empty(t, hits)

		hits, err = store.SearchOccurrences(ctx, mapID, "annual", 0)
		require.NoError(t, err)
		assert.Equal(t, []string{o.Identifier}, hits)
	})

	t.Run("resource ref", func(t *testing.T) {
		require.NoError(t, store.UpdateOccurrenceResourceRef(ctx, mapID, o.Identifier, "s3://bucket/report.pdf"))
		got, err := store.GetOccurrence(ctx, mapID, o.Identifier, types.OccurrenceOptions{})
		require.NoError(t, err)
		assert.Equal(t, "s3://bucket/report.pdf", got.ResourceRef)
	})

	t.Run("scope", func(t *testing.T) {
		err := store.UpdateOccurrenceScope(ctx, mapID, o.Identifier, "finance", ontology.Strict)
		assert.True(t, errors.IsOntologyViolation(err))

		require.NoError(t, store.UpdateOccurrenceScope(ctx, mapID, o.Identifier, "Finance", ontology.Lenient))
		got, err := store.GetOccurrence(ctx, mapID, o.Identifier, types.OccurrenceOptions{})
		require.NoError(t, err)
		assert.Equal(t, "finance", got.Scope)

		createTopics(t, store, mapID, "legal")
		require.NoError(t, store.UpdateOccurrenceScope(ctx, mapID, o.Identifier, "legal", ontology.Strict))
		got, err = store.GetOccurrence(ctx, mapID, o.Identifier, types.OccurrenceOptions{})
		require.NoError(t, err)
		assert.Equal(t, "legal", got.Scope)
	})

	t.Run("owning topic", func(t *testing.T) {
		err := store.UpdateOccurrenceTopicIdentifier(ctx, mapID, o.Identifier, "nobody")
		assert.True(t, errors.IsNotFoundError(err))

		require.NoError(t, store.UpdateOccurrenceTopicIdentifier(ctx, mapID, o.Identifier, "jane"))
		moved, err := store.GetTopicOccurrences(ctx, mapID, "jane", types.OccurrenceFilter{})
		require.NoError(t, err)
		require.Len(t, moved, 1)
		assert.Equal(t, o.Identifier, moved[0].Identifier)
	})

	t.Run("missing occurrence", func(t *testing.T) {
		assert.True(t, errors.IsNotFoundError(store.UpdateOccurrenceResourceRef(ctx, mapID, "missing", "x")))
		assert.True(t, errors.IsNotFoundError(store.UpdateOccurrenceData(ctx, mapID, "missing", []byte("x"))))
	})
}

func TestOccurrenceLookupsNormalizeIdentifier(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	o := types.NewOccurrence("My Note", types.NoteOccurrence, "acme")
	o.ResourceData = []byte("board minutes")
	require.NoError(t, store.CreateOccurrence(ctx, mapID, o, ontology.Strict))
	require.Equal(t, "my-note", o.Identifier)

	exists, err := store.OccurrenceExists(ctx, mapID, "My Note")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.GetOccurrence(ctx, mapID, "My Note", types.OccurrenceOptions{})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "my-note", got.Identifier)

	data, err := store.GetOccurrenceData(ctx, mapID, "My Note")
	require.NoError(t, err)
	assert.Equal(t, []byte("board minutes"), data)

	require.NoError(t, store.UpdateOccurrenceResourceRef(ctx, mapID, "My Note", "https://example.com/minutes"))
	require.NoError(t, store.UpdateOccurrenceScope(ctx, mapID, "My Note", "", ontology.Strict))
	require.NoError(t, store.UpdateOccurrenceData(ctx, mapID, "My Note", []byte("revised minutes")))

	require.NoError(t, store.DeleteOccurrence(ctx, mapID, "My Note"))
	exists, err = store.OccurrenceExists(ctx, mapID, "my-note")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteOccurrence(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")
	o := note(t, store, mapID, "acme", "meeting minutes")

	require.NoError(t, store.DeleteOccurrence(ctx, mapID, o.Identifier))

	exists, err := store.OccurrenceExists(ctx, mapID, o.Identifier)
	require.NoError(t, err)
	assert.False(t, exists)

	attributes, err := store.GetAttributes(ctx, mapID, o.Identifier, types.AttributeFilter{})
	require.NoError(t, err)
	assert.Empty(t, attributes)

	hits, err := store.SearchOccurrences(ctx, mapID, "minutes", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)

	assert.True(t, errors.IsNotFoundError(store.DeleteOccurrence(ctx, mapID, o.Identifier)))
}

func TestSearchIndexCollaborator(t *testing.T) {
	ctx := context.Background()
	index := newRecordingIndex()
	store, mapID := newTestStore(t, WithSearchIndex(index))
	createTopics(t, store, mapID, "acme")

	o := note(t, store, mapID, "acme", "board meeting")
	text, ok := index.text(o.Identifier)
	require.True(t, ok)
	assert.Equal(t, "board meeting", text)

	t.Run("binary payloads are not indexed", func(t *testing.T) {
		binary := types.NewOccurrence("", types.ImageOccurrence, "acme")
		binary.ResourceData = []byte{0xff, 0xfe, 0x00}
		require.NoError(t, store.CreateOccurrence(ctx, mapID, binary, ontology.Strict))

		_, ok := index.text(binary.Identifier)
		assert.False(t, ok)

		data, err := store.GetOccurrenceData(ctx, mapID, binary.Identifier)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xff, 0xfe, 0x00}, data)
	})

	t.Run("index failure aborts the write", func(t *testing.T) {
		index.err = errors.New("index unavailable")
		defer func() { index.err = nil }()

		failing := types.NewOccurrence("", types.NoteOccurrence, "acme")
		failing.ResourceData = []byte("lost")
		err := store.CreateOccurrence(ctx, mapID, failing, ontology.Strict)
		require.Error(t, err)

		exists, err := store.OccurrenceExists(ctx, mapID, failing.Identifier)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("removal follows deletes", func(t *testing.T) {
		require.NoError(t, store.DeleteTopic(ctx, mapID, "acme", ontology.Strict))
		_, ok := index.text(o.Identifier)
		assert.False(t, ok)
	})
}

func TestSearchOccurrences(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	first := note(t, store, mapID, "acme", "Acme signed the supply contract")
	second := note(t, store, mapID, "acme", "Contract renewal is due")
	note(t, store, mapID, "acme", "Unrelated text")

	otherMap, err := store.CreateMap(ctx, testUser, &types.TopicMap{Name: "Other"})
	require.NoError(t, err)
	require.NoError(t, store.PopulateMap(ctx, otherMap))
	createTopics(t, store, otherMap, "acme")
	note(t, store, otherMap, "acme", "another contract")

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{"single term", "contract", 0, []string{first.Identifier, second.Identifier}},
		{"every term must match", "supply contract", 0, []string{first.Identifier}},
		{"limit", "contract", 1, []string{first.Identifier}},
		{"operators are literal", "contract -renewal", 0, []string{second.Identifier}},
		{"embedded quote", `con"tract`, 0, []string{first.Identifier, second.Identifier}},
		{"blank query", "   ", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.SearchOccurrences(ctx, mapID, tt.query, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = store.SearchOccurrences(ctx, mapID, "contract", -1)
	assert.True(t, errors.IsInvalidArgumentError(err))
}

func TestSanitizeFTS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"contract", `"contract"`},
		{"supply  contract", `"supply" "contract"`},
		{`"quoted"`, `"quoted"`},
		{`say"what`, `"saywhat"`},
		{`"`, ""},
		{`" "`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sanitizeFTS(tt.in), "input %q", tt.in)
	}
}
