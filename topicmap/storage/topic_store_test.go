package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/topicdb/db"
	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

func TestCreateTopic_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	topic := types.NewTopic("Acme Corp", "", "Acme Corporation", types.English)
	topic.AddBaseName(types.NewBaseName("Acme Nederland", "", types.Dutch))
	topic.AddAttribute(types.NewAttribute("founded", "1990", "", types.NumberType))
	require.NoError(t, store.CreateTopic(ctx, mapID, topic, ontology.Strict))

	got, err := store.GetTopic(ctx, mapID, "acme-corp", types.TopicOptions{ResolveAttributes: true})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "acme-corp", got.Identifier)
	assert.Equal(t, types.DefaultTopicType, got.InstanceOf)
	assert.Equal(t, topic.BaseNames, got.BaseNames)

	require.Len(t, got.Attributes, 2, "founded plus the injected creation timestamp")
	founded := got.GetAttributeByName("founded")
	require.NotNil(t, founded)
	assert.Equal(t, "1990", founded.Value)
	assert.Equal(t, types.NumberType, founded.DataType)
	assert.Equal(t, "acme-corp", founded.EntityIdentifier)
	assert.NotNil(t, got.GetAttributeByName(types.CreationTimestampAttribute))
}

func TestCreateTopic_KeepsExistingTimestamp(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	topic := types.NewTopic("acme", "", "Acme", "")
	topic.AddAttribute(types.NewAttribute(types.CreationTimestampAttribute, "2001-01-01T00:00:00Z", "", types.TimestampType))
	require.NoError(t, store.CreateTopic(ctx, mapID, topic, ontology.Strict))

	attributes, err := store.GetAttributes(ctx, mapID, "acme", types.AttributeFilter{})
	require.NoError(t, err)
	require.Len(t, attributes, 1)
	assert.Equal(t, "2001-01-01T00:00:00Z", attributes[0].Value)
}

func TestCreateTopic_Ontology(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	jane := types.NewTopic("jane", "person", "Jane", "")

	err := store.CreateTopic(ctx, mapID, jane, ontology.Strict)
	require.Error(t, err)
	assert.True(t, errors.IsOntologyViolation(err))
	assert.NotEmpty(t, errors.GetAllHints(err))

	exists, err := store.TopicExists(ctx, mapID, "jane")
	require.NoError(t, err)
	assert.False(t, exists, "a refused write leaves nothing behind")

	createTopics(t, store, mapID, "person")
	require.NoError(t, store.CreateTopic(ctx, mapID, jane, ontology.Strict))

	bob := types.NewTopic("bob", "employee", "Bob", "")
	require.NoError(t, store.CreateTopic(ctx, mapID, bob, ontology.Lenient), "lenient allows forward references")
}

func TestCreateTopic_AttachedOccurrenceChecked(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	topic := types.NewTopic("acme", "", "Acme", "")
	topic.AddOccurrence(types.NewOccurrence("", "invoice", ""))

	err := store.CreateTopic(ctx, mapID, topic, ontology.Strict)
	assert.True(t, errors.IsOntologyViolation(err))
}

func TestCreateTopic_Duplicate(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	err := store.CreateTopic(ctx, mapID, types.NewTopic("acme", "", "Acme again", ""), ontology.Strict)
	require.Error(t, err)
	assert.True(t, errors.IsIntegrityError(err))
	assert.True(t, db.IsConstraintViolation(err))

	got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{})
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name(), "the first write is untouched")
}

func TestCreateTopic_MapsAreIsolated(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	otherMap, err := store.CreateMap(ctx, testUser, &types.TopicMap{Name: "Other"})
	require.NoError(t, err)

	createTopics(t, store, mapID, "acme")

	got, err := store.GetTopic(ctx, otherMap, "acme", types.TopicOptions{})
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.CreateTopic(ctx, otherMap, types.NewTopic("acme", "", "Acme", ""), ontology.Lenient))
}

func TestGetTopic(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	topic := types.NewTopic("acme", "", "Acme", types.English)
	topic.AddBaseName(types.NewBaseName("Acme NL", "", types.Dutch))
	require.NoError(t, store.CreateTopic(ctx, mapID, topic, ontology.Strict))

	t.Run("missing topic is nil", func(t *testing.T) {
		got, err := store.GetTopic(ctx, mapID, "nobody", types.TopicOptions{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("identifier is normalized on read", func(t *testing.T) {
		got, err := store.GetTopic(ctx, mapID, "ACME", types.TopicOptions{})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, got.BaseNames, 2)
	})

	t.Run("language filter", func(t *testing.T) {
		got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{Language: types.Dutch})
		require.NoError(t, err)
		require.Len(t, got.BaseNames, 1)
		assert.Equal(t, "Acme NL", got.Name())
	})

	t.Run("scope filter", func(t *testing.T) {
		got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{Scope: "home"})
		require.NoError(t, err)
		assert.Empty(t, got.BaseNames)
		assert.Equal(t, types.UndefinedName, got.Name())
	})

	t.Run("attributes only on request", func(t *testing.T) {
		got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{})
		require.NoError(t, err)
		assert.Empty(t, got.Attributes)
	})

	t.Run("associations are not topics", func(t *testing.T) {
		association := types.NewAssociation("acme-home", "", "acme", "home")
		require.NoError(t, store.CreateAssociation(ctx, mapID, association, ontology.Lenient))

		got, err := store.GetTopic(ctx, mapID, "acme-home", types.TopicOptions{})
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestGetTopicIdentifiers(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	for _, id := range []string{"beta", "acme"} {
		topic := types.NewTopic(id, "organisation", id, "")
		require.NoError(t, store.CreateTopic(ctx, mapID, topic, ontology.Lenient))
	}
	createTopics(t, store, mapID, "jane")

	tests := []struct {
		name string
		opts types.ListOptions
		want []string
	}{
		{"without base topics", types.ListOptions{FilterBaseTopics: true}, []string{"acme", "beta", "jane"}},
		{"by type", types.ListOptions{InstanceOf: "Organisation"}, []string{"acme", "beta"}},
		{"by prefix", types.ListOptions{Query: "ac", FilterBaseTopics: true}, []string{"acme"}},
		{"paged", types.ListOptions{FilterBaseTopics: true, Offset: 1, Limit: 1}, []string{"beta"}},
		{"offset only", types.ListOptions{FilterBaseTopics: true, Offset: 2}, []string{"jane"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.GetTopicIdentifiers(ctx, mapID, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("base topics included by default", func(t *testing.T) {
		got, err := store.GetTopicIdentifiers(ctx, mapID, types.ListOptions{})
		require.NoError(t, err)
		assert.Len(t, got, len(ontology.BaseTopics())+3)
		assert.Contains(t, got, ontology.HomeTopic)
	})

	t.Run("negative paging is rejected", func(t *testing.T) {
		_, err := store.GetTopicIdentifiers(ctx, mapID, types.ListOptions{Limit: -1})
		assert.True(t, errors.IsInvalidArgumentError(err))
	})
}

func TestGetTopicsAndNames(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)

	acme := types.NewTopic("acme", "organisation", "Acme", types.English)
	acme.AddBaseName(types.NewBaseName("Acme NL", "", types.Dutch))
	require.NoError(t, store.CreateTopic(ctx, mapID, acme, ontology.Lenient))
	createTopics(t, store, mapID, "jane")

	topics, err := store.GetTopics(ctx, mapID, types.ListOptions{FilterBaseTopics: true})
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.Equal(t, "acme", topics[0].Identifier)
	assert.Len(t, topics[0].BaseNames, 2)

	names, err := store.GetTopicNames(ctx, mapID, types.ListOptions{FilterBaseTopics: true})
	require.NoError(t, err)
	assert.Equal(t, []types.TopicName{
		{Identifier: "acme", InstanceOf: "organisation", Name: "Acme"},
		{Identifier: "jane", InstanceOf: "topic", Name: "jane"},
	}, names)

	dutch, err := store.GetTopicNames(ctx, mapID, types.ListOptions{FilterBaseTopics: true, Language: types.Dutch})
	require.NoError(t, err)
	require.Len(t, dutch, 2)
	assert.Equal(t, "Acme NL", dutch[0].Name)
	assert.Equal(t, types.UndefinedName, dutch[1].Name, "no Dutch name falls back to Undefined")
}

func TestUpdateTopicInstanceOf(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	err := store.UpdateTopicInstanceOf(ctx, mapID, "acme", "organisation", ontology.Strict)
	assert.True(t, errors.IsOntologyViolation(err))

	require.NoError(t, store.UpdateTopicInstanceOf(ctx, mapID, "acme", "organisation", ontology.Lenient))
	got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{})
	require.NoError(t, err)
	assert.Equal(t, "organisation", got.InstanceOf)

	err = store.UpdateTopicInstanceOf(ctx, mapID, "nobody", "topic", ontology.Strict)
	assert.True(t, errors.IsNotFoundError(err))
}

func TestUpdateTopicIdentifier(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme", "jane")

	association := types.NewAssociation("", "employment", "acme", "jane").WithRoles("employer", "employee")
	require.NoError(t, store.CreateAssociation(ctx, mapID, association, ontology.Lenient))

	occurrence := types.NewOccurrence("", "note", "acme")
	occurrence.ResourceData = []byte("founded in a garage")
	require.NoError(t, store.CreateOccurrence(ctx, mapID, occurrence, ontology.Strict))

	require.NoError(t, store.UpdateTopicIdentifier(ctx, mapID, "acme", "Acme Corp", ontology.Strict))

	old, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{})
	require.NoError(t, err)
	assert.Nil(t, old)

	renamed, err := store.GetTopic(ctx, mapID, "acme-corp", types.TopicOptions{ResolveAttributes: true, ResolveOccurrences: true})
	require.NoError(t, err)
	require.NotNil(t, renamed)
	assert.Equal(t, "acme", renamed.Name())
	require.Len(t, renamed.Attributes, 1)
	assert.Equal(t, "acme-corp", renamed.Attributes[0].EntityIdentifier)
	require.Len(t, renamed.Occurrences, 1)
	assert.Equal(t, "acme-corp", renamed.Occurrences[0].TopicIdentifier)

	got, err := store.GetAssociation(ctx, mapID, association.Identifier, types.TopicOptions{})
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", got.Member.SrcTopicRef)

	t.Run("collision", func(t *testing.T) {
		err := store.UpdateTopicIdentifier(ctx, mapID, "acme-corp", "jane", ontology.Strict)
		assert.True(t, errors.IsDuplicateIdentifierError(err))
	})

	t.Run("base topic is protected", func(t *testing.T) {
		err := store.UpdateTopicIdentifier(ctx, mapID, "home", "start", ontology.Strict)
		assert.True(t, errors.IsProtectedTopicError(err))
	})

	t.Run("missing source", func(t *testing.T) {
		err := store.UpdateTopicIdentifier(ctx, mapID, "nobody", "somebody", ontology.Strict)
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("empty target", func(t *testing.T) {
		err := store.UpdateTopicIdentifier(ctx, mapID, "acme-corp", "  ", ontology.Strict)
		assert.True(t, errors.IsEmptyFieldError(err))
	})
}

func TestDeleteTopic_Cascades(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme", "jane", "bob")

	employment := types.NewAssociation("", "employment", "jane", "acme")
	require.NoError(t, store.CreateAssociation(ctx, mapID, employment, ontology.Lenient))
	friendship := types.NewAssociation("", "friendship", "jane", "bob")
	require.NoError(t, store.CreateAssociation(ctx, mapID, friendship, ontology.Lenient))

	occurrence := types.NewOccurrence("", "note", "acme")
	occurrence.ResourceData = []byte("headquarters")
	require.NoError(t, store.CreateOccurrence(ctx, mapID, occurrence, ontology.Strict))

	require.NoError(t, store.DeleteTopic(ctx, mapID, "acme", ontology.Strict))

	exists, err := store.TopicExists(ctx, mapID, "acme")
	require.NoError(t, err)
	assert.False(t, exists)

	gone, err := store.GetAssociation(ctx, mapID, employment.Identifier, types.TopicOptions{})
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := store.GetAssociation(ctx, mapID, friendship.Identifier, types.TopicOptions{})
	require.NoError(t, err)
	assert.NotNil(t, kept)

	assert.Equal(t, 1, countRows(t, store, "member", mapID))
	assert.Equal(t, 0, countRows(t, store, "occurrence", mapID))

	attributes, err := store.GetAttributes(ctx, mapID, "acme", types.AttributeFilter{})
	require.NoError(t, err)
	assert.Empty(t, attributes)

	hits, err := store.SearchOccurrences(ctx, mapID, "headquarters", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDeleteTopic_Guards(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme", "jane")

	association := types.NewAssociation("acme-jane", "", "acme", "jane")
	require.NoError(t, store.CreateAssociation(ctx, mapID, association, ontology.Strict))

	err := store.DeleteTopic(ctx, mapID, "acme-jane", ontology.Strict)
	assert.True(t, errors.IsInvalidArgumentError(err), "an association is not deleted as a topic")

	require.NoError(t, store.DeleteAssociation(ctx, mapID, "acme-jane"))
	assert.Equal(t, 0, countRows(t, store, "member", mapID))

	err = store.DeleteTopic(ctx, mapID, ontology.HomeTopic, ontology.Strict)
	assert.True(t, errors.IsProtectedTopicError(err))

	err = store.DeleteTopic(ctx, mapID, "nobody", ontology.Strict)
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, store.DeleteTopic(ctx, mapID, ontology.HomeTopic, ontology.Lenient))
}

func TestBaseNames(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	extra := types.NewBaseName("Acme Inc", "", types.English)
	require.NoError(t, store.CreateBaseName(ctx, mapID, "acme", extra, ontology.Strict))

	err := store.CreateBaseName(ctx, mapID, "acme", types.NewBaseName("Acme Work", "work", ""), ontology.Strict)
	assert.True(t, errors.IsOntologyViolation(err))

	err = store.CreateBaseName(ctx, mapID, "nobody", types.NewBaseName("Nobody", "", ""), ontology.Strict)
	assert.True(t, errors.IsNotFoundError(err))

	require.NoError(t, store.UpdateBaseName(ctx, mapID, extra.Identifier, "Acme Incorporated", "", types.French))

	got, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{Language: types.French})
	require.NoError(t, err)
	require.Len(t, got.BaseNames, 1)
	assert.Equal(t, "Acme Incorporated", got.Name())

	all, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{})
	require.NoError(t, err)
	require.Len(t, all.BaseNames, 2)

	require.NoError(t, store.DeleteBaseName(ctx, mapID, all.BaseNames[0].Identifier))
	err = store.DeleteBaseName(ctx, mapID, extra.Identifier)
	assert.True(t, errors.IsInvalidArgumentError(err), "the last name stays")

	err = store.UpdateBaseName(ctx, mapID, "missing", "x", "", "")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestAttributes(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme", "jane")

	colour := types.NewAttribute("colour", "red", "acme", types.StringType)
	size := types.NewAttribute("size", "12", "acme", types.NumberType)
	require.NoError(t, store.CreateAttributes(ctx, mapID, []*types.Attribute{colour, size}, ontology.Strict))

	t.Run("uniqueness per entity, name, scope and language", func(t *testing.T) {
		err := store.CreateAttribute(ctx, mapID, types.NewAttribute("colour", "blue", "acme", ""), ontology.Strict)
		assert.True(t, errors.IsIntegrityError(err))

		dutch := types.NewAttribute("colour", "rood", "acme", "")
		dutch.Language = types.Dutch
		require.NoError(t, store.CreateAttribute(ctx, mapID, dutch, ontology.Strict))
	})

	t.Run("strict scope", func(t *testing.T) {
		scoped := types.NewAttribute("colour", "green", "jane", "")
		scoped.Scope = "work"
		assert.True(t, errors.IsOntologyViolation(store.CreateAttribute(ctx, mapID, scoped, ontology.Strict)))
		require.NoError(t, store.CreateAttribute(ctx, mapID, scoped, ontology.Lenient))
	})

	t.Run("empty entity identifier", func(t *testing.T) {
		err := store.CreateAttribute(ctx, mapID, types.NewAttribute("colour", "red", "", ""), ontology.Lenient)
		assert.True(t, errors.IsEmptyFieldError(err))
	})

	t.Run("read and update", func(t *testing.T) {
		got, err := store.GetAttribute(ctx, mapID, colour.Identifier)
		require.NoError(t, err)
		assert.Equal(t, colour, got)

		require.NoError(t, store.UpdateAttributeValue(ctx, mapID, colour.Identifier, "crimson"))
		got, err = store.GetAttribute(ctx, mapID, colour.Identifier)
		require.NoError(t, err)
		assert.Equal(t, "crimson", got.Value)

		dutch, err := store.GetAttributes(ctx, mapID, "acme", types.AttributeFilter{Language: types.Dutch})
		require.NoError(t, err)
		require.Len(t, dutch, 1)
		assert.Equal(t, "rood", dutch[0].Value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.DeleteAttribute(ctx, mapID, size.Identifier))
		got, err := store.GetAttribute(ctx, mapID, size.Identifier)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.True(t, errors.IsNotFoundError(store.DeleteAttribute(ctx, mapID, size.Identifier)))
	})

	t.Run("topics by attribute name", func(t *testing.T) {
		ids, err := store.GetTopicIdentifiersByAttributeName(ctx, mapID, "Colour", types.AttributeFilter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"acme", "jane"}, ids)

		ids, err = store.GetTopicIdentifiersByAttributeName(ctx, mapID, "colour", types.AttributeFilter{Scope: "work"})
		require.NoError(t, err)
		assert.Equal(t, []string{"jane"}, ids)

		topics, err := store.GetTopicsByAttributeName(ctx, mapID, "colour", types.AttributeFilter{Language: types.Dutch})
		require.NoError(t, err)
		require.Len(t, topics, 1)
		assert.Equal(t, "acme", topics[0].Identifier)
	})
}

func TestUnsupportedEnumsRejected(t *testing.T) {
	ctx := context.Background()
	store, mapID := newTestStore(t)
	createTopics(t, store, mapID, "acme")

	t.Run("topic base name language", func(t *testing.T) {
		err := store.CreateTopic(ctx, mapID, types.NewTopic("klingon-empire", "", "Klingon Empire", types.Language("klingon")), ontology.Lenient)
		assert.True(t, errors.IsInvalidArgumentError(err))

		exists, err := store.TopicExists(ctx, mapID, "klingon-empire")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("base name language", func(t *testing.T) {
		err := store.CreateBaseName(ctx, mapID, "acme", types.NewBaseName("Acme", "", types.Language("xx")), ontology.Lenient)
		assert.True(t, errors.IsInvalidArgumentError(err))

		topic, err := store.GetTopic(ctx, mapID, "acme", types.TopicOptions{})
		require.NoError(t, err)
		require.Len(t, topic.BaseNames, 1)

		err = store.UpdateBaseName(ctx, mapID, topic.BaseNames[0].Identifier, "Acme", "", types.Language("xx"))
		assert.True(t, errors.IsInvalidArgumentError(err))
	})

	t.Run("attribute data type and language", func(t *testing.T) {
		banana := types.NewAttribute("flavour", "yellow", "acme", types.DataType("banana"))
		assert.True(t, errors.IsInvalidArgumentError(store.CreateAttribute(ctx, mapID, banana, ontology.Lenient)))

		foreign := types.NewAttribute("flavour", "yellow", "acme", types.StringType)
		foreign.Language = types.Language("xx")
		assert.True(t, errors.IsInvalidArgumentError(store.CreateAttribute(ctx, mapID, foreign, ontology.Lenient)))

		stored, err := store.GetAttributes(ctx, mapID, "acme", types.AttributeFilter{})
		require.NoError(t, err)
		for _, a := range stored {
			assert.NotEqual(t, "flavour", a.Name)
		}
	})

	t.Run("occurrence language", func(t *testing.T) {
		o := types.NewOccurrence("memo", types.NoteOccurrence, "acme")
		o.Language = types.Language("xx")
		assert.True(t, errors.IsInvalidArgumentError(store.CreateOccurrence(ctx, mapID, o, ontology.Lenient)))

		exists, err := store.OccurrenceExists(ctx, mapID, "memo")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
