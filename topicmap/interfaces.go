package topicmap

import (
	"context"

	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// TopicReader resolves topics by identifier. GetTopic returns nil, nil for
// a missing topic.
type TopicReader interface {
	TopicExists(ctx context.Context, mapID int64, identifier string) (bool, error)
	GetTopic(ctx context.Context, mapID int64, identifier string, opts types.TopicOptions) (*types.Topic, error)
}

// AssociationReader lists the associations a topic takes part in, in storage order
type AssociationReader interface {
	GetTopicAssociations(ctx context.Context, mapID int64, identifier string, filter types.AssociationFilter) ([]*types.Association, error)
}

// GraphSource is everything the graph builders read
type GraphSource interface {
	TopicReader
	AssociationReader
}

// TagStore is everything the tag subsystem reads and writes
type TagStore interface {
	GraphSource
	CreateTopic(ctx context.Context, mapID int64, topic *types.Topic, mode ontology.Mode) error
	CreateAssociation(ctx context.Context, mapID int64, association *types.Association, mode ontology.Mode) error
	DeleteAssociation(ctx context.Context, mapID int64, identifier string) error
	GetAssociationGroups(ctx context.Context, mapID int64, identifier string, filter types.AssociationFilter) (*types.AssociationGroups, error)
}

// SearchIndex receives the text payload of occurrences so an external
// full-text engine can be kept in step with the store. Calls happen inside
// the write transaction; an error aborts the write.
type SearchIndex interface {
	IndexOccurrence(ctx context.Context, mapID int64, occurrenceID string, text string) error
	RemoveOccurrence(ctx context.Context, mapID int64, occurrenceID string) error
}

// UserIdentity supplies the caller's opaque user identifier for map and
// collaboration operations. Authentication happens elsewhere.
type UserIdentity interface {
	UserIdentifier(ctx context.Context) (int64, error)
}

// StaticUser is a UserIdentity that always answers with the same identifier
type StaticUser int64

// UserIdentifier implements UserIdentity
func (u StaticUser) UserIdentifier(context.Context) (int64, error) {
	return int64(u), nil
}
