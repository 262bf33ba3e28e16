package graph

import (
	"context"
	"slices"

	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/topicmap/types"
)

// memorySource is an in-memory GraphSource that counts expansions per topic
type memorySource struct {
	topics       map[string]*types.Topic
	associations []*types.Association
	expanded     map[string]int
	err          error
}

func newMemorySource(identifiers ...string) *memorySource {
	s := &memorySource{
		topics:   make(map[string]*types.Topic),
		expanded: make(map[string]int),
	}
	for _, identifier := range identifiers {
		s.topics[identifier] = types.NewTopic(identifier, "person", slug.Title(identifier), types.DefaultLanguage)
	}
	return s
}

func (s *memorySource) link(instanceOf, src, dest string) *types.Association {
	a := types.NewAssociation("", instanceOf, src, dest)
	s.associations = append(s.associations, a)
	return a
}

func (s *memorySource) TopicExists(_ context.Context, _ int64, identifier string) (bool, error) {
	_, ok := s.topics[identifier]
	return ok, nil
}

func (s *memorySource) GetTopic(_ context.Context, _ int64, identifier string, _ types.TopicOptions) (*types.Topic, error) {
	return s.topics[identifier], nil
}

func (s *memorySource) GetTopicAssociations(_ context.Context, _ int64, identifier string, filter types.AssociationFilter) ([]*types.Association, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.expanded[identifier]++

	var out []*types.Association
	for _, a := range s.associations {
		if !a.Involves(identifier) {
			continue
		}
		if len(filter.InstanceOfs) > 0 && !slices.Contains(filter.InstanceOfs, a.InstanceOf) {
			continue
		}
		if filter.Scope != "" && a.Scope != filter.Scope {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}
