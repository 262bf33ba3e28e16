package types

import (
	"github.com/teranos/topicdb/internal/slug"
)

// Occurrence is a typed resource attached to a topic. It carries a
// reference, inline data, or both.
type Occurrence struct {
	Entity
	TopicIdentifier string   `db:"topic_identifier" json:"topicIdentifier"`
	Scope           string   `db:"scope" json:"scope"`
	ResourceRef     string   `db:"resource_ref" json:"resourceRef"`
	ResourceData    []byte   `db:"resource_data" json:"resourceData,omitempty"`
	Language        Language `db:"language" json:"language"`
}

// NewOccurrence creates a universally scoped English occurrence.
// Empty identifier generates one, empty instanceOf is "occurrence".
func NewOccurrence(identifier, instanceOf, topicIdentifier string) *Occurrence {
	return &Occurrence{
		Entity: Entity{
			Identifier: newIdentifier(identifier),
			InstanceOf: slug.Optional(instanceOf, DefaultOccurrenceType),
		},
		TopicIdentifier: slug.Normalize(topicIdentifier),
		Scope:           UniversalScope,
		Language:        DefaultLanguage,
	}
}

// HasData reports whether inline resource data is present
func (o *Occurrence) HasData() bool {
	return len(o.ResourceData) > 0
}

// Normalize applies identifier normalization and defaults, and rejects
// occurrences without an owning topic.
func (o *Occurrence) Normalize() error {
	o.Identifier = newIdentifier(o.Identifier)
	if err := o.normalizeEntity(DefaultOccurrenceType); err != nil {
		return err
	}

	topicIdentifier, err := slug.Required("topic_identifier", o.TopicIdentifier)
	if err != nil {
		return err
	}
	o.TopicIdentifier = topicIdentifier
	o.Scope = slug.Optional(o.Scope, UniversalScope)
	o.Language = o.Language.orDefault()
	return o.Language.check()
}
