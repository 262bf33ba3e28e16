package types

import (
	"github.com/google/uuid"

	"github.com/teranos/topicdb/internal/slug"
)

// BaseName is a scoped, language-tagged name of a topic
type BaseName struct {
	Identifier string   `db:"identifier" json:"identifier"`
	Name       string   `db:"name" json:"name"`
	Scope      string   `db:"scope" json:"scope"`
	Language   Language `db:"language" json:"language"`
}

// NewBaseName creates a base name with a generated identifier.
// Empty scope becomes the universal scope, empty language English.
func NewBaseName(name, scope string, language Language) BaseName {
	return BaseName{
		Identifier: uuid.NewString(),
		Name:       name,
		Scope:      slug.Optional(scope, UniversalScope),
		Language:   language.orDefault(),
	}
}

// Normalize applies identifier normalization and defaults, and rejects an
// unsupported language.
func (b *BaseName) Normalize() error {
	b.Identifier = newIdentifier(b.Identifier)
	b.Scope = slug.Optional(b.Scope, UniversalScope)
	b.Language = b.Language.orDefault()
	if b.Name == "" {
		b.Name = UndefinedName
	}
	return b.Language.check()
}

// Topic is a typed, named node of the graph
type Topic struct {
	Entity
	BaseNames   []BaseName    `json:"baseNames"`
	Occurrences []*Occurrence `json:"occurrences,omitempty"`
}

// NewTopic creates a topic with one base name.
// Empty identifier generates one, empty instanceOf is "topic", empty name is "Undefined".
func NewTopic(identifier, instanceOf, name string, language Language) *Topic {
	if name == "" {
		name = UndefinedName
	}
	return &Topic{
		Entity: Entity{
			Identifier: newIdentifier(identifier),
			InstanceOf: slug.Optional(instanceOf, DefaultTopicType),
		},
		BaseNames: []BaseName{NewBaseName(name, UniversalScope, language)},
	}
}

// FirstBaseName returns the first base name, or an "Undefined" name when
// the topic has none.
func (t *Topic) FirstBaseName() BaseName {
	if len(t.BaseNames) == 0 {
		return BaseName{Name: UndefinedName, Scope: UniversalScope, Language: DefaultLanguage}
	}
	return t.BaseNames[0]
}

// Name is shorthand for FirstBaseName().Name
func (t *Topic) Name() string {
	return t.FirstBaseName().Name
}

// AddBaseName appends a base name
func (t *Topic) AddBaseName(name BaseName) {
	t.BaseNames = append(t.BaseNames, name)
}

// RemoveBaseName removes the base name with the given identifier
func (t *Topic) RemoveBaseName(identifier string) bool {
	for i, b := range t.BaseNames {
		if b.Identifier == identifier {
			t.BaseNames = append(t.BaseNames[:i], t.BaseNames[i+1:]...)
			return true
		}
	}
	return false
}

// AddOccurrence attaches an occurrence, claiming it for this topic when its
// topic identifier is unset.
func (t *Topic) AddOccurrence(occurrence *Occurrence) {
	if occurrence == nil {
		return
	}
	if occurrence.TopicIdentifier == "" {
		occurrence.TopicIdentifier = t.Identifier
	}
	t.Occurrences = append(t.Occurrences, occurrence)
}

// Normalize normalizes identifiers, guarantees at least one base name and
// normalizes attached attributes and occurrences.
func (t *Topic) Normalize() error {
	return t.normalizeTopic(DefaultTopicType)
}

func (t *Topic) normalizeTopic(defaultType string) error {
	if err := t.normalizeEntity(defaultType); err != nil {
		return err
	}
	if len(t.BaseNames) == 0 {
		t.BaseNames = []BaseName{NewBaseName(UndefinedName, UniversalScope, DefaultLanguage)}
	}
	for i := range t.BaseNames {
		if err := t.BaseNames[i].Normalize(); err != nil {
			return err
		}
	}
	for _, o := range t.Occurrences {
		if o.TopicIdentifier == "" {
			o.TopicIdentifier = t.Identifier
		}
		if err := o.Normalize(); err != nil {
			return err
		}
	}
	return nil
}

// TopicName is the lightweight listing shape: identifier, type and first name
type TopicName struct {
	Identifier string `db:"identifier" json:"identifier"`
	InstanceOf string `db:"instance_of" json:"instanceOf"`
	Name       string `db:"name" json:"name"`
}
