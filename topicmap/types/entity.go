// Package types holds the in-memory topic map entities: topics, base names,
// occurrences, attributes, associations and maps. The types are plain values
// owned by the caller; nothing here performs I/O.
//
// Constructors normalize every identifier-typed field. Normalize methods
// re-apply the normalization and reject empty required fields, and are what
// the storage engine calls before writing.
package types

import (
	"github.com/google/uuid"

	"github.com/teranos/topicdb/internal/slug"
)

// Reserved identifiers and defaults shared across the entity model
const (
	UniversalScope             = slug.UniversalScope
	DefaultRoleSpec            = "related"
	UndefinedName              = "Undefined"
	CreationTimestampAttribute = "creation-timestamp"

	DefaultTopicType       = "topic"
	DefaultOccurrenceType  = "occurrence"
	DefaultAssociationType = "association"
)

// Entity is the part shared by topics, associations and occurrences
type Entity struct {
	Identifier string       `db:"identifier" json:"identifier"`
	InstanceOf string       `db:"instance_of" json:"instanceOf"`
	Attributes []*Attribute `json:"attributes,omitempty"`
}

// newIdentifier returns the normalized identifier, or a fresh UUID when empty
func newIdentifier(identifier string) string {
	if normalized := slug.Normalize(identifier); normalized != "" {
		return normalized
	}
	return uuid.NewString()
}

// AddAttribute attaches an attribute, claiming it for this entity when its
// entity identifier is unset. An attribute with the same identifier replaces
// the existing one.
func (e *Entity) AddAttribute(attribute *Attribute) {
	if attribute == nil {
		return
	}
	if attribute.EntityIdentifier == "" {
		attribute.EntityIdentifier = e.Identifier
	}
	for i, existing := range e.Attributes {
		if existing.Identifier == attribute.Identifier {
			e.Attributes[i] = attribute
			return
		}
	}
	e.Attributes = append(e.Attributes, attribute)
}

// AddAttributes attaches several attributes in order
func (e *Entity) AddAttributes(attributes []*Attribute) {
	for _, a := range attributes {
		e.AddAttribute(a)
	}
}

// GetAttribute returns the attribute with the given identifier, or nil
func (e *Entity) GetAttribute(identifier string) *Attribute {
	for _, a := range e.Attributes {
		if a.Identifier == identifier {
			return a
		}
	}
	return nil
}

// GetAttributeByName returns the first attribute with the given name, or nil
func (e *Entity) GetAttributeByName(name string) *Attribute {
	name = slug.Normalize(name)
	for _, a := range e.Attributes {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// RemoveAttribute detaches the attribute with the given identifier.
// Returns false if no such attribute is attached.
func (e *Entity) RemoveAttribute(identifier string) bool {
	for i, a := range e.Attributes {
		if a.Identifier == identifier {
			e.Attributes = append(e.Attributes[:i], e.Attributes[i+1:]...)
			return true
		}
	}
	return false
}

// normalizeEntity normalizes the shared fields and claims unowned attributes
func (e *Entity) normalizeEntity(defaultType string) error {
	identifier, err := slug.Required("identifier", e.Identifier)
	if err != nil {
		return err
	}
	e.Identifier = identifier
	e.InstanceOf = slug.Optional(e.InstanceOf, defaultType)

	for _, a := range e.Attributes {
		if a.EntityIdentifier == "" {
			a.EntityIdentifier = e.Identifier
		}
		if err := a.Normalize(); err != nil {
			return err
		}
	}
	return nil
}
