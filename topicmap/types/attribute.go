package types

import (
	"github.com/google/uuid"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
)

// Attribute is a typed, scoped key/value fact attached to any entity.
// At most one attribute exists per (entity, name, scope, language).
type Attribute struct {
	Identifier       string   `db:"identifier" json:"identifier"`
	EntityIdentifier string   `db:"entity_identifier" json:"entityIdentifier"`
	Name             string   `db:"name" json:"name"`
	Value            string   `db:"value" json:"value"`
	DataType         DataType `db:"data_type" json:"dataType"`
	Scope            string   `db:"scope" json:"scope"`
	Language         Language `db:"language" json:"language"`
}

// NewAttribute creates a universally scoped English attribute with a generated identifier
func NewAttribute(name, value, entityIdentifier string, dataType DataType) *Attribute {
	if dataType == "" {
		dataType = StringType
	}
	return &Attribute{
		Identifier:       uuid.NewString(),
		EntityIdentifier: slug.Normalize(entityIdentifier),
		Name:             slug.Normalize(name),
		Value:            value,
		DataType:         dataType,
		Scope:            UniversalScope,
		Language:         DefaultLanguage,
	}
}

// Normalize applies identifier normalization and defaults, and rejects
// attributes without an owner or a name.
func (a *Attribute) Normalize() error {
	a.Identifier = newIdentifier(a.Identifier)

	entityIdentifier, err := slug.Required("entity_identifier", a.EntityIdentifier)
	if err != nil {
		return err
	}
	a.EntityIdentifier = entityIdentifier

	name, err := slug.Required("name", a.Name)
	if err != nil {
		return err
	}
	a.Name = name

	if a.DataType == "" {
		a.DataType = StringType
	}
	if !a.DataType.Valid() {
		return errors.NewInvalidRequestError("unknown data type %q", string(a.DataType))
	}
	a.Scope = slug.Optional(a.Scope, UniversalScope)
	a.Language = a.Language.orDefault()
	return a.Language.check()
}
