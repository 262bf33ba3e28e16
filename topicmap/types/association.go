package types

import (
	"github.com/google/uuid"

	"github.com/teranos/topicdb/internal/slug"
)

// Member holds the two directed role bindings of an association
type Member struct {
	Identifier   string `db:"identifier" json:"identifier"`
	SrcTopicRef  string `db:"src_topic_ref" json:"srcTopicRef"`
	SrcRoleSpec  string `db:"src_role_spec" json:"srcRoleSpec"`
	DestTopicRef string `db:"dest_topic_ref" json:"destTopicRef"`
	DestRoleSpec string `db:"dest_role_spec" json:"destRoleSpec"`
}

// NewMember creates a member; empty role specs default to "related"
func NewMember(srcTopicRef, srcRoleSpec, destTopicRef, destRoleSpec string) Member {
	return Member{
		Identifier:   uuid.NewString(),
		SrcTopicRef:  slug.Normalize(srcTopicRef),
		SrcRoleSpec:  slug.Optional(srcRoleSpec, DefaultRoleSpec),
		DestTopicRef: slug.Normalize(destTopicRef),
		DestRoleSpec: slug.Optional(destRoleSpec, DefaultRoleSpec),
	}
}

// Other returns the topic ref at the opposite end from ref, or "" when ref
// is not a member. A self-association returns ref itself.
func (m Member) Other(ref string) string {
	switch ref {
	case m.SrcTopicRef:
		return m.DestTopicRef
	case m.DestTopicRef:
		return m.SrcTopicRef
	}
	return ""
}

// Normalize applies identifier normalization and rejects empty refs or role specs
func (m *Member) Normalize() error {
	m.Identifier = newIdentifier(m.Identifier)

	var err error
	if m.SrcTopicRef, err = slug.Required("src_topic_ref", m.SrcTopicRef); err != nil {
		return err
	}
	if m.DestTopicRef, err = slug.Required("dest_topic_ref", m.DestTopicRef); err != nil {
		return err
	}
	if m.SrcRoleSpec, err = slug.Required("src_role_spec", m.SrcRoleSpec); err != nil {
		return err
	}
	if m.DestRoleSpec, err = slug.Required("dest_role_spec", m.DestRoleSpec); err != nil {
		return err
	}
	return nil
}

// RoleBinding is one directed end of an association
type RoleBinding struct {
	TopicRef string `json:"topicRef"`
	RoleSpec string `json:"roleSpec"`
}

// Association is a typed, scoped relationship between two topic refs.
// It is stored as a topic row with a non-null scope plus one member row,
// but is a distinct type so it can never travel through the topic paths.
type Association struct {
	Topic
	Scope  string `db:"scope" json:"scope"`
	Member Member `json:"member"`
}

// NewAssociation creates a universally scoped association between two topics
// with "related" roles on both ends.
// Empty identifier generates one, empty instanceOf is "association".
func NewAssociation(identifier, instanceOf, srcTopicRef, destTopicRef string) *Association {
	return &Association{
		Topic: Topic{
			Entity: Entity{
				Identifier: newIdentifier(identifier),
				InstanceOf: slug.Optional(instanceOf, DefaultAssociationType),
			},
			BaseNames: []BaseName{NewBaseName(UndefinedName, UniversalScope, DefaultLanguage)},
		},
		Scope:  UniversalScope,
		Member: NewMember(srcTopicRef, DefaultRoleSpec, destTopicRef, DefaultRoleSpec),
	}
}

// WithRoles sets both role specs and returns the association
func (a *Association) WithRoles(srcRoleSpec, destRoleSpec string) *Association {
	a.Member.SrcRoleSpec = slug.Optional(srcRoleSpec, DefaultRoleSpec)
	a.Member.DestRoleSpec = slug.Optional(destRoleSpec, DefaultRoleSpec)
	return a
}

// RoleBindings yields both directed bindings, source first
func (a *Association) RoleBindings() []RoleBinding {
	return []RoleBinding{
		{TopicRef: a.Member.SrcTopicRef, RoleSpec: a.Member.SrcRoleSpec},
		{TopicRef: a.Member.DestTopicRef, RoleSpec: a.Member.DestRoleSpec},
	}
}

// Involves reports whether ref is bound at either end
func (a *Association) Involves(ref string) bool {
	return a.Member.SrcTopicRef == ref || a.Member.DestTopicRef == ref
}

// Normalize normalizes the topic part, the scope and the member
func (a *Association) Normalize() error {
	if err := a.normalizeTopic(DefaultAssociationType); err != nil {
		return err
	}
	a.Scope = slug.Optional(a.Scope, UniversalScope)
	return a.Member.Normalize()
}
