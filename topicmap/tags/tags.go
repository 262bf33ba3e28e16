// Package tags encodes tagging as categorization associations.
//
// Tagging subject with tag writes two associations of type "categorization":
//
//	subject (member)  -> tag (category)
//	tags    (broader) -> tag (narrower)
//
// The second links every tag into the "tags" taxonomy root. Missing subject,
// tag and root topics are created leniently with display names derived from
// their identifiers. Each association is written once, however often the same
// tag is applied.
package tags

import (
	"context"

	"go.uber.org/zap"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/internal/slug"
	"github.com/teranos/topicdb/logger"
	"github.com/teranos/topicdb/topicmap"
	"github.com/teranos/topicdb/topicmap/ontology"
	"github.com/teranos/topicdb/topicmap/types"
)

// Vocabulary of the tag encoding. Every identifier is a base topic.
const (
	Categorization = "categorization"
	Root           = "tags"
	TagType        = "tag"

	MemberRole   = "member"
	CategoryRole = "category"
	BroaderRole  = "broader"
	NarrowerRole = "narrower"
)

// Tagger applies and reads tags through a TagStore
type Tagger struct {
	store  topicmap.TagStore
	logger *zap.SugaredLogger
}

// NewTagger creates a tagger writing to store
func NewTagger(store topicmap.TagStore, log *zap.SugaredLogger) *Tagger {
	return &Tagger{store: store, logger: logger.OrNop(log)}
}

// CreateTag tags subjectID with tag. The steps are not one transaction: a
// failure part way leaves the topics created so far, and a retry completes
// the rest without duplicating anything.
func (t *Tagger) CreateTag(ctx context.Context, mapID int64, subjectID, tag string) error {
	subject, tag, err := normalizePair(subjectID, tag)
	if err != nil {
		return err
	}

	if err := t.ensureTopic(ctx, mapID, subject, types.DefaultTopicType); err != nil {
		return err
	}
	if err := t.ensureTopic(ctx, mapID, tag, TagType); err != nil {
		return err
	}
	if err := t.ensureTopic(ctx, mapID, Root, types.DefaultTopicType); err != nil {
		return err
	}

	created, err := t.ensureLink(ctx, mapID, subject, MemberRole, tag, CategoryRole)
	if err != nil {
		return err
	}
	if _, err := t.ensureLink(ctx, mapID, Root, BroaderRole, tag, NarrowerRole); err != nil {
		return err
	}

	t.logger.Debugw("Tagged topic",
		logger.FieldMapID, mapID,
		logger.FieldTopicID, subject,
		logger.FieldTag, tag,
		"created", created)
	return nil
}

// GetTags returns the tags of identifier in the order they were applied
func (t *Tagger) GetTags(ctx context.Context, mapID int64, identifier string) ([]string, error) {
	return t.neighbours(ctx, mapID, identifier, CategoryRole)
}

// GetTagged returns the topics carrying tag in the order they were tagged
func (t *Tagger) GetTagged(ctx context.Context, mapID int64, tag string) ([]string, error) {
	return t.neighbours(ctx, mapID, tag, MemberRole)
}

// RemoveTag deletes the categorization linking subjectID to tag. The tag
// topic and its place under the root stay. Removing a tag the subject does
// not carry is a not-found error.
func (t *Tagger) RemoveTag(ctx context.Context, mapID int64, subjectID, tag string) error {
	subject, tag, err := normalizePair(subjectID, tag)
	if err != nil {
		return err
	}

	links, err := t.links(ctx, mapID, subject, MemberRole, tag, CategoryRole)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		return errors.NewNotFoundError("tag %q on topic %q in map %d", tag, subject, mapID)
	}

	for _, association := range links {
		if err := t.store.DeleteAssociation(ctx, mapID, association.Identifier); err != nil {
			return errors.Wrapf(err, "failed to remove tag %s from %s", tag, subject)
		}
	}

	t.logger.Debugw("Removed tag",
		logger.FieldMapID, mapID,
		logger.FieldTopicID, subject,
		logger.FieldTag, tag,
		logger.FieldCount, len(links))
	return nil
}

func normalizePair(subjectID, tag string) (string, string, error) {
	subject, err := slug.Required("subject", subjectID)
	if err != nil {
		return "", "", err
	}
	tag, err = slug.Required("tag", tag)
	if err != nil {
		return "", "", err
	}
	if subject == tag {
		return "", "", errors.NewInvalidRequestError("topic %q cannot tag itself", subject)
	}
	return subject, tag, nil
}

func (t *Tagger) neighbours(ctx context.Context, mapID int64, identifier, roleSpec string) ([]string, error) {
	identifier, err := slug.Required("identifier", identifier)
	if err != nil {
		return nil, err
	}
	groups, err := t.store.GetAssociationGroups(ctx, mapID, identifier, types.AssociationFilter{
		InstanceOfs: []string{Categorization},
	})
	if err != nil {
		return nil, err
	}
	return groups.Get(Categorization, roleSpec), nil
}

func (t *Tagger) ensureTopic(ctx context.Context, mapID int64, identifier, instanceOf string) error {
	exists, err := t.store.TopicExists(ctx, mapID, identifier)
	if err != nil || exists {
		return err
	}
	topic := types.NewTopic(identifier, instanceOf, slug.Title(identifier), types.DefaultLanguage)
	if err := t.store.CreateTopic(ctx, mapID, topic, ontology.Lenient); err != nil {
		return errors.Wrapf(err, "failed to create topic %s", identifier)
	}
	return nil
}

// ensureLink creates the categorization unless one already binds the same
// refs and roles. Reports whether it wrote anything.
func (t *Tagger) ensureLink(ctx context.Context, mapID int64, src, srcRole, dest, destRole string) (bool, error) {
	existing, err := t.links(ctx, mapID, src, srcRole, dest, destRole)
	if err != nil || len(existing) > 0 {
		return false, err
	}

	association := types.NewAssociation("", Categorization, src, dest).WithRoles(srcRole, destRole)
	if err := t.store.CreateAssociation(ctx, mapID, association, ontology.Lenient); err != nil {
		return false, errors.Wrapf(err, "failed to link %s to %s", src, dest)
	}
	return true, nil
}

// links returns the categorizations of src binding src under srcRole and
// dest under destRole, in either direction.
func (t *Tagger) links(ctx context.Context, mapID int64, src, srcRole, dest, destRole string) ([]*types.Association, error) {
	associations, err := t.store.GetTopicAssociations(ctx, mapID, src, types.AssociationFilter{
		InstanceOfs: []string{Categorization},
	})
	if err != nil {
		return nil, err
	}

	var matches []*types.Association
	for _, a := range associations {
		m := a.Member
		forward := m.SrcTopicRef == src && m.SrcRoleSpec == srcRole && m.DestTopicRef == dest && m.DestRoleSpec == destRole
		backward := m.DestTopicRef == src && m.DestRoleSpec == srcRole && m.SrcTopicRef == dest && m.SrcRoleSpec == destRole
		if forward || backward {
			matches = append(matches, a)
		}
	}
	return matches, nil
}
