// Package ontology decides whether an entity may be written to a map.
//
// In Strict mode every instance-of or scope reference an entity carries must
// already exist as a topic in the target map. Lenient mode skips the check and
// is used for seeding the base ontology and for tagging, where forward
// references are expected.
package ontology

import (
	"context"
	"strings"

	"github.com/teranos/topicdb/errors"
	"github.com/teranos/topicdb/topicmap/types"
)

// Mode selects how references are checked before a write
type Mode int

const (
	// Strict requires referenced topics to exist
	Strict Mode = iota
	// Lenient skips the check
	Lenient
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	}
	return "unknown"
}

// ParseMode accepts "strict" or "lenient" case-insensitively; empty means Strict
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, errors.NewInvalidRequestError("unknown ontology mode %q", s)
}

// Reference is one topic identifier an entity depends on
type Reference struct {
	Field      string
	Identifier string
}

// References returns the references a Strict check must resolve:
//   - topic: instance-of
//   - association: instance-of and scope
//   - occurrence: instance-of and scope
//   - attribute: scope
//
// Unknown entity kinds have no references.
func References(entity any) []Reference {
	switch e := entity.(type) {
	case *types.Association:
		return []Reference{{"instance_of", e.InstanceOf}, {"scope", e.Scope}}
	case *types.Topic:
		return []Reference{{"instance_of", e.InstanceOf}}
	case *types.Occurrence:
		return []Reference{{"instance_of", e.InstanceOf}, {"scope", e.Scope}}
	case *types.Attribute:
		return []Reference{{"scope", e.Scope}}
	}
	return nil
}

// TopicChecker reports whether a topic exists in a map
type TopicChecker interface {
	TopicExists(ctx context.Context, mapID int64, identifier string) (bool, error)
}

// Policy applies the ontology rules against a TopicChecker
type Policy struct {
	Checker TopicChecker
}

// Check returns an ontology violation naming the first missing reference.
// Lenient always passes. Checker failures are returned as-is.
func (p Policy) Check(ctx context.Context, mapID int64, mode Mode, entity any) error {
	return p.resolve(ctx, mapID, mode, References(entity))
}

// CheckScope resolves a bare scope, for updates that change only the scope
// of a stored entity.
func (p Policy) CheckScope(ctx context.Context, mapID int64, mode Mode, scope string) error {
	return p.resolve(ctx, mapID, mode, []Reference{{"scope", scope}})
}

func (p Policy) resolve(ctx context.Context, mapID int64, mode Mode, refs []Reference) error {
	if mode == Lenient {
		return nil
	}
	for _, ref := range refs {
		exists, err := p.Checker.TopicExists(ctx, mapID, ref.Identifier)
		if err != nil {
			return err
		}
		if !exists {
			return errors.WithHint(
				errors.NewOntologyViolationError("%s %q does not exist as a topic in map %d", ref.Field, ref.Identifier, mapID),
				"create the referenced topic first or write in lenient mode",
			)
		}
	}
	return nil
}
