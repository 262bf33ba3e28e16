package types

// Empty strings in the option types below mean "no filter".

// TopicOptions controls how a single topic is resolved
type TopicOptions struct {
	Scope              string   // restrict base names to this scope
	Language           Language // restrict base names to this language
	ResolveAttributes  bool
	ResolveOccurrences bool
}

// ListOptions pages through topics of a map
type ListOptions struct {
	InstanceOf       string
	Query            string // identifier prefix
	FilterBaseTopics bool   // exclude the reserved ontology topics
	Language         Language
	Offset           int
	Limit            int // 0 = unlimited
}

// AttributeFilter narrows attribute lookups and attribute-name topic queries
type AttributeFilter struct {
	InstanceOf string
	Scope      string
	Language   Language
}

// AssociationFilter narrows the associations of a topic
type AssociationFilter struct {
	InstanceOfs        []string // any of these association types
	Scope              string
	Language           Language // base-name language of the resolved associations
	ResolveAttributes  bool
	ResolveOccurrences bool
}

// OccurrenceOptions controls how a single occurrence is resolved
type OccurrenceOptions struct {
	InlineResourceData bool
	ResolveAttributes  bool
}

// OccurrenceFilter narrows occurrence listings
type OccurrenceFilter struct {
	InstanceOf         string
	Scope              string
	Language           Language
	InlineResourceData bool
	ResolveAttributes  bool
	Offset             int
	Limit              int // 0 = unlimited
}
