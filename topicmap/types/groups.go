package types

// GroupKey addresses one bucket of an AssociationGroups
type GroupKey struct {
	InstanceOf string `json:"instanceOf"`
	RoleSpec   string `json:"roleSpec"`
}

// AssociationGroups answers "which topics relate to X, by relationship type
// and role": association instance-of -> role spec of the other end -> topic refs.
// Every level keeps insertion order and refs are deduplicated per bucket.
type AssociationGroups struct {
	instanceOfs []string
	roleSpecs   map[string][]string
	refs        map[GroupKey][]string
}

// NewAssociationGroups returns an empty grouping
func NewAssociationGroups() *AssociationGroups {
	return &AssociationGroups{
		roleSpecs: make(map[string][]string),
		refs:      make(map[GroupKey][]string),
	}
}

// Add appends topicRef under (instanceOf, roleSpec).
// Returns false when the ref was already present in that bucket.
func (g *AssociationGroups) Add(instanceOf, roleSpec, topicRef string) bool {
	key := GroupKey{InstanceOf: instanceOf, RoleSpec: roleSpec}
	existing, seen := g.refs[key]
	for _, ref := range existing {
		if ref == topicRef {
			return false
		}
	}

	if !seen {
		if _, ok := g.roleSpecs[instanceOf]; !ok {
			g.instanceOfs = append(g.instanceOfs, instanceOf)
		}
		g.roleSpecs[instanceOf] = append(g.roleSpecs[instanceOf], roleSpec)
	}
	g.refs[key] = append(existing, topicRef)
	return true
}

// AddAssociation adds every end of a that is not topicID itself
func (g *AssociationGroups) AddAssociation(topicID string, a *Association) {
	for _, binding := range a.RoleBindings() {
		if binding.TopicRef != topicID {
			g.Add(a.InstanceOf, binding.RoleSpec, binding.TopicRef)
		}
	}
}

// Get returns the topic refs under (instanceOf, roleSpec), or nil
func (g *AssociationGroups) Get(instanceOf, roleSpec string) []string {
	return g.refs[GroupKey{InstanceOf: instanceOf, RoleSpec: roleSpec}]
}

// InstanceOfs returns the association types present, in discovery order
func (g *AssociationGroups) InstanceOfs() []string {
	return g.instanceOfs
}

// RoleSpecs returns the role specs recorded under instanceOf, in discovery order
func (g *AssociationGroups) RoleSpecs(instanceOf string) []string {
	return g.roleSpecs[instanceOf]
}

// Keys returns every (instanceOf, roleSpec) pair in discovery order
func (g *AssociationGroups) Keys() []GroupKey {
	var keys []GroupKey
	for _, instanceOf := range g.instanceOfs {
		for _, roleSpec := range g.roleSpecs[instanceOf] {
			keys = append(keys, GroupKey{InstanceOf: instanceOf, RoleSpec: roleSpec})
		}
	}
	return keys
}

// Len returns the number of (instanceOf, roleSpec) buckets
func (g *AssociationGroups) Len() int {
	return len(g.refs)
}

// TopicRefs flattens every bucket into one deduplicated list, in discovery order
func (g *AssociationGroups) TopicRefs() []string {
	seen := make(map[string]bool)
	var refs []string
	for _, key := range g.Keys() {
		for _, ref := range g.refs[key] {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// TopicRefsOf flattens the buckets of a single association type
func (g *AssociationGroups) TopicRefsOf(instanceOf string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, roleSpec := range g.roleSpecs[instanceOf] {
		for _, ref := range g.refs[GroupKey{InstanceOf: instanceOf, RoleSpec: roleSpec}] {
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}
