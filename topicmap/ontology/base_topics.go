package ontology

// BaseTopic is a reserved topic seeded into every populated map
type BaseTopic struct {
	Identifier string
	Name       string
}

// HomeTopic marks a map as populated
const HomeTopic = "home"

// baseTopics is the seed ontology in population order
var baseTopics = []BaseTopic{
	{"*", "Universal"},
	{HomeTopic, "Home"},
	{"entity", "Entity"},
	{"topic", "Topic"},
	{"association", "Association"},
	{"occurrence", "Occurrence"},
	{"attribute", "Attribute"},
	{"categorization", "Categorization"},
	{"category", "Category"},
	{"tags", "Tags"},
	{"tag", "Tag"},
	{"note", "Note"},
	{"notes", "Notes"},
	{"broader", "Broader"},
	{"narrower", "Narrower"},
	{"related", "Related"},
	{"parent", "Parent"},
	{"child", "Child"},
	{"previous", "Previous"},
	{"next", "Next"},
	{"navigation", "Navigation"},
	{"up", "Up"},
	{"down", "Down"},
	{"member", "Member"},
	{"image", "Image"},
	{"video", "Video"},
	{"audio", "Audio"},
	{"file", "File"},
	{"url", "URL"},
	{"text", "Text"},
	{"3d-scene", "3D Scene"},
	{"string", "String"},
	{"number", "Number"},
	{"timestamp", "Timestamp"},
	{"boolean", "Boolean"},
	{"eng", "English Language"},
	{"spa", "Spanish Language"},
	{"deu", "German Language"},
	{"ita", "Italian Language"},
	{"fra", "French Language"},
	{"nld", "Dutch Language"},
}

var baseTopicIndex = func() map[string]string {
	index := make(map[string]string, len(baseTopics))
	for _, b := range baseTopics {
		index[b.Identifier] = b.Name
	}
	return index
}()

// BaseTopics returns a copy of the seed ontology in population order
func BaseTopics() []BaseTopic {
	out := make([]BaseTopic, len(baseTopics))
	copy(out, baseTopics)
	return out
}

// BaseTopicIdentifiers returns the reserved identifiers in population order
func BaseTopicIdentifiers() []string {
	ids := make([]string, len(baseTopics))
	for i, b := range baseTopics {
		ids[i] = b.Identifier
	}
	return ids
}

// IsBaseTopic reports whether identifier is reserved
func IsBaseTopic(identifier string) bool {
	_, ok := baseTopicIndex[identifier]
	return ok
}

// BaseTopicName returns the display name of a reserved identifier
func BaseTopicName(identifier string) (string, bool) {
	name, ok := baseTopicIndex[identifier]
	return name, ok
}
