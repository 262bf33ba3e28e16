// Package sym defines the glyphs topicdb prints next to its commands and
// topic map entities. They are stable across CLI output and documentation.
package sym

// Entity glyphs
const (
	Map        = "⊞" // topic map
	Topic      = "◉" // topic
	Assoc      = "⟷" // association
	Occurrence = "▤" // occurrence (note, file, url, ...)
	Tag        = "#" // tag
)

// Operation and system glyphs
const (
	AM      = "≡" // configuration
	DB      = "⊔" // database/storage layer
	Network = "⋈" // network and hierarchy traversal
	Search  = "⊨" // full-text search
)

// entry binds a glyph to its command and description
type entry struct {
	glyph       string
	command     string
	description string
}

// registry lists every command glyph in help order
var registry = []entry{
	{DB, "db", "Database schema and statistics"},
	{Map, "map", "Topic maps and collaborators"},
	{Topic, "topic", "Typed, named topics"},
	{Assoc, "assoc", "Typed, scoped associations between topics"},
	{Tag, "tag", "Tags encoded as categorization associations"},
	{Network, "network", "Topics reachable from a topic"},
	{Search, "search", "Full-text search over occurrence text"},
	{AM, "am", "Configuration"},
}

// Lookup tables built from the registry at init time
var (
	SymbolToCommand     = make(map[string]string, len(registry))
	CommandToSymbol     = make(map[string]string, len(registry))
	CommandDescriptions = make(map[string]string, len(registry))
)

func init() {
	for _, e := range registry {
		SymbolToCommand[e.glyph] = e.command
		CommandToSymbol[e.command] = e.glyph
		CommandDescriptions[e.command] = e.description
	}
}

// Commands returns the command names in help order
func Commands() []string {
	commands := make([]string, 0, len(registry))
	for _, e := range registry {
		commands = append(commands, e.command)
	}
	return commands
}

// Prefix returns the glyph of command followed by a space, or "" for
// commands without one.
func Prefix(command string) string {
	if glyph, ok := CommandToSymbol[command]; ok {
		return glyph + " "
	}
	return ""
}
