package am

// Config represents the topicdb configuration
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database" toml:"database" json:"database" yaml:"database"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
	Ontology  OntologyConfig  `mapstructure:"ontology" toml:"ontology" json:"ontology" yaml:"ontology"`
	Traversal TraversalConfig `mapstructure:"traversal" toml:"traversal" json:"traversal" yaml:"traversal"`
	Listing   ListingConfig   `mapstructure:"listing" toml:"listing" json:"listing" yaml:"listing"`
}

// DatabaseConfig configures the SQLite database
type DatabaseConfig struct {
	Path          string `mapstructure:"path" toml:"path" json:"path" yaml:"path"`
	BusyTimeoutMS int    `mapstructure:"busy_timeout_ms" toml:"busy_timeout_ms" json:"busy_timeout_ms" yaml:"busy_timeout_ms"` // 0 = driver default (5000)
}

// LogConfig configures the zap logger
type LogConfig struct {
	JSON      bool `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Verbosity int  `mapstructure:"verbosity" toml:"verbosity" json:"verbosity" yaml:"verbosity"` // same scale as -v count
}

// OntologyConfig selects the ontology mode used for writes issued from the CLI
type OntologyConfig struct {
	Mode string `mapstructure:"mode" toml:"mode" json:"mode" yaml:"mode"` // strict or lenient
}

// TraversalConfig bounds the graph builders
type TraversalConfig struct {
	NetworkDepth      int `mapstructure:"network_depth" toml:"network_depth" json:"network_depth" yaml:"network_depth"`
	HierarchyDistance int `mapstructure:"hierarchy_distance" toml:"hierarchy_distance" json:"hierarchy_distance" yaml:"hierarchy_distance"`
}

// ListingConfig configures paginated listings
type ListingConfig struct {
	PageSize int `mapstructure:"page_size" toml:"page_size" json:"page_size" yaml:"page_size"`
}

// Configuration file names and locations
const (
	ConfigFileName = "topicdb.toml"
	UserConfigDir  = ".topicdb"
	EnvPrefix      = "TOPICDB"
)

// Default values
const (
	DefaultDatabasePath      = "topicdb.db"
	DefaultBusyTimeoutMS     = 5000
	DefaultOntologyMode      = "strict"
	DefaultNetworkDepth      = 3
	DefaultHierarchyDistance = 10
	DefaultPageSize          = 100
)

// File system constants
const (
	DefaultDirPermissions  = 0755 // Standard directory permissions (rwxr-xr-x)
	DefaultFilePermissions = 0644 // Standard file permissions (rw-r--r--)
)
