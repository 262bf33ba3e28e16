package am

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath)
	v.SetDefault("database.busy_timeout_ms", DefaultBusyTimeoutMS)

	v.SetDefault("log.json", false)
	v.SetDefault("log.verbosity", 0)

	// Writes from the CLI check instance-of and scope references unless told otherwise
	v.SetDefault("ontology.mode", DefaultOntologyMode)

	v.SetDefault("traversal.network_depth", DefaultNetworkDepth)
	v.SetDefault("traversal.hierarchy_distance", DefaultHierarchyDistance)

	v.SetDefault("listing.page_size", DefaultPageSize)
}

// BindEnvVars explicitly binds the commonly overridden keys to environment variables
func BindEnvVars(v *viper.Viper) {
	v.BindEnv("database.path", EnvPrefix+"_DATABASE_PATH")
	v.BindEnv("ontology.mode", EnvPrefix+"_ONTOLOGY_MODE")
	v.BindEnv("log.json", EnvPrefix+"_LOG_JSON")
}

// Default returns a Config holding only default values
func Default() *Config {
	return &Config{
		Database:  DatabaseConfig{Path: DefaultDatabasePath, BusyTimeoutMS: DefaultBusyTimeoutMS},
		Ontology:  OntologyConfig{Mode: DefaultOntologyMode},
		Traversal: TraversalConfig{NetworkDepth: DefaultNetworkDepth, HierarchyDistance: DefaultHierarchyDistance},
		Listing:   ListingConfig{PageSize: DefaultPageSize},
	}
}

// GetDatabasePath returns the configured database path
func (c *Config) GetDatabasePath() string {
	if c.Database.Path == "" {
		return DefaultDatabasePath
	}
	return c.Database.Path
}

// GetNetworkDepth returns the network depth, falling back to the default for zero
func (c *Config) GetNetworkDepth() int {
	if c.Traversal.NetworkDepth == 0 {
		return DefaultNetworkDepth
	}
	return c.Traversal.NetworkDepth
}

// GetHierarchyDistance returns the hierarchy distance, falling back to the default for zero
func (c *Config) GetHierarchyDistance() int {
	if c.Traversal.HierarchyDistance == 0 {
		return DefaultHierarchyDistance
	}
	return c.Traversal.HierarchyDistance
}

// GetPageSize returns the listing page size, falling back to the default for zero
func (c *Config) GetPageSize() int {
	if c.Listing.PageSize == 0 {
		return DefaultPageSize
	}
	return c.Listing.PageSize
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf("Config{Database: %s, Ontology: %s, Traversal: {Network: %d, Hierarchy: %d}}",
		c.Database.Path, c.Ontology.Mode, c.Traversal.NetworkDepth, c.Traversal.HierarchyDistance)
}
