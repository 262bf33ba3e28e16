package am

import "github.com/teranos/topicdb/errors"

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Database path is optional - empty falls back to DefaultDatabasePath

	// Busy timeout: 0 = driver default, negative = invalid
	if c.Database.BusyTimeoutMS < 0 {
		return errors.NewInvalidRequestError("database.busy_timeout_ms must be >= 0, got %d", c.Database.BusyTimeoutMS)
	}

	if c.Log.Verbosity < 0 {
		return errors.NewInvalidRequestError("log.verbosity must be >= 0, got %d", c.Log.Verbosity)
	}

	// Empty mode is allowed and means strict
	switch c.Ontology.Mode {
	case "", "strict", "lenient":
	default:
		return errors.NewInvalidRequestError("ontology.mode must be strict or lenient, got %q", c.Ontology.Mode)
	}

	// Traversal bounds: 0 = default, negative = invalid
	if c.Traversal.NetworkDepth < 0 {
		return errors.NewInvalidRequestError("traversal.network_depth must be >= 0, got %d", c.Traversal.NetworkDepth)
	}
	if c.Traversal.HierarchyDistance < 0 {
		return errors.NewInvalidRequestError("traversal.hierarchy_distance must be >= 0, got %d", c.Traversal.HierarchyDistance)
	}

	if c.Listing.PageSize < 0 {
		return errors.NewInvalidRequestError("listing.page_size must be >= 0, got %d", c.Listing.PageSize)
	}

	return nil
}
