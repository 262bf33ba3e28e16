// Package topicmap is the root of the topic map engine.
//
// A topic map is a graph of typed, named topics connected by typed, scoped
// associations, annotated with attributes and carrying occurrences. The
// packages below it split the engine along its seams:
//
//	types     in-memory entities (Topic, Association, Occurrence, Attribute, ...)
//	ontology  strict/lenient reference checks and the reserved base topics
//	storage   the SQLite-backed store with transactional cascades
//	graph     depth-bounded network and hierarchy views
//	tags      tagging encoded as categorization associations
//
// This package holds the interfaces those packages meet at, so the graph and
// tag layers can run against any store.
package topicmap
