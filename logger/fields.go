package logger

import (
	"context"

	"go.uber.org/zap"
)

// Standard field names for consistent structured logging across topicdb.
// Use these constants instead of raw strings to ensure consistency.
const (
	// Identity and context
	FieldRequestID = "request_id"
	FieldUserID    = "user_id"

	// Components
	FieldComponent = "component"

	// Operations
	FieldOperation = "operation"
	FieldQuery     = "query"
	FieldMode      = "ontology_mode"

	// Timing
	FieldDurationMS = "duration_ms"

	// Errors
	FieldError = "error"

	// Counts and sizes
	FieldCount = "count"
	FieldSize  = "size"
	FieldDepth = "depth"

	// Files and paths
	FieldPath = "path"

	// Topic map specific
	FieldMapID        = "map_id"
	FieldTopicID      = "topic_id"
	FieldAssociation  = "association_id"
	FieldOccurrenceID = "occurrence_id"
	FieldAttributeID  = "attribute_id"
	FieldInstanceOf   = "instance_of"
	FieldScope        = "scope"
	FieldTag          = "tag"
)

// Context keys for propagating logging context
type contextKey string

const (
	requestIDKey contextKey = "logger_request_id"
	componentKey contextKey = "logger_component"
	userIDKey    contextKey = "logger_user_id"
)

// WithRequestID adds a request ID to the context for logging
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithComponent adds a component name to the context for logging
func WithComponent(ctx context.Context, component string) context.Context {
	return context.WithValue(ctx, componentKey, component)
}

// WithUserID adds the calling user's identifier to the context for logging
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// FieldsFromContext extracts logging fields from context.
// Returns key-value pairs suitable for use with Infow/Errorw/etc.
func FieldsFromContext(ctx context.Context) []interface{} {
	var fields []interface{}

	if requestID, ok := ctx.Value(requestIDKey).(string); ok && requestID != "" {
		fields = append(fields, FieldRequestID, requestID)
	}
	if component, ok := ctx.Value(componentKey).(string); ok && component != "" {
		fields = append(fields, FieldComponent, component)
	}
	if userID, ok := ctx.Value(userIDKey).(int64); ok {
		fields = append(fields, FieldUserID, userID)
	}

	return fields
}

// LoggerFromContext returns base enriched with the fields carried by ctx.
func LoggerFromContext(ctx context.Context, base *zap.SugaredLogger) *zap.SugaredLogger {
	base = OrNop(base)
	fields := FieldsFromContext(ctx)
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

// ComponentLogger returns a named logger for a specific component.
// This is the preferred way to get a logger for dependency injection.
//
// Example:
//
//	store := storage.NewStore(database, logger.ComponentLogger("storage"))
func ComponentLogger(name string) *zap.SugaredLogger {
	return Logger.Named(name)
}
