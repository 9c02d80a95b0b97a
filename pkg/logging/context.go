package logging

import (
	"context"
)

type contextKey string

const (
	TraceIDKey     contextKey = "trace_id"
	GatherIDKey    contextKey = "gather_id"
	PredicateIDKey contextKey = "predicate_id"
	ServiceNameKey contextKey = "service_name"
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, TraceIDKey, traceID)
}

func WithGatherID(ctx context.Context, gatherID string) context.Context {
	return context.WithValue(ctx, GatherIDKey, gatherID)
}

func WithPredicateID(ctx context.Context, predicateID string) context.Context {
	return context.WithValue(ctx, PredicateIDKey, predicateID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetTraceID(ctx context.Context) string {
	if traceID, ok := ctx.Value(TraceIDKey).(string); ok {
		return traceID
	}
	return ""
}

func GetGatherID(ctx context.Context) string {
	if gatherID, ok := ctx.Value(GatherIDKey).(string); ok {
		return gatherID
	}
	return ""
}

func GetPredicateID(ctx context.Context) string {
	if predicateID, ok := ctx.Value(PredicateIDKey).(string); ok {
		return predicateID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if traceID := GetTraceID(ctx); traceID != "" {
		fields = append(fields, "trace_id", traceID)
	}

	if gatherID := GetGatherID(ctx); gatherID != "" {
		fields = append(fields, "gather_id", gatherID)
	}

	if predicateID := GetPredicateID(ctx); predicateID != "" {
		fields = append(fields, "predicate_id", predicateID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
