package pkglog

import "context"

type (
	correlationIDKey struct{}
	fileIDKey        struct{}
)

// WithCorrelationID returns a copy of ctx carrying the request correlation ID.
//
// The router middleware sets it before any handler runs so that every record
// logged during the request can be joined on "_cID".
func WithCorrelationID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, cid)
}

// CorrelationID returns the ID set by WithCorrelationID, or "" when there is none.
func CorrelationID(ctx context.Context) string {
	cid, _ := ctx.Value(correlationIDKey{}).(string)
	return cid
}

// WithFileID tags records logged with ctx with the uploaded file they concern.
func WithFileID(ctx context.Context, fileID string) context.Context {
	return context.WithValue(ctx, fileIDKey{}, fileID)
}

func FileID(ctx context.Context) string {
	id, _ := ctx.Value(fileIDKey{}).(string)
	return id
}
