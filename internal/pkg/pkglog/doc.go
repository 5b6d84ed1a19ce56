// Package pkglog configures the process-wide slog logger.
//
// Records are JSON with "ts", "severity" and "file" keys, tagged with the
// service name, and carry the request correlation ID ("_cID") and the file
// being handled ("file_id") when the context has them.
package pkglog
