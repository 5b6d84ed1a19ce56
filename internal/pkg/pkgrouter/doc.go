// Package pkgrouter is the HTTP edge of the service.
//
// Routes are served by httprouter behind a fixed stack: panic recovery,
// X-Correlation-ID propagation and request logging with secret masking.
// Optional middleware such as HTTPMetrics is appended after it. Handlers
// return a payload or an error; pkgerror values become {"detail": ...}
// bodies with the mapped status.
package pkgrouter
