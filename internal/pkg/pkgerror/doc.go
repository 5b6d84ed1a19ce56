// Package pkgerror defines the application error type and its sentinels.
//
// An *Error carries a client-facing message, a type and a code. The router
// turns it into an HTTP status and a {"detail": message} body, so messages
// must be safe to show to callers. Server errors hide their cause behind a
// generic message and are logged instead.
package pkgerror
