// Package pkguid wraps the id generators used by the service: UUIDs for
// uploaded files and snowflake ids for request correlation.
package pkguid
