// Package pkgroutine runs the application's long-lived background tasks,
// such as the HTTP listener, under one bounded manager so shutdown can wait
// for them and report how they ended.
package pkgroutine
