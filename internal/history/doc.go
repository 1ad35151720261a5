// Package history persists one row per acquisition run in a SQLite database,
// so finished runs and their delivery links can be listed later.
package history
