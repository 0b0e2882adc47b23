// Package state provides the sqlite-backed store for session bookkeeping,
// registered temp files, and autosave snapshot history.
package state
