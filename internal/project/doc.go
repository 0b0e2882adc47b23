// Package project owns the on-disk JSON schema for projects and the import
// paths that feed the timeline: document encode/decode with whole-file
// validation, atomic saves, SRT import producing draft cues, and asset
// re-verification for loaded projects.
package project
