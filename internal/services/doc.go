// Package services defines the sentinel errors shared by the timeline engine
// and its collaborators, plus helpers for wrapping and classifying them.
//
// Every component reports failures by wrapping one of the exported sentinels
// so callers can branch on errors.Is without parsing messages. Kind and
// IsUserError translate wrapped errors into the categories the CLI surfaces.
package services
