// Package git reads the revision of the repository holding a content root.
// The revision is shown to templates and stored in the build history; a
// content root outside any repository simply has no revision.
package git
