// Package errors provides the classified error primitives used across snowbow.
//
// Every failure that can abort a build pass carries an ErrorCategory so the
// CLI can pick an exit code and the preview server can report it:
//
//   - CategoryContent: malformed front matter or a failed Markdown conversion
//   - CategoryResolution: the article graph cannot be resolved (no languages)
//   - CategoryCollision: two outputs target overlapping site paths
//   - CategoryTemplate: theme parse or execution failures
//   - CategoryConfig: theme configuration and option problems
//
// Example usage:
//
//	err := errors.ContentParseError("front matter is not valid YAML").
//		WithContext("file", path).
//		WithCause(yamlErr).
//		Build()
package errors
