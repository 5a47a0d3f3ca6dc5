// Package htmlproc post-processes rendered HTML fragments.
//
// All functions work on the golang.org/x/net/html token stream and re-emit
// untouched tokens from their raw source bytes, so markup that is not
// rewritten passes through byte for byte.
package htmlproc
