// Package errors provides the classified error primitives used across sitebase.
//
// Resolving a deployment config never fails; everything around it (loading the
// project file, walking a site tree, opening the event store) can. Those failures
// are reported as ClassifiedError values so the CLI can choose an exit code and
// decide how much detail to print.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "read site tree").
//		WithContext("path", dir).
//		Build()
package errors
