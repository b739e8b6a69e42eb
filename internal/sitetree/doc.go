// Package sitetree post-processes a generated static file tree for deployment under
// a base path: it prefixes root-relative asset references (rebase), applies the
// preset's hosting conventions (finalize), checks that every internal reference
// resolves (verify) and fingerprints the result.
package sitetree
