// Package deploy decides where a static site will be served from and which
// hosting target it is built for.
//
// A DeploymentConfig is resolved once per build: an environment override for the
// base path wins when it is present and non-empty, otherwise the compiled-in
// default is used. The result is always normalized to a single leading and a single
// trailing slash, so "/" is the smallest possible base path.
package deploy
