// Package version holds the application release version.
package version

// Version is the application version, overridden at build time via -ldflags.
var Version = "v0.3.1"
