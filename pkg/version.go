// Package gncat holds version information of the project.
package gncat

var (
	// Version of gncat, set during the build.
	Version = "v0.1.0"
	// Build timestamp, set during the build.
	Build = "n/a"
)
