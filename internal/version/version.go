// Package version exposes the harold binary's build-time version.
package version

// version is stamped at build time via -ldflags.
var version = "dev" //nolint:gochecknoglobals // ldflags requires package-level var

// String returns the current version.
func String() string {
	return version
}
