package host

import (
	"runtime"
	"strings"
)

// VersionSource returns the current version of something ambient.
type VersionSource func() string

// StaticVersion returns a VersionSource that always reports v.
func StaticVersion(v string) VersionSource {
	return func() string { return v }
}

// GoRuntimeVersion reports the Go runtime version without its "go" prefix
// and experiment tags ("go1.22.3 X:boringcrypto" becomes "1.22.3").
// Development builds report a string that does not parse as a version and
// therefore never satisfy a minimum.
func GoRuntimeVersion() VersionSource {
	return func() string {
		return goVersion(runtime.Version())
	}
}

func goVersion(raw string) string {
	v, _, _ := strings.Cut(raw, " ")
	return strings.TrimPrefix(v, "go")
}
