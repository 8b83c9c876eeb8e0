package gate

import (
	"fmt"

	"github.com/hashicorp/go-version"
)

// IsVersionAtLeast reports whether current >= required using numeric,
// segment-wise ordering ("7.10.0" > "7.9.5", "4.9" == "4.9.0").
// Unparseable input on either side yields false.
func IsVersionAtLeast(current, required string) bool {
	c, err := newVersion(current)
	if err != nil {
		return false
	}
	r, err := newVersion(required)
	if err != nil {
		return false
	}
	return c.GreaterThanOrEqual(r)
}

// Compare returns -1, 0 or 1 depending on whether a is older than, equal to
// or newer than b.
func Compare(a, b string) (int, error) {
	va, err := parseVersion(a)
	if err != nil {
		return 0, err
	}
	vb, err := parseVersion(b)
	if err != nil {
		return 0, err
	}
	return va.Compare(vb), nil
}

func parseVersion(s string) (*version.Version, error) {
	v, err := newVersion(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidVersion, s, err)
	}
	return v, nil
}

// newVersion parses s. A suffix starting with a digit ("7.4.3-4ubuntu2.19")
// is a distribution build of that release, not a pre-release, and is dropped.
func newVersion(s string) (*version.Version, error) {
	v, err := version.NewVersion(s)
	if err != nil {
		return nil, err
	}
	if pre := v.Prerelease(); pre != "" && pre[0] >= '0' && pre[0] <= '9' {
		return v.Core(), nil
	}
	return v, nil
}
