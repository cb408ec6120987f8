// Package compat maps version-sensitive Zabbix API parameter names and
// behaviors to a concrete server version.
package compat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a parsed Zabbix server version.
//
// Zabbix reports pre-release versions without a separator ("7.0.0rc1"),
// which is normalized to semver form before parsing. Comparisons follow
// semver rules: a pre-release sorts below the equivalent release, and
// build metadata is ignored.
type Version struct {
	v *semver.Version
}

// prereleaseRe splits a bare numeric prefix from a trailing pre-release
// tag that lacks the semver hyphen, e.g. "7.0.0rc1" or "6.4.0beta2".
var prereleaseRe = regexp.MustCompile(`^(\d+(?:\.\d+){0,2})([A-Za-z].*)$`)

// ParseVersion parses a version string as reported by apiinfo.version.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if m := prereleaseRe.FindStringSubmatch(s); m != nil {
		s = m[1] + "-" + m[2]
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid Zabbix version %q: %w", s, err)
	}
	return Version{v: v}, nil
}

// MustParseVersion is ParseVersion for static version strings in tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (v Version) String() string {
	if v.v == nil {
		return "0.0.0"
	}
	return v.v.Original()
}

// Release returns the major.minor.patch triple with pre-release and build
// segments stripped.
func (v Version) Release() [3]uint64 {
	if v.v == nil {
		return [3]uint64{}
	}
	return [3]uint64{v.v.Major(), v.v.Minor(), v.v.Patch()}
}

// Compare orders versions by semver precedence; pre-releases sort below
// the equivalent release.
func (v Version) Compare(o Version) int {
	return v.v.Compare(o.v)
}

func (v Version) LessThan(o Version) bool { return v.Compare(o) < 0 }

func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// AtLeast reports whether the release triple is >= major.minor.patch.
// The comparison is release-only: "7.0.0rc1" satisfies AtLeast(7, 0, 0),
// matching how Zabbix gates API behavior on the release series.
func (v Version) AtLeast(major, minor, patch uint64) bool {
	r := v.Release()
	if r[0] != major {
		return r[0] > major
	}
	if r[1] != minor {
		return r[1] > minor
	}
	return r[2] >= patch
}
