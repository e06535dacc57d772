package doctor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// versionPattern finds the first dotted version in tool output such as
// "Docker version 24.0.7, build afdd53b" or "libprotoc 25.1".
var versionPattern = regexp.MustCompile(`v?\d+\.\d+(\.\d+)?`)

// ExtractVersion returns the first version found in output.
func ExtractVersion(output string) (*semver.Version, error) {
	match := versionPattern.FindString(output)
	if match == "" {
		return nil, fmt.Errorf("no version found in %q", firstLine(output))
	}
	return parseSemver(match)
}

// CompareVersions compares two version strings using semver.
// Returns -1 if current < minimum, 0 if equal, 1 if current > minimum.
func CompareVersions(current, minimum string) (int, error) {
	cv, err := parseSemver(current)
	if err != nil {
		return 0, fmt.Errorf("parsing version %q: %w", current, err)
	}
	mv, err := parseSemver(minimum)
	if err != nil {
		return 0, fmt.Errorf("parsing minimum version %q: %w", minimum, err)
	}
	return cv.Compare(mv), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(version, "v")
	return semver.NewVersion(version)
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
