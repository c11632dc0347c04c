package release

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

var (
	ErrVersionNotFound = errors.New("release: version not found")
	ErrInvalidVersion  = errors.New("release: invalid version")
)

var returnString = regexp.MustCompile(`^\s*return\s+"([^"]+)"`)

// DetectVersion returns the string literal of the first return statement
// in the source file at path. It must be a semantic version, with or
// without the leading "v".
func DetectVersion(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m := returnString.FindStringSubmatch(sc.Text())
		if m == nil {
			continue
		}
		version := m[1]
		if !semver.IsValid("v" + strings.TrimPrefix(version, "v")) {
			return "", fmt.Errorf("%w: %q in %s", ErrInvalidVersion, version, path)
		}
		return version, nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%w in %s", ErrVersionNotFound, path)
}
