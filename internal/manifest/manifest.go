// Package manifest reads the release manifest, the single source of truth
// for the version string. The manifest is a YAML document whose CODE_VERSION
// key declares the semantic version of the next release.
package manifest

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the manifest filename at the repository root.
const DefaultPath = "release.yaml"

// versionKey is the manifest key holding the authoritative version string.
const versionKey = "CODE_VERSION"

// Manifest is the parsed release manifest.
type Manifest struct {
	CodeVersion string `yaml:"CODE_VERSION"`
}

// Load reads the manifest at path and returns the declared version string.
// The value is trimmed of surrounding whitespace and quotes and validated as
// a semantic version. A missing key or a whitespace-only value is an error
// that names the manifest, so a build never proceeds with an unknown version.
func Load(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var m Manifest
	raw := ""
	if err := yaml.Unmarshal(data, &m); err == nil {
		raw = m.CodeVersion
	} else {
		// The manifest may carry non-YAML sections (CI includes, anchors from
		// other tools). Fall back to scanning for the key line directly.
		raw = scanForKey(data)
	}

	v := strings.Trim(strings.TrimSpace(raw), `"'`)
	if v == "" {
		return "", fmt.Errorf("%s is empty or missing in %s: declare the release version there before building", versionKey, path)
	}

	if _, err := semver.NewVersion(v); err != nil {
		return "", fmt.Errorf("%s %q in %s is not a semantic version: %w", versionKey, v, path, err)
	}

	return v, nil
}

// scanForKey locates the CODE_VERSION line and returns everything after the
// colon, untrimmed. Returns "" when no such line exists.
func scanForKey(data []byte) string {
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		rest, ok := strings.CutPrefix(line, versionKey+":")
		if ok {
			return rest
		}
	}
	return ""
}
