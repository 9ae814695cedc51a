package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Environment variables consumed by the release orchestrator. The runner
// exports CODE_VERSION from the CODE_VERSION key in release.yaml before
// invoking the orchestrator; the credentials come from its secret store.
const (
	EnvCodeVersion = "CODE_VERSION"
	EnvUsername    = "TWINE_USERNAME"
	EnvPassword    = "TWINE_PASSWORD"
	EnvIndexURL    = "PACKAGE_INDEX_URL"
	EnvHandoffDir  = "RELEASE_HANDOFF_DIR"
	EnvS3Bucket    = "RELEASE_S3_BUCKET"
)

// DefaultIndexURL is the artifact index releases are published to unless
// PACKAGE_INDEX_URL overrides it.
const DefaultIndexURL = "https://artifacts.fedlogin.dev/index"

// DefaultHandoffDir is the fixed path release artifacts are copied to for
// the downstream distribution job.
const DefaultHandoffDir = "/artifacts"

// ReleaseConfig is the validated environment of a release run. It is built
// once at startup; unset, empty, and invalid values are distinct errors so
// a misconfigured runner fails before any step executes.
type ReleaseConfig struct {
	Version    string
	IndexURL   string
	Username   string
	Password   string
	HandoffDir string
	// S3Bucket enables the artifact mirror when non-empty.
	S3Bucket string
}

// LookupEnv has the contract of os.LookupEnv; injectable for tests.
type LookupEnv func(key string) (string, bool)

// ReleaseConfigFromEnv validates the process environment into a
// ReleaseConfig. A nil lookup means os.LookupEnv.
func ReleaseConfigFromEnv(lookup LookupEnv) (*ReleaseConfig, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	version, ok := lookup(EnvCodeVersion)
	if !ok {
		return nil, fmt.Errorf("%s is not set: the release runner must export it from the %s key in release.yaml", EnvCodeVersion, EnvCodeVersion)
	}
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, fmt.Errorf("%s is set but empty: check the %s key in release.yaml", EnvCodeVersion, EnvCodeVersion)
	}
	if _, err := semver.NewVersion(version); err != nil {
		return nil, fmt.Errorf("%s %q is not a semantic version: %w", EnvCodeVersion, version, err)
	}

	username, err := requireCredential(lookup, EnvUsername)
	if err != nil {
		return nil, err
	}
	password, err := requireCredential(lookup, EnvPassword)
	if err != nil {
		return nil, err
	}

	cfg := &ReleaseConfig{
		Version:    version,
		IndexURL:   DefaultIndexURL,
		Username:   username,
		Password:   password,
		HandoffDir: DefaultHandoffDir,
	}
	if v, ok := lookup(EnvIndexURL); ok && strings.TrimSpace(v) != "" {
		cfg.IndexURL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvHandoffDir); ok && strings.TrimSpace(v) != "" {
		cfg.HandoffDir = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvS3Bucket); ok {
		cfg.S3Bucket = strings.TrimSpace(v)
	}
	return cfg, nil
}

func requireCredential(lookup LookupEnv, key string) (string, error) {
	v, ok := lookup(key)
	if !ok {
		return "", fmt.Errorf("%s is not set: the release runner must supply index credentials", key)
	}
	if v == "" {
		return "", fmt.Errorf("%s is set but empty", key)
	}
	return v, nil
}
