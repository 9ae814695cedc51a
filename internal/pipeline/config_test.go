package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// envMap builds a LookupEnv over a fixed map; absent keys report unset.
func envMap(m map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func validEnv() map[string]string {
	return map[string]string{
		EnvCodeVersion: "1.2.3",
		EnvUsername:    "releasebot",
		EnvPassword:    "hunter2",
	}
}

func TestReleaseConfigFromEnv(t *testing.T) {
	cfg, err := ReleaseConfigFromEnv(envMap(validEnv()))
	require.NoError(t, err)

	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "releasebot", cfg.Username)
	assert.Equal(t, "hunter2", cfg.Password)
	assert.Equal(t, DefaultIndexURL, cfg.IndexURL)
	assert.Equal(t, DefaultHandoffDir, cfg.HandoffDir)
	assert.Empty(t, cfg.S3Bucket)
}

func TestReleaseConfigVersionUnset(t *testing.T) {
	env := validEnv()
	delete(env, EnvCodeVersion)

	_, err := ReleaseConfigFromEnv(envMap(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CODE_VERSION is not set")
	assert.Contains(t, err.Error(), "release.yaml")
}

func TestReleaseConfigVersionEmpty(t *testing.T) {
	env := validEnv()
	env[EnvCodeVersion] = "   "

	_, err := ReleaseConfigFromEnv(envMap(env))
	require.Error(t, err)
	// Empty is diagnosed distinctly from unset.
	assert.Contains(t, err.Error(), "set but empty")
	assert.Contains(t, err.Error(), "release.yaml")
}

func TestReleaseConfigVersionNotSemver(t *testing.T) {
	env := validEnv()
	env[EnvCodeVersion] = "release-candidate"

	_, err := ReleaseConfigFromEnv(envMap(env))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a semantic version")
}

func TestReleaseConfigCredentialErrors(t *testing.T) {
	t.Run("username unset", func(t *testing.T) {
		env := validEnv()
		delete(env, EnvUsername)
		_, err := ReleaseConfigFromEnv(envMap(env))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TWINE_USERNAME is not set")
	})

	t.Run("password empty", func(t *testing.T) {
		env := validEnv()
		env[EnvPassword] = ""
		_, err := ReleaseConfigFromEnv(envMap(env))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TWINE_PASSWORD is set but empty")
	})
}

func TestReleaseConfigOverrides(t *testing.T) {
	env := validEnv()
	env[EnvIndexURL] = "https://nexus.internal/repository/tools"
	env[EnvHandoffDir] = "/builds/handoff"
	env[EnvS3Bucket] = "release-mirror"

	cfg, err := ReleaseConfigFromEnv(envMap(env))
	require.NoError(t, err)
	assert.Equal(t, "https://nexus.internal/repository/tools", cfg.IndexURL)
	assert.Equal(t, "/builds/handoff", cfg.HandoffDir)
	assert.Equal(t, "release-mirror", cfg.S3Bucket)
}
