package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvServiceLoadsFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GA_TEST_SECRET=base\nGA_TEST_MODE=base\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test"), []byte("GA_TEST_MODE=override\n"), 0o600))

	t.Setenv("APP_ENV", "test")
	t.Setenv("GA_TEST_SECRET", "")
	t.Setenv("GA_TEST_MODE", "")
	os.Unsetenv("GA_TEST_SECRET")
	os.Unsetenv("GA_TEST_MODE")

	s := NewEnvServiceIn(dir)

	assert.Equal(t, "test", s.AppEnv())
	assert.Len(t, s.Loaded(), 2)
	assert.Equal(t, "base", s.Get("GA_TEST_SECRET"))
	assert.Equal(t, "override", s.Get("GA_TEST_MODE"))
}

func TestEnvServiceTypedGetters(t *testing.T) {
	t.Setenv("APP_ENV", "none")
	s := NewEnvServiceIn(t.TempDir())

	t.Setenv("GA_TEST_INT", "42")
	t.Setenv("GA_TEST_BOOL", "true")
	t.Setenv("GA_TEST_BAD", "nope")

	assert.Equal(t, 42, s.GetInt("GA_TEST_INT", 1))
	assert.Equal(t, 1, s.GetInt("GA_TEST_BAD", 1))
	assert.True(t, s.GetBool("GA_TEST_BOOL", false))
	assert.False(t, s.GetBool("GA_TEST_BAD", false))
	assert.Equal(t, "fallback", s.GetWithDefault("GA_TEST_UNSET", "fallback"))

	_, err := s.Require("GA_TEST_UNSET")
	assert.Error(t, err)
	v, err := s.Require("GA_TEST_INT")
	require.NoError(t, err)
	assert.Equal(t, "42", v)
}
