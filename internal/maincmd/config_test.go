package maincmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptLevelPrecedence(t *testing.T) {
	fc := fileConfig{}
	ec := envConfig{OptLevel: 2}

	// flag beats everything, even when a file config is also set.
	one := 1
	assert.Equal(t, 9, resolveOptLevel(true, 9, fileConfig{OptLevel: &one}, ec))

	// file config beats the environment default when no flag was passed.
	assert.Equal(t, 1, resolveOptLevel(false, 0, fileConfig{OptLevel: &one}, ec))

	// the environment default is the last resort.
	assert.Equal(t, 2, resolveOptLevel(false, 0, fc, ec))
}

func TestLoadFileConfigReadsProjectLocalYAML(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, configFileName), []byte("opt_level: 1\nruntime_lib: /opt/rt.a\n"), 0o644))

	fc := loadFileConfig()
	require.NotNil(t, fc.OptLevel)
	assert.Equal(t, 1, *fc.OptLevel)
	assert.Equal(t, "/opt/rt.a", fc.RuntimeLib)
}

func TestLoadFileConfigMissingFileReturnsZeroValue(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	fc := loadFileConfig()
	assert.Nil(t, fc.OptLevel)
	assert.Empty(t, fc.RuntimeLib)
}

func TestLoadEnvConfigAppliesDefaultsAndOverrides(t *testing.T) {
	ec := loadEnvConfig()
	assert.Equal(t, 2, ec.OptLevel)
	assert.True(t, ec.Color)

	t.Setenv("SIXPASS_OPT_LEVEL", "0")
	t.Setenv("SIXPASS_COLOR", "false")
	ec = loadEnvConfig()
	assert.Equal(t, 0, ec.OptLevel)
	assert.False(t, ec.Color)
}
