package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes into "dir" for the duration of the test.
func chdir(t *testing.T, dir string) {
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestDefaults(t *testing.T) {
	// Point at a directory without a config file
	chdir(t, t.TempDir())
	t.Setenv("HOME", t.TempDir())
	c, err := NewLoader("").Load()
	require.NoError(t, err)
	assert.Equal(t, &Config{}, c)
}

func TestFile(t *testing.T) {
	c, err := NewLoader("testdata/agiledecrypt.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Workers)
	assert.True(t, c.VerifyPassword)
	assert.False(t, c.VerifyIntegrity)
}

func TestSearchPath(t *testing.T) {
	abs, err := filepath.Abs("testdata")
	require.NoError(t, err)
	chdir(t, abs)
	l := NewLoader("")
	c, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, filepath.Join(abs, "agiledecrypt.yaml"), l.ConfigFileUsed())
}

func TestBrokenFile(t *testing.T) {
	_, err := NewLoader("testdata/broken.yaml").Load()
	assert.Error(t, err)
}

func TestMissingExplicitFile(t *testing.T) {
	_, err := NewLoader("testdata/does-not-exist.yaml").Load()
	assert.Error(t, err)
}

// defaults < file < env < flags
func TestPrecedence(t *testing.T) {
	t.Setenv("AGILEDECRYPT_WORKERS", "5")
	t.Setenv("AGILEDECRYPT_VERIFY_INTEGRITY", "true")

	l := NewLoader("testdata/agiledecrypt.yaml")
	c, err := l.Load()
	require.NoError(t, err)
	assert.Equal(t, 5, c.Workers, "env beats file")
	assert.True(t, c.VerifyIntegrity, "env beats file")
	assert.True(t, c.VerifyPassword, "file beats default")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("workers", 0, "")
	fs.Bool("verify-password", false, "")
	fs.Bool("debug", false, "")
	require.NoError(t, fs.Parse([]string{"--workers=7"}))
	require.NoError(t, l.BindFlags(fs))
	c, err = l.Load()
	require.NoError(t, err)
	assert.Equal(t, 7, c.Workers, "flag beats env")
	// Flags the user did not set do not override the file
	assert.True(t, c.VerifyPassword)
	assert.False(t, c.Debug)
}

func TestNegativeWorkers(t *testing.T) {
	t.Setenv("AGILEDECRYPT_WORKERS", "-1")
	_, err := NewLoader("testdata/agiledecrypt.yaml").Load()
	assert.Error(t, err)
}
