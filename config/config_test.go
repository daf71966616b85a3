package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/background"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, background.DefaultParams(), cfg.Background)
	assert.Equal(t, "_corrected", cfg.Suffix)
	assert.GreaterOrEqual(t, cfg.Workers, 1)
}

func TestLoadMergesWithDefaults(t *testing.T) {
	path := writeConfig(t, `
background:
  radius: 12.5
  light_background: true
output_dir: out
preview_width: 640
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 12.5, cfg.Background.Radius)
	assert.True(t, cfg.Background.LightBackground)
	// Keys absent from the file keep their defaults.
	assert.True(t, cfg.Background.Presmooth)
	assert.True(t, cfg.Background.Parallel)
	assert.Equal(t, "_corrected", cfg.Suffix)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, 640, cfg.PreviewWidth)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		invalid bool
	}{
		{name: "unknown key", body: "radius: 5\n"},
		{name: "bad yaml", body: "background: [\n"},
		{name: "zero radius", body: "background:\n  radius: 0\n", invalid: true},
		{name: "negative radius", body: "background:\n  radius: -3\n", invalid: true},
		{name: "no workers", body: "workers: 0\n", invalid: true},
		{name: "negative preview", body: "preview_width: -1\n", invalid: true},
		{name: "overwrite inputs", body: "suffix: \"\"\n", invalid: true},
		{name: "bad format", body: "format: gif\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.invalid, errors.Is(err, ErrInvalidConfig), err.Error())
		})
	}
}

func TestInvalidRadiusKeepsParameterError(t *testing.T) {
	_, err := Load(writeConfig(t, "background:\n  radius: -3\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, background.ErrInvalidParameter))
	assert.Contains(t, err.Error(), "radius")

	cfg := Default()
	cfg.Background.Radius = 0
	err = cfg.Validate()
	assert.True(t, errors.Is(err, ErrInvalidConfig))
	assert.True(t, errors.Is(err, background.ErrInvalidParameter))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestValidateAcceptsFormats(t *testing.T) {
	for _, f := range []string{"png", "tiff", "tif", "bmp", "jpg", "jpeg"} {
		cfg := Default()
		cfg.Format = f
		assert.NoError(t, cfg.Validate(), f)
	}

	cfg := Default()
	cfg.Suffix = ""
	cfg.OutputDir = "elsewhere"
	assert.NoError(t, cfg.Validate())
}
