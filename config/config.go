// Package config loads rolling-ball job files.
package config

import (
	"bytes"
	"io"
	"os"
	"runtime"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/background"
	"github.com/nearlyfreeapps/Rolling-Ball-Algorithm/images"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config describes one CLI job.
type Config struct {
	// Background holds the estimation parameters.
	Background background.Params `yaml:"background"`
	// OutputDir receives the corrected images. Empty writes next to the input.
	OutputDir string `yaml:"output_dir"`
	// Suffix is appended to the input base name for corrected output.
	Suffix string `yaml:"suffix"`
	// Format overrides the output format ("png", "tiff", ...). Empty keeps the
	// input's extension.
	Format string `yaml:"format"`
	// Workers is the number of images processed at once in directory mode.
	Workers int `yaml:"workers"`
	// WriteBackground also writes the estimated background image.
	WriteBackground bool `yaml:"write_background"`
	// PreviewWidth writes an original | background | corrected strip scaled
	// to this width. Zero disables it.
	PreviewWidth int `yaml:"preview_width"`
	// ConvertColour converts colour inputs to greyscale instead of rejecting
	// them.
	ConvertColour bool `yaml:"convert_colour"`
}

// Default returns the configuration used when no job file is given.
func Default() Config {
	return Config{
		Background: background.DefaultParams(),
		Suffix:     "_corrected",
		Workers:    runtime.NumCPU(),
	}
}

// Load reads a YAML job file on top of Default. Keys missing from the file
// keep their default values.
//
// Arguments:
//   - path: Path of the YAML file.
//
// Returns:
//   - Config: The merged configuration, validated.
//   - error: An error if the file cannot be read, parsed or validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "failed to read config")
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to load %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML into cfg, rejecting unknown keys, and validates the
// result.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "failed to parse config")
	}
	return cfg.Validate()
}

// paramsError reports invalid background parameters. It matches both
// ErrInvalidConfig and the cause's own sentinel.
type paramsError struct {
	cause error
}

func (e *paramsError) Error() string {
	return ErrInvalidConfig.Error() + ": background: " + e.cause.Error()
}

func (e *paramsError) Unwrap() error { return e.cause }

func (e *paramsError) Is(target error) bool { return target == ErrInvalidConfig }

// Validate checks every field.
func (c Config) Validate() error {
	if err := c.Background.Validate(); err != nil {
		return errors.WithStack(&paramsError{cause: err})
	}
	if c.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "workers must be at least 1, got %d", c.Workers)
	}
	if c.PreviewWidth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "preview_width must not be negative, got %d", c.PreviewWidth)
	}
	if c.Suffix == "" && c.OutputDir == "" {
		return errors.Wrap(ErrInvalidConfig, "an empty suffix needs an output_dir, inputs would be overwritten")
	}
	if c.Format != "" && !images.IsSupported("x."+c.Format) {
		return errors.Wrapf(ErrInvalidConfig, "unsupported output format %q", c.Format)
	}
	return nil
}
