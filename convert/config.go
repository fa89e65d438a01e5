// Package convert runs a complete conversion: it loads a model from disk,
// converts its tree dumps, writes the document and reports statistics.
package convert

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/treeport/pkg/errors"
	"github.com/YuminosukeSato/treeport/pkg/log"
	"github.com/YuminosukeSato/treeport/report"
)

// DefaultOutputPath is where the document is written when no output path is configured.
const DefaultOutputPath = "web_xgboost_model.json"

// Config holds every setting of one conversion. Zero values of the metadata
// overrides mean "take what the model file says".
type Config struct {
	ModelPath  string `yaml:"model_path"`
	OutputPath string `yaml:"output_path"`

	Name       string   `yaml:"name"`
	Objective  string   `yaml:"objective"`
	BaseScore  *float64 `yaml:"base_score"`
	NumFeature int      `yaml:"num_feature"`

	// Strict makes any conversion warning fatal.
	Strict bool `yaml:"strict"`
	// Workers parses trees in parallel when > 1; -1 uses every CPU core.
	Workers int `yaml:"workers"`

	HistogramPath string `yaml:"histogram_path"`
	HistogramBins int    `yaml:"histogram_bins"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		OutputPath: DefaultOutputPath,
		Workers:    1,
		LogLevel:   "info",
	}
}

// LoadConfig reads a YAML configuration file on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrapf(err, "parse config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration before any file is touched.
func (c Config) Validate() error {
	if c.ModelPath == "" {
		return errors.NewValidationError("model_path", "a model file is required", c.ModelPath)
	}
	if c.OutputPath == "" {
		return errors.NewValidationError("output_path", "must not be empty", c.OutputPath)
	}
	if c.BaseScore != nil {
		if err := errors.CheckScalar("base_score", *c.BaseScore); err != nil {
			return errors.NewValidationError("base_score", "must be a finite number", *c.BaseScore)
		}
	}
	if c.NumFeature < 0 {
		return errors.NewValidationError("num_feature", "must be >= 0", c.NumFeature)
	}
	if c.Workers < -1 {
		return errors.NewValidationError("workers", "must be >= -1", c.Workers)
	}
	if c.HistogramPath != "" && !report.IsHistogramPath(c.HistogramPath) {
		return errors.NewValidationError("histogram_path", "extension must be one of .png, .svg, .pdf", c.HistogramPath)
	}
	if c.HistogramBins < 0 {
		return errors.NewValidationError("histogram_bins", "must be >= 0", c.HistogramBins)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.NewValidationError("log_level", "must be debug, info, warn or error", c.LogLevel)
	}
	return nil
}
