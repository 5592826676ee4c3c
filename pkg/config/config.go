// Package config loads host configuration for the forcegraph commands: a
// YAML file layered over the layout defaults, then FORCEGRAPH_* environment
// overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-forcegraph/pkg/logging"
	"github.com/dd0wney/cluso-forcegraph/pkg/validation"
	"github.com/dd0wney/cluso-forcegraph/pkg/visualization"
)

// EnvPrefix starts every environment override
const EnvPrefix = "FORCEGRAPH_"

// Environment overrides
const (
	EnvWidth                = EnvPrefix + "WIDTH"
	EnvHeight               = EnvPrefix + "HEIGHT"
	EnvSeeder               = EnvPrefix + "SEEDER"
	EnvRandomSeed           = EnvPrefix + "RANDOM_SEED"
	EnvMaxIterations        = EnvPrefix + "MAX_ITERATIONS"
	EnvConvergenceThreshold = EnvPrefix + "CONVERGENCE_THRESHOLD"
	EnvFocusDuration        = EnvPrefix + "FOCUS_DURATION"
	EnvLogLevel             = logging.EnvLogLevel
	EnvMetricsAddr          = EnvPrefix + "METRICS_ADDR"
	EnvSnapshotDir          = EnvPrefix + "SNAPSHOT_DIR"
	EnvS3Bucket             = EnvPrefix + "S3_BUCKET"
	EnvS3Prefix             = EnvPrefix + "S3_PREFIX"
	EnvS3Region             = EnvPrefix + "S3_REGION"
	EnvS3Endpoint           = EnvPrefix + "S3_ENDPOINT"
	EnvS3PathStyle          = EnvPrefix + "S3_PATH_STYLE"
)

// LogLevels lists the accepted log_level values
var LogLevels = []string{"debug", "info", "warn", "error"}

// Config is everything a host needs to run a layout session
type Config struct {
	Layout      visualization.Config `yaml:"layout"`
	LogLevel    string               `yaml:"log_level"`
	MetricsAddr string               `yaml:"metrics_addr"`
	Snapshot    SnapshotConfig       `yaml:"snapshot"`
}

// SnapshotConfig selects where snapshots are kept. S3 wins when a bucket
// is set.
type SnapshotConfig struct {
	Dir string   `yaml:"dir"`
	S3  S3Config `yaml:"s3"`
}

// S3Config addresses an S3 or S3-compatible bucket. Credentials come from
// the standard AWS chain.
type S3Config struct {
	Bucket       string `yaml:"bucket"`
	Prefix       string `yaml:"prefix"`
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Layout:   visualization.DefaultConfig(),
		LogLevel: "info",
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config: %w", err)
		}
		defer f.Close()
		if err := cfg.decode(f); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults without reading the environment
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(bytes.NewReader(data)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	c.Layout = c.Layout.WithDefaults()
	return nil
}

// ApplyEnv overrides fields from lookup, normally os.LookupEnv. Malformed
// values are reported together.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	float := func(key string, dst *float64) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = f
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}

	float(EnvWidth, &c.Layout.Width)
	float(EnvHeight, &c.Layout.Height)
	str(EnvSeeder, &c.Layout.Seeder)
	integer(EnvMaxIterations, &c.Layout.Force.MaxIterations)
	float(EnvConvergenceThreshold, &c.Layout.Force.ConvergenceThreshold)

	if v, ok := lookup(EnvRandomSeed); ok && v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvRandomSeed, err))
		} else {
			c.Layout.RandomSeed = seed
		}
	}
	if v, ok := lookup(EnvFocusDuration); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvFocusDuration, err))
		} else {
			c.Layout.FocusDuration = d
		}
	}

	str(EnvLogLevel, &c.LogLevel)
	str(EnvMetricsAddr, &c.MetricsAddr)
	str(EnvSnapshotDir, &c.Snapshot.Dir)
	str(EnvS3Bucket, &c.Snapshot.S3.Bucket)
	str(EnvS3Prefix, &c.Snapshot.S3.Prefix)
	str(EnvS3Region, &c.Snapshot.S3.Region)
	str(EnvS3Endpoint, &c.Snapshot.S3.Endpoint)
	if v, ok := lookup(EnvS3PathStyle); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvS3PathStyle, err))
		} else {
			c.Snapshot.S3.UsePathStyle = b
		}
	}

	c.LogLevel = strings.ToLower(c.LogLevel)
	return errors.Join(errs...)
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	s3 := c.Snapshot.S3
	cv := validation.NewConfigValidator("forcegraph").
		OneOf("LogLevel", strings.ToLower(c.LogLevel), LogLevels).
		Custom("Layout", c.Layout.Validate).
		When(s3.Bucket == "", func(cv *validation.ConfigValidator) {
			cv.Custom("Snapshot.S3", func() error {
				if s3.Endpoint != "" || s3.Prefix != "" {
					return errors.New("bucket is required when endpoint or prefix is set")
				}
				return nil
			})
		})
	return cv.Validate()
}

// Level returns the configured log level
func (c *Config) Level() logging.Level {
	return logging.ParseLevel(c.LogLevel)
}

// UsesS3 reports whether snapshots go to S3
func (c *Config) UsesS3() bool {
	return c.Snapshot.S3.Bucket != ""
}
