package visualization

import (
	"time"

	"github.com/dd0wney/cluso-forcegraph/pkg/validation"
	"github.com/dd0wney/cluso-forcegraph/pkg/viewport"
)

// Session defaults
const (
	DefaultWidth              = 800.0
	DefaultHeight             = 600.0
	DefaultDimensionValue     = 0.5
	DefaultEdgeDimensionValue = 0.5
	DefaultConvergenceWindow  = 3
	DefaultReheatIterations   = 100
	DefaultFocusDuration      = 1500 * time.Millisecond
	DefaultCameraDuration     = 600 * time.Millisecond
	DefaultFitPadding         = 40.0
)

// Config configures a Session
type Config struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`

	Force ForceConfig `yaml:"force" json:"force"`

	// DimensionDefault is read for a node dimension the node does not set.
	// Zero is a legal value, so nil rather than zero means unset.
	DimensionDefault     *float64 `yaml:"dimension_default,omitempty" json:"dimension_default,omitempty"`
	EdgeDimensionDefault *float64 `yaml:"edge_dimension_default,omitempty" json:"edge_dimension_default,omitempty"`

	Seeder string `yaml:"seeder" json:"seeder"`
	// RandomSeed fixes the jitter and seed velocities; 0 seeds from the clock
	RandomSeed int64 `yaml:"random_seed" json:"random_seed"`

	ConvergenceWindow int `yaml:"convergence_window" json:"convergence_window"`
	ReheatIterations  int `yaml:"reheat_iterations" json:"reheat_iterations"`

	FocusDuration  time.Duration `yaml:"focus_duration" json:"focus_duration"`
	CameraDuration time.Duration `yaml:"camera_duration" json:"camera_duration"`

	FitPadding  float64              `yaml:"fit_padding" json:"fit_padding"`
	FitMaxScale float64              `yaml:"fit_max_scale" json:"fit_max_scale"`
	ScaleLimits viewport.ScaleLimits `yaml:"scale_limits" json:"scale_limits"`
}

// DefaultConfig returns a configuration with every default set
func DefaultConfig() Config {
	return Config{
		Width:                DefaultWidth,
		Height:               DefaultHeight,
		Force:                DefaultForceConfig(),
		DimensionDefault:     floatOr(nil, DefaultDimensionValue),
		EdgeDimensionDefault: floatOr(nil, DefaultEdgeDimensionValue),
		Seeder:               SeederGolden,
		ConvergenceWindow:    DefaultConvergenceWindow,
		ReheatIterations:     DefaultReheatIterations,
		FocusDuration:        DefaultFocusDuration,
		CameraDuration:       DefaultCameraDuration,
		FitPadding:           DefaultFitPadding,
		FitMaxScale:          viewport.DefaultFitMaxScale,
		ScaleLimits:          viewport.DefaultScaleLimits(),
	}
}

// WithDefaults fills zero tunables and unset dimension defaults
func (c Config) WithDefaults() Config {
	c.DimensionDefault = floatOr(c.DimensionDefault, DefaultDimensionValue)
	c.EdgeDimensionDefault = floatOr(c.EdgeDimensionDefault, DefaultEdgeDimensionValue)
	c.Width = validation.DefaultOr(c.Width, DefaultWidth)
	c.Height = validation.DefaultOr(c.Height, DefaultHeight)
	c.Force = c.Force.WithDefaults()
	c.Seeder = validation.DefaultOr(c.Seeder, SeederGolden)
	c.ConvergenceWindow = validation.DefaultOr(c.ConvergenceWindow, DefaultConvergenceWindow)
	c.ReheatIterations = validation.DefaultOr(c.ReheatIterations, DefaultReheatIterations)
	c.FocusDuration = validation.DefaultOr(c.FocusDuration, DefaultFocusDuration)
	c.CameraDuration = validation.DefaultOr(c.CameraDuration, DefaultCameraDuration)
	c.FitPadding = validation.DefaultOr(c.FitPadding, DefaultFitPadding)
	c.FitMaxScale = validation.DefaultOr(c.FitMaxScale, viewport.DefaultFitMaxScale)
	c.ScaleLimits = validation.DefaultOr(c.ScaleLimits, viewport.DefaultScaleLimits())
	return c
}

// floatOr returns a fresh copy of *p, or of def when p is nil
func floatOr(p *float64, def float64) *float64 {
	v := def
	if p != nil {
		v = *p
	}
	return &v
}

// Dimensions returns the node and edge dimension defaults in effect
func (c Config) Dimensions() (node, edge float64) {
	return *floatOr(c.DimensionDefault, DefaultDimensionValue),
		*floatOr(c.EdgeDimensionDefault, DefaultEdgeDimensionValue)
}

// Size returns the simulation bounds
func (c Config) Size() viewport.Size {
	return viewport.Size{Width: c.Width, Height: c.Height}
}

// Validate checks the configuration and reports all problems at once
func (c Config) Validate() error {
	nodeDefault, edgeDefault := c.Dimensions()
	cv := validation.NewConfigValidator("Config").
		PositiveFloat("Width", c.Width).
		PositiveFloat("Height", c.Height).
		RangeFloat("DimensionDefault", nodeDefault, 0, 1).
		RangeFloat("EdgeDimensionDefault", edgeDefault, 0, 1).
		OneOf("Seeder", c.Seeder, SeederNames).
		MinInt("ConvergenceWindow", c.ConvergenceWindow, 1).
		Positive("ReheatIterations", c.ReheatIterations).
		NonNegativeDuration("FocusDuration", c.FocusDuration).
		NonNegativeDuration("CameraDuration", c.CameraDuration).
		NonNegativeFloat("FitPadding", c.FitPadding).
		PositiveFloat("FitMaxScale", c.FitMaxScale).
		PositiveFloat("ScaleLimits.Min", c.ScaleLimits.Min).
		Less("ScaleLimits.Min", c.ScaleLimits.Min, "ScaleLimits.Max", c.ScaleLimits.Max).
		Custom("Force", c.Force.Validate)
	return cv.Validate()
}
