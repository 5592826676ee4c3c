package visualization

import "github.com/dd0wney/cluso-forcegraph/pkg/validation"

// Default force parameters
const (
	DefaultRepulsionStrength    = 200.0
	DefaultAttractionStrength   = 0.08
	DefaultDamping              = 0.95
	DefaultVelocityDecay        = 0.05
	DefaultMinDistance          = 40.0
	DefaultMaxDistance          = 350.0
	DefaultCenterForce          = 0.01
	DefaultFocusForce           = 0.04
	DefaultConvergenceThreshold = 0.05
	DefaultMaxIterations        = 300
	DefaultEpsilon              = 0.01
	DefaultMaxVelocity          = 50.0
	DefaultPadding              = 20.0
)

// ForceConfig holds the tunables of a simulation step
type ForceConfig struct {
	RepulsionStrength    float64 `yaml:"repulsion_strength" json:"repulsion_strength"`
	AttractionStrength   float64 `yaml:"attraction_strength" json:"attraction_strength"`
	Damping              float64 `yaml:"damping" json:"damping"`
	VelocityDecay        float64 `yaml:"velocity_decay" json:"velocity_decay"`
	MinDistance          float64 `yaml:"min_distance" json:"min_distance"`
	MaxDistance          float64 `yaml:"max_distance" json:"max_distance"`
	CenterForce          float64 `yaml:"center_force" json:"center_force"`
	FocusForce           float64 `yaml:"focus_force" json:"focus_force"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold" json:"convergence_threshold"`
	MaxIterations        int     `yaml:"max_iterations" json:"max_iterations"`
	Epsilon              float64 `yaml:"epsilon" json:"epsilon"`
	MaxVelocity          float64 `yaml:"max_velocity" json:"max_velocity"`
	Padding              float64 `yaml:"padding" json:"padding"`
}

// DefaultForceConfig returns the default force parameters
func DefaultForceConfig() ForceConfig {
	return ForceConfig{
		RepulsionStrength:    DefaultRepulsionStrength,
		AttractionStrength:   DefaultAttractionStrength,
		Damping:              DefaultDamping,
		VelocityDecay:        DefaultVelocityDecay,
		MinDistance:          DefaultMinDistance,
		MaxDistance:          DefaultMaxDistance,
		CenterForce:          DefaultCenterForce,
		FocusForce:           DefaultFocusForce,
		ConvergenceThreshold: DefaultConvergenceThreshold,
		MaxIterations:        DefaultMaxIterations,
		Epsilon:              DefaultEpsilon,
		MaxVelocity:          DefaultMaxVelocity,
		Padding:              DefaultPadding,
	}
}

// WithDefaults returns a copy where every zero field takes its default
func (c ForceConfig) WithDefaults() ForceConfig {
	c.RepulsionStrength = validation.DefaultOr(c.RepulsionStrength, DefaultRepulsionStrength)
	c.AttractionStrength = validation.DefaultOr(c.AttractionStrength, DefaultAttractionStrength)
	c.Damping = validation.DefaultOr(c.Damping, DefaultDamping)
	c.VelocityDecay = validation.DefaultOr(c.VelocityDecay, DefaultVelocityDecay)
	c.MinDistance = validation.DefaultOr(c.MinDistance, DefaultMinDistance)
	c.MaxDistance = validation.DefaultOr(c.MaxDistance, DefaultMaxDistance)
	c.CenterForce = validation.DefaultOr(c.CenterForce, DefaultCenterForce)
	c.FocusForce = validation.DefaultOr(c.FocusForce, DefaultFocusForce)
	c.ConvergenceThreshold = validation.DefaultOr(c.ConvergenceThreshold, DefaultConvergenceThreshold)
	c.MaxIterations = validation.DefaultOr(c.MaxIterations, DefaultMaxIterations)
	c.Epsilon = validation.DefaultOr(c.Epsilon, DefaultEpsilon)
	c.MaxVelocity = validation.DefaultOr(c.MaxVelocity, DefaultMaxVelocity)
	c.Padding = validation.DefaultOr(c.Padding, DefaultPadding)
	return c
}

// Validate checks every parameter and reports all problems at once
func (c ForceConfig) Validate() error {
	return validation.NewConfigValidator("ForceConfig").
		NonNegativeFloat("RepulsionStrength", c.RepulsionStrength).
		NonNegativeFloat("AttractionStrength", c.AttractionStrength).
		RangeFloat("Damping", c.Damping, 0, 1).
		NonNegativeFloat("VelocityDecay", c.VelocityDecay).
		PositiveFloat("MinDistance", c.MinDistance).
		Less("MinDistance", c.MinDistance, "MaxDistance", c.MaxDistance).
		NonNegativeFloat("CenterForce", c.CenterForce).
		NonNegativeFloat("FocusForce", c.FocusForce).
		PositiveFloat("ConvergenceThreshold", c.ConvergenceThreshold).
		Positive("MaxIterations", c.MaxIterations).
		PositiveFloat("Epsilon", c.Epsilon).
		PositiveFloat("MaxVelocity", c.MaxVelocity).
		NonNegativeFloat("Padding", c.Padding).
		Validate()
}
