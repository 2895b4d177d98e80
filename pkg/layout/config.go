// Package layout computes stable 2-D positions for holder graphs with a
// seeded force simulation.
//
// The simulation runs a fixed tick budget rather than detecting convergence:
// the cooling schedule reaches near-zero velocity by the final tick, which
// produces visually stable layouts for graphs up to several hundred nodes.
// Forces per tick, in order: many-body repulsion, centering, link attraction,
// collision resolution. Integration is semi-implicit Euler with velocity
// decay.
//
// All randomness flows from an injectable seed (see [Seed]) so identical
// inputs always produce identical layouts.
package layout

// Config holds the force-simulation constants. Zero values are replaced by
// the defaults from [DefaultConfig].
type Config struct {
	// RepulsionStrength is the many-body charge applied between every node
	// pair. Negative values repel.
	RepulsionStrength float64

	// CenterStrength pulls every node toward the canvas center, applied on
	// each axis independently.
	CenterStrength float64

	// LinkDistance is the rest length of the spring force along each edge.
	LinkDistance float64

	// CollisionPadding is added to the sum of two node radii when resolving
	// overlap.
	CollisionPadding float64

	// Ticks is the fixed simulation budget. It is a tunable constant, not
	// derived from graph size.
	Ticks int
}

// Default simulation constants.
const (
	DefaultRepulsionStrength = -120.0
	DefaultCenterStrength    = 0.07
	DefaultLinkDistance      = 60.0
	DefaultCollisionPadding  = 8.0
	DefaultTicks             = 1000

	// linkStrengthCap and linkStrengthScale define the saturating edge
	// spring strength: min(cap, log1p(volume)/scale).
	linkStrengthCap   = 0.9
	linkStrengthScale = 10.0

	// alphaMin is the residual simulation temperature at the final tick.
	alphaMin = 0.001

	// velocityDecay is the per-tick velocity retention factor.
	velocityDecay = 0.6
)

// DefaultConfig returns the reference simulation constants.
func DefaultConfig() Config {
	return Config{
		RepulsionStrength: DefaultRepulsionStrength,
		CenterStrength:    DefaultCenterStrength,
		LinkDistance:      DefaultLinkDistance,
		CollisionPadding:  DefaultCollisionPadding,
		Ticks:             DefaultTicks,
	}
}

// WithDefaults fills zero fields with their default values.
func (c Config) WithDefaults() Config {
	if c.RepulsionStrength == 0 {
		c.RepulsionStrength = DefaultRepulsionStrength
	}
	if c.CenterStrength == 0 {
		c.CenterStrength = DefaultCenterStrength
	}
	if c.LinkDistance == 0 {
		c.LinkDistance = DefaultLinkDistance
	}
	if c.CollisionPadding == 0 {
		c.CollisionPadding = DefaultCollisionPadding
	}
	if c.Ticks == 0 {
		c.Ticks = DefaultTicks
	}
	return c
}
