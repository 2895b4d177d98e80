package layout

import (
	"math"
	"math/rand/v2"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/graph"
)

// Simulator runs force simulations. It holds only constants; per-run state
// lives in an arena owned by each Run call, so one Simulator is safe to
// share across concurrent requests.
type Simulator struct {
	cfg Config
}

// New creates a simulator with the given constants. Zero config fields fall
// back to defaults.
func New(cfg Config) *Simulator {
	return &Simulator{cfg: cfg.WithDefaults()}
}

// Run assigns a position to every node of g, in place.
//
// radii supplies the rendered radius per node (indexed like g.Nodes) for
// collision resolution; a nil slice uses a uniform placeholder radius.
// width and height define the canvas; seed fixes all randomness.
//
// The graph must be non-empty: the filter stage guarantees this, and an
// empty graph fails before any tick runs.
func (s *Simulator) Run(g *graph.Graph, radii []float64, width, height float64, seed uint64) error {
	n := g.NodeCount()
	if n == 0 {
		return errors.New(errors.ErrCodeInsufficientData, "cannot lay out an empty graph")
	}
	if radii == nil {
		radii = make([]float64, n)
		for i := range radii {
			radii[i] = 5
		}
	}

	st := newArena(n)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	st.seedPositions(rng, width, height)

	springs := buildSprings(g.Edges)

	// Cooling schedule: alpha decays geometrically from 1 to alphaMin over
	// the tick budget.
	alpha := 1.0
	decay := math.Pow(alphaMin, 1.0/float64(s.cfg.Ticks))

	for range s.cfg.Ticks {
		st.applyRepulsion(s.cfg.RepulsionStrength, alpha, rng)
		st.applyCentering(width/2, height/2, s.cfg.CenterStrength, alpha)
		st.applyLinks(springs, s.cfg.LinkDistance, alpha, rng)
		st.applyCollision(radii, s.cfg.CollisionPadding, rng)
		st.integrate(radii, width, height)
		alpha *= decay
	}

	for i := range g.Nodes {
		g.Nodes[i].Position = &graph.Position{X: st.x[i], Y: st.y[i]}
	}
	return nil
}

// spring is a precomputed link force: endpoint indices plus saturated
// strength derived from the edge's combined volume.
type spring struct {
	source, target int
	strength       float64
}

// buildSprings converts edges to springs with the saturating strength rule
// min(cap, log1p(forward+backward)/scale).
func buildSprings(edges []graph.Edge) []spring {
	springs := make([]spring, len(edges))
	for i, e := range edges {
		springs[i] = spring{
			source:   e.Source,
			target:   e.Target,
			strength: math.Min(linkStrengthCap, math.Log1p(e.Volume())/linkStrengthScale),
		}
	}
	return springs
}

// arena is the simulation state: per-node position and velocity, indexed by
// node position in the graph. It is owned by one run and discarded when the
// coordinates are copied out, keeping graph nodes read-only elsewhere.
type arena struct {
	x, y   []float64
	vx, vy []float64
}

func newArena(n int) *arena {
	return &arena{
		x:  make([]float64, n),
		y:  make([]float64, n),
		vx: make([]float64, n),
		vy: make([]float64, n),
	}
}

// seedPositions places nodes on a phyllotaxis spiral around the canvas
// center with a small seeded jitter. The spiral avoids degenerate
// all-at-origin starts; the jitter varies layouts across seeds.
func (st *arena) seedPositions(rng *rand.Rand, width, height float64) {
	const spiralRadius = 10.0
	angle := math.Pi * (3 - math.Sqrt(5))
	cx, cy := width/2, height/2

	for i := range st.x {
		r := spiralRadius * math.Sqrt(0.5+float64(i))
		a := float64(i) * angle
		st.x[i] = cx + r*math.Cos(a) + (rng.Float64()-0.5)*2
		st.y[i] = cy + r*math.Sin(a) + (rng.Float64()-0.5)*2
	}
}

// applyRepulsion applies the pairwise many-body force. Forces fall off with
// squared distance; coincident nodes are jiggled apart deterministically.
func (st *arena) applyRepulsion(strength, alpha float64, rng *rand.Rand) {
	for i := range st.x {
		for j := i + 1; j < len(st.x); j++ {
			dx := st.x[j] - st.x[i]
			dy := st.y[j] - st.y[i]
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				dx, dy = jiggle(rng), jiggle(rng)
				d2 = dx*dx + dy*dy
			}
			// Clamp very short distances so the force stays bounded.
			if d2 < 1 {
				d2 = 1
			}
			w := strength * alpha / d2
			st.vx[i] += dx * w
			st.vy[i] += dy * w
			st.vx[j] -= dx * w
			st.vy[j] -= dy * w
		}
	}
}

// applyCentering pulls every node toward the canvas center on each axis
// independently.
func (st *arena) applyCentering(cx, cy, strength, alpha float64) {
	for i := range st.x {
		st.vx[i] += (cx - st.x[i]) * strength * alpha
		st.vy[i] += (cy - st.y[i]) * strength * alpha
	}
}

// applyLinks applies the spring force along every edge toward its rest
// distance, split evenly between the endpoints.
func (st *arena) applyLinks(springs []spring, restDistance, alpha float64, rng *rand.Rand) {
	for _, sp := range springs {
		dx := st.x[sp.target] + st.vx[sp.target] - st.x[sp.source] - st.vx[sp.source]
		dy := st.y[sp.target] + st.vy[sp.target] - st.y[sp.source] - st.vy[sp.source]
		if dx == 0 && dy == 0 {
			dx, dy = jiggle(rng), jiggle(rng)
		}
		d := math.Hypot(dx, dy)
		l := (d - restDistance) / d * alpha * sp.strength

		st.vx[sp.target] -= dx * l / 2
		st.vy[sp.target] -= dy * l / 2
		st.vx[sp.source] += dx * l / 2
		st.vy[sp.source] += dy * l / 2
	}
}

// applyCollision resolves pairwise overlap as a velocity correction: nodes
// closer than the sum of their radii plus padding push apart without
// teleporting.
func (st *arena) applyCollision(radii []float64, padding float64, rng *rand.Rand) {
	for i := range st.x {
		xi := st.x[i] + st.vx[i]
		yi := st.y[i] + st.vy[i]
		for j := i + 1; j < len(st.x); j++ {
			minDist := radii[i] + radii[j] + padding

			dx := st.x[j] + st.vx[j] - xi
			dy := st.y[j] + st.vy[j] - yi
			d2 := dx*dx + dy*dy
			if d2 >= minDist*minDist {
				continue
			}
			if d2 == 0 {
				dx, dy = jiggle(rng), jiggle(rng)
				d2 = dx*dx + dy*dy
			}
			d := math.Sqrt(d2)
			overlap := (minDist - d) / d / 2

			st.vx[i] -= dx * overlap
			st.vy[i] -= dy * overlap
			st.vx[j] += dx * overlap
			st.vy[j] += dy * overlap
		}
	}
}

// integrate advances positions by the decayed velocities and keeps every
// node inside the canvas by its own radius.
func (st *arena) integrate(radii []float64, width, height float64) {
	for i := range st.x {
		st.vx[i] *= velocityDecay
		st.vy[i] *= velocityDecay
		st.x[i] += st.vx[i]
		st.y[i] += st.vy[i]

		st.x[i] = clamp(st.x[i], radii[i], width-radii[i])
		st.y[i] = clamp(st.y[i], radii[i], height-radii[i])
	}
}

// jiggle returns a tiny non-zero offset for breaking exact ties.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return (lo + hi) / 2
	}
	return math.Min(hi, math.Max(lo, v))
}
