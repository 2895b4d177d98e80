// Package bubble turns a laid-out holder graph into a vector scene: it
// derives per-node visual attributes (radius, color, labels) and composes
// the full ordered scene with edges, glows, and chrome.
package bubble

import (
	"fmt"
	"math"
	"strings"

	"github.com/tokenviz/bubblegraph/pkg/graph"
)

// Config holds the visual-encoding thresholds.
type Config struct {
	// RadiusMin and RadiusMax bound the rendered node radius.
	RadiusMin float64
	// RadiusMax is the radius assigned to the heaviest holder.
	RadiusMax float64
	// Exponent shapes the power scale from weight to radius. Values below
	// one compress large holders and keep small ones visible.
	Exponent float64
	// LabelRankLimit caps how many nodes, by input order, may carry labels.
	LabelRankLimit int
	// LabelMinRadius hides labels on nodes rendered smaller than this.
	LabelMinRadius float64
}

// DefaultConfig returns the standard encoding thresholds.
func DefaultConfig() Config {
	return Config{
		RadiusMin:      3,
		RadiusMax:      45,
		Exponent:       0.7,
		LabelRankLimit: 30,
		LabelMinRadius: 10,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.RadiusMin <= 0 {
		c.RadiusMin = d.RadiusMin
	}
	if c.RadiusMax <= c.RadiusMin {
		c.RadiusMax = d.RadiusMax
	}
	if c.Exponent <= 0 {
		c.Exponent = d.Exponent
	}
	if c.LabelRankLimit <= 0 {
		c.LabelRankLimit = d.LabelRankLimit
	}
	if c.LabelMinRadius <= 0 {
		c.LabelMinRadius = d.LabelMinRadius
	}
	return c
}

// Visual is the derived appearance of one node. It carries everything the
// composer needs without reaching back into holder metadata.
type Visual struct {
	Radius    float64
	Fill      string
	Highlight Highlight
	Label     string
	ShowLabel bool
	Badge     string
}

// Encoder maps holder attributes to visual attributes. Encoding is a pure
// function of the node list: identical input yields identical output.
type Encoder struct {
	cfg Config
}

// NewEncoder returns an encoder, filling zero config fields with defaults.
func NewEncoder(cfg Config) *Encoder {
	return &Encoder{cfg: cfg.withDefaults()}
}

// Radii computes just the rendered radius per node, in input order. The
// layout simulator needs these for collision resolution before the full
// encoding pass runs.
func (e *Encoder) Radii(g *graph.Graph) []float64 {
	scale := e.radiusScale(globalMax(g))
	radii := make([]float64, len(g.Nodes))
	for i := range g.Nodes {
		radii[i] = scale(g.Nodes[i].Weight())
	}
	return radii
}

// Encode derives the full visual attribute set per node, in input order.
func (e *Encoder) Encode(g *graph.Graph) []Visual {
	scale := e.radiusScale(globalMax(g))
	visuals := make([]Visual, len(g.Nodes))
	for i := range g.Nodes {
		n := &g.Nodes[i]
		h := classify(i, n.IsContract)
		v := Visual{
			Radius:    scale(n.Weight()),
			Fill:      nodeFill(h, n.IsContract),
			Highlight: h,
		}
		if i < e.cfg.LabelRankLimit && v.Radius > e.cfg.LabelMinRadius {
			v.Label = labelText(n)
			v.ShowLabel = true
			if n.Percentage > 0 {
				v.Badge = fmt.Sprintf("%.2f%%", n.Percentage)
			}
		}
		visuals[i] = v
	}
	return visuals
}

// radiusScale builds the power scale from weight domain [0, max] to the
// configured radius range.
func (e *Encoder) radiusScale(maxWeight float64) func(float64) float64 {
	cfg := e.cfg
	return func(w float64) float64 {
		if maxWeight <= 0 || w <= 0 {
			return cfg.RadiusMin
		}
		t := math.Pow(w/maxWeight, cfg.Exponent)
		return cfg.RadiusMin + t*(cfg.RadiusMax-cfg.RadiusMin)
	}
}

func globalMax(g *graph.Graph) float64 {
	var max float64
	for i := range g.Nodes {
		if w := g.Nodes[i].Weight(); w > max {
			max = w
		}
	}
	return max
}

// labelText picks the display name. A holder name that is just a prefix of
// the address (upstream sometimes echoes a truncated address as the name)
// counts as absent.
func labelText(n *graph.Node) string {
	name := strings.TrimSpace(n.Name)
	if name != "" && !strings.HasPrefix(strings.ToLower(n.Address), strings.ToLower(name)) {
		return name
	}
	return truncateAddress(n.Address)
}

func truncateAddress(addr string) string {
	if len(addr) <= 13 {
		return addr
	}
	return addr[:8] + "…" + addr[len(addr)-4:]
}
