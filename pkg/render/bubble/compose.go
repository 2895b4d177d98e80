package bubble

import (
	"fmt"
	"math"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/graph"
	"github.com/tokenviz/bubblegraph/pkg/render/scene"
)

// Edge strokes scale on a log curve between these bounds, against the
// batch's min/max arc volume.
const (
	edgeWidthMin   = 1.0
	edgeWidthMax   = 5.0
	edgeOpacityMin = 0.25
	edgeOpacityMax = 0.85

	arcBow      = 0.18 // control-point offset as a fraction of chord length
	gridSpacing = 100.0
)

// Meta is the request-level context rendered into the scene chrome.
type Meta struct {
	Title    string
	Subtitle string
	Chain    string
}

// ComposeOptions controls the canvas and optional decorations.
type ComposeOptions struct {
	Width  float64
	Height float64
	Grid   bool
}

// Compose projects a laid-out graph and its visual attributes into an
// ordered scene. It never mutates its inputs. Layers render back to front:
// background, grid, edges, nodes, labels, header, watermark.
func Compose(g *graph.Graph, visuals []Visual, meta Meta, opts ComposeOptions) (*scene.Scene, error) {
	if g == nil || len(visuals) != len(g.Nodes) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "visual attributes do not match graph nodes")
	}
	for i := range g.Nodes {
		if g.Nodes[i].Position == nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "node %d has no layout position", i)
		}
	}

	s := &scene.Scene{Width: opts.Width, Height: opts.Height}
	s.Defs = append(s.Defs,
		backgroundGradient(),
		scene.GaussianBlur{ID: "glow", StdDev: 6},
		scene.ArrowMarker{ID: "arrow", Color: colorEdge, Size: 6},
		scene.ArrowMarker{ID: "arrow-gold", Color: colorEdgeGold, Size: 6},
		scene.ArrowMarker{ID: "arrow-green", Color: colorEdgeGreen, Size: 6},
	)

	s.Add("background").Append(scene.Rect{W: opts.Width, H: opts.Height, Fill: "url(#bg)"})
	if opts.Grid {
		composeGrid(s, opts.Width, opts.Height)
	}
	composeEdges(s, g, visuals)
	composeNodes(s, g, visuals)
	composeLabels(s, g, visuals)
	composeHeader(s, meta, opts.Width)
	composeWatermark(s, opts.Width, opts.Height)
	return s, nil
}

// FallbackScene renders a minimal error card on the standard background.
// The pipeline uses it as the single retry target when scene rasterization
// fails.
func FallbackScene(width, height float64, message string) *scene.Scene {
	s := &scene.Scene{Width: width, Height: height}
	s.Defs = append(s.Defs, backgroundGradient())
	s.Add("background").Append(scene.Rect{W: width, H: height, Fill: "url(#bg)"})

	card := s.Add("card")
	cw, ch := math.Min(width-80, 520.0), 120.0
	cx, cy := (width-cw)/2, (height-ch)/2
	card.Append(
		scene.Rect{X: cx, Y: cy, W: cw, H: ch, Rx: 12, Fill: colorHeaderFill, Opacity: 0.92},
		scene.Text{X: width / 2, Y: cy + 50, Content: "Rendering failed", Size: 20,
			Fill: colorTextPrimary, Anchor: "middle", Weight: "bold"},
		scene.Text{X: width / 2, Y: cy + 82, Content: message, Size: 13,
			Fill: colorTextSecondary, Anchor: "middle"},
	)
	return s
}

func backgroundGradient() scene.LinearGradient {
	return scene.LinearGradient{ID: "bg", X1: 0, Y1: 0, X2: 0, Y2: 100, Stops: []scene.Stop{
		{Offset: 0, Color: colorBackgroundTop, Opacity: 1},
		{Offset: 100, Color: colorBackgroundBot, Opacity: 1},
	}}
}

func composeGrid(s *scene.Scene, width, height float64) {
	grid := s.Add("grid")
	for x := gridSpacing; x < width; x += gridSpacing {
		grid.Append(scene.Line{X1: x, Y1: 0, X2: x, Y2: height,
			Stroke: colorGridLine, Width: 1, Opacity: 0.35})
	}
	for y := gridSpacing; y < height; y += gridSpacing {
		grid.Append(scene.Line{X1: 0, Y1: y, X2: width, Y2: y,
			Stroke: colorGridLine, Width: 1, Opacity: 0.35})
	}
}

// arc is one directed curve between node centers, pending stroke scaling.
type arc struct {
	x1, y1, x2, y2 float64
	rSrc, rDst     float64
	volume         float64
	tint           string
	marker         string
}

func composeEdges(s *scene.Scene, g *graph.Graph, visuals []Visual) {
	arcs := collectArcs(g, visuals)
	layer := s.Add("edges")
	if len(arcs) == 0 {
		return
	}

	minV, maxV := arcs[0].volume, arcs[0].volume
	for _, a := range arcs[1:] {
		minV = math.Min(minV, a.volume)
		maxV = math.Max(maxV, a.volume)
	}

	for _, a := range arcs {
		t := logScale(a.volume, minV, maxV)
		layer.Append(scene.Path{
			D:         arcPath(a),
			Stroke:    a.tint,
			Width:     edgeWidthMin + t*(edgeWidthMax-edgeWidthMin),
			Opacity:   edgeOpacityMin + t*(edgeOpacityMax-edgeOpacityMin),
			MarkerEnd: a.marker,
		})
	}
}

func collectArcs(g *graph.Graph, visuals []Visual) []arc {
	var arcs []arc
	add := func(src, dst int, volume float64) {
		tint := edgeTint(visuals[src].Highlight, visuals[dst].Highlight)
		arcs = append(arcs, arc{
			x1: g.Nodes[src].Position.X, y1: g.Nodes[src].Position.Y,
			x2: g.Nodes[dst].Position.X, y2: g.Nodes[dst].Position.Y,
			rSrc: visuals[src].Radius, rDst: visuals[dst].Radius,
			volume: volume,
			tint:   tint,
			marker: markerFor(tint),
		})
	}
	for _, e := range g.Edges {
		if e.Forward > 0 {
			add(e.Source, e.Target, e.Forward)
		}
		if e.Backward > 0 {
			add(e.Target, e.Source, e.Backward)
		}
	}
	return arcs
}

func markerFor(tint string) string {
	switch tint {
	case colorEdgeGold:
		return "arrow-gold"
	case colorEdgeGreen:
		return "arrow-green"
	default:
		return "arrow"
	}
}

// arcPath builds a quadratic curve from the source rim to the target rim.
// The control point sits to the right of the travel direction, so every arc
// bows clockwise and a forward/backward pair lands on opposite sides of the
// chord.
func arcPath(a arc) string {
	dx, dy := a.x2-a.x1, a.y2-a.y1
	dist := math.Hypot(dx, dy)
	if dist < 1e-9 {
		return fmt.Sprintf("M%.2f,%.2f", a.x1, a.y1)
	}
	ux, uy := dx/dist, dy/dist

	// Trim endpoints back to the node rims so arrowheads stay visible.
	x1 := a.x1 + ux*a.rSrc
	y1 := a.y1 + uy*a.rSrc
	x2 := a.x2 - ux*(a.rDst+3)
	y2 := a.y2 - uy*(a.rDst+3)

	mx, my := (x1+x2)/2, (y1+y2)/2
	bow := arcBow * dist
	cx := mx + uy*bow
	cy := my - ux*bow
	return fmt.Sprintf("M%.2f,%.2f Q%.2f,%.2f %.2f,%.2f", x1, y1, cx, cy, x2, y2)
}

// logScale maps v in [min, max] to [0, 1] on a log curve, clamped.
func logScale(v, min, max float64) float64 {
	if max <= min {
		return 1
	}
	t := math.Log1p(v-min) / math.Log1p(max-min)
	return math.Max(0, math.Min(1, t))
}

func composeNodes(s *scene.Scene, g *graph.Graph, visuals []Visual) {
	layer := s.Add("nodes")
	for i := range g.Nodes {
		p := g.Nodes[i].Position
		v := visuals[i]
		layer.Append(
			scene.Circle{CX: p.X, CY: p.Y, R: v.Radius * 1.35, Fill: v.Fill,
				Opacity: 0.35, Filter: "glow"},
			scene.Circle{CX: p.X, CY: p.Y, R: v.Radius, Fill: v.Fill},
			scene.Circle{CX: p.X, CY: p.Y, R: v.Radius, Fill: "none",
				Stroke: colorOutline, StrokeWidth: 1.2, Opacity: 0.55},
		)
	}
}

func composeLabels(s *scene.Scene, g *graph.Graph, visuals []Visual) {
	layer := s.Add("labels")
	for i := range g.Nodes {
		v := visuals[i]
		if !v.ShowLabel {
			continue
		}
		p := g.Nodes[i].Position
		layer.Append(scene.Text{X: p.X, Y: p.Y - v.Radius - 6, Content: v.Label,
			Size: 11, Fill: colorTextPrimary, Anchor: "middle", Weight: "bold"})
		if v.Badge != "" {
			size := math.Min(v.Radius*0.55, 12)
			layer.Append(scene.Text{X: p.X, Y: p.Y + size*0.35, Content: v.Badge,
				Size: size, Fill: colorTextPrimary, Anchor: "middle", Opacity: 0.9})
		}
	}
}

func composeHeader(s *scene.Scene, meta Meta, width float64) {
	layer := s.Add("header")
	title := meta.Title
	if title == "" {
		title = "Token Holder Map"
	}
	layer.Append(
		scene.Rect{X: 20, Y: 14, W: width - 40, H: 64, Rx: 12,
			Fill: colorHeaderFill, Opacity: 0.88},
		scene.Text{X: 36, Y: 42, Content: title, Size: 20,
			Fill: colorTextPrimary, Weight: "bold"},
	)
	subtitle := meta.Subtitle
	if subtitle == "" && meta.Chain != "" {
		subtitle = meta.Chain
	}
	if subtitle != "" {
		layer.Append(scene.Text{X: 36, Y: 64, Content: subtitle, Size: 13,
			Fill: colorTextSecondary})
	}
}

func composeWatermark(s *scene.Scene, width, height float64) {
	s.Add("watermark").Append(scene.Text{
		X: width - 24, Y: height - 16, Content: "bubblegraph",
		Size: 11, Fill: colorTextWatermark, Anchor: "end", Opacity: 0.7,
	})
}
