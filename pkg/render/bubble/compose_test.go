package bubble

import (
	"fmt"
	"strings"
	"testing"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/graph"
	"github.com/tokenviz/bubblegraph/pkg/render/scene"
)

func placedGraph(nodes []graph.Node, edges []graph.Edge) *graph.Graph {
	g := &graph.Graph{Nodes: nodes, Edges: edges}
	for i := range g.Nodes {
		if g.Nodes[i].Position == nil {
			g.Nodes[i].Position = &graph.Position{X: float64(100 + i*150), Y: 200}
		}
	}
	return g
}

func layerByName(t *testing.T, s *scene.Scene, name string) *scene.Layer {
	t.Helper()
	for i := range s.Layers {
		if s.Layers[i].Name == name {
			return &s.Layers[i]
		}
	}
	t.Fatalf("scene has no %q layer", name)
	return nil
}

func TestComposeSingleNode(t *testing.T) {
	g := placedGraph([]graph.Node{
		{Address: "0x1111111111111111111111111111111111111111", Percentage: 42},
	}, nil)
	visuals := NewEncoder(DefaultConfig()).Encode(g)

	s, err := Compose(g, visuals, Meta{Title: "TEST"}, ComposeOptions{Width: 1200, Height: 800})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	if edges := layerByName(t, s, "edges"); len(edges.Elements) != 0 {
		t.Errorf("expected no edge paths, got %d", len(edges.Elements))
	}

	// One node renders as glow + fill + outline; exactly one filled body.
	bodies := 0
	for _, el := range layerByName(t, s, "nodes").Elements {
		if c, ok := el.(scene.Circle); ok && c.Fill != "none" && c.Filter == "" {
			bodies++
		}
	}
	if bodies != 1 {
		t.Errorf("expected exactly one node body circle, got %d", bodies)
	}
}

func TestComposeArcDirections(t *testing.T) {
	nodes := []graph.Node{
		{Address: "0x1111111111111111111111111111111111111111", Percentage: 10},
		{Address: "0x2222222222222222222222222222222222222222", Percentage: 10},
	}

	t.Run("forward only", func(t *testing.T) {
		g := placedGraph(nodes, []graph.Edge{{Source: 0, Target: 1, Forward: 10}})
		visuals := NewEncoder(DefaultConfig()).Encode(g)
		s, err := Compose(g, visuals, Meta{}, ComposeOptions{Width: 800, Height: 600})
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		if got := len(layerByName(t, s, "edges").Elements); got != 1 {
			t.Errorf("expected 1 arc, got %d", got)
		}
	})

	t.Run("both directions bow apart", func(t *testing.T) {
		g := placedGraph(nodes, []graph.Edge{{Source: 0, Target: 1, Forward: 5, Backward: 5}})
		visuals := NewEncoder(DefaultConfig()).Encode(g)
		s, err := Compose(g, visuals, Meta{}, ComposeOptions{Width: 800, Height: 600})
		if err != nil {
			t.Fatalf("Compose() error = %v", err)
		}
		edges := layerByName(t, s, "edges")
		if len(edges.Elements) != 2 {
			t.Fatalf("expected 2 arcs, got %d", len(edges.Elements))
		}
		for i, el := range edges.Elements {
			if curvatureSide(t, el.(scene.Path).D) == 0 {
				t.Errorf("arc %d is straight, expected a curve", i)
			}
		}
		// Both node centers sit on y=200, so opposite bows put the control
		// points on opposite sides of that line.
		cy0 := controlY(t, edges.Elements[0].(scene.Path).D)
		cy1 := controlY(t, edges.Elements[1].(scene.Path).D)
		if (cy0-200)*(cy1-200) >= 0 {
			t.Errorf("forward and backward arcs bow to the same side (cy %.2f, %.2f)", cy0, cy1)
		}
	})
}

// curvatureSide returns the signed side of the chord the control point sits
// on: positive one way, negative the other, zero for a straight segment.
func curvatureSide(t *testing.T, d string) float64 {
	t.Helper()
	var x1, y1, cx, cy, x2, y2 float64
	if _, err := fmt.Sscanf(d, "M%f,%f Q%f,%f %f,%f", &x1, &y1, &cx, &cy, &x2, &y2); err != nil {
		t.Fatalf("unexpected path %q: %v", d, err)
	}
	return (x2-x1)*(cy-y1) - (y2-y1)*(cx-x1)
}

func controlY(t *testing.T, d string) float64 {
	t.Helper()
	var x1, y1, cx, cy, x2, y2 float64
	if _, err := fmt.Sscanf(d, "M%f,%f Q%f,%f %f,%f", &x1, &y1, &cx, &cy, &x2, &y2); err != nil {
		t.Fatalf("unexpected path %q: %v", d, err)
	}
	return cy
}

func TestComposeArcConsistentConvention(t *testing.T) {
	// A lone forward arc always bows to the same side regardless of geometry.
	var sides []float64
	for _, pos := range [][4]float64{
		{100, 100, 500, 100},
		{500, 100, 100, 100},
		{100, 100, 100, 500},
		{300, 400, 600, 150},
	} {
		a := arc{x1: pos[0], y1: pos[1], x2: pos[2], y2: pos[3], rSrc: 5, rDst: 5, volume: 1}
		var x1, y1, cx, cy, x2, y2 float64
		if _, err := fmt.Sscanf(arcPath(a), "M%f,%f Q%f,%f %f,%f", &x1, &y1, &cx, &cy, &x2, &y2); err != nil {
			t.Fatalf("unexpected path: %v", err)
		}
		sides = append(sides, (x2-x1)*(cy-y1)-(y2-y1)*(cx-x1))
	}
	for i, s := range sides {
		if s >= 0 {
			t.Errorf("arc %d bows the wrong way (side %.2f)", i, s)
		}
	}
}

func TestComposeLayerOrder(t *testing.T) {
	g := placedGraph([]graph.Node{
		{Address: "0x1111111111111111111111111111111111111111", Percentage: 42},
	}, nil)
	visuals := NewEncoder(DefaultConfig()).Encode(g)
	s, err := Compose(g, visuals, Meta{Title: "T"}, ComposeOptions{Width: 800, Height: 600, Grid: true})
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}

	want := []string{"background", "grid", "edges", "nodes", "labels", "header", "watermark"}
	if len(s.Layers) != len(want) {
		t.Fatalf("got %d layers, want %d", len(s.Layers), len(want))
	}
	for i, name := range want {
		if s.Layers[i].Name != name {
			t.Errorf("layer %d = %q, want %q", i, s.Layers[i].Name, name)
		}
	}
}

func TestComposeDoesNotMutateGraph(t *testing.T) {
	g := placedGraph([]graph.Node{
		{Address: "0x1111111111111111111111111111111111111111", Percentage: 42},
		{Address: "0x2222222222222222222222222222222222222222", Percentage: 10},
	}, []graph.Edge{{Source: 0, Target: 1, Forward: 3}})
	before := *g.Nodes[0].Position
	visuals := NewEncoder(DefaultConfig()).Encode(g)

	if _, err := Compose(g, visuals, Meta{}, ComposeOptions{Width: 800, Height: 600}); err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if *g.Nodes[0].Position != before {
		t.Errorf("composer mutated node position: %+v -> %+v", before, *g.Nodes[0].Position)
	}
}

func TestComposeInvalidInput(t *testing.T) {
	g := placedGraph([]graph.Node{
		{Address: "0x1111111111111111111111111111111111111111", Percentage: 1},
	}, nil)

	if _, err := Compose(g, nil, Meta{}, ComposeOptions{Width: 800, Height: 600}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("mismatched visuals: got %v, want INVALID_INPUT", err)
	}

	g.Nodes[0].Position = nil
	visuals := []Visual{{Radius: 5}}
	if _, err := Compose(g, visuals, Meta{}, ComposeOptions{Width: 800, Height: 600}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("missing position: got %v, want INVALID_INPUT", err)
	}
}

func TestFallbackScene(t *testing.T) {
	s := FallbackScene(800, 600, "upstream unavailable")
	out := string(scene.ToSVG(s))
	if !strings.Contains(out, "Rendering failed") || !strings.Contains(out, "upstream unavailable") {
		t.Errorf("fallback scene missing error card text")
	}
}
