package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/tokenviz/bubblegraph/pkg/graph"
)

func TestToDOT_Basic(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Name: "Treasury"},
			{Address: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb", IsContract: true},
		},
		Edges: []graph.Edge{{Source: 0, Target: 1, Forward: 100, Backward: 25}},
	}

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "digraph holders") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, `label="Treasury"`) {
		t.Error("ToDOT() output missing named node label")
	}
	if !strings.Contains(dot, "0xbbbbbb…bbbb") {
		t.Error("ToDOT() unnamed node missing truncated address label")
	}
	if !strings.Contains(dot, "n0 -> n1") {
		t.Error("ToDOT() output missing forward edge")
	}
	if !strings.Contains(dot, "n1 -> n0") {
		t.Error("ToDOT() output missing backward edge")
	}
	if !strings.Contains(dot, "shape=box") {
		t.Error("ToDOT() contract node missing box shape")
	}
}

func TestToDOT_Exchange(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{
		{Address: "0xcccccccccccccccccccccccccccccccccccccccc", Name: "Binance 8", IsExchange: true},
	}}

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "dashed") {
		t.Error("ToDOT() exchange node missing dashed style")
	}
	if !strings.Contains(dot, "lightgrey") {
		t.Error("ToDOT() exchange node missing lightgrey fill")
	}
}

func TestToDOT_Detailed(t *testing.T) {
	g := &graph.Graph{Nodes: []graph.Node{
		{Address: "0xdddddddddddddddddddddddddddddddddddddddd", Amount: 1234.5, Percentage: 7.25},
	}}

	dot := ToDOT(g, Options{Detailed: true})

	if !strings.Contains(dot, "amount: 1234") {
		t.Error("ToDOT() detailed output missing amount")
	}
	if !strings.Contains(dot, "pct: 7.25%") {
		t.Error("ToDOT() detailed output missing percentage")
	}
}

func TestToDOT_SkipsZeroVolumes(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"},
			{Address: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		},
		Edges: []graph.Edge{{Source: 0, Target: 1, Forward: 10}},
	}

	dot := ToDOT(g, Options{})

	if strings.Contains(dot, "n1 -> n0") {
		t.Error("ToDOT() emitted an edge for zero backward volume")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="80pt" height="60pt" viewBox="0.00 0.00 80.00 60.00" xmlns="http://www.w3.org/2000/svg">`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 80.00 60.00"`) {
		t.Errorf("normalizeViewBox() = %q, missing normalized viewBox", out)
	}
	if !strings.Contains(out, `width="80" height="60"`) {
		t.Errorf("normalizeViewBox() = %q, missing pixel dimensions", out)
	}
}

func TestRenderSVG(t *testing.T) {
	g := &graph.Graph{
		Nodes: []graph.Node{
			{Address: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", Name: "Treasury"},
			{Address: "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"},
		},
		Edges: []graph.Edge{{Source: 0, Target: 1, Forward: 100}},
	}
	dot := ToDOT(g, Options{})

	svg, err := RenderSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}

	out := string(svg)
	if !strings.Contains(out, "<svg") {
		t.Error("RenderSVG() output missing svg tag")
	}
	if !strings.Contains(out, `viewBox="0 0 `) {
		t.Error("RenderSVG() viewBox not normalized to origin")
	}
	if !strings.Contains(out, "Treasury") {
		t.Error("RenderSVG() output missing node label")
	}
}

func TestRenderSVGBadDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("RenderSVG() expected error for malformed DOT")
	}
}
