package cli

import (
	"context"
	"strings"
	"testing"
)

const testDOT = `digraph holders {
  n0 [label="Treasury"];
  n1 [label="0xbbbbbb…bbbb"];
  n0 -> n1;
}`

func TestDotArtifactPassthrough(t *testing.T) {
	for _, output := range []string{"", "graph.dot", "graph.txt"} {
		data, err := dotArtifact(context.Background(), testDOT, output)
		if err != nil {
			t.Fatalf("dotArtifact(%q) error = %v", output, err)
		}
		if string(data) != testDOT {
			t.Errorf("dotArtifact(%q) rewrote DOT source", output)
		}
	}
}

func TestDotArtifactRendersSVG(t *testing.T) {
	data, err := dotArtifact(context.Background(), testDOT, "graph.svg")
	if err != nil {
		t.Fatalf("dotArtifact(svg) error = %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("dotArtifact(svg) output missing svg tag")
	}
	if !strings.Contains(string(data), "Treasury") {
		t.Error("dotArtifact(svg) output missing node label")
	}
}
