package graph

import (
	"testing"

	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
)

func validDocument() *mapdata.Document {
	return &mapdata.Document{
		Chain:        "eth",
		TokenAddress: "0xabc",
		Nodes: []mapdata.Node{
			{Address: "0x01", Amount: 1000, Percentage: 40, IsContract: true},
			{Address: "0x02", Amount: 500, Percentage: 20, Name: "deployer"},
			{Address: "0x03", Amount: 100},
		},
		Links: []mapdata.Link{
			{Source: 0, Target: 1, Forward: 12, Backward: 3},
			{Source: 1, Target: 2, Forward: 1},
		},
	}
}

func TestFromDocument(t *testing.T) {
	g, err := FromDocument(validDocument())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}

	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Fatalf("counts = %d/%d, want 3/2", g.NodeCount(), g.EdgeCount())
	}
	if g.Nodes[0].Position != nil {
		t.Error("loader must not assign positions")
	}
	if !g.Nodes[0].IsContract {
		t.Error("contract flag lost in conversion")
	}
	if g.Edges[0].Volume() != 15 {
		t.Errorf("edge volume = %v, want 15", g.Edges[0].Volume())
	}
}

func TestFromDocumentValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*mapdata.Document)
	}{
		{
			name:   "missing address",
			mutate: func(d *mapdata.Document) { d.Nodes[1].Address = "" },
		},
		{
			name:   "negative amount",
			mutate: func(d *mapdata.Document) { d.Nodes[0].Amount = -1 },
		},
		{
			name:   "percentage above 100",
			mutate: func(d *mapdata.Document) { d.Nodes[0].Percentage = 101 },
		},
		{
			name:   "negative percentage",
			mutate: func(d *mapdata.Document) { d.Nodes[0].Percentage = -0.5 },
		},
		{
			name:   "source index out of range",
			mutate: func(d *mapdata.Document) { d.Links[0].Source = 3 },
		},
		{
			name:   "negative target index",
			mutate: func(d *mapdata.Document) { d.Links[0].Target = -1 },
		},
		{
			name:   "negative volume",
			mutate: func(d *mapdata.Document) { d.Links[1].Forward = -2 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := validDocument()
			tt.mutate(doc)
			_, err := FromDocument(doc)
			if !errors.Is(err, errors.ErrCodeInvalidMapData) {
				t.Errorf("error code = %v, want INVALID_MAPDATA", errors.GetCode(err))
			}
		})
	}
}

func TestFromDocumentNil(t *testing.T) {
	if _, err := FromDocument(nil); !errors.Is(err, errors.ErrCodeInvalidMapData) {
		t.Error("nil document must be INVALID_MAPDATA")
	}
}

func TestNodeWeight(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want float64
	}{
		{
			name: "percentage dominates",
			node: Node{Amount: 10, Percentage: 42},
			want: 42,
		},
		{
			name: "amount dominates",
			node: Node{Amount: 99, Percentage: 1.5},
			want: 99,
		},
		{
			name: "zero node",
			node: Node{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.Weight(); got != tt.want {
				t.Errorf("Weight() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g, err := FromDocument(validDocument())
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	g.Nodes[0].Position = &Position{X: 10, Y: 20}

	data, err := Marshal(g)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if back.NodeCount() != g.NodeCount() || back.EdgeCount() != g.EdgeCount() {
		t.Errorf("round trip changed counts: %d/%d -> %d/%d",
			g.NodeCount(), g.EdgeCount(), back.NodeCount(), back.EdgeCount())
	}
	if back.Nodes[0].Position == nil || back.Nodes[0].Position.X != 10 {
		t.Error("round trip lost node position")
	}
}
