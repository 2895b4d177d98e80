// Package graph defines the token-holder transfer graph model and the
// operations that prepare it for layout: validation of raw map documents
// and filtering of non-representative wallets.
package graph

// Position is a 2-D canvas coordinate assigned by the layout simulator.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Node is one holder address in the transfer graph.
//
// Position is nil until the layout simulator has run. Everything else is
// read-only holder metadata from the upstream map document.
type Node struct {
	Address    string    `json:"address" bson:"address"`
	Amount     float64   `json:"amount" bson:"amount"`
	Percentage float64   `json:"percentage,omitempty" bson:"percentage,omitempty"` // share of supply, 0-100
	IsContract bool      `json:"is_contract,omitempty" bson:"is_contract,omitempty"`
	IsExchange bool      `json:"is_exchange,omitempty" bson:"is_exchange,omitempty"`
	Name       string    `json:"name,omitempty" bson:"name,omitempty"`
	Position   *Position `json:"position,omitempty" bson:"position,omitempty"`
}

// Weight returns the value used for visual sizing: the larger of the
// holder's supply percentage and raw amount.
func (n *Node) Weight() float64 {
	return max(n.Percentage, n.Amount)
}

// Edge is a pair of transfer volumes between two holders. Source and Target
// index into the owning graph's node slice.
type Edge struct {
	Source   int     `json:"source" bson:"source"`
	Target   int     `json:"target" bson:"target"`
	Forward  float64 `json:"forward" bson:"forward"`
	Backward float64 `json:"backward" bson:"backward"`
}

// Volume returns the combined transfer volume in both directions.
func (e *Edge) Volume() float64 {
	return e.Forward + e.Backward
}

// Graph is an ordered holder set plus the transfer edges between them.
// Edge indices are always valid relative to Nodes; Filter maintains this
// invariant when nodes are removed.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }
