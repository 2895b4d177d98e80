package graph

import (
	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
)

// FromDocument validates a raw map document and converts it into the
// internal graph model.
//
// Validation rules:
//   - every node needs a non-empty address and a non-negative amount
//   - percentages must stay within [0, 100]
//   - every link must reference valid node indices and carry
//     non-negative volumes
//
// Violations return an INVALID_MAPDATA error naming the offending record.
func FromDocument(doc *mapdata.Document) (*Graph, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInvalidMapData, "map document is nil")
	}

	g := &Graph{
		Nodes: make([]Node, 0, len(doc.Nodes)),
		Edges: make([]Edge, 0, len(doc.Links)),
	}

	for i, n := range doc.Nodes {
		if n.Address == "" {
			return nil, errors.New(errors.ErrCodeInvalidMapData, "node %d: missing address", i)
		}
		if n.Amount < 0 {
			return nil, errors.New(errors.ErrCodeInvalidMapData,
				"node %d (%s): negative amount %v", i, n.Address, n.Amount)
		}
		if n.Percentage < 0 || n.Percentage > 100 {
			return nil, errors.New(errors.ErrCodeInvalidMapData,
				"node %d (%s): percentage %v outside [0, 100]", i, n.Address, n.Percentage)
		}
		g.Nodes = append(g.Nodes, Node{
			Address:    n.Address,
			Amount:     n.Amount,
			Percentage: n.Percentage,
			IsContract: n.IsContract,
			IsExchange: n.IsExchange,
			Name:       n.Name,
		})
	}

	for i, l := range doc.Links {
		if l.Source < 0 || l.Source >= len(g.Nodes) {
			return nil, errors.New(errors.ErrCodeInvalidMapData,
				"link %d: source index %d out of range [0, %d)", i, l.Source, len(g.Nodes))
		}
		if l.Target < 0 || l.Target >= len(g.Nodes) {
			return nil, errors.New(errors.ErrCodeInvalidMapData,
				"link %d: target index %d out of range [0, %d)", i, l.Target, len(g.Nodes))
		}
		if l.Forward < 0 || l.Backward < 0 {
			return nil, errors.New(errors.ErrCodeInvalidMapData,
				"link %d: negative volume (forward=%v backward=%v)", i, l.Forward, l.Backward)
		}
		g.Edges = append(g.Edges, Edge{
			Source:   l.Source,
			Target:   l.Target,
			Forward:  l.Forward,
			Backward: l.Backward,
		})
	}

	return g, nil
}
