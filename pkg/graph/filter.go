package graph

import (
	"strings"

	"github.com/tokenviz/bubblegraph/pkg/errors"
)

// DefaultDenylist contains name substrings that mark a wallet as a
// centralized-exchange or otherwise non-representative holder. Matching is
// case-insensitive. Deployments can override the list through configuration.
var DefaultDenylist = []string{
	"exchange",
	"binance",
	"coinbase",
	"kraken",
	"okx",
	"bybit",
	"kucoin",
	"gate.io",
	"htx",
	"bitfinex",
	"burn address",
}

// Filter returns a copy of g with denylisted and exchange-flagged nodes
// removed and the edge set rewritten to the surviving node indices.
//
// Surviving nodes keep their original relative order. An edge survives only
// if both endpoints survive; its indices are rewritten to the new dense
// index space. A nil denylist uses [DefaultDenylist].
//
// Returns an INSUFFICIENT_DATA error when no nodes survive: the layout
// simulator cannot run on an empty graph, and an empty result must never
// look like success.
func Filter(g *Graph, denylist []string) (*Graph, error) {
	if denylist == nil {
		denylist = DefaultDenylist
	}

	lowered := make([]string, len(denylist))
	for i, s := range denylist {
		lowered[i] = strings.ToLower(s)
	}

	// Original index -> new index, for retained nodes only.
	remap := make(map[int]int, len(g.Nodes))
	out := &Graph{}

	for i, n := range g.Nodes {
		if removeNode(&n, lowered) {
			continue
		}
		remap[i] = len(out.Nodes)
		out.Nodes = append(out.Nodes, n)
	}

	if len(out.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInsufficientData,
			"no representative holders remain after filtering %d nodes", len(g.Nodes))
	}

	for _, e := range g.Edges {
		src, okS := remap[e.Source]
		dst, okT := remap[e.Target]
		if !okS || !okT {
			continue
		}
		e.Source = src
		e.Target = dst
		out.Edges = append(out.Edges, e)
	}

	return out, nil
}

// removeNode reports whether a node should be excluded from the visualized
// holder set.
func removeNode(n *Node, lowered []string) bool {
	if n.IsExchange {
		return true
	}
	if n.Name == "" {
		return false
	}
	name := strings.ToLower(n.Name)
	for _, deny := range lowered {
		if strings.Contains(name, deny) {
			return true
		}
	}
	return false
}
