package bubble

// Palette for the dark bubble-map theme. Node colors are keyed by contract
// flag plus a fixed modulus rule over the node's rank index, so a given
// holder list always colors identically.

const (
	colorBackgroundTop = "#10101c"
	colorBackgroundBot = "#1d1b30"
	colorGridLine      = "#2a2a3e"

	colorContract      = "#4f3a9e"
	colorContractGold  = "#d9a514"
	colorContractGreen = "#1f9d63"
	colorWallet        = "#8f7ad6"
	colorWalletGold    = "#eec643"
	colorWalletGreen   = "#43d18a"

	colorOutline = "#f5f3ff"

	colorEdge      = "#7f86a8"
	colorEdgeGold  = "#c9a83f"
	colorEdgeGreen = "#4bb583"

	colorTextPrimary   = "#f2f0ff"
	colorTextSecondary = "#a9a5c9"
	colorTextWatermark = "#6f6c8f"
	colorHeaderFill    = "#1d1c2f"
)

// Highlight marks nodes pulled out of the base purple palette.
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightGold
	HighlightGreen
)

func (h Highlight) String() string {
	switch h {
	case HighlightGold:
		return "gold"
	case HighlightGreen:
		return "green"
	default:
		return "none"
	}
}

// classify assigns the highlight slot for a node by rank. Contracts and
// wallets cycle on different primes so their highlights interleave rather
// than stack on the same ranks. Gold wins when both rules match.
func classify(rank int, isContract bool) Highlight {
	if isContract {
		switch {
		case rank%7 == 3:
			return HighlightGold
		case rank%11 == 5:
			return HighlightGreen
		}
		return HighlightNone
	}
	switch {
	case rank%5 == 2:
		return HighlightGold
	case rank%13 == 8:
		return HighlightGreen
	}
	return HighlightNone
}

func nodeFill(h Highlight, isContract bool) string {
	if isContract {
		switch h {
		case HighlightGold:
			return colorContractGold
		case HighlightGreen:
			return colorContractGreen
		}
		return colorContract
	}
	switch h {
	case HighlightGold:
		return colorWalletGold
	case HighlightGreen:
		return colorWalletGreen
	}
	return colorWallet
}

// edgeTint picks the arc color from the endpoint highlights. Gold takes
// precedence over green, either endpoint qualifies.
func edgeTint(a, b Highlight) string {
	if a == HighlightGold || b == HighlightGold {
		return colorEdgeGold
	}
	if a == HighlightGreen || b == HighlightGreen {
		return colorEdgeGreen
	}
	return colorEdge
}
