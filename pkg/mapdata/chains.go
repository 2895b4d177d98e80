package mapdata

import (
	"sort"
	"strings"

	"github.com/tokenviz/bubblegraph/pkg/errors"
)

// chainAliases maps common chain names (as reported by token-listing APIs)
// to the short identifiers the map provider expects.
var chainAliases = map[string]string{
	"ethereum":  "eth",
	"bsc":       "bsc",
	"fantom":    "ftm",
	"avalanche": "avax",
	"cronos":    "cro",
	"arbitrum":  "arbi",
	"polygon":   "poly",
	"base":      "base",
	"solana":    "sol",
	"sonic":     "sonic",
}

// supportedChains is the set of short chain identifiers the provider serves.
var supportedChains = map[string]bool{
	"eth":   true,
	"bsc":   true,
	"ftm":   true,
	"avax":  true,
	"cro":   true,
	"arbi":  true,
	"poly":  true,
	"base":  true,
	"sol":   true,
	"sonic": true,
}

// NormalizeChain resolves a chain name or alias to its short identifier.
// Returns an INVALID_CHAIN error for unknown chains.
func NormalizeChain(chain string) (string, error) {
	c := strings.ToLower(strings.TrimSpace(chain))
	if c == "" {
		return "", errors.New(errors.ErrCodeInvalidChain, "chain cannot be empty")
	}
	if alias, ok := chainAliases[c]; ok {
		c = alias
	}
	if !supportedChains[c] {
		return "", errors.New(errors.ErrCodeInvalidChain,
			"chain %q not supported (supported: %s)", chain, strings.Join(SupportedChains(), ", "))
	}
	return c, nil
}

// chainLabels maps short identifiers to display names for scene subtitles.
var chainLabels = map[string]string{
	"eth":   "Ethereum",
	"bsc":   "BNB Chain",
	"ftm":   "Fantom",
	"avax":  "Avalanche",
	"cro":   "Cronos",
	"arbi":  "Arbitrum",
	"poly":  "Polygon",
	"base":  "Base",
	"sol":   "Solana",
	"sonic": "Sonic",
}

// ChainLabel returns the human-readable name for a short chain identifier,
// or the identifier itself when unknown.
func ChainLabel(chain string) string {
	if label, ok := chainLabels[strings.ToLower(chain)]; ok {
		return label
	}
	return chain
}

// SupportedChains returns the sorted list of supported short chain identifiers.
func SupportedChains() []string {
	chains := make([]string, 0, len(supportedChains))
	for c := range supportedChains {
		chains = append(chains, c)
	}
	sort.Strings(chains)
	return chains
}
