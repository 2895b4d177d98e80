package mapdata

import (
	"testing"

	"github.com/tokenviz/bubblegraph/pkg/errors"
)

func TestNormalizeChain(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"eth", "eth", false},
		{"ethereum", "eth", false},
		{"Ethereum", "eth", false},
		{"  arbitrum  ", "arbi", false},
		{"solana", "sol", false},
		{"SOLANA", "sol", false},
		{"polygon", "poly", false},
		{"bsc", "bsc", false},
		{"", "", true},
		{"dogecoin", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeChain(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("NormalizeChain(%q) expected error", tt.in)
				}
				if !errors.Is(err, errors.ErrCodeInvalidChain) {
					t.Errorf("NormalizeChain(%q) code = %v, want INVALID_CHAIN", tt.in, errors.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeChain(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeChain(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestChainLabel(t *testing.T) {
	if got := ChainLabel("eth"); got != "Ethereum" {
		t.Errorf("ChainLabel(eth) = %q, want Ethereum", got)
	}
	if got := ChainLabel("bsc"); got != "BNB Chain" {
		t.Errorf("ChainLabel(bsc) = %q, want BNB Chain", got)
	}
	// Unknown identifiers pass through unchanged.
	if got := ChainLabel("testnet"); got != "testnet" {
		t.Errorf("ChainLabel(testnet) = %q, want testnet", got)
	}
}

func TestSupportedChainsSorted(t *testing.T) {
	chains := SupportedChains()
	if len(chains) != 10 {
		t.Fatalf("len(SupportedChains()) = %d, want 10", len(chains))
	}
	for i := 1; i < len(chains); i++ {
		if chains[i-1] >= chains[i] {
			t.Errorf("chains not sorted at %d: %q >= %q", i, chains[i-1], chains[i])
		}
	}
	// Every entry must normalize to itself.
	for _, c := range chains {
		got, err := NormalizeChain(c)
		if err != nil || got != c {
			t.Errorf("NormalizeChain(%q) = %q, %v", c, got, err)
		}
	}
}
