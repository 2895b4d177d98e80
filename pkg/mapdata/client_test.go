package mapdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tokenviz/bubblegraph/pkg/errors"
)

const testToken = "0xc00e94cb662c3520282e6f5717214004a7f26888"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL)
}

func TestFetchMapSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("token"); got != testToken {
			t.Errorf("token query = %q, want %q", got, testToken)
		}
		if got := r.URL.Query().Get("chain"); got != "eth" {
			t.Errorf("chain query = %q, want eth", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"chain": "eth",
			"token_address": "` + testToken + `",
			"full_name": "Compound",
			"symbol": "COMP",
			"nodes": [{"address": "0x01", "amount": 100, "is_contract": false, "percentage": 12.5}],
			"links": [{"source": 0, "target": 0, "forward": 1, "backward": 0}]
		}`))
	})

	doc, err := c.FetchMap(context.Background(), testToken, "eth")
	if err != nil {
		t.Fatalf("FetchMap: %v", err)
	}
	if doc.FullName != "Compound" {
		t.Errorf("FullName = %q, want Compound", doc.FullName)
	}
	if len(doc.Nodes) != 1 || len(doc.Links) != 1 {
		t.Errorf("nodes/links = %d/%d, want 1/1", len(doc.Nodes), len(doc.Links))
	}
}

func TestFetchMapNotComputed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "Map not computed. API key required"}`))
	})

	_, err := c.FetchMap(context.Background(), testToken, "eth")
	if !errors.Is(err, errors.ErrCodeUpstreamAccess) {
		t.Errorf("error code = %v, want UPSTREAM_ACCESS (err: %v)", errors.GetCode(err), err)
	}
}

func TestFetchMapNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchMap(context.Background(), testToken, "eth")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error code = %v, want NOT_FOUND", errors.GetCode(err))
	}
}

func TestFetchMapRetriesServerErrors(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"chain":"eth","token_address":"` + testToken + `","nodes":[],"links":[]}`))
	})

	// Note: retry backoff starts at 1s, so this test tolerates one retry.
	doc, err := c.FetchMap(context.Background(), testToken, "eth")
	if err != nil {
		t.Fatalf("FetchMap: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if doc.Chain != "eth" {
		t.Errorf("Chain = %q, want eth", doc.Chain)
	}
}

func TestFetchMapRejectsBadInput(t *testing.T) {
	c := NewClient("http://localhost:0")

	if _, err := c.FetchMap(context.Background(), testToken, "dogechain"); !errors.Is(err, errors.ErrCodeInvalidChain) {
		t.Errorf("unknown chain: code = %v, want INVALID_CHAIN", errors.GetCode(err))
	}
	if _, err := c.FetchMap(context.Background(), "nonsense", "eth"); !errors.Is(err, errors.ErrCodeInvalidAddress) {
		t.Errorf("bad address: code = %v, want INVALID_ADDRESS", errors.GetCode(err))
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
		want string
	}{
		{
			name: "name and symbol",
			doc:  Document{FullName: "Compound", Symbol: "COMP", TokenAddress: "0x1"},
			want: "Compound (COMP)",
		},
		{
			name: "name only",
			doc:  Document{FullName: "Compound", TokenAddress: "0x1"},
			want: "Compound",
		},
		{
			name: "symbol only",
			doc:  Document{Symbol: "COMP", TokenAddress: "0x1"},
			want: "COMP",
		},
		{
			name: "address fallback",
			doc:  Document{TokenAddress: "0x1"},
			want: "0x1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.doc.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}
