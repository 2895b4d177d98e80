package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/tokenviz/bubblegraph/pkg/cache"
	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
	"github.com/tokenviz/bubblegraph/pkg/pipeline"
	"github.com/tokenviz/bubblegraph/pkg/render"
)

// contentTypes per artifact format.
var contentTypes = map[string]string{
	string(render.FormatSVG): "image/svg+xml",
	string(render.FormatPNG): "image/png",
	string(render.FormatPDF): "application/pdf",
}

// handleBubbleMap renders a bubble map for one token and streams the
// artifact back.
//
// Query parameters: token, chain (required); format (svg|png|pdf, default
// svg); width, height, scale, ticks, seed, grid, refresh (optional).
func (s *Server) handleBubbleMap(w http.ResponseWriter, r *http.Request) {
	opts := s.optionsFromQuery(r)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	start := time.Now()
	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.metrics.observeRender(opts.Formats[0], time.Since(start))
	s.metrics.observeCache(result.CacheInfo)

	if s.store != nil && !result.CacheInfo.MapHit {
		s.archive(result)
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("Cache-Control", "public, max-age=900")
	_, _ = w.Write(result.Artifacts[format])
}

// metadataResponse is the JSON body for GET /map-metadata.
type metadataResponse struct {
	Chain        string `json:"chain"`
	TokenAddress string `json:"token_address"`
	FullName     string `json:"full_name,omitempty"`
	Symbol       string `json:"symbol,omitempty"`
	UpdatedAt    string `json:"dt_update,omitempty"`
	Holders      int    `json:"holders"`
	Links        int    `json:"links"`
	MapHash      string `json:"map_hash"`
	Cached       bool   `json:"cached"`

	// Identified supply shares, in percent of total supply.
	SupplyInContracts float64 `json:"supply_in_contracts"`
	SupplyInExchanges float64 `json:"supply_in_exchanges"`

	// Archived reports that the upstream fetch failed and the response
	// was served from the map archive instead.
	Archived bool `json:"archived,omitempty"`
}

// supplyShares sums the supply percentages held by contracts and exchanges.
func supplyShares(nodes []mapdata.Node) (contracts, exchanges float64) {
	for _, n := range nodes {
		if n.IsExchange {
			exchanges += n.Percentage
		} else if n.IsContract {
			contracts += n.Percentage
		}
	}
	return contracts, exchanges
}

// handleMapMetadata returns document-level metadata without rendering.
func (s *Server) handleMapMetadata(w http.ResponseWriter, r *http.Request) {
	opts := s.optionsFromQuery(r)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc, hit, err := s.runner.FetchWithCacheInfo(r.Context(), opts)
	if err != nil {
		if archived, ok := s.archivedMetadata(r.Context(), opts, err); ok {
			writeJSON(w, http.StatusOK, archived)
			return
		}
		s.writeError(w, r, err)
		return
	}

	data, err := doc.Marshal()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := metadataFor(doc)
	resp.MapHash = cache.Hash(data)
	resp.Cached = hit
	writeJSON(w, http.StatusOK, resp)
}

// metadataFor builds the metadata body from a map document.
func metadataFor(doc *mapdata.Document) metadataResponse {
	contracts, exchanges := supplyShares(doc.Nodes)
	return metadataResponse{
		Chain:             doc.Chain,
		TokenAddress:      doc.TokenAddress,
		FullName:          doc.FullName,
		Symbol:            doc.Symbol,
		UpdatedAt:         doc.UpdatedAt,
		Holders:           len(doc.Nodes),
		Links:             len(doc.Links),
		SupplyInContracts: contracts,
		SupplyInExchanges: exchanges,
	}
}

// archivedMetadata serves metadata from the map archive when the upstream
// fetch failed transiently. Validation and not-found errors still propagate.
func (s *Server) archivedMetadata(ctx context.Context, opts pipeline.Options, fetchErr error) (metadataResponse, bool) {
	if s.store == nil {
		return metadataResponse{}, false
	}
	if !errors.Is(fetchErr, errors.ErrCodeNetwork) && !errors.Is(fetchErr, errors.ErrCodeTimeout) {
		return metadataResponse{}, false
	}

	record, err := s.store.Latest(ctx, opts.Chain, opts.Token)
	if err != nil {
		s.logger.Warn("archive lookup failed",
			"chain", opts.Chain, "token", opts.Token, "err", err)
		return metadataResponse{}, false
	}

	resp := metadataFor(&record.Document)
	resp.MapHash = record.MapHash
	resp.Archived = true
	return resp, true
}

// historyEntry is one archived fetch in the /map-history response.
type historyEntry struct {
	MapHash   string    `json:"map_hash"`
	FetchedAt time.Time `json:"fetched_at"`
	Holders   int       `json:"holders"`
}

// handleMapHistory lists archived fetches for a token, most recent first.
func (s *Server) handleMapHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "map archive is not enabled"))
		return
	}

	opts := s.optionsFromQuery(r)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	records, err := s.store.History(r.Context(), opts.Chain, opts.Token, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries := make([]historyEntry, len(records))
	for i, rec := range records {
		entries[i] = historyEntry{MapHash: rec.MapHash, FetchedAt: rec.FetchedAt, Holders: rec.Holders}
	}
	writeJSON(w, http.StatusOK, struct {
		Chain        string         `json:"chain"`
		TokenAddress string         `json:"token_address"`
		History      []historyEntry `json:"history"`
	}{opts.Chain, opts.Token, entries})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// archive stores a freshly fetched document in the map archive. Failures
// are logged, never surfaced to the caller.
func (s *Server) archive(result *pipeline.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.store.Archive(ctx, result.Document, result.MapHash); err != nil {
		s.logger.Warn("map archive failed",
			"chain", result.Document.Chain,
			"token", result.Document.TokenAddress,
			"err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError maps pipeline error codes onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(errors.GetCode(err))
	reqID := requestIDFrom(r.Context())

	s.logger.Error("request failed",
		"path", r.URL.Path,
		"code", errors.GetCode(err),
		"status", status,
		"request_id", reqID,
		"err", err)
	s.metrics.observeError(errors.GetCode(err))

	writeJSON(w, status, errorResponse{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: reqID,
	})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidChain,
		errors.ErrCodeInvalidAddress, errors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errors.ErrCodeUpstreamAccess:
		return http.StatusForbidden
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeInsufficientData, errors.ErrCodeInvalidMapData:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	case errors.ErrCodeNetwork, errors.ErrCodeTimeout:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
