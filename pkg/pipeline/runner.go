package pipeline

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tokenviz/bubblegraph/pkg/cache"
	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/graph"
	"github.com/tokenviz/bubblegraph/pkg/layout"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
	"github.com/tokenviz/bubblegraph/pkg/render"
	"github.com/tokenviz/bubblegraph/pkg/render/bubble"
	"github.com/tokenviz/bubblegraph/pkg/render/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, client, and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Client *mapdata.Client
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Client: mapdata.NewClient(mapdata.DefaultBaseURL),
		Logger: logger,
	}
}

// Execute runs the complete fetch → compose → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	doc, mapHit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Document = doc
	result.Stats.FetchTime = time.Since(fetchStart)
	result.CacheInfo.MapHit = mapHit

	docData, err := doc.Marshal()
	if err != nil {
		return nil, err
	}
	result.MapHash = cache.Hash(docData)

	r.Logger.Info("fetched map data",
		"chain", opts.Chain,
		"token", opts.Token,
		"holders", len(doc.Nodes),
		"cached", mapHit,
		"duration", result.Stats.FetchTime)

	// Stage 2: Graph + layout + composition. The filter runs before the
	// cache lookup so a fully denylisted holder set fails the same way on
	// hits and misses.
	sceneStart := time.Now()
	g, err := r.BuildGraph(doc, opts)
	if err != nil {
		return nil, err
	}
	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	svg, sceneHit, err := r.ComposeSceneWithCacheInfo(ctx, g, doc, result.MapHash, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.SceneTime = time.Since(sceneStart)
	result.CacheInfo.SceneHit = sceneHit

	r.Logger.Info("composed scene",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cached", sceneHit,
		"duration", result.Stats.SceneTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, svg, opts)
	if errors.Is(err, errors.ErrCodeRender) {
		// One recovery attempt with the simplified error scene. Results are
		// deliberately not cached.
		r.Logger.Warn("artifact rendering failed, trying fallback scene", "err", err)
		fb := scene.ToSVG(bubble.FallbackScene(opts.Width, opts.Height, errors.UserMessage(err)))
		artifacts, err = renderFormats(fb, opts)
		if err == nil {
			result.Fallback = true
		}
	}
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts",
		"formats", opts.Formats,
		"fallback", result.Fallback,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// FetchWithCacheInfo retrieves the MapData document with caching and
// reports whether it was a cache hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) (*mapdata.Document, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.MapKey(opts.Chain, opts.Token)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if doc, err := mapdata.Unmarshal(data); err == nil {
				return doc, true, nil
			}
		}
	}

	doc, err := r.Client.FetchMap(ctx, opts.Token, opts.Chain)
	if err != nil {
		return nil, false, err
	}

	if data, err := doc.Marshal(); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLMap)
	}

	return doc, false, nil
}

// Fetch is a convenience wrapper that discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) (*mapdata.Document, error) {
	doc, _, err := r.FetchWithCacheInfo(ctx, opts)
	return doc, err
}

// BuildGraph loads the holder graph from a document and applies the
// exchange filter. It fails with an insufficient-data error when filtering
// removes every holder, before any layout work happens.
func (r *Runner) BuildGraph(doc *mapdata.Document, opts Options) (*graph.Graph, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	g, err := graph.FromDocument(doc)
	if err != nil {
		return nil, err
	}
	filtered, err := graph.Filter(g, opts.denylist())
	if err != nil {
		return nil, err
	}

	r.Logger.Debug("filtered holder graph",
		"original_nodes", g.NodeCount(),
		"filtered_nodes", filtered.NodeCount())
	return filtered, nil
}

// ComposeSceneWithCacheInfo runs layout, encoding, and composition, returning
// the scene as SVG bytes plus cache hit info. The graph's node positions are
// populated as a side effect on cache misses only.
func (r *Runner) ComposeSceneWithCacheInfo(ctx context.Context, g *graph.Graph, doc *mapdata.Document, mapHash string, opts Options) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.SceneKey(mapHash, opts.SceneKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			return data, true, nil
		}
	}

	svg, err := r.composeScene(g, doc, opts)
	if err != nil {
		return nil, false, err
	}

	_ = r.Cache.Set(ctx, cacheKey, svg, cache.TTLScene)
	return svg, false, nil
}

// composeScene is the uncached layout → encode → compose path.
func (r *Runner) composeScene(g *graph.Graph, doc *mapdata.Document, opts Options) ([]byte, error) {
	encoder := bubble.NewEncoder(opts.Encoding)

	// Collision resolution needs final radii, so the radius scale runs
	// before the simulation.
	radii := encoder.Radii(g)
	sim := layout.New(opts.Sim)
	if err := sim.Run(g, radii, opts.Width, opts.Height, opts.Seed); err != nil {
		return nil, err
	}

	visuals := encoder.Encode(g)
	meta := bubble.Meta{
		Title:    doc.Title(),
		Subtitle: mapdata.ChainLabel(opts.Chain),
		Chain:    opts.Chain,
	}
	composed, err := bubble.Compose(g, visuals, meta, bubble.ComposeOptions{
		Width:  opts.Width,
		Height: opts.Height,
		Grid:   opts.Grid,
	})
	if err != nil {
		return nil, err
	}
	return scene.ToSVG(composed), nil
}

// RenderWithCacheInfo converts scene SVG into the requested artifact
// formats with per-format caching.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, svg []byte, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	sceneHash := cache.Hash(svg)

	artifacts := make(map[string][]byte, len(opts.Formats))
	allCached := true
	if opts.Refresh {
		allCached = false
	} else {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
				artifacts[format] = data
			} else {
				allCached = false
				break
			}
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := renderFormats(svg, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(sceneHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// renderFormats converts scene SVG into every requested format.
func renderFormats(svg []byte, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		switch render.Format(format) {
		case render.FormatSVG:
			artifacts[format] = svg
		case render.FormatPNG:
			data, err := render.ToPNG(svg, opts.Scale)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		case render.FormatPDF:
			data, err := render.ToPDF(svg)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format %q", format)
		}
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
