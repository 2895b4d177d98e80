// Package pipeline provides the core bubble-map pipeline shared by the CLI
// and the HTTP service.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: retrieve the MapData document for a token from the upstream
//     provider
//  2. Compose: load and filter the holder graph, run the force layout, and
//     compose the vector scene
//  3. Render: convert the scene into the requested artifact formats
//     (SVG, PNG, PDF)
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage result is cached independently.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Token:   "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984",
//	    Chain:   "ethereum",
//	    Formats: []string{"png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts["png"]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tokenviz/bubblegraph/pkg/cache"
	"github.com/tokenviz/bubblegraph/pkg/errors"
	"github.com/tokenviz/bubblegraph/pkg/graph"
	"github.com/tokenviz/bubblegraph/pkg/layout"
	"github.com/tokenviz/bubblegraph/pkg/mapdata"
	"github.com/tokenviz/bubblegraph/pkg/render"
	"github.com/tokenviz/bubblegraph/pkg/render/bubble"
)

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 800.0

	// DefaultScale is the default raster scale factor (2x resolution).
	DefaultScale = 2.0
)

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Token   string `json:"token"`
	Chain   string `json:"chain"`
	Refresh bool   `json:"refresh,omitempty"`

	// Graph options. Denylist nil means the default exchange denylist;
	// an explicit empty slice disables name-based filtering.
	Denylist []string `json:"denylist,omitempty"`

	// Layout and composition options
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
	Grid   bool    `json:"grid,omitempty"`
	Ticks  int     `json:"ticks,omitempty"`
	Seed   uint64  `json:"seed,omitempty"` // zero derives the seed from chain+token

	// Render options
	Formats []string `json:"formats,omitempty"`
	Scale   float64  `json:"scale,omitempty"`

	// Runtime options (not serialized)
	Sim      layout.Config `json:"-"`
	Encoding bubble.Config `json:"-"`
	Logger   *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the fetched MapData document.
	Document *mapdata.Document

	// Graph is the filtered holder graph with layout positions applied.
	Graph *graph.Graph

	// MapHash is the content hash of the fetched document.
	MapHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Fallback reports that artifact rendering failed and the artifacts
	// contain the simplified error scene instead of the bubble map.
	Fallback bool

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount  int // nodes surviving the filter
	EdgeCount  int
	FetchTime  time.Duration
	SceneTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	MapHit    bool // fetched document came from cache
	SceneHit  bool // composed scene came from cache
	RenderHit bool // all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Token == "" {
		return errors.New(errors.ErrCodeInvalidInput, "token is required")
	}
	chain, err := mapdata.NormalizeChain(o.Chain)
	if err != nil {
		return err
	}
	o.Chain = chain
	if err := errors.ValidateTokenAddress(o.Token); err != nil {
		return err
	}

	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Seed == 0 {
		o.Seed = layout.Seed(o.Token, o.Chain)
	}

	o.Sim = o.Sim.WithDefaults()
	if o.Ticks > 0 {
		o.Sim.Ticks = o.Ticks
	}
	o.Ticks = o.Sim.Ticks

	if len(o.Formats) == 0 {
		o.Formats = []string{string(render.FormatSVG)}
	}
	for i, f := range o.Formats {
		format, err := render.ParseFormat(f)
		if err != nil {
			return err
		}
		o.Formats[i] = string(format)
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// denylist resolves the effective node-name denylist.
func (o *Options) denylist() []string {
	if o.Denylist == nil {
		return graph.DefaultDenylist
	}
	return o.Denylist
}

// SceneKeyOpts returns cache key options for scene composition.
func (o *Options) SceneKeyOpts() cache.SceneKeyOpts {
	return cache.SceneKeyOpts{
		Width:  o.Width,
		Height: o.Height,
		Grid:   o.Grid,
		Ticks:  o.Ticks,
		Seed:   o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Scale:  o.Scale,
	}
}
