package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tokenviz/bubblegraph/pkg/pipeline"
)

// renderCommand creates the render command for generating bubble maps.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render <token-address>",
		Short: "Render a token-holder bubble map",
		Long: `Render a token-holder bubble map.

The render command fetches the holder map for a token, lays out the holders
with a seeded force simulation, and renders the result as SVG, PNG, or PDF.

Results are cached locally for faster subsequent runs. Use --refresh to
force a fresh fetch from the upstream provider.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Token = args[0]
			opts.Formats = parseFormats(formatsStr)
			return c.runRender(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and fetch fresh data")

	// Fetch flags
	cmd.Flags().StringVar(&opts.Chain, "chain", "", "blockchain network (interactive picker when omitted)")

	// Layout flags
	cmd.Flags().Float64Var(&opts.Width, "width", pipeline.DefaultWidth, "canvas width in pixels")
	cmd.Flags().Float64Var(&opts.Height, "height", pipeline.DefaultHeight, "canvas height in pixels")
	cmd.Flags().BoolVar(&opts.Grid, "grid", false, "draw a background grid")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "simulation tick budget (0 uses the default)")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "layout seed (0 derives it from chain and token)")

	// Render flags
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf (comma-separated)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "raster scale factor for PNG output")

	return cmd
}

// runRender executes the full pipeline and writes the resulting artifacts.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	if opts.Chain == "" {
		chain, err := pickChain()
		if err != nil {
			return err
		}
		opts.Chain = chain
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.Token))
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Rendering failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	printSuccess("Rendered %s", result.Document.Title())
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.SceneHit)
	if result.Fallback {
		printWarning("Artifact conversion failed, wrote the fallback scene instead")
	}

	return writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		token:     opts.Token,
		output:    output,
	})
}

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	token     string
	output    string
}

// writeArtifacts writes rendered artifacts to disk. A single format goes to
// the output path (or <token>.<format> when no output is given); multiple
// formats share a base path and get per-format extensions.
func writeArtifacts(p artifactWriteParams) error {
	if len(p.formats) == 1 {
		format := p.formats[0]
		path := p.output
		if path == "" {
			path = p.token + "." + format
		}
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		printFile(path)
		return nil
	}

	base := artifactBasePath(p.output, p.token)
	for _, format := range p.formats {
		path := base + "." + format
		if err := writeFile(path, p.artifacts[format]); err != nil {
			return err
		}
		printFile(path)
	}
	return nil
}

// artifactBasePath derives the base output path for multi-format output.
// A known format extension on the output path is stripped so that
// "map.svg" with formats svg,png yields map.svg and map.png.
func artifactBasePath(output, token string) string {
	if output == "" {
		return token
	}
	ext := strings.TrimPrefix(filepath.Ext(output), ".")
	switch ext {
	case "svg", "png", "pdf":
		return strings.TrimSuffix(output, "."+ext)
	}
	return output
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = out.Write(data)
	return err
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{"svg"}
	}
	return strings.Split(s, ",")
}
