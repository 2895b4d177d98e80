package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tokenviz/bubblegraph/pkg/graph"
	"github.com/tokenviz/bubblegraph/pkg/pipeline"
	"github.com/tokenviz/bubblegraph/pkg/render/nodelink"
)

// fetchCommand creates the fetch command for downloading raw map documents.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		output   string
		noCache  bool
		asGraph  bool
		asDOT    bool
		detailed bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "fetch <token-address>",
		Short: "Fetch a token's raw map document",
		Long: `Fetch a token's raw map document.

The fetch command downloads the MapData document for a token and writes it
as JSON to the output file (or stdout). Use --graph to export the filtered
holder graph instead, or --dot to export it in Graphviz DOT format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Token = args[0]
			return c.runFetch(cmd.Context(), opts, output, noCache, asGraph, asDOT, detailed)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&opts.Chain, "chain", "eth", "blockchain network")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "bypass the cache and fetch fresh data")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&asGraph, "graph", false, "export the filtered holder graph as JSON")
	cmd.Flags().BoolVar(&asDOT, "dot", false, "export the filtered holder graph in DOT format (rendered via Graphviz when -o ends in .svg or .png)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include balances and volumes in DOT labels")

	return cmd
}

// runFetch downloads the document and writes the requested representation.
func (c *CLI) runFetch(ctx context.Context, opts pipeline.Options, output string, noCache, asGraph, asDOT, detailed bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	doc, cached, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	out, err := openOutput(output)
	if err != nil {
		return err
	}
	defer out.Close()

	switch {
	case asDOT:
		g, err := runner.BuildGraph(doc, opts)
		if err != nil {
			return err
		}
		dot := nodelink.ToDOT(g, nodelink.Options{Detailed: detailed})
		data, err := dotArtifact(ctx, dot, output)
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	case asGraph:
		g, err := runner.BuildGraph(doc, opts)
		if err != nil {
			return err
		}
		if err := graph.Write(g, out); err != nil {
			return err
		}
	default:
		data, err := doc.Marshal()
		if err != nil {
			return err
		}
		if _, err := out.Write(data); err != nil {
			return err
		}
	}

	if output != "" {
		printSuccess("Fetched %s", doc.Title())
		printStats(len(doc.Nodes), len(doc.Links), cached)
		printFile(output)
		printNextStep("Render it", fmt.Sprintf("%s render %s --chain %s", appName, opts.Token, opts.Chain))
	}
	return nil
}

// dotArtifact converts DOT text for the output path: .svg and .png paths
// get a rendered diagram via Graphviz, anything else gets the DOT source.
func dotArtifact(ctx context.Context, dot, output string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(output)) {
	case ".svg":
		return nodelink.RenderSVG(ctx, dot)
	case ".png":
		return nodelink.RenderPNG(ctx, dot, 2.0)
	default:
		return []byte(dot), nil
	}
}
