package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/minbump/pkg/resolve"
)

// Options configures closure rendering.
type Options struct {
	// Highlight fills every occurrence of this package name, typically the
	// dependency being bumped.
	Highlight string

	// Title is drawn above the graph when set.
	Title string
}

// ToDOT converts a dependency closure to Graphviz DOT. Nodes are
// name@specifier members; the root is drawn bold and the highlighted
// package filled. Edges from a ranged member to its own published versions
// (range expansion) are drawn dashed.
func ToDOT(c *resolve.Closure, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  labelloc=t;\n  label=%q;\n", opts.Title)
	}
	buf.WriteString("\n")

	for _, p := range c.Members {
		fmt.Fprintf(&buf, "  %q [%s];\n", p.String(), strings.Join(nodeAttrs(c, p, opts), ", "))
	}

	buf.WriteString("\n")
	for _, e := range c.Edges {
		if e.From.Name == e.To.Name {
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", e.From.String(), e.To.String())
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From.String(), e.To.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(c *resolve.Closure, p resolve.Package, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", p.Name+"\n"+p.Version)}
	switch {
	case p == c.Root:
		attrs = append(attrs, "penwidth=2", "fontname=\"Helvetica-Bold\"")
	case opts.Highlight != "" && p.Name == opts.Highlight:
		attrs = append(attrs, "fillcolor=\"#ffd54f\"")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from its origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
