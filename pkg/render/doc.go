// Package render draws dependency closures as node-link diagrams.
//
// [ToDOT] turns a [resolve.Closure] into Graphviz DOT, and [RenderSVG] lays
// it out with the embedded Graphviz (no system install needed):
//
//	c, _ := session.Closure(ctx, "express", "4.17.1", false)
//	dot := render.ToDOT(c, render.Options{Highlight: "qs"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// The root is drawn bold, every member named by Options.Highlight is filled,
// and range-expansion edges are dashed.
//
// [resolve.Closure]: github.com/matzehuels/minbump/pkg/resolve.Closure
package render
