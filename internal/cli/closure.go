package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minbump/pkg/errors"
	"github.com/matzehuels/minbump/pkg/render"
	"github.com/matzehuels/minbump/pkg/resolve"
)

// Output formats for the closure command.
const (
	formatText = "text"
	formatJSON = "json"
	formatDOT  = "dot"
	formatSVG  = "svg"
)

// closureOpts holds the flags for the closure command.
type closureOpts struct {
	registryOpts
	expand    bool
	format    string
	output    string
	highlight string
}

// closureCommand creates the closure command.
func (c *CLI) closureCommand() *cobra.Command {
	opts := closureOpts{format: formatText}

	cmd := &cobra.Command{
		Use:   "closure <package> <version-or-range>",
		Short: "Show every package a release pulls in",
		Long: `Show the dependency closure of a package release: every (name, specifier)
pair reachable through declared dependencies.

With --expand-ranges, each range also contributes every published version
it admits, which is the set of installs the range could produce.

Examples:
  minbump closure express 4.17.1
  minbump closure express 4.17.1 --highlight qs
  minbump closure mkdirp ^0.5.0 --expand-ranges -f svg -o mkdirp.svg`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClosure(cmd.Context(), args[0], args[1], opts)
		},
	}

	opts.registryOpts.register(cmd)
	cmd.Flags().BoolVar(&opts.expand, "expand-ranges", false, "include every version each range admits")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, json, dot, svg")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVar(&opts.highlight, "highlight", "", "package name to highlight in dot/svg output")
	completeFixed(cmd, "format", formatText, formatJSON, formatDOT, formatSVG)

	return cmd
}

func (c *CLI) runClosure(ctx context.Context, name, spec string, opts closureOpts) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}
	if err := errors.ValidateSpecifier(spec); err != nil {
		return err
	}
	switch opts.format {
	case formatText, formatJSON, formatDOT, formatSVG:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unsupported format %q (want text, json, dot or svg)", opts.format)
	}

	session, closeSession, err := c.newSession(ctx, opts.registryOpts, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	sp := newSpinner(ctx, fmt.Sprintf("Walking %s@%s...", name, spec))
	sp.Start()
	prog := newProgress(c.Logger)
	cl, err := session.Closure(ctx, name, spec, opts.expand)
	if err != nil {
		sp.Fail("Closure failed")
		return fmt.Errorf("closure %s@%s: %w", name, spec, err)
	}
	sp.Stop()
	prog.done(fmt.Sprintf("Collected %d packages", cl.Len()))

	data, err := formatClosure(ctx, cl, opts)
	if err != nil {
		return err
	}
	return writeOutput(data, opts.output)
}

// formatClosure renders cl in the requested format.
func formatClosure(ctx context.Context, cl *resolve.Closure, opts closureOpts) ([]byte, error) {
	switch opts.format {
	case formatJSON:
		data, err := json.MarshalIndent(cl, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case formatDOT, formatSVG:
		dot := render.ToDOT(cl, render.Options{
			Title:     cl.Root.String(),
			Highlight: opts.highlight,
		})
		if opts.format == formatDOT {
			return []byte(dot), nil
		}
		return render.RenderSVG(ctx, dot)
	}
	return []byte(closureText(cl)), nil
}

// closureText lists members grouped by name, one line per name.
func closureText(cl *resolve.Closure) string {
	specs := make(map[string][]string)
	for _, p := range cl.Members {
		specs[p.Name] = append(specs[p.Name], p.Version)
	}
	names := make([]string, 0, len(specs))
	for n := range specs {
		names = append(names, n)
	}
	slices.Sort(names)

	var b strings.Builder
	for _, n := range names {
		fmt.Fprintf(&b, "%s %s\n", n, strings.Join(specs[n], ", "))
	}
	return b.String()
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(data []byte, path string) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}
