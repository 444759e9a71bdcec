package cli

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/minbump/pkg/errors"
	"github.com/matzehuels/minbump/pkg/lockfile"
	"github.com/matzehuels/minbump/pkg/resolve"
)

var errAborted = stderrors.New("selection aborted")

// updateOpts holds the flags for the update command.
type updateOpts struct {
	registryOpts
	lockfile    string
	manifest    string
	expand      bool
	interactive bool
	json        bool
}

// updateCommand creates the update command, the main entry point.
func (c *CLI) updateCommand() *cobra.Command {
	opts := updateOpts{}

	cmd := &cobra.Command{
		Use:   "update <dependency> <required-version> [dependent@version...]",
		Short: "Find the minimal update of each dependent that lifts a dependency",
		Long: `Find, for each dependent, the lowest version whose dependency closure
pulls <dependency> in at <required-version> or above.

Dependents are given as name@version arguments or discovered from a
yarn.lock: every top-level package whose locked tree contains <dependency>.

Examples:
  minbump update minimist 1.2.6 mkdirp@0.5.1 optimist@0.6.1
  minbump update minimist 1.2.6 --lockfile yarn.lock
  minbump update minimist 1.2.6 --lockfile yarn.lock --manifest package.json -i`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runUpdate(cmd.Context(), args[0], args[1], args[2:], opts)
		},
	}

	opts.registryOpts.register(cmd)
	cmd.Flags().StringVarP(&opts.lockfile, "lockfile", "l", "", "yarn.lock to discover dependents from")
	cmd.Flags().StringVarP(&opts.manifest, "manifest", "m", "", "package.json restricting dependents to its direct dependencies")
	cmd.Flags().BoolVar(&opts.expand, "expand-ranges", false, "consider every version a range admits, not just the lowest")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "choose dependents interactively")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print results as JSON")
	completeFiles(cmd, "lockfile", "lock")
	completeFiles(cmd, "manifest", "json")

	return cmd
}

func (c *CLI) runUpdate(ctx context.Context, dep, required string, refs []string, opts updateOpts) error {
	if err := errors.ValidatePackageName(dep); err != nil {
		return err
	}
	if err := errors.ValidateVersion(required); err != nil {
		return err
	}

	id := uuid.NewString()
	logger := c.Logger.With("run", id[:8])
	ctx = withLogger(ctx, logger)

	if len(refs) == 0 {
		if opts.lockfile == "" {
			return errors.New(errors.ErrCodeInvalidInput, "no dependents given: pass name@version arguments or --lockfile")
		}
		var err error
		if refs, err = lockfileDependents(ctx, dep, opts.lockfile, opts.manifest); err != nil {
			return err
		}
		if len(refs) == 0 {
			printInfo("Nothing in %s depends on %s", opts.lockfile, dep)
			return nil
		}
	}

	if opts.interactive {
		picked, err := pickRoots(refs)
		if err != nil {
			return err
		}
		refs = picked
	}

	roots, err := parseRoots(refs)
	if err != nil {
		return err
	}

	logger.Debug("resolving", "dependency", dep, "required", required, "dependents", len(roots), "expand", opts.expand)

	sp := newSpinner(ctx, fmt.Sprintf("Resolving %d dependents...", len(roots)))
	session, closeSession, err := c.newSession(ctx, opts.registryOpts, resolve.NewCounter(sp))
	if err != nil {
		return err
	}
	defer closeSession()

	prog := newProgress(logger)
	sp.Start()
	results, err := session.ListUpdate(ctx, opts.expand, roots, dep, required)
	if err != nil {
		sp.Fail("Resolution failed")
		return fmt.Errorf("update %s: %w", dep, err)
	}
	sp.Stop()

	st := session.Stats()
	prog.done(fmt.Sprintf("Resolved %d dependents", len(results)), "fetches", st.Fetches, "bad", st.BadPackages)

	if opts.json {
		return writeResultsJSON(id, dep, required, results)
	}
	printResults(dep, required, results)
	return nil
}

// lockfileDependents returns the dependents of dep recorded in a yarn.lock.
func lockfileDependents(ctx context.Context, dep, lockPath, manifestPath string) ([]string, error) {
	lf, err := lockfile.ReadFile(lockPath)
	if err != nil {
		return nil, err
	}
	var roots []string
	if manifestPath != "" {
		if roots, err = lockfile.ReadManifestRoots(manifestPath); err != nil {
			return nil, err
		}
	}
	refs := lf.Dependents(dep, roots)
	loggerFromContext(ctx).Debug("lockfile dependents", "file", lockPath, "count", len(refs))
	return refs, nil
}

// parseRoots splits and validates "name@version" arguments.
func parseRoots(refs []string) ([]resolve.Package, error) {
	roots := make([]resolve.Package, 0, len(refs))
	for _, ref := range refs {
		name, ver, err := lockfile.ParseRef(ref)
		if err != nil {
			return nil, err
		}
		if err := errors.ValidatePackageName(name); err != nil {
			return nil, err
		}
		if err := errors.ValidateSpecifier(ver); err != nil {
			return nil, err
		}
		roots = append(roots, resolve.Package{Name: name, Version: ver})
	}
	return roots, nil
}

func printResults(dep, required string, results []resolve.Result) {
	printSuccess("Minimal updates for %s ≥ %s", StyleHighlight.Render(dep), StyleNumber.Render(required))
	writeResultsTable(os.Stdout, dep, results)
}

type jsonResults struct {
	ID         string       `json:"id"`
	Dependency string       `json:"dependency"`
	Required   string       `json:"required"`
	Resolved   time.Time    `json:"resolved_at"`
	Results    []jsonResult `json:"results"`
}

type jsonResult struct {
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Effective string `json:"effective,omitempty"`
	Probes    int    `json:"probes"`
}

func writeResultsJSON(id, dep, required string, results []resolve.Result) error {
	out := jsonResults{
		ID:         id,
		Dependency: dep,
		Required:   required,
		Resolved:   time.Now().UTC(),
		Results:    make([]jsonResult, len(results)),
	}
	for i, r := range results {
		jr := jsonResult{Name: r.Name, Effective: r.Outcome.Effective, Probes: r.Outcome.Probes}
		if r.Outcome.NoFavourable {
			jr.Outcome = r.Outcome.String()
		} else {
			jr.Version = r.Outcome.Version
		}
		out.Results[i] = jr
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
