package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minbump/pkg/errors"
	"github.com/matzehuels/minbump/pkg/version"
)

// versionsCommand creates the versions command.
func (c *CLI) versionsCommand() *cobra.Command {
	var (
		opts       registryOpts
		satisfying string
	)

	cmd := &cobra.Command{
		Use:   "versions <package>",
		Short: "List published versions of a package",
		Long: `List the published versions of a package in ascending order.

With --satisfying, only versions admitted by the range are listed and the
version the range pins to (its lowest match) is marked.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVersions(cmd.Context(), args[0], satisfying, opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&satisfying, "satisfying", "s", "", "only show versions matching this range")

	return cmd
}

func (c *CLI) runVersions(ctx context.Context, name, spec string, opts registryOpts) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}
	if spec != "" {
		if err := errors.ValidateSpecifier(spec); err != nil {
			return err
		}
	}

	session, closeSession, err := c.newSession(ctx, opts, nil)
	if err != nil {
		return err
	}
	defer closeSession()

	versions, err := session.Versions(ctx, name)
	if err != nil {
		return fmt.Errorf("versions %s: %w", name, err)
	}
	if len(versions) == 0 {
		printWarning("%s has no published versions", name)
		return nil
	}

	pinned := ""
	if spec != "" {
		versions = version.Filter(spec, versions)
		pinned = version.Resolve(spec, versions)
		if len(versions) == 0 {
			printWarning("No version of %s satisfies %s", name, spec)
			return nil
		}
	}

	for _, v := range versions {
		if v == pinned {
			fmt.Println(StyleHighlight.Render(v) + " " + StyleDim.Render("← "+spec))
			continue
		}
		fmt.Println(v)
	}
	printDetail("%d versions", len(versions))
	return nil
}
