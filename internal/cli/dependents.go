package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/minbump/pkg/errors"
)

// dependentsCommand creates the dependents command.
func (c *CLI) dependentsCommand() *cobra.Command {
	var lockPath, manifestPath string

	cmd := &cobra.Command{
		Use:   "dependents <package>",
		Short: "List top-level packages in a yarn.lock that pull in a package",
		Long: `List every top-level package whose locked dependency tree contains
<package>, as name@version. These are the dependents 'update' resolves
when no arguments are given.

Top-level packages are the dependencies declared in --manifest, or every
lockfile entry nothing else depends on.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePackageName(args[0]); err != nil {
				return err
			}
			ctx := withLogger(cmd.Context(), c.Logger)
			refs, err := lockfileDependents(ctx, args[0], lockPath, manifestPath)
			if err != nil {
				return err
			}
			if len(refs) == 0 {
				printInfo("Nothing in %s depends on %s", lockPath, args[0])
				return nil
			}
			for _, ref := range refs {
				fmt.Println(ref)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&lockPath, "lockfile", "l", "yarn.lock", "yarn.lock to read")
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "package.json restricting results to its direct dependencies")
	completeFiles(cmd, "lockfile", "lock")
	completeFiles(cmd, "manifest", "json")

	return cmd
}
