package cmd

import (
	"fmt"

	"github.com/pastries/pastries/pkg/config"
	"github.com/pastries/pastries/pkg/installer"
	"github.com/pastries/pastries/pkg/ui"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update [name|all]",
		Short: "Refresh dependencies from their sources",
		Long:  "Updates the named dependency, or every dependency when the name is omitted or \"all\", according to each update policy.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runUpdate,
	}
}

func runUpdate(cmd *cobra.Command, args []string) error {
	name := config.All
	if len(args) == 1 {
		name = args[0]
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	deps, err := reg.Select(name)
	if err != nil {
		return err
	}
	if len(deps) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dependencies")
		return nil
	}

	out := cmd.OutOrStdout()
	results := newInstaller().UpdateAll(cmd.Context(), deps, func(r installer.Result) {
		fmt.Fprintln(out, ui.Result(r))
	})

	failed := 0
	for _, r := range results {
		if r.Outcome == installer.Failed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d dependencies failed to update", failed, len(results))
	}
	return nil
}
