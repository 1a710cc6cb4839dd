package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/pastries/pastries/pkg/config"
	"github.com/pastries/pastries/pkg/ui"
	"github.com/spf13/cobra"
)

func newRemoveCmd() *cobra.Command {
	removeCmd := &cobra.Command{
		Use:   "remove [name]",
		Short: "Remove dependencies and their files",
		Long:  "Deletes the file of each selected dependency and drops it from the registry. Without a name, prompts for a selection.",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRemove,
	}

	removeCmd.Flags().Bool("all", false, "remove every dependency without prompting")
	return removeCmd
}

func runRemove(cmd *cobra.Command, args []string) error {
	path := registryPath()
	reg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	var names []string
	if len(args) == 1 {
		if _, ok := reg.Get(args[0]); !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Dependency %q not found\n", args[0])
			return nil
		}
		names = []string{args[0]}
	} else {
		if len(reg.Dependencies) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to remove")
			return nil
		}

		all, err := cmd.Flags().GetBool("all")
		if err != nil {
			return err
		}
		if all {
			names = reg.Names()
		} else {
			names, err = promptRemove(reg)
			if err != nil {
				return err
			}
		}
		if len(names) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing selected")
			return nil
		}
	}

	// Entries are dropped only once their file is gone, and the registry is
	// saved even when some deletions fail so it matches the disk.
	inst := newInstaller()
	var errs []error
	removed := 0
	for _, name := range names {
		dep, _ := reg.Get(name)
		if err := inst.Remove(dep); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", name, err))
			continue
		}
		reg.Remove(name)
		removed++
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", ui.Removed(), name)
	}

	if removed > 0 {
		if err := config.SaveFile(path, reg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// promptRemove uses huh to present a multi-select of dependency names.
func promptRemove(reg *config.Registry) ([]string, error) {
	options := make([]huh.Option[string], len(reg.Dependencies))
	for i, d := range reg.Dependencies {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", d.Name, d.Path), d.Name)
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select dependencies to remove").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("selection prompt failed: %w", err)
	}
	return selected, nil
}
