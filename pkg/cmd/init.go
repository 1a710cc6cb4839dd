package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/pastries/pastries/pkg/config"
	"github.com/pastries/pastries/pkg/project"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a pastries project",
		Long:  "Creates an empty registry, writes the resolved settings and configures .gitignore entries.",
		Args:  cobra.NoArgs,
		RunE:  runInit,
	}

	initCmd.Flags().BoolP("yes", "y", false, "add .gitignore entries without prompting")
	initCmd.Flags().Bool("global", false, "write settings to ~/.pastries/config.toml instead of the project")
	return initCmd
}

func runInit(cmd *cobra.Command, args []string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return err
	}
	global, err := cmd.Flags().GetBool("global")
	if err != nil {
		return err
	}

	if _, err := project.Init(flagDir, Settings.Registry); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", Settings.Registry)

	if global {
		if err := config.WriteGlobalSettings(Settings); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote global settings")
	} else {
		if err := config.WriteLocalSettings(flagDir, Settings); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.LocalSettingsFile)
	}

	if !yes {
		yes, err = confirmGitignore()
		if err != nil {
			return err
		}
	}
	if !yes {
		return nil
	}

	added, err := project.EnsureGitignore(flagDir, project.IgnoreEntries)
	if err != nil {
		return err
	}
	for _, entry := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to .gitignore\n", entry)
	}
	return nil
}

func confirmGitignore() (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Add local settings and staging files to .gitignore?").
				Value(&ok),
		),
	).Run()
	if err != nil {
		return false, fmt.Errorf("prompt failed: %w", err)
	}
	return ok, nil
}
