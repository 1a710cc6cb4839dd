package cmd

import (
	"fmt"

	"github.com/pastries/pastries/pkg/config"
	"github.com/pastries/pastries/pkg/installer"
	"github.com/pastries/pastries/pkg/project"
	"github.com/pastries/pastries/pkg/ui"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		dep       config.Dependency
		gitignore bool
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Track a dependency and fetch it",
		Long: `Adds a dependency to the registry and copies its content to --path.

--uri is an http(s):// or s3://bucket/key URI, or a filesystem path with --local.
Adding an existing name only changes its uri.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, dep, gitignore)
		},
	}

	addCmd.Flags().StringVar(&dep.Name, "name", "", "dependency name")
	addCmd.Flags().StringVar(&dep.URI, "uri", "", "source URI or local path")
	addCmd.Flags().StringVar(&dep.Path, "path", "", "target file path")
	addCmd.Flags().BoolVar(&dep.Local, "local", false, "treat --uri as a local filesystem path")
	addCmd.Flags().Var(config.NewPolicyFlag(&dep.Update), "update", "update policy")
	addCmd.Flags().BoolVar(&gitignore, "gitignore", false, "add the target path to .gitignore")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("uri")
	_ = addCmd.MarkFlagRequired("path")

	return addCmd
}

func runAdd(cmd *cobra.Command, dep config.Dependency, gitignore bool) error {
	path := registryPath()
	reg, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	stored := reg.Add(dep)

	res := newInstaller().Add(cmd.Context(), stored.URI, stored.Path, stored.Local)
	res.Name = stored.Name
	fmt.Fprintln(cmd.OutOrStdout(), ui.Result(res))
	if res.Outcome == installer.Failed {
		return &shownError{msg: fmt.Sprintf("adding %s failed", stored.Name), err: res.Err}
	}

	if err := config.SaveFile(path, reg); err != nil {
		return err
	}

	if gitignore {
		added, err := project.EnsureGitignore(flagDir, []string{stored.Path})
		if err != nil {
			return err
		}
		for _, entry := range added {
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to .gitignore\n", entry)
		}
	}
	return nil
}

// shownError is returned for failures whose details were already printed.
// Its message stays short; the cause is still reachable with errors.Is.
type shownError struct {
	msg string
	err error
}

func (e *shownError) Error() string { return e.msg }

func (e *shownError) Unwrap() error { return e.err }
