package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/pastries/pastries/pkg/store"
	"github.com/pastries/pastries/pkg/ui"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tracked dependencies",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}
}

func runList(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	if len(reg.Dependencies) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No dependencies")
		return nil
	}

	st := store.New(flagDir)
	rows := make([][]string, 0, len(reg.Dependencies))
	for _, d := range reg.Dependencies {
		size := "-"
		if info, err := st.Stat(d.Path); err == nil && info.Mode().IsRegular() {
			size = humanize.Bytes(uint64(info.Size()))
		}
		src := d.URI
		if d.Local {
			src += " (local)"
		}
		rows = append(rows, []string{d.Name, d.Path, src, d.Update.String(), size})
	}

	return ui.RenderTable(cmd.OutOrStdout(), []string{"Name", "File path", "Source", "Update", "Size"}, rows)
}
