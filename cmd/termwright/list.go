package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"go.alt-gnome.ru/termwright/scenariofile"
)

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List scenarios in the config directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := scenariofile.SearchDir()
			entries, err := os.ReadDir(dir)
			if os.IsNotExist(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "no scenarios in %s\n", dir)
				return nil
			}
			if err != nil {
				return err
			}
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".yml") {
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, e.Name()))
			}
			return nil
		},
	}
}
