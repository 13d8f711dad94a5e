package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rpggio/carelog/internal/sqlite"
	"github.com/spf13/cobra"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	var childID string

	cmd := &cobra.Command{
		Use:   "import [FILE]",
		Short: "Import exported activity documents",
		Long: `Import activity documents exported from the previous document store.

Documents are read as a JSON stream (one per line or concatenated) from FILE,
or from stdin when FILE is "-" or omitted. Both the path-keyed shape
(children/{child}/activities/{date}_{category}/items/{id}) and flat documents
with a childId field are accepted. Documents under an item's editHistory
(.../items/{id}/editHistory/{historyID}) become audit history entries.
Original timestamps and authors are kept. Documents already imported are
skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(os.Stderr)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			stats, err := a.activityStore.ImportLegacy(cmd.Context(), in, sqlite.LegacyOptions{
				ChildID:  childID,
				Location: a.activities.Location(),
			}, a.logger)
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d, failed %d\n", stats.Imported, stats.Skipped, stats.Failed)
			return err
		},
	}
	cmd.Flags().StringVar(&childID, "child", "", "child id for documents that carry none")
	return cmd
}
