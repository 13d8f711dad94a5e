package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rpggio/carelog/internal/domain/activity"
	"github.com/rpggio/carelog/internal/domain/audit"
	"github.com/spf13/cobra"
)

func newAuditCmd(opts *rootOptions) *cobra.Command {
	var (
		childID string
		kind    string
		limit   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent creates, edits and deletions",
		Long: `Show the audit feed, newest first.

EXAMPLES:

  carelog audit                        # Last 100 changes across all children
  carelog audit --child c1 -n 20       # One child
  carelog audit --kind delete          # Only deletions
  carelog audit --json                 # Machine-readable`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(os.Stderr)
			if err != nil {
				return err
			}
			entries, err := a.audit.List(cmd.Context(), audit.Filter{
				ChildID:  childID,
				EditKind: activity.EditKind(kind),
			}, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(out, "No audit entries found.")
				return nil
			}

			loc := a.activities.Location()
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tKIND\tCHILD\tCATEGORY\tBY\tNOTES")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.In(loc).Format("2006-01-02 15:04"),
					e.EditKind,
					e.ChildName,
					e.Category,
					e.ActorLabel,
					truncate(e.Notes, 40),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&childID, "child", "", "only this child")
	cmd.Flags().StringVar(&kind, "kind", "", "only this edit kind (create, update, delete)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max entries (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
