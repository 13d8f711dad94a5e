package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rpggio/carelog/internal/domain/child"
	"github.com/spf13/cobra"
)

func newChildrenCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "children",
		Aliases: []string{"child"},
		Short:   "Manage the child directory",
	}

	var id string
	add := &cobra.Command{
		Use:   "add FIRST [LAST...]",
		Short: "Enroll a child",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(os.Stderr)
			if err != nil {
				return err
			}
			c, err := a.children.Create(cmd.Context(), child.CreateRequest{
				ID:        id,
				FirstName: args[0],
				LastName:  strings.Join(args[1:], " "),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (ID: %s)\n", c.DisplayName(), c.ID)
			return nil
		},
	}
	add.Flags().StringVar(&id, "id", "", "child id (generated when omitted)")

	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List enrolled children",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := opts.open(os.Stderr)
			if err != nil {
				return err
			}
			children, err := a.children.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(children) == 0 {
				fmt.Fprintln(out, "No children found.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range children {
				fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.DisplayName())
			}
			return tw.Flush()
		},
	}

	remove := &cobra.Command{
		Use:     "remove ID",
		Aliases: []string{"rm"},
		Short:   "Remove a child from the directory",
		Long:    "Remove a child from the directory. Their activity records and history are kept.",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.open(os.Stderr)
			if err != nil {
				return err
			}
			if err := a.children.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}
