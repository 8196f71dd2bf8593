package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/goshop/internal/backup"
	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/shopping"
)

// The CLI has no long-lived cart. Commands that depend on cart state take
// the ids already collected via --in-cart.
func fillCart(a *app, ids []int64) error {
	for _, id := range ids {
		if a.svc.Cart().Has(id) {
			continue
		}
		if _, err := a.svc.ToggleCart(id); err != nil {
			return fmt.Errorf("item %d: %w", id, err)
		}
	}
	return nil
}

func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Work with the current shopping session",
	}

	var inCart []int64
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the items selected for shopping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fillCart(a, inCart); err != nil {
				return err
			}
			items, err := a.svc.ActiveItems()
			if err != nil {
				return err
			}
			progress := shopping.SessionProgress(items, a.svc.Cart().Has)
			groups := shopping.GroupByCategory(items)
			out := struct {
				Progress shopping.Progress     `json:"progress"`
				Groups   []model.CategoryGroup `json:"groups"`
			}{progress, groups}
			return a.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				if len(items) == 0 {
					fmt.Fprintln(w, "No items selected for shopping.")
					return
				}
				fmt.Fprintln(w, progress)
				fmt.Fprintln(w)
				for i, g := range groups {
					if i > 0 {
						fmt.Fprintln(w)
					}
					fmt.Fprintln(w, g.Name)
					for _, item := range g.Items {
						mark := "[ ]"
						if a.svc.Cart().Has(item.ID) {
							mark = "[x]"
						}
						fmt.Fprintf(w, "  %s %4d  %s\n", mark, item.ID, item.Name)
					}
				}
			})
		},
	}
	show.Flags().Int64SliceVar(&inCart, "in-cart", nil, "ids of items already in the cart")

	notes := &cobra.Command{
		Use:   "notes [item-id]",
		Short: "List session notes, optionally for one item",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var list []model.SessionNote
			var err error
			if len(args) == 1 {
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				list, err = a.svc.NotesForItem(id)
			} else {
				list, err = a.svc.SessionNotes()
			}
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), list, func(w io.Writer) {
				if len(list) == 0 {
					fmt.Fprintln(w, "No session notes.")
					return
				}
				for _, n := range list {
					fmt.Fprintf(w, "%4d  item %d: %s\n", n.ID, n.ItemID, n.Note)
				}
			})
		},
	}

	note := &cobra.Command{
		Use:   "note <item-id> <text>",
		Short: "Attach a note to an item for this session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := a.svc.AddSessionNote(id, args[1])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), n, func(w io.Writer) {
				fmt.Fprintf(w, "Note %d added\n", n.ID)
			})
		},
	}

	deleteNote := &cobra.Command{
		Use:   "delete-note <note-id>",
		Short: "Delete a session note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteSessionNote(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Note deleted")
			return nil
		},
	}

	var shareCart []int64
	share := &cobra.Command{
		Use:   "share",
		Short: "Print the remaining items as shareable text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fillCart(a, shareCart); err != nil {
				return err
			}
			text, err := a.svc.ShareSession()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
	share.Flags().Int64SliceVar(&shareCart, "in-cart", nil, "ids of items already in the cart")

	var exportCart []int64
	export := &cobra.Command{
		Use:   "export",
		Short: "Print the session list as a portable " + backup.SessionListTag + " string",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := fillCart(a, exportCart); err != nil {
				return err
			}
			s, err := a.svc.ExportSessionList()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	export.Flags().Int64SliceVar(&exportCart, "in-cart", nil, "ids of items already in the cart")

	complete := &cobra.Command{
		Use:   "complete",
		Short: "Finish shopping: deselect every item and clear notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := a.svc.CompleteSession()
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), summary, func(w io.Writer) {
				fmt.Fprintf(w, "Session completed: %d items deselected, %d notes cleared\n",
					summary.Deactivated, summary.NotesCleared)
			})
		},
	}

	cmd.AddCommand(show, notes, note, deleteNote, share, export, complete)
	return cmd
}
