package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func newCategoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "List, rename or delete categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := a.svc.ListCategories()
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), categories, func(w io.Writer) {
				for _, c := range categories {
					fmt.Fprintln(w, c)
				}
			})
		},
	}

	rename := &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Move every item in a category to a new category name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.svc.RenameCategory(args[0], args[1])
			if err != nil {
				return err
			}
			if n == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to rename")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category renamed from %q to %q\n", args[0], args[1])
			return nil
		},
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a category and every item in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			n, err := a.svc.DeleteCategory(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Category %q and %d items deleted\n", args[0], n)
			return nil
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm deleting the category's items")

	cmd.AddCommand(list, rename, del)
	return cmd
}
