package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukerupert/goshop/internal/model"
	"github.com/dukerupert/goshop/internal/shopping"
)

var errNotConfirmed = errors.New("refusing to continue without --yes")

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func activeMark(item model.Item) string {
	if item.IsActive {
		return "[x]"
	}
	return "[ ]"
}

func printGroups(w io.Writer, groups []model.CategoryGroup) {
	if len(groups) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	for i, g := range groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d)\n", g.Name, len(g.Items))
		for _, item := range g.Items {
			fmt.Fprintf(w, "  %s %4d  %s\n", activeMark(item), item.ID, item.Name)
		}
	}
}

func newItemCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage everyday items",
	}

	var category string
	var suggest bool
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if suggest && category == "" {
				category = a.svc.SuggestCategory(args[0])
			}
			item, err := a.svc.AddItem(args[0], category)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), item, func(w io.Writer) {
				fmt.Fprintf(w, "Item %q added to %q (id %d)\n", item.Name, item.Category, item.ID)
			})
		},
	}
	add.Flags().StringVarP(&category, "category", "c", "", "category (default: "+model.DefaultCategory+")")
	add.Flags().BoolVar(&suggest, "suggest", false, "guess the category from the name when --category is empty")

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List items grouped by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := a.svc.Search(query)
			if err != nil {
				return err
			}
			groups := shopping.GroupByCategory(items)
			return a.print(cmd.OutOrStdout(), groups, func(w io.Writer) {
				if query != "" {
					fmt.Fprintf(w, "Found %d item(s)\n\n", len(items))
				}
				printGroups(w, groups)
			})
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "only items whose name or category contains this text")

	var newName, newCategory string
	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename an item or move it to another category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.svc.Search("")
			if err != nil {
				return err
			}
			i := slices.IndexFunc(current, func(item model.Item) bool { return item.ID == id })
			if i < 0 {
				return shopping.ErrItemNotFound
			}
			name, cat := newName, newCategory
			if name == "" {
				name = current[i].Name
			}
			if cat == "" {
				cat = current[i].Category
			}
			item, err := a.svc.UpdateItem(id, name, cat)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), item, func(w io.Writer) {
				fmt.Fprintf(w, "Item %d is now %q in %q\n", item.ID, item.Name, item.Category)
			})
		},
	}
	update.Flags().StringVar(&newName, "name", "", "new name")
	update.Flags().StringVar(&newCategory, "category", "", "new category")

	toggle := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Select or deselect an item for shopping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			item, err := a.svc.ToggleActive(id)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), item, func(w io.Writer) {
				if item.IsActive {
					fmt.Fprintf(w, "%s selected for shopping\n", item.Name)
				} else {
					fmt.Fprintf(w, "%s removed from shopping list\n", item.Name)
				}
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.svc.DeleteItem(id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Item deleted")
			return nil
		},
	}

	var yes bool
	deleteAll := &cobra.Command{
		Use:   "delete-all",
		Short: "Delete every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errNotConfirmed
			}
			n, err := a.svc.DeleteAll()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d items deleted\n", n)
			return nil
		},
	}
	deleteAll.Flags().BoolVar(&yes, "yes", false, "confirm deleting every item")

	cmd.AddCommand(add, list, update, toggle, del, deleteAll,
		bulkActiveCmd(a, "select-all", "Select every matching item for shopping", true),
		bulkActiveCmd(a, "clear-all", "Deselect every matching item", false),
	)
	return cmd
}

func bulkActiveCmd(a *app, use, short string, active bool) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var n int64
			var err error
			if active {
				n, err = a.svc.SelectAll(query)
			} else {
				n, err = a.svc.ClearAll(query)
			}
			if err != nil {
				return err
			}
			if active {
				fmt.Fprintf(cmd.OutOrStdout(), "%d items selected\n", n)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%d items removed from shopping list\n", n)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "only items whose name or category contains this text")
	return cmd
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
