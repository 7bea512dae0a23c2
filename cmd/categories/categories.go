// Package categories contains the category commands.
package categories

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"financemonkey/fm-cli/cmd/root"
	"financemonkey/fm-cli/internal/forms"
	"financemonkey/fm-cli/internal/guard"
	"financemonkey/fm-cli/internal/models"
	"financemonkey/fm-cli/internal/store"
	"financemonkey/fm-cli/internal/view"
)

// NewCommand builds the categories command group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "categories",
		Aliases:     []string{"cat"},
		Short:       "List, add, edit and delete categories",
		Annotations: root.Annotate(guard.RouteCategories),
	}
	cmd.AddCommand(newListCommand(), newAddCommand(), newEditCommand(), newDeleteCommand())
	return cmd
}

var categoryTable = view.Table[view.CategoryRow]{
	Headers: []string{"ID", "NAME", "PARENT", "DESCRIPTION", "COLOR"},
	Cells: func(r view.CategoryRow) []string {
		return []string{r.ID, r.IndentedName(), r.Parent, r.Description, r.Color}
	},
}

func load(cmd *cobra.Command, app *root.App) (*store.Categories, error) {
	cats := app.Container.GetStores().Categories
	st := cats.State()
	if err := app.Load(cmd.Context(), st.Fetched || st.FromSnapshot, cats.FetchAll); err != nil {
		return nil, root.Failed(cats.State().Error, err)
	}
	return cats, nil
}

func newListCommand() *cobra.Command {
	var (
		search    string
		rootsOnly bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories as a tree",
		Long:  `List categories with sub-categories under their parent. Search matches name and description and prints a flat list.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			cats, err := load(cmd, app)
			if err != nil {
				return err
			}

			all := cats.Items()
			var nodes []view.CategoryNode
			switch {
			case rootsOnly:
				nodes = view.CategoryTree(cats.Roots())
			case search != "":
				names := view.CategoryNames(all)
				for _, c := range view.FilterCategories(all, search) {
					nodes = append(nodes, view.CategoryNode{Category: c, ParentName: names[c.ParentCategoryID]})
				}
			default:
				nodes = view.CategoryTree(all)
			}

			raw := make([]models.Category, 0, len(nodes))
			for _, n := range nodes {
				raw = append(raw, n.Category)
			}
			table := categoryTable
			table.Footer = fmt.Sprintf("%d categories", len(nodes))
			return view.PrintList(app.Printer, raw, view.NewCategoryRows(nodes), table)
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search name and description")
	cmd.Flags().BoolVar(&rootsOnly, "roots", false, "Only list top-level categories")
	return cmd
}

func formFlags(flags *pflag.FlagSet, form *forms.CategoryForm) {
	flags.StringVarP(&form.Name, "name", "n", "", "Category name")
	flags.StringVarP(&form.Description, "description", "d", "", "Description")
	flags.StringVarP(&form.ParentCategoryID, "parent", "p", "", "Parent category id")
	flags.StringVar(&form.Color, "color", "", "Hex color such as #4caf50")
}

func printCategory(app *root.App, c models.Category, verb string) error {
	if app.Printer.Format != view.FormatTable {
		node := view.CategoryNode{Category: c}
		return view.PrintList(app.Printer, c, view.NewCategoryRows([]view.CategoryNode{node}), categoryTable)
	}
	app.Printer.Message("%s category %s (%s).", verb, c.Name, c.ID)
	return nil
}

func newAddCommand() *cobra.Command {
	var form forms.CategoryForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			c, err := form.ToCategory()
			if err != nil {
				return err
			}
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			cats := app.Container.GetStores().Categories
			created, err := cats.Create(cmd.Context(), c)
			if err != nil {
				return root.Failed(cats.State().Error, err)
			}
			return printCategory(app, created, "Added")
		},
	}
	formFlags(cmd.Flags(), &form)
	return cmd
}

func newEditCommand() *cobra.Command {
	var changes forms.CategoryForm
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a category; only the given flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			cats, err := load(cmd, app)
			if err != nil {
				return err
			}
			current, ok := cats.State().Find(args[0])
			if !ok {
				return fmt.Errorf("category %s not found", args[0])
			}

			form := forms.CategoryFormFrom(current)
			flags := cmd.Flags()
			if flags.Changed("name") {
				form.Name = changes.Name
			}
			if flags.Changed("description") {
				form.Description = changes.Description
			}
			if flags.Changed("parent") {
				form.ParentCategoryID = changes.ParentCategoryID
			}
			if flags.Changed("color") {
				form.Color = changes.Color
			}
			c, err := form.ToCategory()
			if err != nil {
				return err
			}

			updated, err := cats.Update(cmd.Context(), c)
			if err != nil {
				return root.Failed(cats.State().Error, err)
			}
			return printCategory(app, updated, "Updated")
		},
	}
	formFlags(cmd.Flags(), &changes)
	return cmd
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category without sub-categories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := root.FromCommand(cmd)
			if err := app.RequireOnline(cmd); err != nil {
				return err
			}
			cats, err := load(cmd, app)
			if err != nil {
				return err
			}
			if err := cats.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			app.Printer.Message("Deleted category %s.", args[0])
			return nil
		},
	}
}
