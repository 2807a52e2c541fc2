package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mealweek/internal/core"
	"mealweek/internal/importer"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

var recipeFlags struct {
	typ       string
	text      string
	favorites bool
	search    string
}

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Manage the recipe library",
}

var recipeAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a recipe to the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := service.CreateRecipe(cmd.Context(), core.RecipeInput{
			Name:   args[0],
			Type:   recipeFlags.typ,
			Recipe: recipeFlags.text,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added recipe %s (%s)\n", r.Name, r.ID)
		return nil
	},
}

var recipeEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a recipe and every meal that carries its name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := service.Recipe(args[0])
		if err != nil {
			return err
		}
		in := core.RecipeInput{ID: current.ID, Name: current.Name, Type: string(current.Type), Recipe: current.Recipe}
		flags := cmd.Flags()
		if flags.Changed("name") {
			in.Name, _ = flags.GetString("name")
		}
		if flags.Changed("type") {
			in.Type = recipeFlags.typ
		}
		if flags.Changed("text") {
			in.Recipe = recipeFlags.text
		}
		r, report, err := service.UpdateRecipe(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Updated recipe %s\n", r.Name)
		return printSync(report)
	},
}

var recipeRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Remove a recipe (scheduled meals stay on the plan)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.DeleteRecipe(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed recipe %s\n", args[0])
		return nil
	},
}

var recipeFavCmd = &cobra.Command{
	Use:   "fav <id>",
	Short: "Toggle a recipe's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := service.ToggleFavorite(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s favorite: %t\n", r.Name, r.Favorite)
		return nil
	},
}

var recipeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes sorted by type then name",
	RunE: func(cmd *cobra.Command, args []string) error {
		var typ *domain.MealType
		if cmd.Flags().Changed("type") {
			t, err := domain.ParseMealType(recipeFlags.typ)
			if err != nil {
				return err
			}
			typ = &t
		}
		recipes := service.FilteredRecipes(typ, recipeFlags.search)
		if recipeFlags.favorites {
			recipes = ordering.FavoriteRecipes(recipes)
		}
		if len(recipes) == 0 {
			fmt.Println("No recipes.")
			return nil
		}
		for _, r := range recipes {
			star := " "
			if r.Favorite {
				star = "★"
			}
			fmt.Printf("%s %-9s  %s  (%s)\n", star, r.Type, r.Name, r.ID)
		}
		return nil
	},
}

var recipeShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a recipe's text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := service.Recipe(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s (%s)\n\n%s\n", r.Name, r.Type.Label(), ordering.RecipeText(r.Recipe))
		return nil
	},
}

var recipeImportCmd = &cobra.Command{
	Use:   "import <url>",
	Short: "Fetch a recipe page and add it to the library",
	Long: `Fetch a recipe web page, extract its title, ingredients and steps, and
save it as a recipe. An existing recipe with the same name is kept.

Examples:
  mealweek recipe import https://example.com/mercimek-corbasi --type main`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := domain.ParseMealType(recipeFlags.typ)
		if err != nil {
			return err
		}
		client := &http.Client{Timeout: 20 * time.Second}
		parsed, err := importer.Fetch(cmd.Context(), client, args[0])
		if err != nil {
			return err
		}
		r, err := service.CreateRecipe(cmd.Context(), parsed.Input(typ))
		if err != nil {
			return err
		}
		fmt.Printf("Imported %s: %d ingredients, %d steps (%s)\n", r.Name, len(parsed.Ingredients), len(parsed.Steps), r.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeAddCmd, recipeEditCmd, recipeRmCmd, recipeFavCmd, recipeListCmd, recipeShowCmd, recipeImportCmd)

	for _, c := range []*cobra.Command{recipeAddCmd, recipeEditCmd, recipeListCmd, recipeImportCmd} {
		c.Flags().StringVarP(&recipeFlags.typ, "type", "t", "main", "meal type: breakfast, main or snack")
	}
	for _, c := range []*cobra.Command{recipeAddCmd, recipeEditCmd} {
		c.Flags().StringVar(&recipeFlags.text, "text", "", "recipe text")
	}
	recipeEditCmd.Flags().String("name", "", "new recipe name")
	recipeListCmd.Flags().BoolVarP(&recipeFlags.favorites, "favorites", "f", false, "only favorites")
	recipeListCmd.Flags().StringVarP(&recipeFlags.search, "search", "s", "", "name contains")
}
