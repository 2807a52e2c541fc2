package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mealweek/internal/core"
)

var mealFlags struct {
	typ    string
	date   string
	order  int
	recipe string
	notes  string
}

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Schedule, edit and remove meals",
}

var mealAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Schedule a meal on a day",
	Long: `Schedule a meal. A recipe is added to the library when none carries
the meal's name yet.

Examples:
  mealweek meal add "Mercimek Çorbası" --date 2024-06-05
  mealweek meal add Menemen --type breakfast --date 2024-06-06 --order 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := core.MealInput{
			Name:   args[0],
			Type:   mealFlags.typ,
			Date:   mealFlags.date,
			Recipe: mealFlags.recipe,
			Notes:  mealFlags.notes,
		}
		if cmd.Flags().Changed("order") {
			in.Order = &mealFlags.order
		}
		m, report, err := service.CreateMeal(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Scheduled %s on %s (%s)\n", m.Name, m.Date, m.ID)
		return printSync(report)
	},
}

var mealEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a scheduled meal",
	Long: `Edit a meal. Only the flags given are changed. When the name, type or
recipe text changes, the first recipe carrying the old name is updated too.

Examples:
  mealweek meal edit 7f0c… --name "Ezogelin Çorbası"
  mealweek meal edit 7f0c… --notes "double portion"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, err := service.Meal(args[0])
		if err != nil {
			return err
		}
		in := core.MealInput{
			ID:     current.ID,
			Name:   current.Name,
			Type:   string(current.Type),
			Date:   current.Date,
			Recipe: current.Recipe,
			Notes:  current.Notes,
		}
		flags := cmd.Flags()
		if flags.Changed("name") {
			in.Name, _ = flags.GetString("name")
		}
		if flags.Changed("type") {
			in.Type = mealFlags.typ
		}
		if flags.Changed("date") {
			in.Date = mealFlags.date
		}
		if flags.Changed("order") {
			in.Order = &mealFlags.order
		}
		if flags.Changed("recipe") {
			in.Recipe = mealFlags.recipe
		}
		if flags.Changed("notes") {
			in.Notes = mealFlags.notes
		}
		m, report, err := service.UpdateMeal(cmd.Context(), in)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s on %s\n", m.Name, m.Date)
		return printSync(report)
	},
}

var mealRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Remove a meal from the plan (its recipe stays in the library)",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := service.DeleteMeal(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed meal %s\n", args[0])
		return nil
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List meals, optionally for one day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		meals := service.Meals()
		if len(args) == 1 {
			date, err := core.ValidateDate(args[0])
			if err != nil {
				return err
			}
			meals = service.MealsForDay(date)
		}
		if len(meals) == 0 {
			fmt.Println("No meals.")
			return nil
		}
		for _, m := range meals {
			fmt.Printf("%s  %d  %-9s  %s  (%s)\n", m.Date, m.Order, m.Type, m.Name, m.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealAddCmd, mealEditCmd, mealRmCmd, mealListCmd)

	for _, c := range []*cobra.Command{mealAddCmd, mealEditCmd} {
		f := c.Flags()
		f.StringVarP(&mealFlags.typ, "type", "t", "main", "meal type: breakfast, main or snack")
		f.StringVarP(&mealFlags.date, "date", "d", "", "day as YYYY-MM-DD")
		f.IntVar(&mealFlags.order, "order", 0, "position within the day")
		f.StringVar(&mealFlags.recipe, "recipe", "", "recipe text")
		f.StringVar(&mealFlags.notes, "notes", "", "free-form notes")
	}
	mealEditCmd.Flags().String("name", "", "new meal name")
	_ = mealAddCmd.MarkFlagRequired("date")
}
