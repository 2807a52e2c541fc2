package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mealweek/internal/adapters/tui"
	"mealweek/internal/drag"
	"mealweek/pkg/domain"
)

var (
	weekAnchor string
	moveCopy   bool
)

// parseAnchor reads an optional YYYY-MM-DD anchor; empty means today.
func parseAnchor(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "week", Message: fmt.Sprintf("date %q is not YYYY-MM-DD", raw), Err: err}
	}
	return t, nil
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the Monday-to-Sunday plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		anchor, err := parseAnchor(weekAnchor)
		if err != nil {
			return err
		}
		week := service.Week(anchor)
		for _, d := range week.Days {
			marker := " "
			if week.IsToday(d.Date) {
				marker = "•"
			}
			fmt.Printf("%s %-10s %s\n", marker, d.Label, d.Date)
			if len(d.Meals) == 0 {
				fmt.Println("    —")
			}
			for _, m := range d.Meals {
				fmt.Printf("    [%s] %s  (%s)\n", m.Type.Label(), m.Name, m.ID)
			}
		}
		return nil
	},
}

var moveCmd = &cobra.Command{
	Use:   "move <meal-id> <date|library>",
	Short: "Move or copy a meal to another day, or drop it back on the library",
	Long: `Move a scheduled meal to another day, the way a drag and drop on the
board does. With --copy the meal stays and a copy is placed on the target
day. Dropping on "library" removes the meal from the plan.

Examples:
  mealweek move 7f0c… 2024-06-07
  mealweek move 7f0c… 2024-06-08 --copy
  mealweek move 7f0c… library`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := service.MealPayload(args[0])
		if err != nil {
			return err
		}
		target := drag.LibraryTarget()
		if args[1] != "library" {
			target = drag.DayTarget(args[1])
		}
		session, err := drag.Start(drag.Session{}, payload, moveCopy)
		if err != nil {
			return err
		}
		mode := session.Mode()
		_, m, report, err := service.Drop(cmd.Context(), session, target)
		if err != nil {
			return err
		}
		switch {
		case m.ID == "":
			fmt.Println("Nothing to do.")
		case target.Kind == drag.TargetLibrary:
			fmt.Printf("Removed %s from %s\n", m.Name, m.Date)
		default:
			fmt.Printf("%s %s to %s (%s)\n", mode, m.Name, m.Date, m.ID)
		}
		return printSync(report)
	},
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Add library recipes for meal names that have none",
	RunE: func(cmd *cobra.Command, args []string) error {
		created, err := service.Reconcile(cmd.Context())
		if err != nil {
			return err
		}
		if len(created) == 0 {
			fmt.Println("Library already covers every meal.")
		}
		for _, r := range created {
			fmt.Printf("Added recipe %s (%s)\n", r.Name, r.ID)
		}
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive week board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run(cmd.Context(), service)
	},
}

func init() {
	rootCmd.AddCommand(weekCmd, moveCmd, reconcileCmd, tuiCmd)
	weekCmd.Flags().StringVarP(&weekAnchor, "week", "w", "", "any day of the week to show (default today)")
	moveCmd.Flags().BoolVar(&moveCopy, "copy", false, "keep the meal and place a copy")
}
