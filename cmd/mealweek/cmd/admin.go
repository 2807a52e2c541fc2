package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mealweek/internal/core"
	"mealweek/internal/export"
	"mealweek/internal/seed"
)

var (
	seedMode    string
	seedFile    string
	clearYes    bool
	exportWeek  string
	exportOut   string
	exportNoLib bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample meals and recipes into an empty plan",
	Long: `Load seed data. Collections that already hold records are left alone.

Modes:
  all      both collections, only when both are empty
  meals    meals only, when there are no meals
  recipes  recipes only, when there are no recipes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := seed.ParseMode(seedMode)
		if err != nil {
			return err
		}
		data, err := seed.Default()
		if seedFile != "" {
			data, err = seed.Load(seedFile)
		}
		if err != nil {
			return err
		}
		report, err := seed.Seed(cmd.Context(), service, data, mode)
		if err != nil {
			return err
		}
		fmt.Println(report.Message)
		for _, reason := range report.Skipped {
			fmt.Println("  skipped:", reason)
		}
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every meal and recipe",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearYes {
			return fmt.Errorf("clear removes the whole plan and library; pass --yes to confirm")
		}
		report, err := service.Clear(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d meals and %d recipes\n", report.Meals, report.Recipes)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write the whole plan to the archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		info, err := service.Backup(cmd.Context(), archive)
		if err != nil {
			return err
		}
		fmt.Printf("Backup written to %s (%d bytes)\n", info.Key, info.Size)
		return nil
	},
}

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List archived backups, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		infos, err := service.Backups(cmd.Context(), archive)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("No backups.")
		}
		for _, info := range infos {
			fmt.Printf("%s  %s  %d bytes\n", info.Key, info.LastModified.Format(time.RFC3339), info.Size)
		}
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore [key]",
	Short: "Replace the plan with an archived backup (default newest)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		key := ""
		if len(args) == 1 {
			key = args[0]
		}
		report, err := service.Restore(cmd.Context(), archive, key)
		if core.IsMissingBackup(err) {
			return fmt.Errorf("nothing to restore in %s archive: %w", cfg.Archive.Driver, err)
		}
		if err != nil {
			return err
		}
		fmt.Printf("Restored %d meals and %d recipes\n", report.Meals, report.Recipes)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a week as an Excel workbook",
	Long: `Export a week's plan as an .xlsx workbook, with the recipe library on a
second sheet. Without --out the workbook is stored in the archive.

Examples:
  mealweek export --week 2024-06-05 --out hafta.xlsx
  mealweek export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		anchor, err := parseAnchor(exportWeek)
		if err != nil {
			return err
		}
		week := service.Week(anchor).Week
		recipes := service.SortedRecipes()
		if exportNoLib {
			recipes = nil
		}
		if exportOut != "" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			if err := export.WriteWeekXLSX(f, week, recipes); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", exportOut)
			return nil
		}
		archive, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		info, err := export.StoreWeek(cmd.Context(), archive, week, recipes, service.Now())
		if err != nil {
			return err
		}
		fmt.Printf("Stored %s (%d bytes)\n", info.Key, info.Size)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, clearCmd, backupCmd, backupsCmd, restoreCmd, exportCmd)
	seedCmd.Flags().StringVarP(&seedMode, "mode", "m", string(seed.ModeAll), "all, meals or recipes")
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML or JSON seed file (default built-in sample)")
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm deleting everything")
	exportCmd.Flags().StringVarP(&exportWeek, "week", "w", "", "any day of the week to export (default today)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "write the workbook to this file")
	exportCmd.Flags().BoolVar(&exportNoLib, "no-recipes", false, "omit the recipe sheet")
}
