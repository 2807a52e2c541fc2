package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mealweek/internal/core"
	"mealweek/internal/drag"
)

// RegisterWriteTools adds the plan-changing tools to the MCP server.
func RegisterWriteTools(s *server.MCPServer, svc *core.Service) {
	s.AddTool(saveMealTool(), saveMealHandler(svc))
	s.AddTool(moveMealTool(), moveMealHandler(svc))
	s.AddTool(deleteMealTool(), deleteMealHandler(svc))
	s.AddTool(saveRecipeTool(), saveRecipeHandler(svc))
	s.AddTool(scheduleRecipeTool(), scheduleRecipeHandler(svc))
	s.AddTool(toggleFavoriteTool(), toggleFavoriteHandler(svc))
	s.AddTool(deleteRecipeTool(), deleteRecipeHandler(svc))
	s.AddTool(reconcileTool(), reconcileHandler(svc))
}

// --- save_meal ---

func saveMealTool() mcp.Tool {
	return mcp.NewTool("save_meal",
		mcp.WithDescription("Create a meal, or edit one when id is given. Editing name, type or recipe also updates the first recipe with the old name; unknown meal names get a recipe."),
		mcp.WithString("id", mcp.Description("Meal id to edit. Omit to create.")),
		mcp.WithString("name", mcp.Description("Meal name"), mcp.Required()),
		mcp.WithString("type", mcp.Description("breakfast, main or snack"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD"), mcp.Required()),
		mcp.WithString("recipe", mcp.Description("Recipe text")),
		mcp.WithString("notes", mcp.Description("Free-form notes")),
	)
}

func saveMealHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := core.MealInput{
			ID:     req.GetString("id", ""),
			Name:   req.GetString("name", ""),
			Type:   req.GetString("type", ""),
			Date:   req.GetString("date", ""),
			Recipe: req.GetString("recipe", ""),
			Notes:  req.GetString("notes", ""),
		}
		if in.ID != "" {
			current, err := svc.Meal(in.ID)
			if err != nil {
				return toolError(err)
			}
			order := current.Order
			in.Order = &order
		}
		m, report, err := svc.SaveMeal(ctx, in)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Saved " + formatMeal(m) + syncSummary(report)), nil
	}
}

// --- move_meal ---

func moveMealTool() mcp.Tool {
	return mcp.NewTool("move_meal",
		mcp.WithDescription("Move a meal to another day, placing it last. With copy=true the meal stays and a copy is added."),
		mcp.WithString("id", mcp.Description("Meal id"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Target date as YYYY-MM-DD"), mcp.Required()),
		mcp.WithBoolean("copy", mcp.Description("Copy instead of move")),
	)
}

func moveMealHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := svc.MealPayload(req.GetString("id", ""))
		if err != nil {
			return toolError(err)
		}
		return dropOnDay(ctx, svc, payload, req.GetString("date", ""), req.GetBool("copy", false))
	}
}

// --- schedule_recipe ---

func scheduleRecipeTool() mcp.Tool {
	return mcp.NewTool("schedule_recipe",
		mcp.WithDescription("Plan a library recipe as a new meal on a day, placed last."),
		mcp.WithString("id", mcp.Description("Recipe id"), mcp.Required()),
		mcp.WithString("date", mcp.Description("Date as YYYY-MM-DD"), mcp.Required()),
	)
}

func scheduleRecipeHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		payload, err := svc.RecipePayload(req.GetString("id", ""))
		if err != nil {
			return toolError(err)
		}
		return dropOnDay(ctx, svc, payload, req.GetString("date", ""), false)
	}
}

func dropOnDay(ctx context.Context, svc *core.Service, payload drag.Payload, date string, copyMeal bool) (*mcp.CallToolResult, error) {
	session, err := drag.Start(drag.Session{}, payload, copyMeal)
	if err != nil {
		return toolError(err)
	}
	_, m, report, err := svc.Drop(ctx, session, drag.DayTarget(date))
	if err != nil {
		return toolError(err)
	}
	if m.ID == "" {
		return mcp.NewToolResultText("Nothing to do: the meal is already on " + date + "."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s on %s%s", session.Mode(), formatMeal(m), m.Date, syncSummary(report))), nil
}

// --- delete_meal ---

func deleteMealTool() mcp.Tool {
	return mcp.NewTool("delete_meal",
		mcp.WithDescription("Delete a planned meal. Recipes are kept."),
		mcp.WithString("id", mcp.Description("Meal id"), mcp.Required()),
	)
}

func deleteMealHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if err := svc.DeleteMeal(ctx, id); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Deleted meal " + id), nil
	}
}

// --- save_recipe ---

func saveRecipeTool() mcp.Tool {
	return mcp.NewTool("save_recipe",
		mcp.WithDescription("Create a recipe, or edit one when id is given. Editing name, type or text updates every meal with the old name."),
		mcp.WithString("id", mcp.Description("Recipe id to edit. Omit to create.")),
		mcp.WithString("name", mcp.Description("Recipe name"), mcp.Required()),
		mcp.WithString("type", mcp.Description("breakfast, main or snack"), mcp.Required()),
		mcp.WithString("recipe", mcp.Description("Recipe text")),
	)
}

func saveRecipeHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, report, err := svc.SaveRecipe(ctx, core.RecipeInput{
			ID:     req.GetString("id", ""),
			Name:   req.GetString("name", ""),
			Type:   req.GetString("type", ""),
			Recipe: req.GetString("recipe", ""),
		})
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Saved " + formatRecipe(r) + syncSummary(report)), nil
	}
}

// --- toggle_favorite ---

func toggleFavoriteTool() mcp.Tool {
	return mcp.NewTool("toggle_favorite",
		mcp.WithDescription("Flip a recipe's favorite flag."),
		mcp.WithString("id", mcp.Description("Recipe id"), mcp.Required()),
	)
}

func toggleFavoriteHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		r, err := svc.ToggleFavorite(ctx, req.GetString("id", ""))
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatRecipe(r)), nil
	}
}

// --- delete_recipe ---

func deleteRecipeTool() mcp.Tool {
	return mcp.NewTool("delete_recipe",
		mcp.WithDescription("Delete a recipe. Planned meals with the same name are kept."),
		mcp.WithString("id", mcp.Description("Recipe id"), mcp.Required()),
	)
}

func deleteRecipeHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if err := svc.DeleteRecipe(ctx, id); err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText("Deleted recipe " + id), nil
	}
}

// --- reconcile ---

func reconcileTool() mcp.Tool {
	return mcp.NewTool("reconcile",
		mcp.WithDescription("Create a recipe for every planned meal name missing from the library."),
	)
}

func reconcileHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		created, err := svc.Reconcile(ctx)
		if err != nil {
			return toolError(err)
		}
		if len(created) == 0 {
			return mcp.NewToolResultText("Library already covers every meal."), nil
		}
		return formatEntities(created, formatRecipe)
	}
}

func syncSummary(report core.SyncReport) string {
	var parts []string
	if n := len(report.UpdatedRecipes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d recipe(s) updated", n))
	}
	if n := len(report.UpdatedMeals); n > 0 {
		parts = append(parts, fmt.Sprintf("%d meal(s) updated", n))
	}
	if n := len(report.CreatedRecipes); n > 0 {
		parts = append(parts, fmt.Sprintf("%d recipe(s) created", n))
	}
	if err := report.Err(); err != nil {
		parts = append(parts, "sync incomplete: "+err.Error())
	}
	if len(parts) == 0 {
		return ""
	}
	return "\n" + strings.Join(parts, "; ")
}
