// Package mcp exposes the meal plan as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"mealweek/internal/core"
	"mealweek/internal/ordering"
	"mealweek/pkg/domain"
)

// RegisterReadTools adds the read-only plan tools to the MCP server.
func RegisterReadTools(s *server.MCPServer, svc *core.Service) {
	s.AddTool(weekTool(), weekHandler(svc))
	s.AddTool(dayTool(), dayHandler(svc))
	s.AddTool(recipesTool(), recipesHandler(svc))
	s.AddTool(recipeTool(), recipeHandler(svc))
}

// --- week ---

func weekTool() mcp.Tool {
	return mcp.NewTool("week",
		mcp.WithDescription("Show the Monday-first week plan containing a date, grouped by day and ordered breakfast, main, snack."),
		mcp.WithString("date",
			mcp.Description("Any date in the week as YYYY-MM-DD. Omit for the current week."),
		),
	)
}

func weekHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		anchor := svc.Now()
		if raw := req.GetString("date", ""); raw != "" {
			date, err := core.ValidateDate(raw)
			if err != nil {
				return toolError(err)
			}
			anchor, _ = time.Parse(domain.DateLayout, date)
		}
		week := svc.Week(anchor)
		var sb strings.Builder
		for _, d := range week.Days {
			marker := ""
			if week.IsToday(d.Date) {
				marker = " (bugün)"
			}
			fmt.Fprintf(&sb, "%s %s%s\n", d.Label, d.Date, marker)
			if len(d.Meals) == 0 {
				sb.WriteString("  -\n")
			}
			for _, m := range d.Meals {
				sb.WriteString("  " + formatMeal(m) + "\n")
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// --- day ---

func dayTool() mcp.Tool {
	return mcp.NewTool("day",
		mcp.WithDescription("List the meals planned on a date."),
		mcp.WithString("date",
			mcp.Description("Date as YYYY-MM-DD"),
			mcp.Required(),
		),
	)
}

func dayHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		date, err := core.ValidateDate(req.GetString("date", ""))
		if err != nil {
			return toolError(err)
		}
		return formatEntities(svc.MealsForDay(date), formatMeal)
	}
}

// --- recipes ---

func recipesTool() mcp.Tool {
	return mcp.NewTool("recipes",
		mcp.WithDescription("List library recipes, favorites first then alphabetical. Optionally filter by type and name."),
		mcp.WithString("type",
			mcp.Description("breakfast, main or snack. Omit for all types."),
		),
		mcp.WithString("search",
			mcp.Description("Case-insensitive name fragment"),
		),
		mcp.WithBoolean("favorites",
			mcp.Description("Only list favorites"),
		),
	)
}

func recipesHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if req.GetBool("favorites", false) {
			return formatEntities(svc.FavoriteRecipes(), formatRecipe)
		}
		var typ *domain.MealType
		if raw := req.GetString("type", ""); raw != "" {
			t, err := domain.ParseMealType(raw)
			if err != nil {
				return toolError(err)
			}
			typ = &t
		}
		return formatEntities(svc.FilteredRecipes(typ, req.GetString("search", "")), formatRecipe)
	}
}

// --- recipe ---

func recipeTool() mcp.Tool {
	return mcp.NewTool("recipe",
		mcp.WithDescription("Show a recipe's full text by id."),
		mcp.WithString("id",
			mcp.Description("Recipe id"),
			mcp.Required(),
		),
	)
}

func recipeHandler(svc *core.Service) server.ToolHandlerFunc {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return toolError(fmt.Errorf("id is required"))
		}
		r, err := svc.Recipe(id)
		if err != nil {
			return toolError(err)
		}
		return mcp.NewToolResultText(formatRecipe(r) + "\n\n" + ordering.RecipeText(r.Recipe)), nil
	}
}

// --- helpers ---

func toolError(err error) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultError(err.Error()), nil
}

func formatEntities[T any](entities []T, format func(T) string) (*mcp.CallToolResult, error) {
	if len(entities) == 0 {
		return mcp.NewToolResultText("No results."), nil
	}
	var sb strings.Builder
	for _, e := range entities {
		sb.WriteString(format(e))
		sb.WriteByte('\n')
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func formatMeal(m domain.Meal) string {
	line := fmt.Sprintf("%s  [%s] %s", m.ID, m.Type.Label(), m.Name)
	if m.Notes != "" {
		line += "  (" + m.Notes + ")"
	}
	return line
}

func formatRecipe(r domain.Recipe) string {
	star := ""
	if r.Favorite {
		star = " ★"
	}
	return fmt.Sprintf("%s  [%s] %s%s", r.ID, r.Type.Label(), r.Name, star)
}
