// Package importer turns recipe web pages into library recipes.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mealweek/internal/core"
	"mealweek/pkg/domain"
)

// Parsed is the recipe content found on a page.
type Parsed struct {
	Name        string
	Ingredients []string
	Steps       []string
}

// Text renders the ingredients and steps as recipe text.
func (p Parsed) Text() string {
	var sb strings.Builder
	if len(p.Ingredients) > 0 {
		sb.WriteString("Malzemeler:\n")
		for _, ing := range p.Ingredients {
			sb.WriteString("- " + ing + "\n")
		}
	}
	if len(p.Steps) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("Yapılışı:\n")
		for i, step := range p.Steps {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, step)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Input builds the form data for saving the parsed recipe as typ.
func (p Parsed) Input(typ domain.MealType) core.RecipeInput {
	return core.RecipeInput{Name: p.Name, Type: string(typ), Recipe: p.Text()}
}

// ParseRecipeHTML extracts a recipe from an HTML page. schema.org Recipe
// JSON-LD wins when present; otherwise the first h1 (or the title) names the
// recipe and list items under ingredient/step containers fill the body.
func ParseRecipeHTML(r io.Reader) (Parsed, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Parsed{}, fmt.Errorf("parse html: %w", err)
	}
	p, ok := fromJSONLD(doc)
	if !ok {
		p = fromMarkup(doc)
	}
	if p.Name == "" {
		return Parsed{}, &domain.ValidationError{Field: "name", Message: "page has no recipe title"}
	}
	return p, nil
}

// Fetch downloads url and parses it.
func Fetch(ctx context.Context, client *http.Client, url string) (Parsed, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Parsed{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Parsed{}, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Parsed{}, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return ParseRecipeHTML(resp.Body)
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func texts(sel *goquery.Selection) []string {
	var out []string
	sel.Each(func(_ int, s *goquery.Selection) {
		if t := clean(s.Text()); t != "" {
			out = append(out, t)
		}
	})
	return out
}

func fromMarkup(doc *goquery.Document) Parsed {
	doc.Find("script, style, nav, footer, iframe").Remove()
	var p Parsed
	p.Name = clean(doc.Find("h1").First().Text())
	if p.Name == "" {
		p.Name = clean(doc.Find("title").First().Text())
	}
	p.Ingredients = texts(doc.Find(`[itemprop="recipeIngredient"], .ingredients li, #ingredients li`))
	p.Steps = texts(doc.Find(`[itemprop="recipeInstructions"] li, .instructions li, .steps li, #steps li`))
	if len(p.Steps) == 0 {
		p.Steps = texts(doc.Find("ol li"))
	}
	if len(p.Ingredients) == 0 {
		p.Ingredients = texts(doc.Find("ul li").Not("nav li"))
	}
	return p
}

type ldRecipe struct {
	Type         any               `json:"@type"`
	Name         string            `json:"name"`
	Ingredients  []string          `json:"recipeIngredient"`
	Instructions json.RawMessage   `json:"recipeInstructions"`
	Graph        []json.RawMessage `json:"@graph"`
}

func (r ldRecipe) isRecipe() bool {
	switch t := r.Type.(type) {
	case string:
		return t == "Recipe"
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == "Recipe" {
				return true
			}
		}
	}
	return false
}

func fromJSONLD(doc *goquery.Document) (Parsed, bool) {
	var found Parsed
	var ok bool
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found, ok = decodeLD([]byte(s.Text()))
		return !ok
	})
	return found, ok
}

func decodeLD(raw []byte) (Parsed, bool) {
	var nodes []json.RawMessage
	if err := json.Unmarshal(raw, &nodes); err != nil {
		nodes = []json.RawMessage{raw}
	}
	for _, node := range nodes {
		var r ldRecipe
		if err := json.Unmarshal(node, &r); err != nil {
			continue
		}
		if r.isRecipe() {
			return Parsed{Name: clean(r.Name), Ingredients: cleanAll(r.Ingredients), Steps: instructions(r.Instructions)}, true
		}
		for _, child := range r.Graph {
			if p, ok := decodeLD(child); ok {
				return p, true
			}
		}
	}
	return Parsed{}, false
}

func cleanAll(in []string) []string {
	var out []string
	for _, s := range in {
		if t := clean(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// instructions accepts a plain string, a list of strings or a list of
// HowToStep objects.
func instructions(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return cleanAll(strings.Split(single, "\n"))
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	var out []string
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var step struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(item, &step); err == nil {
			out = append(out, step.Text)
		}
	}
	return cleanAll(out)
}
