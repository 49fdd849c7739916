package extract

import (
	"context"
	"reflect"
	"testing"

	"recipe-importer/internal/pkg/common"
)

func TestParseDurationMinutes(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"PT1H30M", 90},
		{"PT45M", 45},
		{"PT2H", 120},
		{"", 0},
		{"P0DT0H20M", 20},
		{"P1DT1H", 1500},
		{"pt15m", 15},
		{"PT1.5H", 90},
		{"PT30S", 0},
		{"20 minutes", 0},
	}
	for _, tt := range tests {
		if got := ParseDurationMinutes(tt.in); got != tt.want {
			t.Errorf("ParseDurationMinutes(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func page(html string) Page {
	return Page{HTML: html}
}

func TestStructuredDataExtract(t *testing.T) {
	html := `<html><head>
<script type="application/ld+json">{ this is not json </script>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@graph": [
    {"@type": "WebSite", "name": "Cooking Site"},
    {
      "@type": ["Recipe", "NewsArticle"],
      "name": "Spaghetti &amp; Garlic",
      "description": "Quick   weeknight pasta.",
      "image": [{"@type": "ImageObject", "url": "https://example.com/spaghetti.jpg"}],
      "recipeIngredient": ["1/2 pound spaghetti", "4 tablespoons olive oil", "3 cloves garlic"],
      "recipeInstructions": [
        {"@type": "HowToSection", "name": "Pasta", "itemListElement": [
          {"@type": "HowToStep", "text": "Boil the pasta."},
          {"@type": "HowToStep", "text": "Drain."}
        ]},
        {"@type": "HowToStep", "text": "Toss with garlic oil."}
      ],
      "prepTime": "PT10M",
      "cookTime": "PT1H30M",
      "recipeYield": ["4", "4 servings"],
      "recipeCategory": "Dinner",
      "recipeCuisine": ["Italian"],
      "keywords": "pasta, quick, dinner"
    }
  ]
}
</script></head><body></body></html>`

	d, ok := NewStructuredData().Extract(context.Background(), page(html))
	if !ok {
		t.Fatal("expected a recipe")
	}

	if d.Title != "Spaghetti & Garlic" {
		t.Errorf("title = %q", d.Title)
	}
	if d.Description != "Quick weeknight pasta." {
		t.Errorf("description = %q", d.Description)
	}
	if len(d.Ingredients) != 3 || d.Ingredients[0] != common.RawIngredient("1/2 pound spaghetti") {
		t.Errorf("ingredients = %+v", d.Ingredients)
	}
	wantSteps := []string{"Boil the pasta.", "Drain.", "Toss with garlic oil."}
	if !reflect.DeepEqual(d.Instructions, wantSteps) {
		t.Errorf("instructions = %q, want %q", d.Instructions, wantSteps)
	}
	if d.PrepTimeMinutes != 10 || d.CookTimeMinutes != 90 {
		t.Errorf("times = %d/%d", d.PrepTimeMinutes, d.CookTimeMinutes)
	}
	if d.Servings != 4 {
		t.Errorf("servings = %d", d.Servings)
	}
	wantTags := []string{"Dinner", "Italian", "pasta", "quick"}
	if !reflect.DeepEqual(d.Tags, wantTags) {
		t.Errorf("tags = %q, want %q", d.Tags, wantTags)
	}
	if d.ImageURL != "https://example.com/spaghetti.jpg" {
		t.Errorf("image = %q", d.ImageURL)
	}
	if d.Source != common.SourceStructuredData {
		t.Errorf("source = %q", d.Source)
	}
}

func TestStructuredDataKeepsIngredientCount(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  int
	}{
		{"plain array", `["a", "b", "c", "d"]`, 4},
		{"array with empty entry", `["a", "", "c"]`, 3},
		{"array with numbers", `["2 eggs", 3]`, 2},
		{"single string", `"1 cup flour"`, 1},
		{"empty array", `[]`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := `<script type="application/ld+json">{"@type":"Recipe","name":"X","recipeIngredient":` + tt.field + `}</script>`
			d, ok := NewStructuredData().Extract(context.Background(), page(html))
			if !ok {
				t.Fatal("expected a recipe")
			}
			if len(d.Ingredients) != tt.want {
				t.Errorf("ingredients = %d, want %d", len(d.Ingredients), tt.want)
			}
		})
	}
}

func TestStructuredDataVariants(t *testing.T) {
	t.Run("top level array and string instructions", func(t *testing.T) {
		html := `<script type="application/ld+json">[
			{"@type": "Organization", "name": "Site"},
			{"@type": "Recipe", "name": "Soup", "recipeInstructions": "Chop.\nSimmer.\n\nServe.", "recipeYield": 6}
		]</script>`
		d, ok := NewStructuredData().Extract(context.Background(), page(html))
		if !ok {
			t.Fatal("expected a recipe")
		}
		if !reflect.DeepEqual(d.Instructions, []string{"Chop.", "Simmer.", "Serve."}) {
			t.Errorf("instructions = %q", d.Instructions)
		}
		if d.Servings != 6 {
			t.Errorf("servings = %d", d.Servings)
		}
	})

	t.Run("main entity nesting and total time", func(t *testing.T) {
		html := `<script type="application/ld+json">{
			"@type": "WebPage",
			"mainEntity": {"@type": "Recipe", "name": "Stew", "prepTime": "PT20M", "totalTime": "PT2H", "recipeYield": "serves a crowd", "image": "https://example.com/stew.png"}
		}</script>`
		d, ok := NewStructuredData().Extract(context.Background(), page(html))
		if !ok {
			t.Fatal("expected a recipe")
		}
		if d.CookTimeMinutes != 100 {
			t.Errorf("cook = %d, want 100", d.CookTimeMinutes)
		}
		if d.Servings != common.DefaultServings {
			t.Errorf("servings = %d, want default", d.Servings)
		}
		if d.ImageURL != "https://example.com/stew.png" {
			t.Errorf("image = %q", d.ImageURL)
		}
		if d.Ingredients == nil || d.Instructions == nil {
			t.Error("lists must never be nil")
		}
	})

	t.Run("no recipe node", func(t *testing.T) {
		html := `<script type="application/ld+json">{"@graph": [{"@type": "Article", "name": "News"}]}</script>`
		if _, ok := NewStructuredData().Extract(context.Background(), page(html)); ok {
			t.Fatal("expected no result")
		}
	})

	t.Run("only malformed blocks", func(t *testing.T) {
		html := `<script type="application/ld+json">{"@type": "Recipe",</script>`
		if _, ok := NewStructuredData().Extract(context.Background(), page(html)); ok {
			t.Fatal("expected no result")
		}
	})
}

func TestMetadataExtract(t *testing.T) {
	html := `<html><head>
<title>Ignored page title</title>
<meta property="og:title" content="Lemon Cake">
<meta name="twitter:title" content="Other title">
<meta name="description" content="A bright cake.">
<meta property="og:image" content="/img/cake.jpg">
</head><body></body></html>`

	d, ok := NewMetadata().Extract(context.Background(), page(html))
	if !ok {
		t.Fatal("expected a result")
	}
	if d.Title != "Lemon Cake" || d.Description != "A bright cake." || d.ImageURL != "/img/cake.jpg" {
		t.Errorf("unexpected draft: %+v", d)
	}
	if len(d.Ingredients) != 0 || len(d.Instructions) != 0 {
		t.Errorf("metadata drafts carry no ingredients or instructions: %+v", d)
	}
	if d.CookTimeMinutes != 30 || d.Servings != 4 {
		t.Errorf("defaults = cook %d servings %d", d.CookTimeMinutes, d.Servings)
	}
	if d.Source != common.SourceMetadata {
		t.Errorf("source = %q", d.Source)
	}
}

func TestMetadataRequiresTitle(t *testing.T) {
	html := `<html><head><title>Only a title tag</title><meta name="description" content="x"></head></html>`
	if _, ok := NewMetadata().Extract(context.Background(), page(html)); ok {
		t.Fatal("expected no result without title metadata")
	}
}
