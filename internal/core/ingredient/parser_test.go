package ingredient

import (
	"testing"

	"recipe-importer/internal/pkg/common"
)

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		want common.Ingredient
	}{
		{
			line: "1/2 pound spaghetti",
			want: common.StructuredIngredient("1/2", "pound", "spaghetti"),
		},
		{
			line: "Coarsely ground black pepper, to taste",
			want: common.StructuredIngredient("", "", "Coarsely ground black pepper"),
		},
		{
			line: "4 tablespoons extra-virgin olive oil, divided",
			want: common.StructuredIngredient("4", "tablespoons", "extra-virgin olive oil"),
		},
		{
			line: "1 1/2 cups all-purpose flour",
			want: common.StructuredIngredient("1 1/2", "cups", "all-purpose flour"),
		},
		{
			line: "0.5 kg potatoes",
			want: common.StructuredIngredient("0.5", "kg", "potatoes"),
		},
		{
			line: "- 2 tbsp butter (30g), softened",
			want: common.StructuredIngredient("2", "tbsp", "butter"),
		},
		{
			line: "• 3 garlic cloves, minced",
			want: common.StructuredIngredient("3", "", "garlic cloves"),
		},
		{
			line: "2 large eggs",
			want: common.StructuredIngredient("2", "", "large eggs"),
		},
		{
			line: "1½ cups milk",
			want: common.StructuredIngredient("1 1/2", "cups", "milk"),
		},
		{
			line: "2-3 cups chicken stock",
			want: common.StructuredIngredient("2-3", "cups", "chicken stock"),
		},
		{
			line: "1 cup of sugar",
			want: common.StructuredIngredient("1", "cup", "sugar"),
		},
		{
			line: "1 cup flour (sifted, then measured)",
			want: common.StructuredIngredient("1", "cup", "flour"),
		},
		{
			line: "3 Tbsp. honey",
			want: common.StructuredIngredient("3", "Tbsp", "honey"),
		},
		{
			line: "Salt",
			want: common.StructuredIngredient("", "", "Salt"),
		},
		{
			line: "1 tomato, diced",
			want: common.StructuredIngredient("1", "", "tomato"),
		},
		{
			line: "(optional)",
			want: common.StructuredIngredient("", "", "(optional)"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got := Parse(tt.line)
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseUnitOnlyMatchesAtStart(t *testing.T) {
	got := Parse("2 chicken breasts, about 1 pound")
	if got.Unit != "" {
		t.Fatalf("expected no unit, got %q", got.Unit)
	}
	if got.Name != "chicken breasts" {
		t.Fatalf("expected name %q, got %q", "chicken breasts", got.Name)
	}
}

func TestParseAllSkipsBlankLines(t *testing.T) {
	got := ParseAll([]string{"1 cup rice", "  ", "2 cups water"})
	if len(got) != 2 {
		t.Fatalf("expected 2 ingredients, got %d", len(got))
	}
	if got[1].Quantity != "2" || got[1].Unit != "cups" || got[1].Name != "water" {
		t.Errorf("unexpected second ingredient: %+v", got[1])
	}
}
