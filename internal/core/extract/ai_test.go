package extract

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"

	"recipe-importer/internal/core/ai/provider"
	"recipe-importer/internal/infrastructure/config"
	"recipe-importer/internal/pkg/common"
)

// fakeProvider 依序回傳預設內容；內容用完後重複最後一個
type fakeProvider struct {
	mu        sync.Mutex
	responses []string
	err       error
	requests  []*provider.Request
}

func (f *fakeProvider) Generate(ctx context.Context, req *provider.Request) (*provider.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, provider.ErrEmptyResponse
	}
	i := min(len(f.requests)-1, len(f.responses)-1)
	return &provider.Response{Content: f.responses[i]}, nil
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) GetModel() string { return "fake-model" }
func (f *fakeProvider) Close() error     { return nil }

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func testAIConfig() config.AIConfig {
	cfg := config.Default().AI
	cfg.APIKey = "sk-test"
	return cfg
}

func TestAIExtractorParsesResponse(t *testing.T) {
	fp := &fakeProvider{responses: []string{"Sure! Here is the recipe:\n```json\n" + `{
		"title": "Garlic Bread",
		"description": "Crispy.",
		"ingredients": [
			"1 baguette",
			{"section": "Garlic butter", "items": ["4 tbsp butter", {"quantity": 3, "unit": "", "name": "garlic cloves"}]}
		],
		"instructions": ["Mix butter and garlic.", "Spread and bake."],
		"prepTimeMinutes": "10",
		"cookTimeMinutes": 12.4,
		"servings": "6 people",
		"tags": ["bread", "Bread", "side"],
		"imageUrl": ""
	}` + "\n```\nEnjoy!"}}

	a := NewAIExtractor(fp, testAIConfig())
	u, _ := url.Parse("https://example.com/bread")
	d, ok := a.Extract(context.Background(), Page{URL: u, HTML: "<html><body><h1>Garlic Bread</h1><script>var x = 1;</script></body></html>"})
	if !ok {
		t.Fatal("expected a result")
	}

	if d.Title != "Garlic Bread" || d.Source != common.SourceAI {
		t.Errorf("unexpected draft: %+v", d)
	}
	want := []common.Ingredient{
		common.RawIngredient("1 baguette"),
		common.RawIngredient("4 tbsp butter"),
		common.StructuredIngredient("3", "", "garlic cloves"),
	}
	if len(d.Ingredients) != len(want) {
		t.Fatalf("ingredients = %+v", d.Ingredients)
	}
	for i := range want {
		if d.Ingredients[i] != want[i] {
			t.Errorf("ingredient %d = %+v, want %+v", i, d.Ingredients[i], want[i])
		}
	}
	if d.PrepTimeMinutes != 10 || d.CookTimeMinutes != 12 || d.Servings != 6 {
		t.Errorf("numbers = %d/%d/%d", d.PrepTimeMinutes, d.CookTimeMinutes, d.Servings)
	}
	if len(d.Tags) != 2 {
		t.Errorf("tags = %q", d.Tags)
	}

	req := fp.requests[0]
	if req.System == "" || len(req.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", req)
	}
	if strings.Contains(req.Messages[0].Content, "var x") {
		t.Error("script content must be stripped from the prompt")
	}
	if !strings.Contains(req.Messages[0].Content, "https://example.com/bread") {
		t.Error("prompt should carry the page URL")
	}
}

func TestAIExtractorNoResult(t *testing.T) {
	tests := []struct {
		name string
		fp   *fakeProvider
	}{
		{"provider error", &fakeProvider{err: provider.NewError("fake", 500, errors.New("boom"))}},
		{"no json", &fakeProvider{responses: []string{"I could not find a recipe."}}},
		{"empty payload", &fakeProvider{responses: []string{`{"title": "", "ingredients": [], "instructions": []}`}}},
		{"unbalanced json", &fakeProvider{responses: []string{`{"title": "Soup"`}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAIExtractor(tt.fp, testAIConfig())
			if _, ok := a.Extract(context.Background(), page("<p>some page</p>")); ok {
				t.Fatal("expected no result")
			}
		})
	}
}

func TestAIExtractorDisabled(t *testing.T) {
	a := NewAIExtractor(nil, config.Default().AI)
	if a.Enabled() {
		t.Fatal("extractor without provider must be disabled")
	}
	if _, ok := a.Extract(context.Background(), page("<p>text</p>")); ok {
		t.Fatal("disabled extractor must not produce a result")
	}
}

func TestParseAIResponseRepairsUnquotedKeys(t *testing.T) {
	d, err := parseAIResponse(`{title: "Toast", ingredients: ["1 slice bread"], instructions: ["Toast it."]}`)
	if err != nil {
		t.Fatalf("parseAIResponse: %v", err)
	}
	if d.Title != "Toast" || len(d.Ingredients) != 1 {
		t.Errorf("unexpected draft: %+v", d)
	}
	if d.Servings != common.DefaultServings {
		t.Errorf("servings = %d, want default", d.Servings)
	}
}

func TestCleanText(t *testing.T) {
	html := `<html><head><style>body{}</style><title>T</title></head>
<body><ul><li>1 cup rice</li><li>2 cups water</li></ul><noscript>enable js</noscript></body></html>`

	got := CleanText(page(html), 0, false)
	if got != "T 1 cup rice 2 cups water" {
		t.Errorf("CleanText = %q", got)
	}

	if got := CleanText(page(html), 6, false); got != "T 1 cu" {
		t.Errorf("truncated = %q", got)
	}

	if got := CleanText(page("Plain caption text"), 100, false); got != "Plain caption text" {
		t.Errorf("plain text = %q", got)
	}

	// 短正文不足以取代整頁文字
	u, _ := url.Parse("https://example.com/rice")
	if got := CleanText(Page{URL: u, HTML: html}, 0, true); got != "T 1 cup rice 2 cups water" {
		t.Errorf("readability fallback = %q", got)
	}
}

func TestCleanTextWithoutVisibleText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			"json-ld only",
			`<script type="application/ld+json">{"@type": "Recipe",
  "name": "Soup"}</script><script>var x = 1;</script>`,
			`{"@type": "Recipe", "name": "Soup"}`,
		},
		{
			"meta only",
			`<head><meta property="og:title" content="Meta Cake"><meta name="description" content=" Lemon  cake "><meta charset="utf-8"></head>`,
			"og:title: Meta Cake\ndescription: Lemon cake",
		},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(page(tt.html), 0, false); got != tt.want {
				t.Errorf("CleanText = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAIExtractorUsesMarkupWhenBodyIsEmpty(t *testing.T) {
	fp := &fakeProvider{responses: []string{`{"title": "Soup", "ingredients": ["1 l stock"], "instructions": ["Heat."]}`}}
	a := NewAIExtractor(fp, testAIConfig())

	html := `<script type="application/ld+json">{"@type":"Recipe","name":"Soup","recipeIngredient":[]}</script>`
	d, ok := a.Extract(context.Background(), page(html))
	if !ok || d.Title != "Soup" {
		t.Fatalf("expected a result, got %+v %v", d, ok)
	}
	if fp.calls() != 1 || !strings.Contains(fp.requests[0].Messages[0].Content, `"name":"Soup"`) {
		t.Errorf("prompt should carry the ld+json text, requests = %d", fp.calls())
	}
}
