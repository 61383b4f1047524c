package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/famnudger/fam/backend/internal/types"
)

const productFields = "product_name,ingredients_text,nutriments"

// OpenFoodFactsClient looks products up in the OpenFoodFacts v2 API.
type OpenFoodFactsClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ ProductLookup = (*OpenFoodFactsClient)(nil)

func NewOpenFoodFactsClient(baseURL string, timeout time.Duration) *OpenFoodFactsClient {
	return &OpenFoodFactsClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type offResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductName     string                 `json:"product_name"`
		IngredientsText string                 `json:"ingredients_text"`
		Nutriments      map[string]interface{} `json:"nutriments"`
	} `json:"product"`
}

func (c *OpenFoodFactsClient) Lookup(ctx context.Context, barcode string) (*Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return nil, ErrProductNotFound
	}

	endpoint := fmt.Sprintf("%s/api/v2/product/%s?fields=%s", c.baseURL, url.PathEscape(barcode), productFields)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductLookupFailed, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FamNudger/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProductLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrProductNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrProductLookupFailed, resp.StatusCode)
	}

	var body offResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProductLookupFailed, err)
	}
	if body.Status != 1 {
		return nil, ErrProductNotFound
	}

	return &Product{
		Barcode:     barcode,
		Name:        strings.TrimSpace(body.Product.ProductName),
		Ingredients: SplitIngredients(body.Product.IngredientsText),
		Nutrition:   nutritionFromNutriments(body.Product.Nutriments),
	}, nil
}

// SplitIngredients splits a label's ingredient text on commas and semicolons
// that are not inside parentheses or brackets.
func SplitIngredients(text string) []string {
	text = strings.TrimSpace(text)
	if lower := strings.ToLower(text); strings.HasPrefix(lower, "ingredients:") {
		text = text[len("ingredients:"):]
	}

	var out []string
	var b strings.Builder
	depth := 0
	flush := func() {
		part := strings.TrimSpace(b.String())
		part = strings.TrimRight(part, ".")
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
		b.Reset()
	}
	for _, r := range text {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		case ',', ';':
			if depth == 0 {
				flush()
				continue
			}
		}
		b.WriteRune(r)
	}
	flush()
	return out
}

func nutritionFromNutriments(n map[string]interface{}) *types.NutritionFacts {
	if len(n) == 0 {
		return nil
	}
	facts := &types.NutritionFacts{
		EnergyKcal:   nutriment(n, "energy-kcal_100g"),
		Sugars:       nutriment(n, "sugars_100g"),
		SaturatedFat: nutriment(n, "saturated-fat_100g"),
		Fiber:        nutriment(n, "fiber_100g"),
		Protein:      nutriment(n, "proteins_100g"),
	}
	// reported in grams
	if sodium := nutriment(n, "sodium_100g"); sodium != nil {
		mg := *sodium * 1000
		facts.SodiumMg = &mg
	}
	if facts.EnergyKcal == nil && facts.Sugars == nil && facts.SaturatedFat == nil &&
		facts.SodiumMg == nil && facts.Fiber == nil && facts.Protein == nil {
		return nil
	}
	return facts
}

// nutriment reads a value that may be encoded as a number or a string.
func nutriment(n map[string]interface{}, key string) *float64 {
	switch v := n[key].(type) {
	case float64:
		return &v
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return &f
		}
	}
	return nil
}
