package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/clockert/fram-backend/config"
)

// ErrNotConfigured is returned when no FoodData Central API key is set.
var ErrNotConfigured = errors.New("nutrition: FDC API key is not configured")

// FDCClient queries the USDA FoodData Central search endpoint. It filters
// for Foundation foods and takes the single best match, same as the
// storefront always has.
type FDCClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewFDCClient builds an FDCClient from config. Requests time out after 10s
// rather than hanging a product page on a slow upstream.
func NewFDCClient(cfg *config.NutritionConfig) *FDCClient {
	return &FDCClient{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchNutrition searches FoodData Central for the product name and returns
// the raw response payload.
func (c *FDCClient) FetchNutrition(ctx context.Context, query string) (json.RawMessage, error) {
	if c.apiKey == "" {
		return nil, ErrNotConfigured
	}

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("query", query)
	params.Set("dataType", "Foundation")
	params.Set("pageSize", "1")
	params.Set("sortBy", "dataType.keyword")
	params.Set("sortOrder", "asc")

	reqURL := fmt.Sprintf("%s/foods/search?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FDC request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FDC responded with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}
