package routehttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/antonkhm/warelog/internal/integrations/functions"
	retryablehttp "github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

// Client вызывает функцию подбора маршрута (POST /functions/v1/route-optimization).
type Client struct {
	baseURL     string
	anonKey     string
	mapboxToken string
	tokens      functions.TokenSource
	httpc       *retryablehttp.Client
}

func New(baseURL, anonKey, mapboxToken string, tokens functions.TokenSource) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 1
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 1 * time.Second
	rc.HTTPClient.Timeout = 15 * time.Second
	rc.Logger = nil
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		anonKey:     anonKey,
		mapboxToken: mapboxToken,
		tokens:      tokens,
		httpc:       rc,
	}
}

func (c *Client) OptimizeRoute(ctx context.Context, req functions.RouteRequest) (functions.RouteResponse, error) {
	if req.MapboxToken == "" {
		req.MapboxToken = c.mapboxToken
	}

	body, err := json.Marshal(req)
	if err != nil {
		return functions.RouteResponse{}, errors.Wrap(err, "marshal request")
	}

	url := c.baseURL + "/functions/v1/route-optimization"
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return functions.RouteResponse{}, errors.Wrap(err, "new request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.bearer())

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return functions.RouteResponse{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return functions.RouteResponse{}, fmt.Errorf("route optimization http %d", resp.StatusCode)
	}

	var res functions.RouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return functions.RouteResponse{}, errors.Wrap(err, "decode")
	}
	return res, nil
}

func (c *Client) bearer() string {
	if c.tokens != nil {
		if tok := c.tokens(); tok != "" {
			return tok
		}
	}
	return c.anonKey
}
