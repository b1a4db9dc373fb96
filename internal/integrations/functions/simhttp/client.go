package simhttp

import (
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

// Client вызывает функцию симуляции GPS (POST /functions/v1/schedule-gps-updates).
// Авторизация — bearer-токен сессии, при его отсутствии анонимный ключ.
type Client struct {
	baseURL string
	anonKey string
	tokens  functions.TokenSource
	httpc   *retryablehttp.Client
}

func New(baseURL, anonKey string, tokens functions.TokenSource) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:9000"
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 1 * time.Second
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = nil
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		tokens:  tokens,
		httpc:   rc,
	}
}

func (c *Client) SimulateGPS(ctx context.Context) (functions.SimResult, error) {
	url := c.baseURL + "/functions/v1/schedule-gps-updates"

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return functions.SimResult{}, errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.bearer())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return functions.SimResult{}, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return functions.SimResult{}, fmt.Errorf("gps simulation http %d", resp.StatusCode)
	}

	var res functions.SimResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return functions.SimResult{}, errors.Wrap(err, "decode")
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
