package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dyluth/swatches/pkg/swatch"
)

// DefaultBaseURL is the public color naming service.
const DefaultBaseURL = "https://www.thecolorapi.com"

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL           string        // Service root (default DefaultBaseURL)
	Timeout           time.Duration // Per-request timeout (0 = none beyond ctx)
	RequestsPerSecond float64       // Client-side pacing (0 = unlimited)
	HTTPClient        *http.Client  // Optional transport override
	Logger            *slog.Logger
}

// HTTPClient names colors using thecolorapi.com's /id endpoint.
// It does not retry; a failed request is reported to the caller.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	pacer   *rate.Limiter
	logger  *slog.Logger
}

// colorAPIResponse is the subset of the /id payload we read.
type colorAPIResponse struct {
	Name struct {
		Value string `json:"value"`
	} `json:"name"`
	Hex struct {
		Value string `json:"value"`
	} `json:"hex"`
	RGB struct {
		R int `json:"r"`
		G int `json:"g"`
		B int `json:"b"`
	} `json:"rgb"`
}

// NewHTTPClient creates a color API client.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var pacer *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := int(cfg.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		pacer = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		pacer:   pacer,
		logger:  logger.With("component", "oracle"),
	}, nil
}

// Lookup fetches the named color at (hue, saturation%, lightness%).
// Cancellation of ctx aborts the request and is returned as the context error
// rather than an *Error.
func (c *HTTPClient) Lookup(ctx context.Context, hue, saturation, lightness int) (swatch.ColorPoint, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return swatch.ColorPoint{}, ctx.Err()
			}
			return swatch.ColorPoint{}, &Error{Hue: hue, Err: err}
		}
	}

	params := url.Values{}
	params.Set("hsl", fmt.Sprintf("%d,%d%%,%d%%", hue, saturation, lightness))
	endpoint := fmt.Sprintf("%s/id?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return swatch.ColorPoint{}, &Error{Hue: hue, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return swatch.ColorPoint{}, ctx.Err()
		}
		return swatch.ColorPoint{}, &Error{Hue: hue, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return swatch.ColorPoint{}, &Error{
			Hue:        hue,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var payload colorAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		if ctx.Err() != nil {
			return swatch.ColorPoint{}, ctx.Err()
		}
		return swatch.ColorPoint{}, &Error{Hue: hue, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed payload: %w", err)}
	}

	point := swatch.ColorPoint{
		Hue:  hue,
		Name: payload.Name.Value,
		Hex:  payload.Hex.Value,
		RGB:  swatch.RGB{R: payload.RGB.R, G: payload.RGB.G, B: payload.RGB.B},
	}
	if err := point.Validate(); err != nil {
		return swatch.ColorPoint{}, &Error{Hue: hue, StatusCode: resp.StatusCode, Err: fmt.Errorf("malformed payload: %w", err)}
	}

	c.logger.Debug("lookup complete", "hue", hue, "saturation", saturation, "lightness", lightness,
		"name", point.Name, "duration", time.Since(start))

	return point, nil
}
