package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/config"
)

// Client fetches raw mandi price records from the government open-data API,
// with retries against the primary source and a fallback source ladder.
type Client struct {
	HTTPClient *http.Client
	primary    config.SourceConfig
	fallbacks  []config.SourceConfig
	maxRetries int
	logger     *logrus.Logger

	// Backoff is the base delay between primary attempts; attempt n sleeps
	// n*Backoff. Tests set this to zero.
	Backoff time.Duration
}

// NewClient creates a new upstream client from configuration.
func NewClient(cfg *config.UpstreamConfig, logger *logrus.Logger) *Client {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 3
	}

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		primary:    normalizeSource(cfg.Primary),
		fallbacks:  normalizeSources(cfg.FallbackSources),
		maxRetries: maxRetries,
		logger:     logger,
		Backoff:    time.Second,
	}
}

// FetchPrices resolves a query against the fallback ladder:
//
//  1. Up to maxRetries attempts against the primary source with the full
//     filter set, with linearly increasing backoff between attempts.
//  2. Within an attempt, if the response is valid but empty and a location
//     filter was supplied, one commodity-only retry before the attempt ends.
//  3. After the primary is exhausted, each fallback source once, with a
//     relaxed query (doubled limit, commodity filter only).
//
// A reachable-but-empty ladder yields an empty result with nil error; the
// caller serves that as a legitimate zero-match response. ErrAllSourcesFailed
// is returned only when no source produced a parseable response at all.
func (c *Client) FetchPrices(ctx context.Context, q Query) (*FetchResult, error) {
	var lastErr error
	reachable := ""

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			c.sleep(ctx, time.Duration(attempt)*c.Backoff)
		}

		records, err := c.query(ctx, c.primary, q, q.Limit, true)
		if err != nil {
			lastErr = err
			c.logger.WithFields(logrus.Fields{
				"source":  c.primary.Name,
				"attempt": attempt,
			}).Warnf("upstream fetch failed: %v", err)
			continue
		}

		reachable = c.primary.Name
		if len(records) > 0 {
			return &FetchResult{Records: records, Source: c.primary.Name}, nil
		}

		// Narrow filters often match nothing even when the commodity has
		// quotations elsewhere, so drop the location filter once.
		if q.HasLocationFilter() {
			records, err = c.query(ctx, c.primary, q, q.Limit, false)
			if err == nil && len(records) > 0 {
				return &FetchResult{
					Records: records,
					Source:  c.primary.Name + " (location filter relaxed)",
				}, nil
			}
			if err != nil {
				lastErr = err
			}
		}
	}

	// Fallback sources get one shot each with a relaxed query.
	for _, source := range c.fallbacks {
		relaxed := Query{Commodity: q.Commodity, Limit: q.Limit * 2}
		records, err := c.query(ctx, source, relaxed, relaxed.Limit, false)
		if err != nil {
			lastErr = err
			c.logger.WithField("source", source.Name).Warnf("fallback fetch failed: %v", err)
			continue
		}
		reachable = source.Name
		if len(records) > 0 {
			return &FetchResult{Records: records, Source: source.Name}, nil
		}
	}

	if reachable != "" {
		return &FetchResult{Records: []RawRecord{}, Source: reachable}, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllSourcesFailed, lastErr)
	}
	return nil, ErrAllSourcesFailed
}

// query issues one GET against a source and parses its records array.
// A non-2xx status or a body without an array-typed records field is an
// error; an empty array is not.
func (c *Client) query(ctx context.Context, source config.SourceConfig, q Query, limit int, withLocation bool) ([]RawRecord, error) {
	reqURL := c.buildURL(source, q, limit, withLocation)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "FarmCon/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &SourceError{Source: source.Name, Err: err}
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warnf("error closing response body: %v", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SourceError{Source: source.Name, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &SourceError{
			Source: source.Name,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s", strings.TrimSpace(string(body))),
		}
	}

	var envelope struct {
		Records json.RawMessage `json:"records"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &SourceError{Source: source.Name, Err: fmt.Errorf("malformed response body: %w", err)}
	}

	trimmed := bytes.TrimSpace(envelope.Records)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &SourceError{Source: source.Name, Err: fmt.Errorf("response has no records array")}
	}

	var records []RawRecord
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, &SourceError{Source: source.Name, Err: fmt.Errorf("malformed records array: %w", err)}
	}

	return records, nil
}

func (c *Client) buildURL(source config.SourceConfig, q Query, limit int, withLocation bool) string {
	params := url.Values{}
	params.Set("api-key", source.APIKey)
	params.Set("format", "json")
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if q.Commodity != "" {
		params.Set("filters[commodity]", q.Commodity)
	}
	if withLocation {
		if q.State != "" {
			params.Set("filters[state]", q.State)
		}
		if q.District != "" {
			params.Set("filters[district]", q.District)
		}
	}
	return source.BaseURL + "?" + params.Encode()
}

// sleep waits for the backoff delay unless the context ends first. The delay
// is local to this request, not a global throttle.
func (c *Client) sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func normalizeSource(s config.SourceConfig) config.SourceConfig {
	s.BaseURL = strings.TrimSuffix(s.BaseURL, "/")
	return s
}

func normalizeSources(sources []config.SourceConfig) []config.SourceConfig {
	out := make([]config.SourceConfig, len(sources))
	for i, s := range sources {
		out[i] = normalizeSource(s)
	}
	return out
}
