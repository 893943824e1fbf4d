// Package directory is the outbound adapter for the national area directory,
// the remote service that enumerates every statistical area code. It
// implements [ports.AreaDirectory] on top of [httpclient.Client].
package directory

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/jsamuelsen11/ramp-pipeline/internal/domain"
	"github.com/jsamuelsen11/ramp-pipeline/internal/platform/httpclient"
	"github.com/jsamuelsen11/ramp-pipeline/internal/ports"
)

// ServiceName identifies the directory in traces, metrics and health checks.
const ServiceName = "area-directory"

const (
	areasPath = "/api/v1/areas"
	areaType  = "msoa"

	// maxPages stops a misbehaving server from paging forever.
	maxPages = 10_000
)

// Compile-time interface checks.
var (
	_ ports.AreaDirectory = (*Client)(nil)
	_ ports.HealthChecker = (*Client)(nil)
)

// Client implements [ports.AreaDirectory].
type Client struct {
	http   *httpclient.Client
	req    *requester
	logger *slog.Logger
}

// NewClient creates a Client that sends requests through the given
// [httpclient.Client], whose BaseURL points at the directory root.
func NewClient(client *httpclient.Client, logger *slog.Logger) *Client {
	return &Client{
		http:   client,
		req:    &requester{client: client, logger: logger},
		logger: logger,
	}
}

// AllAreaCodes pages through GET /api/v1/areas?type=msoa until the server
// returns an empty next_page_token. Codes repeated across pages are returned
// once, in first-seen order. Any invalid code fails the whole enumeration.
func (c *Client) AllAreaCodes(ctx context.Context) ([]domain.AreaCode, error) {
	start := time.Now()

	var (
		codes      []domain.AreaCode
		seen       = make(map[domain.AreaCode]struct{})
		seenTokens = make(map[string]struct{})
		token      string
		pages      int
	)

	for {
		if pages == maxPages {
			return nil, unavailable("gave up after %d pages", maxPages)
		}

		var page areaPageDTO
		if err := c.req.getJSON(ctx, pagePath(token), &page); err != nil {
			return nil, err
		}
		pages++

		for _, raw := range page.AreaCodes {
			code, err := domain.ParseAreaCode(raw)
			if err != nil {
				return nil, unavailable("page %d: %v", pages, err)
			}
			if _, dup := seen[code]; dup {
				continue
			}
			seen[code] = struct{}{}
			codes = append(codes, code)
		}

		token = page.NextPageToken
		if token == "" {
			break
		}
		if _, loop := seenTokens[token]; loop {
			return nil, unavailable("page token %q repeated", token)
		}
		seenTokens[token] = struct{}{}
	}

	c.logger.InfoContext(ctx, "area codes enumerated",
		slog.String("peer_service", ServiceName),
		slog.Int("codes", len(codes)),
		slog.Int("pages", pages),
		slog.Duration("elapsed", time.Since(start)),
	)
	return codes, nil
}

func pagePath(token string) string {
	q := url.Values{}
	q.Set("type", areaType)
	if token != "" {
		q.Set("page_token", token)
	}
	return areasPath + "?" + q.Encode()
}
