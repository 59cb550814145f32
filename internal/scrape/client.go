package scrape

import (
	"context"
	"dedi-tracker/internal/config"
	"dedi-tracker/internal/constants"
	"fmt"
	"net/url"
	"time"

	"github.com/valyala/fasthttp"
)

// Dedimania refuses default library agents, so pretend to be a browser.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.1 Safari/537.36"

// Client fetches raw record pages from the Dedimania statistics site.
type Client struct {
	baseURL string
	client  *fasthttp.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL: cfg.SourceBaseURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         constants.FetchTimeout,
			WriteTimeout:        constants.FetchTimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

// RecordsURL builds the per-map statistics URL.
func (c *Client) RecordsURL(uid string) string {
	return fmt.Sprintf("%s/tmstats/?do=stat&Mode=M1&Uid=%s&Show=RECORDS", c.baseURL, url.QueryEscape(uid))
}

// FetchPage performs one GET for a map UID and returns the raw HTML body.
func (c *Client) FetchPage(ctx context.Context, uid string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.RecordsURL(uid))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(userAgent)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(constants.FetchTimeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", uid, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("fetching %s: status %d", uid, resp.StatusCode())
	}

	body := make([]byte, len(resp.Body()))
	copy(body, resp.Body())
	return body, nil
}
