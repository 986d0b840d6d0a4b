package airtable

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/brotli"

	"course-feeds/internal/domain"
)

type Client struct {
	BaseURL string
	BaseID  string
	PAT     string
	HTTP    *http.Client
}

func New(baseURL, baseID, pat string) *Client {
	return &Client{
		BaseURL: baseURL,
		BaseID:  baseID,
		PAT:     pat,
		HTTP: &http.Client{
			Timeout: 60 * time.Second, // per request
		},
	}
}

// HTTPError carries status/body for non-2xx responses so the caller can log
// the status and a truncated body before aborting the run.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("airtable: %s %s status=%d body=%s", e.Method, e.URL, e.StatusCode, snippet(e.Body, 900))
}

func snippet(b []byte, max int) string {
	s := strings.TrimSpace(string(b))
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

type listResponse struct {
	Records []domain.Record `json:"records"`
	Offset  string          `json:"offset"`
}

// FetchAll retrieves every record of a table, optionally scoped by a view.
// Pagination is strictly sequential: each page's offset token is required
// before the next request can be issued. There are no retries; the first
// failed request aborts the run with the full error.
func (c *Client) FetchAll(ctx context.Context, table, view string) ([]domain.Record, error) {
	if c.PAT == "" {
		return nil, fmt.Errorf("airtable: missing env AIRTABLE_PAT")
	}
	if c.BaseID == "" {
		return nil, fmt.Errorf("airtable: missing env AIRTABLE_BASE_ID")
	}
	if table == "" {
		return nil, fmt.Errorf("airtable: empty table name")
	}

	apiURL := fmt.Sprintf("%s/%s/%s", c.BaseURL, c.BaseID, url.PathEscape(table))

	var all []domain.Record
	offset := ""

	for page := 1; ; page++ {
		q := url.Values{}
		if view != "" {
			q.Set("view", view)
		}
		if offset != "" {
			q.Set("offset", offset)
		}

		pageURL := apiURL
		if len(q) > 0 {
			pageURL += "?" + q.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
		if err != nil {
			return nil, fmt.Errorf("airtable: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.PAT)
		req.Header.Set("Accept", "application/json")
		// We negotiate encoding ourselves; the transport then skips its
		// automatic gzip handling, so both branches are decoded below.
		req.Header.Set("Accept-Encoding", "gzip, br")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return nil, fmt.Errorf("airtable: request failed: %w", err)
		}

		body, err := readBody(resp)
		if err != nil {
			return nil, fmt.Errorf("airtable: read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &HTTPError{
				Method:     http.MethodGet,
				URL:        pageURL,
				StatusCode: resp.StatusCode,
				Body:       body,
			}
		}

		var out listResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, fmt.Errorf("airtable: json parse error: %w body=%s", err, snippet(body, 900))
		}

		log.Printf("airtable %s page %d: records=%d", table, page, len(out.Records))
		all = append(all, out.Records...)

		if out.Offset == "" {
			return all, nil
		}
		offset = out.Offset
	}
}

func readBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "br":
		return io.ReadAll(brotli.NewReader(resp.Body))
	case "gzip":
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	default:
		return io.ReadAll(resp.Body)
	}
}
