package worldbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultBaseURL is the public API endpoint.
const DefaultBaseURL = "https://api.worldbank.org/v2"

const (
	perPage = 1000

	// maxBody bounds one response page.
	maxBody = 16 << 20
)

var (
	// ErrStatus is returned for a non-200 response.
	ErrStatus = errors.New("unexpected status")

	// ErrAPI is returned when the API answers with an error message.
	ErrAPI = errors.New("world bank api error")
)

// Observation is one country's value. Value is invalid when the API has no
// figure for that country and year.
type Observation struct {
	Country string
	Value   pgtype.Float8
}

// Client fetches observations over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client for baseURL, or DefaultBaseURL when it is empty.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type pageMeta struct {
	Page    int          `json:"page"`
	Pages   int          `json:"pages"`
	Message []apiMessage `json:"message"`
}

type apiMessage struct {
	ID    string `json:"id"`
	Key   string `json:"key"`
	Value string `json:"value"`
}

type entry struct {
	Country struct {
		Value string `json:"value"`
	} `json:"country"`
	Value pgtype.Float8 `json:"value"`
}

// Observations returns every country's value of the indicator code in year.
func (c *Client) Observations(ctx context.Context, code string, year int) ([]Observation, error) {
	var out []Observation
	for page := 1; ; page++ {
		meta, entries, err := c.page(ctx, code, year, page)
		if err != nil {
			return nil, fmt.Errorf("%s %d page %d: %w", code, year, page, err)
		}
		for _, e := range entries {
			if e.Country.Value == "" {
				continue
			}
			out = append(out, Observation{Country: e.Country.Value, Value: e.Value})
		}
		if page >= meta.Pages {
			return out, nil
		}
	}
}

func (c *Client) page(ctx context.Context, code string, year, page int) (pageMeta, []entry, error) {
	u := fmt.Sprintf("%s/country/all/indicator/%s?format=json&per_page=%d&date=%d&page=%d",
		c.baseURL, url.PathEscape(code), perPage, year, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return pageMeta{}, nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return pageMeta{}, nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return pageMeta{}, nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return pageMeta{}, nil, fmt.Errorf("read body: %w", err)
	}
	return decodePage(body)
}

// decodePage splits a [meta, entries] response. An answer without an
// entries element is an empty page.
func decodePage(body []byte) (pageMeta, []entry, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(body, &parts); err != nil {
		return pageMeta{}, nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parts) == 0 {
		return pageMeta{}, nil, fmt.Errorf("decode response: empty array")
	}

	var meta pageMeta
	if err := json.Unmarshal(parts[0], &meta); err != nil {
		return pageMeta{}, nil, fmt.Errorf("decode page metadata: %w", err)
	}
	if len(meta.Message) > 0 {
		m := meta.Message[0]
		return pageMeta{}, nil, fmt.Errorf("%w: %s %s", ErrAPI, m.Key, m.Value)
	}
	if len(parts) < 2 {
		return meta, nil, nil
	}

	var entries []entry
	if err := json.Unmarshal(parts[1], &entries); err != nil {
		return pageMeta{}, nil, fmt.Errorf("decode entries: %w", err)
	}
	return meta, entries, nil
}
