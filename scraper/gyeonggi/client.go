// Package gyeonggi fetches restaurant data-sets from the Gyeonggi-do open data API.
package gyeonggi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"restaurant-sync/models"
)

const (
	// DefaultBaseURL is the public Gyeonggi-do open API host.
	DefaultBaseURL = "https://openapi.gg.go.kr"
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 30 * time.Second

	userAgent     = "restaurant-sync/1.0"
	datasetPrefix = "Genrestrt"
	resultCodeOK  = "INFO-000"

	// resultCodeNoData is returned instead of an envelope when a data-set is empty.
	resultCodeNoData = "INFO-200"
)

// Page is one decoded page of a data-set.
type Page struct {
	Rows       []*models.RawRecord
	TotalCount int
	// HasTotal is false when the head section did not carry list_total_count.
	HasTotal bool
}

// PageFetcher retrieves one page of a data-set.
type PageFetcher interface {
	FetchPage(ctx context.Context, dataset, apiKey string, pageIndex, pageSize int) (*Page, error)
}

// FetchError reports a failed page request: transport error, timeout,
// non-2xx status or an envelope that could not be decoded.
type FetchError struct {
	Dataset    string
	Page       int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s page %d: status %d: %v", e.Dataset, e.Page, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s page %d: %v", e.Dataset, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Client is the HTTP PageFetcher for Genrestrt* endpoints.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL and a
// non-positive timeout selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// PageURL builds the endpoint URL for one page of a data-set.
func (c *Client) PageURL(dataset, apiKey string, pageIndex, pageSize int) string {
	q := url.Values{}
	q.Set("KEY", apiKey)
	q.Set("Type", "json")
	q.Set("pIndex", strconv.Itoa(pageIndex))
	q.Set("pSize", strconv.Itoa(pageSize))
	return c.baseURL + "/" + datasetPrefix + dataset + "?" + q.Encode()
}

// FetchPage performs one GET for the given page and decodes the envelope.
func (c *Client) FetchPage(ctx context.Context, dataset, apiKey string, pageIndex, pageSize int) (*Page, error) {
	fail := func(status int, err error) (*Page, error) {
		return nil, &FetchError{Dataset: dataset, Page: pageIndex, StatusCode: status, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.PageURL(dataset, apiKey, pageIndex, pageSize), nil)
	if err != nil {
		return fail(0, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(resp.StatusCode, errors.New(http.StatusText(resp.StatusCode)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, fmt.Errorf("read body: %w", err))
	}

	page, err := decodeEnvelope(dataset, body)
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	return page, nil
}

type providerResult struct {
	Code    string `json:"CODE"`
	Message string `json:"MESSAGE"`
}

type headEntry struct {
	TotalCount *int            `json:"list_total_count"`
	Result     *providerResult `json:"RESULT"`
}

type envelopeSection struct {
	Head []headEntry         `json:"head"`
	Row  []*models.RawRecord `json:"row"`
}

// decodeEnvelope unpacks {"Genrestrt<ds>": [{"head": [...]}, {"row": [...]}]}.
// Sections are matched by content rather than position because the head is only
// guaranteed on the first page. When the provider has nothing to return it
// answers with a bare top-level RESULT instead.
func decodeEnvelope(dataset string, body []byte) (*Page, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	key := datasetPrefix + dataset
	raw, ok := top[key]
	if !ok {
		if res, hasResult := top["RESULT"]; hasResult {
			var pr providerResult
			if err := json.Unmarshal(res, &pr); err == nil {
				if pr.Code == resultCodeNoData {
					return &Page{Rows: []*models.RawRecord{}, HasTotal: true}, nil
				}
				return nil, fmt.Errorf("provider result %s: %s", pr.Code, pr.Message)
			}
		}
		return nil, fmt.Errorf("envelope has no %q key", key)
	}

	var sections []envelopeSection
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("decode %s sections: %w", key, err)
	}

	page := &Page{}
	sawRow := false
	for _, section := range sections {
		for _, h := range section.Head {
			if h.TotalCount != nil {
				page.TotalCount = *h.TotalCount
				page.HasTotal = true
			}
			if h.Result != nil && h.Result.Code != "" && h.Result.Code != resultCodeOK {
				return nil, fmt.Errorf("provider result %s: %s", h.Result.Code, h.Result.Message)
			}
		}
		if section.Row != nil {
			sawRow = true
			page.Rows = append(page.Rows, section.Row...)
		}
	}
	if !sawRow {
		return nil, fmt.Errorf("%s: envelope has no row section", key)
	}
	return page, nil
}
