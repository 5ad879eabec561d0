package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL   = "https://api.hh.ru"
	defaultUserAgent = "hhnotify/1.0"
	defaultPerPage   = 100
	defaultMaxPages  = 20
	defaultTimeout   = 15 * time.Second
)

// ErrNoAccessToken is returned when a call is made without a bearer token
var ErrNoAccessToken = errors.New("hh: access token is required")

// NewClient instantiates an hh.ru API client
func NewClient(cfg Config) (*Client, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("hh: parse base url: %w", err)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	maxPages := cfg.MaxPages
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: httpClient,
		perPage:    perPage,
		maxPages:   maxPages,
		timeout:    timeout,
	}, nil
}

// Vacancies lists the employer's open vacancies, following pagination
func (c *Client) Vacancies(ctx context.Context, token, employerID string) ([]Vacancy, error) {
	if employerID == "" {
		return nil, fmt.Errorf("hh: employer id is required")
	}

	items, err := collectPages[vacancyItem](ctx, c, token, "vacancies", url.Values{"employer_id": {employerID}})
	if err != nil {
		return nil, err
	}

	out := make([]Vacancy, 0, len(items))
	for _, item := range items {
		out = append(out, mapVacancy(item))
	}
	return out, nil
}

// Negotiations lists responses on a vacancy, following pagination
func (c *Client) Negotiations(ctx context.Context, token, vacancyID string) ([]Negotiation, error) {
	if vacancyID == "" {
		return nil, fmt.Errorf("hh: vacancy id is required")
	}

	items, err := collectPages[negotiationItem](ctx, c, token, "negotiations/response", url.Values{"vacancy_id": {vacancyID}})
	if err != nil {
		return nil, err
	}

	out := make([]Negotiation, 0, len(items))
	for _, item := range items {
		out = append(out, mapNegotiation(item))
	}
	return out, nil
}

// TestSolution returns the first opened answer of the negotiation's test,
// or "" when the vacancy has no test or the candidate skipped it
func (c *Client) TestSolution(ctx context.Context, token, negotiationID string) (string, error) {
	if negotiationID == "" {
		return "", fmt.Errorf("hh: negotiation id is required")
	}

	var payload testSolutionResponse
	err := c.getJSON(ctx, token, c.endpoint(path.Join("negotiations", negotiationID, "test", "solution"), nil), &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}

	if payload.TestResult == nil || len(payload.TestResult.Tasks) == 0 {
		return "", nil
	}
	if answer := payload.TestResult.Tasks[0].OpenedAnswer; answer != nil {
		return answer.Value, nil
	}
	return "", nil
}

// Download streams an authenticated absolute URL (e.g. a resume PDF) into w
func (c *Client) Download(ctx context.Context, token, rawURL string, w io.Writer) (int64, error) {
	if rawURL == "" {
		return 0, fmt.Errorf("hh: download url is required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, token, rawURL, "")
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("hh: download body: %w", err)
	}
	return n, nil
}

func collectPages[T any](ctx context.Context, c *Client, token, resource string, query url.Values) ([]T, error) {
	var out []T
	for p := 0; p < c.maxPages; p++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(p))
		q.Set("per_page", strconv.Itoa(c.perPage))

		var payload page[T]
		if err := c.getJSON(ctx, token, c.endpoint(resource, q), &payload); err != nil {
			return nil, err
		}
		out = append(out, payload.Items...)

		if p+1 >= payload.Pages || len(payload.Items) == 0 {
			break
		}
	}
	return out, nil
}

func (c *Client) endpoint(resource string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(resource, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) getJSON(ctx context.Context, token, u string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.do(ctx, token, u, "application/json")
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("hh: decode response: %w", err)
	}
	return nil
}

// do performs an authenticated GET and converts error statuses into *APIError
func (c *Client) do(ctx context.Context, token, u, accept string) (*http.Response, error) {
	if token == "" {
		return nil, ErrNoAccessToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("hh: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hh: request failed: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return resp, nil
}
