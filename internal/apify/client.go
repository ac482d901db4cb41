package apify

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL      = "https://api.apify.com"
	contentType = "application/json"
	// Scraper actors can take a while; the sync endpoint holds the
	// connection until the run finishes.
	runTimeout = 120 * time.Second
)

// Client is a minimal Apify API client covering the two calls the pipeline
// needs: synchronous actor runs and dataset item pushes.
type Client struct {
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(token string, logger *zap.Logger) *Client {
	return &Client{
		token:  token,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: runTimeout,
		},
		logger:    logger,
		UserAgent: "job-search-agent",
	}
}

// RunActorSync starts an actor run, waits for it to finish and returns the
// items from its default dataset. Actor IDs use the user/name form.
func (c *Client) RunActorSync(ctx context.Context, actorID string, input any) ([]map[string]any, error) {
	// The path form of an actor ID separates user and name with a tilde.
	actorPath := strings.ReplaceAll(actorID, "/", "~")
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items", c.APIURL, actorPath)

	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("marshal actor input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	q := url.Values{}
	q.Set("format", "json")
	req.URL.RawQuery = q.Encode()

	resp, err := c.request(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	reader, err := responseReader(resp)
	if err != nil {
		return nil, err
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var items []map[string]any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode dataset items: %w", err)
	}

	c.logger.Debug("actor run finished",
		zap.String("actor", actorID),
		zap.Int("items", len(items)),
	)

	return items, nil
}

// PushItems appends records to the given dataset.
func (c *Client) PushItems(ctx context.Context, datasetID string, items any) error {
	endpoint := fmt.Sprintf("%s/v2/datasets/%s/items", c.APIURL, datasetID)

	body, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal dataset items: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req = c.setHeaders(req)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	return nil
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	return req
}

func responseReader(resp *http.Response) (io.Reader, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		reader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, err
		}
		return reader, nil
	}
	return resp.Body, nil
}
