package headhunter

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

const (
	contentType     = "application/json"
	contentEncoding = "gzip"
)

type ItemResponse struct {
	Items   []Item
	Found   int
	Pages   int
	Page    int
	PerPage int `json:"per_page"`
}

type Item interface{}

// GetItems makes GET requests to the HeadHunter API and returns items from all pages,
// stopping once limit items were collected. limit <= 0 means no limit.
func (c *Client) GetItems(ctx context.Context, u string, q url.Values, limit int) ([]Item, error) {
	var items []Item

	if q == nil {
		q = url.Values{}
	}

	for page := 0; ; page++ {
		q.Set("page", strconv.Itoa(page))

		var response ItemResponse
		if err := c.getJSON(ctx, u, q, &response); err != nil {
			return nil, err
		}

		c.logger.Debug("got response from HH.ru",
			zap.Int("page", response.Page),
			zap.Int("pages", response.Pages),
			zap.Int("max items per page", response.PerPage),
		)

		items = append(items, response.Items...)

		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		if response.Page >= response.Pages-1 || len(response.Items) == 0 {
			return items, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, u string, q url.Values, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	c.setHeaders(req)
	if q != nil {
		req.URL.RawQuery = q.Encode()
	}

	c.logger.Debug("make request", zap.String("url", req.URL.String()))
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	if target == nil {
		return nil
	}

	return json.Unmarshal(data, target)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Content-Type", contentType)
}
