// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package auravant

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/stockparfait/auravant/db"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// URL is the default base URL of the server. It may be overwritten in tests
// before creating a new client.
var URL = "https://api.auravant.com/api/"

// DefaultDatasetPath is where the ingestion script writes the harvest dataset.
const DefaultDatasetPath = "./dataset/All_Harvest.csv"

// Endpoints, relative to the base URL.
const (
	endpointFields = "getfields"
	endpointNDVI   = "fields/ndvi"
	endpointAdd    = "agregarlote"
	endpointDelete = "borrarlotes"
)

// Client for the Auravant API. It is safe for sequential use; concurrent
// callers should use their own instances.
type Client struct {
	baseURL    string // the base URL of the server
	token      string // bearer token of the user
	dataset    string // path to the harvest CSV
	harvest    *db.HarvestConfig
	httpClient *http.Client
}

// NewClient creates a new client for the bearer token. The token is not
// checked until the first request.
func NewClient(token string) *Client {
	return newClient(URL, token)
}

func newClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		dataset:    DefaultDatasetPath,
		harvest:    db.NewHarvestConfig(),
		httpClient: http.DefaultClient,
	}
}

// WithURL sets the base URL of the server.
func (c *Client) WithURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// WithDataset sets the path to the local harvest dataset. It returns the
// client for chaining.
func (c *Client) WithDataset(path string) *Client {
	c.dataset = path
	return c
}

// WithHarvestConfig sets the layout of the harvest dataset.
func (c *Client) WithHarvestConfig(hc *db.HarvestConfig) *Client {
	c.harvest = hc
	return c
}

// WithHTTPClient sets the HTTP client used for all requests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Dataset is the configured path to the harvest dataset.
func (c *Client) Dataset() string { return c.dataset }

func (c *Client) endpoint(path string) string {
	return strings.TrimSuffix(c.baseURL, "/") + "/" + path
}

func (c *Client) header() http.Header {
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+c.token)
	return h
}

// get sends an authenticated GET request and returns the response body. The
// request is sent once; failures are not retried.
func (c *Client) get(ctx context.Context, op string, query url.Values) ([]byte, error) {
	logging.Debugf(ctx, "Auravant: GET %s?%s", op, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(op), nil)
	if err != nil {
		return nil, errors.Annotate(err, "%s: failed to create request", op)
	}
	req.URL.RawQuery = query.Encode()
	req.Header = c.header()
	return c.do(ctx, op, req)
}

// postForm sends an authenticated form POST and returns the response body.
func (c *Client) postForm(ctx context.Context, op string, form url.Values) ([]byte, error) {
	logging.Debugf(ctx, "Auravant: POST %s", op)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op),
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Annotate(err, "%s: failed to create request", op)
	}
	req.Header = c.header()
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(ctx, op, req)
}

// do sends the request with the client from the context, if any, or the
// client's own HTTP client.
func (c *Client) do(ctx context.Context, op string, req *http.Request) ([]byte, error) {
	client := c.httpClient
	if hc := fetch.GetClient(ctx); hc != nil {
		client = hc
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Annotate(err, "%s: request failed", op)
	}
	return readBody(op, resp)
}

// readBody consumes the response. Non-2xx statuses become typed errors.
func readBody(op string, resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Annotate(err, "%s: failed to read response body", op)
	}
	if !fetch.ResponseOK(resp) {
		var eb errorBody
		msg := strings.TrimSpace(string(body))
		code := 0
		if json.Unmarshal(body, &eb) == nil {
			if m, ok := eb.flagged(); ok {
				msg = m
			}
			code = eb.Code
		}
		return nil, classify(op, resp.StatusCode, code, msg)
	}
	return body, nil
}

// decodeRead decodes the body of a read operation into v. Error-flagged bodies
// become typed errors.
func decodeRead(op string, body []byte, v any) error {
	var eb errorBody
	if json.Unmarshal(body, &eb) == nil {
		if msg, ok := eb.flagged(); ok {
			return classify(op, 0, eb.Code, msg)
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

// decodeRaw decodes the body of a mutation as is. Error-flagged bodies are
// returned unchanged for the caller to inspect.
func decodeRaw(op string, body []byte) (map[string]any, error) {
	var res map[string]any
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, &MalformedResponseError{Op: op, Err: err}
	}
	if res == nil {
		return nil, &MalformedResponseError{Op: op, Err: errors.Reason("null body")}
	}
	return res, nil
}
