// Package portal implements the message channel to a LogicMonitor portal over HTTP.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/logicmonitor/lm-module-tests/framework"
	"github.com/logicmonitor/lm-module-tests/servicedef"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const (
	messagesPath      = "/messages"
	defaultRetries    = 2
	defaultRetryWait  = 200 * time.Millisecond
	maxErrorBodyBytes = 2000
)

// Client sends servicedef.Messages to the portal bridge at a base URL. It implements
// framework.Messenger.
type Client struct {
	baseURL string
	http    *retryablehttp.Client
	logger  framework.Logger
}

type Option func(*Client)

type messageTypeKey struct{}

// retryPolicy retries only fetch and delete messages. A create or commit that failed with a
// 5xx may still have been applied, so it is never resent.
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	switch ctx.Value(messageTypeKey{}) {
	case servicedef.MessageFetchModuleDetails, servicedef.MessageDeleteModule:
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	return false, nil
}

// WithRetries sets how many times a fetch or delete request is retried after a connection
// error or a 5xx status. Create and commit requests are never retried.
func WithRetries(n int) Option {
	return func(c *Client) { c.http.RetryMax = n }
}

// WithRetryWait sets the minimum and maximum backoff between retries.
func WithRetryWait(minWait, maxWait time.Duration) Option {
	return func(c *Client) {
		c.http.RetryWaitMin = minWait
		c.http.RetryWaitMax = maxWait
	}
}

func WithLogger(logger framework.Logger) Option {
	return func(c *Client) {
		if logger == nil {
			logger = framework.NullLogger()
		}
		c.logger = logger
		c.http.Logger = logger
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http.HTTPClient = hc }
}

func NewClient(baseURL string, opts ...Option) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = defaultRetries
	hc.RetryWaitMin = defaultRetryWait
	hc.RetryWaitMax = 4 * defaultRetryWait
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	hc.CheckRetry = retryPolicy
	hc.Logger = nil
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    hc,
		logger:  framework.NullLogger(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SendMessage posts the message and decodes the portal's response. A non-2xx status whose
// body is not a response object is turned into a failed Response rather than an error;
// only transport problems are returned as errors.
func (c *Client) SendMessage(ctx context.Context, msg servicedef.Message) (servicedef.Response, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return servicedef.Response{}, errors.Wrap(err, "encoding message")
	}
	c.logger.Printf("Sending %s message: %s", msg.Type, string(data))

	reqCtx := context.WithValue(ctx, messageTypeKey{}, msg.Type)
	req, err := retryablehttp.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(data))
	if err != nil {
		return servicedef.Response{}, errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}
		return servicedef.Response{}, errors.Wrapf(err, "%s request to portal failed", msg.Type)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return servicedef.Response{}, errors.Wrapf(err, "reading %s response", msg.Type)
	}
	c.logger.Printf("Portal returned HTTP %d: %s", resp.StatusCode, string(body))

	var out servicedef.Response
	decodeErr := json.Unmarshal(body, &out)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if decodeErr != nil {
			return servicedef.Response{}, errors.Errorf("malformed response from portal: %s", truncate(body))
		}
		return out, nil
	}
	if decodeErr == nil && !out.OK && out.Error != "" {
		return out, nil
	}
	return servicedef.Response{
		OK:    false,
		Error: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, truncate(body)),
	}, nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}
