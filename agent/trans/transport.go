// Package trans is the HTTP transport of the agent. The packed messages are
// posted to the mediator or straight to the other end's endpoint, and the
// mediator's control calls are JSON posts.
package trans

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/findy-network/findy-didexchange/agent/utils"
	"github.com/findy-network/findy-didexchange/core"
	"github.com/golang/glog"
	"github.com/lainio/err2"
	"github.com/lainio/err2/try"
)

const (
	ContentTypeWire = "application/ssi-agent-wire"
	ContentTypeJSON = "application/json"

	// errorMessageMaxLength is the maximum length of the response body we
	// include into the generated error message
	errorMessageMaxLength = 80
)

// Tier selects the timeout budget of the call.
type Tier int

const (
	Short Tier = iota
	Medium
	Long
)

func (t Tier) String() string {
	switch t {
	case Short:
		return "short"
	case Medium:
		return "medium"
	case Long:
		return "long"
	}
	return "unknown"
}

// Client posts the messages. It's safe for concurrent use.
type Client struct {
	http     *http.Client
	timeouts utils.Timeouts
	retry    utils.Retry
}

// New returns a client with the timeouts and retry policy of the config.
func New(cfg *utils.Config) *Client {
	return &Client{
		http:     &http.Client{},
		timeouts: cfg.Timeouts,
		retry:    cfg.Retry,
	}
}

func (c *Client) timeout(t Tier) time.Duration {
	switch t {
	case Short:
		return c.timeouts.Short
	case Long:
		return c.timeouts.Long
	}
	return c.timeouts.Medium
}

// Post sends the packed message to the URL and returns the response body.
// Network errors and 5xx responses are retried with backoff. Any other
// non-2xx response is PostMessageFailed.
func (c *Client) Post(ctx context.Context, urlStr string, body []byte, tier Tier) ([]byte, error) {
	return c.post(ctx, urlStr, ContentTypeWire, body, tier)
}

// PostJSON posts the JSON of in and reads the JSON response to out. Nil out
// skips reading.
func (c *Client) PostJSON(ctx context.Context, urlStr string, in, out any, tier Tier) (err error) {
	defer err2.Handle(&err, "post JSON")

	data := try.To1(c.post(ctx, urlStr, ContentTypeJSON, try.To1(json.Marshal(in)), tier))
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return core.Wrap(core.KindInvalidAgencyResponse, err, "response of "+urlStr)
	}
	return nil
}

func (c *Client) post(ctx context.Context, urlStr, contentType string, body []byte, tier Tier) (data []byte, err error) {
	if _, err = url.ParseRequestURI(urlStr); err != nil {
		return nil, core.Wrap(core.KindPostMessageFailed, err, "invalid URL")
	}
	glog.V(3).Infof("POST %s (%d bytes, %s timeout)", urlStr, len(body), tier)

	op := func() error {
		data, err = c.sendAndWait(ctx, urlStr, contentType, body, c.timeout(tier))
		return err
	}
	notify := func(err error, d time.Duration) {
		glog.Warningln("post retry after", d, "error:", err)
	}
	err = backoff.RetryNotify(op, backoff.WithContext(c.backOff(), ctx), notify)

	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		err = perm.Err
	}
	if err != nil {
		return nil, core.Wrap(core.KindPostMessageFailed, err, "post "+urlStr)
	}
	return data, nil
}

func (c *Client) backOff() backoff.BackOff {
	if c.retry.MaxElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	if c.retry.Initial > 0 {
		b.InitialInterval = c.retry.Initial
	}
	b.MaxElapsedTime = c.retry.MaxElapsed
	return b
}

func (c *Client) sendAndWait(ctx context.Context, urlStr, contentType string, body []byte, timeout time.Duration) (data []byte, err error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, bytes.NewReader(body))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	request.Close = true // deferred response.Body.Close isn't always enough
	request.Header.Set("Content-Type", contentType)

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer func() {
		closeErr := response.Body.Close()
		if closeErr != nil {
			glog.Warningln("body.Close: ", closeErr)
		}
	}()

	data, err = io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	return checkHTTPStatus(response, data)
}

// checkHTTPStatus checks the status code and gets the server message. Only
// the server errors are worth retrying.
func checkHTTPStatus(response *http.Response, data []byte) ([]byte, error) {
	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return data, nil
	}
	glog.Warning("http code:", response.Status)
	err := fmt.Errorf("%v", response.Status)
	contentType := response.Header.Get("Content-type")
	// from our server: text/plain; charset=utf-8
	if strings.HasPrefix(contentType, "text/plain") {
		err = fmt.Errorf("%s: %s", response.Status,
			data[0:min(errorMessageMaxLength, len(data))])
	}
	if response.StatusCode >= 500 {
		return nil, err
	}
	return nil, backoff.Permanent(err)
}
