// Package listing fetches the jextract early-access listing page.
package listing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultConnectTimeout = 5 * time.Second
	DefaultReadTimeout    = 5 * time.Second

	// maxBody bounds the listing size; the real page is well under 1 MiB.
	// Larger bodies are rejected, never truncated.
	maxBody = 8 << 20
	// maxErrorBody bounds how much of a failed response ends up in the error.
	maxErrorBody = 512
)

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	UserAgent      string
}

// Client fetches listing pages. It performs no parsing and no retries.
type Client struct {
	http      *http.Client
	userAgent string
	read      time.Duration
}

func NewClient(opts Options) *Client {
	connect := opts.ConnectTimeout
	if connect <= 0 {
		connect = DefaultConnectTimeout
	}
	read := opts.ReadTimeout
	if read <= 0 {
		read = DefaultReadTimeout
	}
	ua := strings.TrimSpace(opts.UserAgent)
	if ua == "" {
		ua = UserAgent("dev")
	}

	dialer := &net.Dialer{Timeout: connect}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		TLSHandshakeTimeout:   connect,
		ResponseHeaderTimeout: read,
	}
	return &Client{
		http:      &http.Client{Transport: transport},
		userAgent: ua,
		read:      read,
	}
}

// Fetch GETs url and returns the body as text. Every failure is a *NetworkError.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	data, err := c.FetchBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// FetchBytes is Fetch without the string conversion.
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	// The header timeout does not cover the body, so bound the read separately.
	timer := time.AfterFunc(c.read, func() { _ = resp.Body.Close() })
	defer timer.Stop()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		if !timer.Stop() {
			err = fmt.Errorf("read body: %w", errBodyTimeout)
		}
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: err}
	}
	if len(data) > maxBody {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode, Err: errBodyTooLarge}
	}
	return data, nil
}

func UserAgent(version string) string {
	return fmt.Sprintf("jxfetch/%s (+https://github.com/3leaps/jxfetch)", version)
}

var (
	errBodyTimeout  = errors.New("read timeout exceeded")
	errBodyTooLarge = fmt.Errorf("response body exceeds %d bytes", maxBody)
)
