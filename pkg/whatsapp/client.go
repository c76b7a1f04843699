// Package whatsapp is a client for the WhatsApp Cloud API: it builds message
// payloads, sends them to the Graph API and reports the provider's answer.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/buger/jsonparser"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultBaseURL = "https://graph.facebook.com"
	DefaultVersion = "v18.0"
)

// Options configures a Client. Only AccessToken and PhoneNumberID are required.
type Options struct {
	AccessToken   string
	PhoneNumberID string
	// Version of the Graph API, e.g. "v18.0".
	Version string
	// Verbose logs the outcome of every call.
	Verbose bool
	// BaseURL overrides the Graph API host, mostly for tests.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zerolog.Logger
}

// Client talks to the WhatsApp Cloud API on behalf of one business phone number.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	token         string
	phoneNumberID string
	version       string
	baseURL       string
	verbose       bool
	http          *http.Client
	log           zerolog.Logger
}

func NewClient(opts Options) *Client {
	c := &Client{
		token:         opts.AccessToken,
		phoneNumberID: opts.PhoneNumberID,
		version:       opts.Version,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		verbose:       opts.Verbose,
		http:          opts.HTTPClient,
	}
	if c.version == "" {
		c.version = DefaultVersion
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.http == nil {
		c.http = http.DefaultClient
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	} else {
		c.log = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	return c
}

func (c *Client) PhoneNumberID() string { return c.phoneNumberID }

func (c *Client) Version() string { return c.version }

func (c *Client) endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, path)
}

func (c *Client) messagesURL() string {
	return c.endpoint(c.phoneNumberID + "/messages")
}

func (c *Client) commerceURL() string {
	return c.endpoint(c.phoneNumberID + "/whatsapp_commerce_settings")
}

func (c *Client) businessProfileURL() string {
	return c.endpoint(c.phoneNumberID + "/whatsapp_business_profile")
}

func (c *Client) mediaURL() string {
	return c.endpoint(c.phoneNumberID + "/media")
}

// Response is the provider's answer to a single call.
// OK is true only for HTTP 200; Body is passed through uninterpreted.
type Response struct {
	OK         bool
	StatusCode int
	Body       json.RawMessage
}

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

// MessageID returns messages[0].id of a successful send, or "".
func (r *Response) MessageID() string {
	id, err := jsonparser.GetString(r.Body, "messages", "[0]", "id")
	if err != nil {
		return ""
	}
	return id
}

// Err returns an *APIError for a failed response and nil otherwise.
func (r *Response) Err() error {
	if r.OK {
		return nil
	}
	return &APIError{StatusCode: r.StatusCode, Body: r.Body}
}

// APIError is a non-200 answer from the Graph API.
type APIError struct {
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	if msg, err := jsonparser.GetString(e.Body, "error", "message"); err == nil {
		return fmt.Sprintf("whatsapp: API error (status %d): %s", e.StatusCode, msg)
	}
	return fmt.Sprintf("whatsapp: API error (status %d): %s", e.StatusCode, string(e.Body))
}

// sendRequest issues one call with a JSON body (if any) and returns the
// provider's answer. Only transport and encoding failures are errors.
func (c *Client) sendRequest(ctx context.Context, method, endpoint string, query url.Values, body interface{}) (*Response, error) {
	var (
		bodyReader  io.Reader
		contentType string
	)
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "whatsapp: marshal request")
		}
		bodyReader = bytes.NewReader(jsonData)
		contentType = "application/json"
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.do(ctx, method, endpoint, contentType, bodyReader)
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body io.Reader) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "whatsapp: create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "whatsapp: %s %s", method, req.URL.Path)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "whatsapp: read response")
	}

	return &Response{
		OK:         resp.StatusCode == http.StatusOK,
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// report logs the outcome of a call when the client is verbose.
func (c *Client) report(res *Response, okMsg, failMsg string, fields map[string]string) {
	if !c.verbose {
		return
	}
	var ev *zerolog.Event
	if res.OK {
		ev = c.log.Info()
	} else {
		ev = c.log.Error().Int("status", res.StatusCode).Bytes("reason", res.Body)
	}
	for k, v := range fields {
		ev = ev.Str(k, v)
	}
	if res.OK {
		ev.Msg(okMsg)
		return
	}
	ev.Msg(failMsg)
}
