// Package api implements the authenticated HTTP client every resource
// service goes through. It is the single choke point for header
// construction, body serialization and failure classification.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ma-crm/crm-go/pkg/httpext"
)

// SessionSource supplies the bearer token for outgoing requests and performs
// a token refresh when the backend reports the current one expired. The auth
// store implements it; tests inject fakes.
type SessionSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyJSON
	bodyRaw
)

// Body is the request payload, tagged as either a structured value that gets
// serialized to JSON or a raw payload (multipart form, file contents) passed
// through untouched. The caller decides which; nothing is sniffed.
type Body struct {
	kind        bodyKind
	value       any
	raw         io.Reader
	contentType string
}

// NoBody is the empty payload.
var NoBody = Body{}

// JSON wraps a structured value to be serialized as the JSON request body.
func JSON(v any) Body {
	return Body{kind: bodyJSON, value: v}
}

// Raw wraps an opaque payload sent unmodified under the given content type.
// For multipart forms the content type must carry the boundary, i.e. come
// from multipart.Writer.FormDataContentType.
func Raw(contentType string, r io.Reader) Body {
	return Body{kind: bodyRaw, raw: r, contentType: contentType}
}

// RequestOption mutates an outgoing request before it is sent, e.g. to add
// extra headers. Options run after the standard headers are set and may
// override them.
type RequestOption func(*http.Request)

// WithHeader sets an extra request header.
func WithHeader(key, value string) RequestOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Client executes authenticated requests against the resource API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	session    SessionSource
}

// NewClient builds a client for the given API base URL. The session source
// is injected rather than read from ambient state so tests can substitute
// their own.
func NewClient(baseURL string, session SessionSource, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
	}
}

func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, NoBody, out)
}

func (c *Client) Post(ctx context.Context, endpoint string, v, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, JSON(v), out)
}

func (c *Client) Put(ctx context.Context, endpoint string, v, out any) error {
	return c.Do(ctx, http.MethodPut, endpoint, JSON(v), out)
}

func (c *Client) Patch(ctx context.Context, endpoint string, v, out any) error {
	return c.Do(ctx, http.MethodPatch, endpoint, JSON(v), out)
}

func (c *Client) Delete(ctx context.Context, endpoint string) error {
	return c.Do(ctx, http.MethodDelete, endpoint, NoBody, nil)
}

// Upload POSTs a multipart payload. No JSON content type is forced so the
// multipart boundary survives; the bearer token is still attached when held.
func (c *Client) Upload(ctx context.Context, endpoint, contentType string, form io.Reader, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, Raw(contentType, form), out)
}

// Do executes one request. Non-success statuses come back as
// *httpext.APIError. A success response that is not JSON, or whose JSON body
// does not parse, leaves out untouched and returns nil: callers proceed with
// an empty result rather than failing on an ambiguous success.
//
// When a request that carried a bearer token is answered with 401, the
// session is refreshed and the request replayed once. A second 401 is
// returned as-is.
func (c *Client) Do(ctx context.Context, method, endpoint string, body Body, out any, opts ...RequestOption) error {
	payload, contentType, err := resolveBody(body)
	if err != nil {
		return err
	}

	url := c.buildURL(endpoint)
	requestID := uuid.New().String()

	for attempt := 0; ; attempt++ {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}
		req.Header.Set("X-Request-ID", requestID)

		// The token is read once per attempt and used for the lifetime of
		// that attempt, even if a concurrent refresh lands meanwhile.
		token := c.session.AccessToken()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		for _, opt := range opts {
			opt(req)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && token != "" && attempt == 0 {
			apiErr := httpext.ErrorFromResponse(resp)
			resp.Body.Close()

			if refreshErr := c.session.Refresh(ctx); refreshErr != nil {
				log.Warn().
					Err(refreshErr).
					Str("request_id", requestID).
					Str("method", method).
					Str("endpoint", endpoint).
					Msg("Token refresh after 401 failed")
				return apiErr
			}

			log.Debug().
				Str("request_id", requestID).
				Str("method", method).
				Str("endpoint", endpoint).
				Msg("Retrying request after token refresh")
			continue
		}

		return decodeResponse(resp, out)
	}
}

// QueryString encodes optional list filters as a query-string suffix.
// Returns "" for an empty set.
func QueryString(params url.Values) string {
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}

func (c *Client) buildURL(endpoint string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return c.baseURL + endpoint
}

// resolveBody serializes the payload up front so a retried request can
// replay it.
func resolveBody(body Body) ([]byte, string, error) {
	switch body.kind {
	case bodyJSON:
		data, err := json.Marshal(body.value)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return data, "application/json", nil
	case bodyRaw:
		data, err := io.ReadAll(body.raw)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read request body: %w", err)
		}
		return data, body.contentType, nil
	default:
		return nil, "application/json", nil
	}
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpext.ErrorFromResponse(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
		return nil
	}

	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Debug().Err(err).Msg("Success response body did not parse as JSON - returning empty result")
		return nil
	}
	return nil
}
