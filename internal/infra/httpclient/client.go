package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"campus/config"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/errors"
)

// Client issues JSON requests against the API through the gateway transport
// and decodes the shared response envelope.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	logger  *slog.Logger
}

// NewClient builds the API client. The jar is shared with the credential
// store so the pair stays readable as cookies.
func NewClient(cfg *config.Config, transport *Transport, jar http.CookieJar, logger *slog.Logger) (*Client, error) {
	baseURL, err := url.Parse(strings.TrimSuffix(cfg.API.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parse api base url")
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Jar:       jar,
			Timeout:   cfg.API.Timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}, nil
}

// NewRequest builds a JSON request for the given API path. Bodies are
// buffered so the gateway can replay them after a refresh.
func (c *Client) NewRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := *c.baseURL
	target.Path = strings.TrimSuffix(target.Path, "/") + path
	if len(query) > 0 {
		target.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	return req, nil
}

// Do issues the request and decodes the envelope's data into T. Non-2xx
// responses are mapped to the error taxonomy, carrying the envelope's first
// error string (falling back to detail) as message.
func Do[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (T, error) {
	var zero T

	req, err := c.NewRequest(ctx, method, path, query, body)
	if err != nil {
		return zero, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, domainerrors.ErrSessionExpired) {
			return zero, errors.Wrap(domainerrors.ErrSessionExpired, method+" "+path)
		}

		return zero, errors.WithStack(domainerrors.NewNetworkError(err))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, errors.WithStack(domainerrors.NewNetworkError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var envelope entity.Response[json.RawMessage]
		message := ""
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil {
			message = envelope.Message()
		}
		c.logger.Debug("api request failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode))

		return zero, errors.WithStack(domainerrors.FromStatus(resp.StatusCode, message))
	}

	// Some mutations answer with an empty body; the zero value suffices.
	if len(raw) == 0 {
		return zero, nil
	}

	var envelope entity.Response[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return zero, errors.Wrapf(err, "decode %s %s response", method, path)
	}

	return envelope.Data, nil
}

// DoList is Do for paginated endpoints, unwrapping the nested list payload.
func DoList[T any](ctx context.Context, c *Client, path string, query url.Values) (*entity.List[T], error) {
	data, err := Do[entity.List[T]](ctx, c, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}

	return &data, nil
}
