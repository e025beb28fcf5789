// Package httpclient implements the authenticated API gateway: a bearer
// transport with coalesced token refresh, plus typed envelope helpers.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"campus/config"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/domain/service"
	"campus/internal/errors"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const (
	refreshPath = "/auth/jwt/refresh/"
	refreshKey  = "refresh"
)

// Transport is an http.RoundTripper that attaches the current access token to
// every request and transparently recovers a single authorization failure per
// request. Concurrent failures share one refresh call: the first caller
// performs it, late arrivals wait for its outcome and then retry with
// whatever pair is current.
type Transport struct {
	base       http.RoundTripper
	creds      service.CredentialStore
	refreshURL string
	logger     *slog.Logger

	group     singleflight.Group
	onExpired func()
}

// NewTransport builds the gateway transport over base (http.DefaultTransport
// when nil).
func NewTransport(cfg *config.Config, creds service.CredentialStore, base http.RoundTripper, logger *slog.Logger) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}

	return &Transport{
		base:       base,
		creds:      creds,
		refreshURL: strings.TrimSuffix(cfg.API.BaseURL, "/") + refreshPath,
		logger:     logger,
	}
}

// OnSessionExpired registers the hook fired when a refresh cycle fails and
// the stored pair is cleared. The embedding layer uses it to force sign-out.
func (t *Transport) OnSessionExpired(hook func()) {
	t.onExpired = hook
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(t.authorize(req))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
		return resp, nil
	}

	// Authorization failure. Requests whose body cannot be replayed are
	// surfaced as-is; everything the typed client issues carries GetBody.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	// Coalesce concurrent failures into one refresh call. The refresh runs
	// detached from this request's cancellation so one aborted caller does
	// not fail the cycle for everyone waiting on it.
	if _, err, _ := t.group.Do(refreshKey, func() (any, error) {
		return nil, t.refresh(context.WithoutCancel(req.Context()))
	}); err != nil {
		drain(resp)

		return nil, err
	}

	retry, err := t.rewind(req)
	if err != nil {
		drain(resp)

		return nil, err
	}
	drain(resp)

	// Exactly one retry. A second authorization failure passes through for
	// the caller to classify.
	return t.base.RoundTrip(t.authorize(retry))
}

// authorize clones the request and attaches the bearer header plus a
// correlation id. The incoming request is never mutated.
func (t *Transport) authorize(req *http.Request) *http.Request {
	out := req.Clone(req.Context())
	if pair, ok := t.creds.Get(); ok {
		out.Header.Set("Authorization", "Bearer "+pair.Access)
	}
	if out.Header.Get("X-Request-ID") == "" {
		out.Header.Set("X-Request-ID", uuid.NewString())
	}

	return out
}

// rewind produces a replayable copy of req for the post-refresh retry.
func (t *Transport) rewind(req *http.Request) (*http.Request, error) {
	out := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, errors.Wrap(err, "rewind request body")
		}
		out.Body = body
	}

	return out, nil
}

// refresh performs one refresh-and-store cycle. Any failure clears the store
// and surfaces the session-expired condition; the singleflight group
// guarantees at most one cycle is in flight.
func (t *Transport) refresh(ctx context.Context) error {
	pair, ok := t.creds.Get()
	if !ok || pair.Refresh == "" {
		return t.expireSession(errors.New("no refresh token stored"))
	}

	payload, err := json.Marshal(entity.RefreshRequest{Refresh: pair.Refresh})
	if err != nil {
		return errors.Wrap(err, "encode refresh request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.refreshURL, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "build refresh request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return t.expireSession(errors.Wrap(err, "refresh call failed"))
	}
	defer drain(resp)

	if resp.StatusCode != http.StatusOK {
		return t.expireSession(errors.Errorf("refresh rejected with status %d", resp.StatusCode))
	}

	var envelope entity.Response[entity.RefreshData]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return t.expireSession(errors.Wrap(err, "decode refresh response"))
	}
	if envelope.Data.Access == "" {
		return t.expireSession(errors.New("refresh response missing access token"))
	}

	// The refresh token is not rotated by the server; keep the old one.
	if err := t.creds.Set(entity.TokenPair{Access: envelope.Data.Access, Refresh: pair.Refresh}); err != nil {
		return errors.Wrap(err, "store refreshed pair")
	}
	t.logger.Debug("access token refreshed")

	return nil
}

// expireSession clears the stored pair, fires the sign-out hook and returns
// the session-expired sentinel carrying the underlying cause.
func (t *Transport) expireSession(cause error) error {
	t.logger.Warn("session expired", slog.Any("error", cause))

	if err := t.creds.Clear(); err != nil {
		t.logger.Error("failed to clear credentials", slog.Any("error", err))
	}
	if t.onExpired != nil {
		t.onExpired()
	}

	return errors.Join(domainerrors.ErrSessionExpired, cause)
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
