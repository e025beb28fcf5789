package httpclient

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"campus/config"
	"campus/internal/domain/entity"
	domainerrors "campus/internal/domain/errors"
	"campus/internal/infra/credential"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig(baseURL, credPath string) *config.Config {
	cfg := &config.Config{}
	cfg.API.BaseURL = baseURL
	cfg.API.Timeout = 5 * time.Second
	cfg.Credentials.Path = credPath

	return cfg
}

func newTestCreds(t *testing.T, cfg *config.Config, pair entity.TokenPair) *credential.Store {
	t.Helper()

	store, err := credential.NewStore(cfg, newDiscardLogger())
	require.NoError(t, err)
	if pair.Valid() {
		require.NoError(t, store.Set(pair))
	}

	return store
}

func writeEnvelope(w http.ResponseWriter, status int, envelope any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope)
}

func TestTransport_AttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		writeEnvelope(w, http.StatusOK, entity.Response[struct{}]{Status: "success"})
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "acc", Refresh: "ref"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	httpClient := &http.Client{Transport: transport}
	resp, err := httpClient.Get(srv.URL + "/users/me/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "Bearer acc", gotAuth)
	assert.NotEmpty(t, gotRequestID)
}

func TestTransport_ConcurrentFailuresShareOneRefresh(t *testing.T) {
	var refreshCalls, protectedCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)

		var req entity.RefreshRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "refresh-token", req.Refresh)

		// Hold the cycle open long enough for every failed request to join it.
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, entity.Response[entity.RefreshData]{
			Status: "success",
			Data:   entity.RefreshData{Access: "new-access"},
		})
	})
	mux.HandleFunc("/protected/", func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer new-access" {
			writeEnvelope(w, http.StatusUnauthorized, entity.Response[struct{}]{
				Status: "error", Detail: "token expired",
			})

			return
		}
		writeEnvelope(w, http.StatusOK, entity.Response[struct{}]{Status: "success"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "stale-access", Refresh: "refresh-token"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())
	httpClient := &http.Client{Transport: transport}

	const callers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	statuses := make([]int, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start

			resp, err := httpClient.Get(srv.URL + "/protected/")
			if !assert.NoError(t, err) {
				return
			}
			defer resp.Body.Close()
			statuses[i] = resp.StatusCode
		}()
	}
	close(start)
	wg.Wait()

	for _, status := range statuses {
		assert.Equal(t, http.StatusOK, status)
	}
	assert.Equal(t, int64(1), refreshCalls.Load())

	pair, ok := creds.Get()
	require.True(t, ok)
	assert.Equal(t, "new-access", pair.Access)
	assert.Equal(t, "refresh-token", pair.Refresh, "refresh token is not rotated")
}

func TestTransport_RefreshFailureExpiresSession(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, entity.Response[struct{}]{
			Status: "error", Detail: "refresh token expired",
		})
	})
	mux.HandleFunc("/protected/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, entity.Response[struct{}]{
			Status: "error", Detail: "token expired",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "stale", Refresh: "dead"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	var expired atomic.Bool
	transport.OnSessionExpired(func() { expired.Store(true) })

	httpClient := &http.Client{Transport: transport}
	_, err := httpClient.Get(srv.URL + "/protected/")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)

	_, ok := creds.Get()
	assert.False(t, ok, "credentials must be cleared")
	assert.True(t, expired.Load(), "sign-out hook must fire")
}

func TestTransport_NoRefreshTokenExpiresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, entity.Response[struct{}]{Status: "error"})
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	httpClient := &http.Client{Transport: transport}
	_, err := httpClient.Get(srv.URL + "/protected/")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrSessionExpired)
}

func TestTransport_RetriesExactlyOnce(t *testing.T) {
	var refreshCalls, protectedCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, entity.Response[entity.RefreshData]{
			Status: "success",
			Data:   entity.RefreshData{Access: "new-access"},
		})
	})
	mux.HandleFunc("/forbidden/", func(w http.ResponseWriter, r *http.Request) {
		protectedCalls.Add(1)
		writeEnvelope(w, http.StatusForbidden, entity.Response[struct{}]{
			Status: "error", Errors: []string{"not allowed"},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "acc", Refresh: "ref"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	httpClient := &http.Client{Transport: transport}
	resp, err := httpClient.Get(srv.URL + "/forbidden/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, int64(2), protectedCalls.Load(), "one attempt, one retry")
	assert.Equal(t, int64(1), refreshCalls.Load())
}

func TestTransport_NonReplayableBodyPassesThrough(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		writeEnvelope(w, http.StatusOK, entity.Response[entity.RefreshData]{
			Data: entity.RefreshData{Access: "new-access"},
		})
	})
	mux.HandleFunc("/upload/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, entity.Response[struct{}]{Status: "error"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "acc", Refresh: "ref"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	// Wrapping the reader keeps net/http from deriving GetBody.
	body := struct{ io.Reader }{bytes.NewReader([]byte(`{}`))}
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/upload/", body)
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, int64(0), refreshCalls.Load(), "no recovery for non-replayable bodies")
}

func TestTransport_SuccessPassesThroughUntouched(t *testing.T) {
	var refreshCalls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
	})
	mux.HandleFunc("/missing/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, entity.Response[struct{}]{
			Status: "error", Detail: "no such course",
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "acc", Refresh: "ref"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	httpClient := &http.Client{Transport: transport}
	resp, err := httpClient.Get(srv.URL + "/missing/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(0), refreshCalls.Load())
}

func TestTransport_PostBodyReplayedAfterRefresh(t *testing.T) {
	var bodies [][]byte
	var mu sync.Mutex

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/jwt/refresh/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, entity.Response[entity.RefreshData]{
			Data: entity.RefreshData{Access: "new-access"},
		})
	})
	mux.HandleFunc("/course/", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, raw)
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer new-access" {
			writeEnvelope(w, http.StatusUnauthorized, entity.Response[struct{}]{Status: "error"})

			return
		}
		writeEnvelope(w, http.StatusCreated, entity.Response[struct{}]{Status: "success"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := newTestConfig(srv.URL, filepath.Join(t.TempDir(), "credentials.json"))
	creds := newTestCreds(t, cfg, entity.TokenPair{Access: "stale", Refresh: "ref"})
	transport := NewTransport(cfg, creds, nil, newDiscardLogger())

	payload := []byte(`{"title":"Go Basics"}`)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/course/", bytes.NewReader(payload))
	require.NoError(t, err)
	require.NotNil(t, req.GetBody)

	httpClient := &http.Client{Transport: transport}
	resp, err := httpClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, bodies, 2)
	assert.Equal(t, payload, bodies[0])
	assert.Equal(t, payload, bodies[1], "retry must carry the original body")
}
