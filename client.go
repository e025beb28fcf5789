// Package campus is a Go client SDK for the campus e-learning platform API.
// It bundles an authenticated gateway with transparent token refresh, typed
// resource access with tag-based cache invalidation, and a realtime chat
// layer that merges REST history with live pushes.
package campus

import (
	"log/slog"

	"campus/config"
	"campus/internal/domain/service"
	"campus/internal/infra/cache"
	"campus/internal/infra/credential"
	"campus/internal/infra/httpclient"
	"campus/internal/infra/realtime"
	"campus/internal/infra/rest"
	"campus/internal/usecase"
	"campus/internal/usecase/impl"
)

// Client is the assembled SDK. The credential store, refresh coordination
// and channel registry live for exactly as long as the Client; embedders
// construct one per process and inject it where needed.
type Client struct {
	Auth    usecase.AuthUsecase
	Users   usecase.UserUsecase
	Courses usecase.CourseUsecase
	Chat    usecase.ChatUsecase

	creds     *credential.Store
	transport *httpclient.Transport
	tags      *cache.Store
}

// New wires the SDK with explicit dependency injection: every component
// receives its collaborators through its constructor, nothing is ambient.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	creds, err := credential.NewStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	transport := httpclient.NewTransport(cfg, creds, nil, logger)
	apiClient, err := httpclient.NewClient(cfg, transport, creds.Jar(), logger)
	if err != nil {
		return nil, err
	}

	tags := cache.NewStore(logger)
	manager := realtime.NewManager(cfg, creds, logger)

	authRepo := rest.NewAuthRepository(apiClient, logger)
	userRepo := rest.NewUserRepository(apiClient, logger)
	courseRepo := rest.NewCourseRepository(apiClient, logger)
	chatRepo := rest.NewChatRepository(apiClient, logger)

	return &Client{
		Auth:      impl.NewAuthService(authRepo, creds, tags, logger),
		Users:     impl.NewUserService(userRepo, tags, logger),
		Courses:   impl.NewCourseService(courseRepo, tags, logger),
		Chat:      impl.NewChatService(chatRepo, manager, logger),
		creds:     creds,
		transport: transport,
		tags:      tags,
	}, nil
}

// OnSessionExpired registers the hook fired when a token refresh fails and
// the session is cleared. The embedding UI should redirect to login.
func (c *Client) OnSessionExpired(hook func()) {
	c.transport.OnSessionExpired(hook)
}

// Credentials exposes the store for read access (route guards, claims).
func (c *Client) Credentials() service.CredentialStore {
	return c.creds
}
