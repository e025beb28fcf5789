// Package rest implements the repository interfaces over the REST API.
package rest

import (
	"context"
	"log/slog"
	"net/http"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/infra/httpclient"
)

type authRepository struct {
	client *httpclient.Client
	logger *slog.Logger
}

// NewAuthRepository is the constructor for authRepository.
func NewAuthRepository(client *httpclient.Client, logger *slog.Logger) repository.AuthRepository {
	return &authRepository{client: client, logger: logger}
}

func (r *authRepository) SignUp(ctx context.Context, req entity.SignupRequest) (*entity.User, error) {
	user, err := httpclient.Do[entity.User](ctx, r.client, http.MethodPost, "/users/", nil, req)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *authRepository) SignIn(ctx context.Context, req entity.LoginRequest) (entity.TokenPair, error) {
	return httpclient.Do[entity.TokenPair](ctx, r.client, http.MethodPost, "/auth/jwt/create/", nil, req)
}

func (r *authRepository) Revoke(ctx context.Context, refreshToken string) error {
	_, err := httpclient.Do[struct{}](ctx, r.client, http.MethodPost, "/auth/jwt/revoke/", nil,
		entity.RefreshRequest{Refresh: refreshToken})

	return err
}
