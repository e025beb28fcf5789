// Package impl contains the application-specific business rules implementations.
package impl

import (
	"context"
	"log/slog"

	"campus/internal/domain/entity"
	"campus/internal/domain/repository"
	"campus/internal/domain/service"
	"campus/internal/errors"
	"campus/internal/infra/cache"
	"campus/internal/usecase"

	"github.com/go-playground/validator/v10"
)

// authService implements the AuthUsecase interface.
type authService struct {
	repo     repository.AuthRepository
	creds    service.CredentialStore
	tags     *cache.Store
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthService is the constructor for authService.
func NewAuthService(
	repo repository.AuthRepository,
	creds service.CredentialStore,
	tags *cache.Store,
	logger *slog.Logger,
) usecase.AuthUsecase {
	return &authService{
		repo:     repo,
		creds:    creds,
		tags:     tags,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// SignUp creates a new account. No credentials are issued; the caller signs
// in afterwards.
func (srv *authService) SignUp(ctx context.Context, req entity.SignupRequest) (*entity.User, error) {
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.Wrap(err, "validate signup request")
	}

	user, err := srv.repo.SignUp(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "sign up")
	}
	srv.logger.Info("signed up", slog.String("username", req.Username))

	return user, nil
}

// SignIn exchanges credentials for a token pair and persists it, so
// subsequent requests attach the access token automatically.
func (srv *authService) SignIn(ctx context.Context, username, password string) (entity.TokenPair, error) {
	req := entity.LoginRequest{Username: username, Password: password}
	if err := srv.validate.Struct(req); err != nil {
		return entity.TokenPair{}, errors.Wrap(err, "validate login request")
	}

	pair, err := srv.repo.SignIn(ctx, req)
	if err != nil {
		return entity.TokenPair{}, errors.Wrap(err, "sign in")
	}
	if err := srv.creds.Set(pair); err != nil {
		return entity.TokenPair{}, errors.Wrap(err, "persist credentials")
	}
	srv.logger.Info("signed in", slog.String("username", username))

	// Everything cached under the previous identity is stale now.
	srv.tags.Invalidate(ctx, cache.TagMe, cache.TagCourses, cache.TagFeedbacks, cache.TagMaterials, cache.TagUsers)

	return pair, nil
}

// SignOut revokes the refresh token (best effort) and clears the stored pair.
func (srv *authService) SignOut(ctx context.Context) error {
	pair, ok := srv.creds.Get()
	if ok {
		if err := srv.repo.Revoke(ctx, pair.Refresh); err != nil {
			// Revocation failures don't keep the user signed in locally.
			srv.logger.Warn("refresh token revocation failed", slog.Any("error", err))
		}
	}

	if err := srv.creds.Clear(); err != nil {
		return errors.Wrap(err, "clear credentials")
	}
	srv.logger.Info("signed out")
	srv.tags.Invalidate(ctx, cache.TagMe)

	return nil
}

// Claims decodes the stored access token's application claims.
func (srv *authService) Claims() (*entity.AccessClaims, error) {
	pair, ok := srv.creds.Get()
	if !ok {
		return nil, errors.New("not authenticated")
	}

	return entity.ParseAccessClaims(pair.Access)
}

// IsAuthenticated reports whether a credential pair is stored.
func (srv *authService) IsAuthenticated() bool {
	_, ok := srv.creds.Get()

	return ok
}
