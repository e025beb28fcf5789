// Package usecase declares the application-facing interfaces of the SDK.
package usecase

import (
	"context"

	"campus/internal/domain/entity"
)

// AuthUsecase drives the credential lifecycle. Sign-in persists the issued
// pair; sign-out revokes the refresh token (best effort) and clears it.
type AuthUsecase interface {
	SignUp(ctx context.Context, req entity.SignupRequest) (*entity.User, error)
	SignIn(ctx context.Context, username, password string) (entity.TokenPair, error)
	SignOut(ctx context.Context) error
	// Claims decodes the current access token's application claims.
	Claims() (*entity.AccessClaims, error)
	// IsAuthenticated reports whether a credential pair is stored.
	IsAuthenticated() bool
}
