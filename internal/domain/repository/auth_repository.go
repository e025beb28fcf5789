// Package repository defines the remote-resource access interfaces. The
// implementations live in internal/infra/rest and talk to the REST API
// through the authenticated gateway.
package repository

import (
	"context"

	"campus/internal/domain/entity"
)

// AuthRepository covers credential issuance and revocation. Token refresh is
// deliberately absent: it belongs to the gateway transport, which must reach
// the refresh endpoint without re-entering itself.
type AuthRepository interface {
	SignUp(ctx context.Context, req entity.SignupRequest) (*entity.User, error)
	SignIn(ctx context.Context, req entity.LoginRequest) (entity.TokenPair, error)
	Revoke(ctx context.Context, refreshToken string) error
}
