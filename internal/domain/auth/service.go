package auth

import (
	"context"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
)

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest, session SessionTrackingRequest) (TokenResponse, error)
	Login(ctx context.Context, req LoginRequest, session SessionTrackingRequest) (TokenResponse, error)
	LoginWithGoogle(ctx context.Context, profile GoogleProfile, session SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)

	// Me returns the account behind the access token on ctx.
	Me(ctx context.Context) (user.UserResponse, error)
	// LinkEmployee associates the current account with an employee and reissues tokens.
	LinkEmployee(ctx context.Context, req LinkEmployeeRequest, session SessionTrackingRequest) (TokenResponse, error)

	// EnsureAdmin creates or promotes the bootstrap administrator.
	EnsureAdmin(ctx context.Context, email, password, fullName string) error
}
