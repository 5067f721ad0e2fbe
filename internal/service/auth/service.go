package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	employee.EmployeeRepository
	jwt.Service
	auth.TokenRepository
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, employeeRepository employee.EmployeeRepository, jwtService jwt.Service, tokenRepository auth.TokenRepository) auth.AuthService {
	return &AuthServiceImpl{
		tx:                 tx,
		UserRepository:     userRepository,
		EmployeeRepository: employeeRepository,
		Service:            jwtService,
		TokenRepository:    tokenRepository,
	}
}

func (a *AuthServiceImpl) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// issueTokens signs an access/refresh pair and stores the refresh token. ctx may carry a transaction.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	var err error

	tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Email, u.EmployeeID, u.Role)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}
	tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to create refresh token: %w", err)
	}

	if err := a.CreateRefreshToken(ctx, u.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, session); err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to save refresh token to database: %w", err)
	}
	return tokenResponse, nil
}

// Register implements auth.AuthService.
func (a *AuthServiceImpl) Register(ctx context.Context, registerReq auth.RegisterRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	taken, err := a.UserRepository.ExistsByEmailOrUsername(ctx, registerReq.Email, registerReq.Username)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to check existing user: %w", err)
	}
	if taken {
		if _, err := a.UserRepository.GetByEmail(ctx, registerReq.Email); err == nil {
			return auth.TokenResponse{}, auth.ErrEmailAlreadyExists
		}
		return auth.TokenResponse{}, auth.ErrUsernameTaken
	}

	hashedPassword, err := a.hashPassword(registerReq.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		newUser, err := a.UserRepository.Create(txCtx, user.User{
			Email:        strings.TrimSpace(registerReq.Email),
			Username:     registerReq.Username,
			FullName:     strings.TrimSpace(registerReq.FullName),
			PasswordHash: &hashedPassword,
			Role:         user.RoleEmployee,
		})
		if err != nil {
			return err
		}
		tokenResponse, err = a.issueTokens(txCtx, newUser, sessionTrackReq)
		return err
	})
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserEmailExists):
			return auth.TokenResponse{}, auth.ErrEmailAlreadyExists
		case errors.Is(err, user.ErrUsernameExists):
			return auth.TokenResponse{}, auth.ErrUsernameTaken
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to register user: %w", err)
	}

	return tokenResponse, nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	// OAuth-only accounts have no password
	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	return a.issueTokens(ctx, userData, sessionTrackReq)
}

// LoginWithGoogle implements auth.AuthService.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, profile auth.GoogleProfile, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	err := a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		userData, err := a.UserRepository.GetByEmail(txCtx, profile.Email)
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			// User does not exist so we create one
			username, err := a.uniqueUsername(txCtx, profile.Email)
			if err != nil {
				return err
			}
			provider := "google"
			userData, err = a.UserRepository.Create(txCtx, user.User{
				Email:           profile.Email,
				Username:        username,
				FullName:        profile.FullName,
				Role:            user.RoleEmployee,
				OAuthProvider:   &provider,
				OAuthProviderID: &profile.GoogleID,
			})
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to get user data by email: %w", err)
		case userData.OAuthProviderID == nil:
			// Existing password account, link google account
			if userData, err = a.UserRepository.LinkGoogleAccount(txCtx, profile.GoogleID, userData.Email); err != nil {
				return fmt.Errorf("failed to link google account: %w", err)
			}
		}

		tokenResponse, err = a.issueTokens(txCtx, userData, sessionTrackReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	return tokenResponse, nil
}

var usernameUnsafe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uniqueUsername derives a username from the local part of an email.
func (a *AuthServiceImpl) uniqueUsername(ctx context.Context, email string) (string, error) {
	base, _, _ := strings.Cut(email, "@")
	base = usernameUnsafe.ReplaceAllString(base, "")
	if len(base) > 40 {
		base = base[:40]
	}
	for len(base) < 3 {
		base += "_"
	}

	candidate := base
	for range 5 {
		taken, err := a.UserRepository.ExistsByEmailOrUsername(ctx, "", candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		if !taken {
			return candidate, nil
		}
		suffix := make([]byte, 3)
		if _, err := rand.Read(suffix); err != nil {
			return "", err
		}
		candidate = base + "-" + hex.EncodeToString(suffix)
	}
	return "", auth.ErrUsernameTaken
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.TokenRepository.RevokeRefreshToken(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	var accessTokenResponse auth.AccessTokenResponse

	// 1. Verify signature, expiry and token type
	subject, err := a.Service.ParseRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check DB for revocation/expiry (pass raw token, not hash)
	userID, isRevoked, err := a.TokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	if userID != subject {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 3. Get user, role and employee link may have changed since login
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	// 4. Generate new access token
	accessTokenResponse.AccessToken, accessTokenResponse.AccessTokenExpiresIn, err =
		a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return accessTokenResponse, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (user.UserResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return user.UserResponse{}, auth.ErrInvalidToken
	}

	userData, err := a.UserRepository.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.UserResponse{}, auth.ErrUserNotFound
		}
		return user.UserResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	return userData.ToResponse(), nil
}

// LinkEmployee implements auth.AuthService.
func (a *AuthServiceImpl) LinkEmployee(ctx context.Context, req auth.LinkEmployeeRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	claims, err := jwt.ClaimsFromContext(ctx)
	if err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidToken
	}

	var tokenResponse auth.TokenResponse
	err = a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		userData, err := a.UserRepository.GetByID(txCtx, claims.UserID)
		if err != nil {
			if errors.Is(err, user.ErrUserNotFound) {
				return auth.ErrUserNotFound
			}
			return fmt.Errorf("failed to get user: %w", err)
		}

		emp, err := a.EmployeeRepository.GetByEmployeeCode(txCtx, req.EmployeeCode)
		if err != nil {
			if errors.Is(err, employee.ErrEmployeeNotFound) {
				return auth.ErrEmployeeCodeUnknown
			}
			return fmt.Errorf("failed to get employee: %w", err)
		}

		if userData.HasEmployee() {
			if *userData.EmployeeID == emp.ID {
				// Already linked to this employee, just reissue tokens
				tokenResponse, err = a.issueTokens(txCtx, userData, sessionTrackReq)
				return err
			}
			return auth.ErrAlreadyLinked
		}
		if emp.IsLinked() && *emp.UserID != userData.ID {
			return auth.ErrEmployeeTaken
		}

		if err := a.EmployeeRepository.LinkUser(txCtx, emp.ID, userData.ID); err != nil {
			if errors.Is(err, employee.ErrUserAlreadyLinked) {
				return auth.ErrEmployeeTaken
			}
			return fmt.Errorf("failed to link employee: %w", err)
		}

		userData.EmployeeID = &emp.ID
		tokenResponse, err = a.issueTokens(txCtx, userData, sessionTrackReq)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user linked to employee", "user_id", claims.UserID, "employee_code", req.EmployeeCode)
	return tokenResponse, nil
}

// EnsureAdmin implements auth.AuthService.
func (a *AuthServiceImpl) EnsureAdmin(ctx context.Context, email, password, fullName string) error {
	return a.tx.WithinTx(ctx, func(txCtx context.Context) error {
		existing, err := a.UserRepository.GetByEmail(txCtx, email)
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			hashedPassword, err := a.hashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			username, err := a.uniqueUsername(txCtx, email)
			if err != nil {
				return err
			}
			created, err := a.UserRepository.Create(txCtx, user.User{
				Email:        email,
				Username:     username,
				FullName:     fullName,
				PasswordHash: &hashedPassword,
				Role:         user.RoleAdmin,
			})
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			slog.Info("bootstrap admin created", "user_id", created.ID, "email", email)
			return nil
		case err != nil:
			return fmt.Errorf("failed to get admin by email: %w", err)
		}

		if existing.PasswordHash == nil {
			hashedPassword, err := a.hashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			if err := a.UserRepository.UpdatePassword(txCtx, existing.ID, hashedPassword); err != nil {
				return fmt.Errorf("failed to set admin password: %w", err)
			}
		}

		if existing.Role != user.RoleAdmin {
			if err := a.UserRepository.UpdateRole(txCtx, existing.ID, user.RoleAdmin); err != nil {
				return fmt.Errorf("failed to promote admin: %w", err)
			}
			// Outstanding sessions still carry the old role
			if err := a.TokenRepository.RevokeAllForUser(txCtx, existing.ID); err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
			slog.Info("bootstrap admin promoted", "user_id", existing.ID, "email", email)
		}
		return nil
	})
}
