package auth

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/payroll-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
)

var testSession = auth.SessionTrackingRequest{IPAddress: "127.0.0.1", UserAgent: "Mozilla/5.0"}

type authFixture struct {
	store   *memory.Store
	jwt     jwt.Service
	service auth.AuthService
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	store := memory.NewStore()
	jwtService, err := jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp, false)
	require.NoError(t, err)
	return authFixture{
		store:   store,
		jwt:     jwtService,
		service: NewAuthService(store.Transactor(), store.Users(), store.Employees(), jwtService, store.Tokens()),
	}
}

// withAccessToken returns ctx carrying the verified access token the way jwtauth.Verifier does.
func (f authFixture) withAccessToken(t *testing.T, accessToken string) context.Context {
	t.Helper()
	token, err := jwtauth.VerifyToken(f.jwt.JWTAuth(), accessToken)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), token, nil)
}

func (f authFixture) createUser(t *testing.T, email, username, password string, role user.Role) user.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hashed := string(hash)
	u, err := f.store.Users().Create(context.Background(), user.User{
		Email:        email,
		Username:     username,
		FullName:     "Test User",
		PasswordHash: &hashed,
		Role:         role,
	})
	require.NoError(t, err)
	return u
}

func (f authFixture) createEmployee(t *testing.T, code string) employee.Employee {
	t.Helper()
	emp, err := f.store.Employees().Create(context.Background(), employee.Employee{
		EmployeeCode: code,
		FirstName:    "Jane",
		LastName:     "Doe",
		Email:        code + "@example.com",
		Phone:        "+6281234567",
		Department:   "Engineering",
		Position:     "Engineer",
		Salary:       decimal.NewFromInt(5000),
		IsActive:     true,
	})
	require.NoError(t, err)
	return emp
}

func registerRequest(email, username string) auth.RegisterRequest {
	return auth.RegisterRequest{
		FullName:        "Jane Doe",
		Username:        username,
		Email:           email,
		Password:        "password123",
		ConfirmPassword: "password123",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture(t)

	response, err := f.service.Register(context.Background(), registerRequest("jane@example.com", "jane"), testSession)
	require.NoError(t, err)
	assert.NotEmpty(t, response.AccessToken)
	assert.NotEmpty(t, response.RefreshToken)

	created, err := f.store.Users().GetByEmail(context.Background(), "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, created.Role)
	require.NotNil(t, created.PasswordHash)
	assert.NotEqual(t, "password123", *created.PasswordHash)

	claims, err := jwt.ClaimsFromContext(f.withAccessToken(t, response.AccessToken))
	require.NoError(t, err)
	assert.Equal(t, created.ID, claims.UserID)
	assert.Nil(t, claims.EmployeeID)
}

func TestAuthService_Register_Duplicates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "taken@example.com", "taken", "password123", user.RoleEmployee)

	_, err := f.service.Register(ctx, registerRequest("TAKEN@example.com", "someone"), testSession)
	assert.ErrorIs(t, err, auth.ErrEmailAlreadyExists)

	_, err = f.service.Register(ctx, registerRequest("fresh@example.com", "taken"), testSession)
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "login@example.com", "login", "password123", user.RoleAdmin)

	t.Run("valid credentials", func(t *testing.T) {
		response, err := f.service.Login(ctx, auth.LoginRequest{Email: "login@example.com", Password: "password123"}, testSession)
		require.NoError(t, err)
		assert.Greater(t, response.AccessTokenExpiresIn, int64(0))
		assert.Greater(t, response.RefreshTokenExpiresIn, response.AccessTokenExpiresIn)

		claims, err := jwt.ClaimsFromContext(f.withAccessToken(t, response.AccessToken))
		require.NoError(t, err)
		assert.True(t, claims.IsAdmin())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{Email: "login@example.com", Password: "wrongpassword"}, testSession)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := f.service.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: "password123"}, testSession)
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})
}

func TestAuthService_Login_OAuthOnlyAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.LoginWithGoogle(ctx, auth.GoogleProfile{GoogleID: "g-1", Email: "oauth@example.com", FullName: "OAuth User"}, testSession)
	require.NoError(t, err)

	_, err = f.service.Login(ctx, auth.LoginRequest{Email: "oauth@example.com", Password: "password123"}, testSession)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("creates unknown user", func(t *testing.T) {
		response, err := f.service.LoginWithGoogle(ctx, auth.GoogleProfile{GoogleID: "g-100", Email: "new.person@example.com", FullName: "New Person"}, testSession)
		require.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)

		created, err := f.store.Users().GetByEmail(ctx, "new.person@example.com")
		require.NoError(t, err)
		assert.Equal(t, "new.person", created.Username)
		assert.Equal(t, user.RoleEmployee, created.Role)
		require.NotNil(t, created.OAuthProviderID)
		assert.Equal(t, "g-100", *created.OAuthProviderID)
	})

	t.Run("links existing password account", func(t *testing.T) {
		existing := f.createUser(t, "linked@example.com", "linked", "password123", user.RoleEmployee)

		_, err := f.service.LoginWithGoogle(ctx, auth.GoogleProfile{GoogleID: "g-200", Email: "linked@example.com", FullName: "Linked"}, testSession)
		require.NoError(t, err)

		updated, err := f.store.Users().GetByID(ctx, existing.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.OAuthProviderID)
		assert.Equal(t, "g-200", *updated.OAuthProviderID)
		assert.NotNil(t, updated.PasswordHash)
	})

	t.Run("username collision gets suffix", func(t *testing.T) {
		f.createUser(t, "other@example.org", "collide", "password123", user.RoleEmployee)

		_, err := f.service.LoginWithGoogle(ctx, auth.GoogleProfile{GoogleID: "g-300", Email: "collide@example.com", FullName: "Collide"}, testSession)
		require.NoError(t, err)

		created, err := f.store.Users().GetByEmail(ctx, "collide@example.com")
		require.NoError(t, err)
		assert.NotEqual(t, "collide", created.Username)
		assert.Contains(t, created.Username, "collide-")
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, "refresh@example.com", "refresh", "password123", user.RoleEmployee)

	login, err := f.service.Login(ctx, auth.LoginRequest{Email: "refresh@example.com", Password: "password123"}, testSession)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		response, err := f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.NotEmpty(t, response.AccessToken)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.AccessToken})
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: "not-a-jwt"})
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("revoked after logout", func(t *testing.T) {
		require.NoError(t, f.service.Logout(ctx, login.RefreshToken))
		_, err := f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
	})
}

func TestAuthService_Logout_EmptyTokenIsNoop(t *testing.T) {
	f := newAuthFixture(t)
	assert.NoError(t, f.service.Logout(context.Background(), ""))
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)
	u := f.createUser(t, "me@example.com", "me_user", "password123", user.RoleEmployee)

	token, _, err := f.jwt.GenerateAccessToken(u.ID, u.Email, nil, u.Role)
	require.NoError(t, err)

	me, err := f.service.Me(f.withAccessToken(t, token))
	require.NoError(t, err)
	assert.Equal(t, u.ID, me.ID)
	assert.Equal(t, "me_user", me.Username)

	_, err = f.service.Me(context.Background())
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_LinkEmployee(t *testing.T) {
	f := newAuthFixture(t)
	emp := f.createEmployee(t, "EMP-000001")
	u := f.createUser(t, "link@example.com", "link", "password123", user.RoleEmployee)

	token, _, err := f.jwt.GenerateAccessToken(u.ID, u.Email, nil, u.Role)
	require.NoError(t, err)
	ctx := f.withAccessToken(t, token)

	t.Run("unknown code", func(t *testing.T) {
		_, err := f.service.LinkEmployee(ctx, auth.LinkEmployeeRequest{EmployeeCode: "EMP-999999"}, testSession)
		assert.ErrorIs(t, err, auth.ErrEmployeeCodeUnknown)
	})

	t.Run("links and reissues tokens", func(t *testing.T) {
		response, err := f.service.LinkEmployee(ctx, auth.LinkEmployeeRequest{EmployeeCode: "EMP-000001"}, testSession)
		require.NoError(t, err)

		claims, err := jwt.ClaimsFromContext(f.withAccessToken(t, response.AccessToken))
		require.NoError(t, err)
		require.NotNil(t, claims.EmployeeID)
		assert.Equal(t, emp.ID, *claims.EmployeeID)
	})

	t.Run("same code again is idempotent", func(t *testing.T) {
		_, err := f.service.LinkEmployee(ctx, auth.LinkEmployeeRequest{EmployeeCode: "EMP-000001"}, testSession)
		assert.NoError(t, err)
	})

	t.Run("second employee rejected", func(t *testing.T) {
		f.createEmployee(t, "EMP-000002")
		_, err := f.service.LinkEmployee(ctx, auth.LinkEmployeeRequest{EmployeeCode: "EMP-000002"}, testSession)
		assert.ErrorIs(t, err, auth.ErrAlreadyLinked)
	})

	t.Run("employee taken by another user", func(t *testing.T) {
		other := f.createUser(t, "other@example.com", "other", "password123", user.RoleEmployee)
		otherToken, _, err := f.jwt.GenerateAccessToken(other.ID, other.Email, nil, other.Role)
		require.NoError(t, err)

		_, err = f.service.LinkEmployee(f.withAccessToken(t, otherToken), auth.LinkEmployeeRequest{EmployeeCode: "EMP-000001"}, testSession)
		assert.ErrorIs(t, err, auth.ErrEmployeeTaken)
	})
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("creates missing admin", func(t *testing.T) {
		require.NoError(t, f.service.EnsureAdmin(ctx, "admin@example.com", "supersecret", "Administrator"))

		admin, err := f.store.Users().GetByEmail(ctx, "admin@example.com")
		require.NoError(t, err)
		assert.True(t, admin.IsAdmin())

		_, err = f.service.Login(ctx, auth.LoginRequest{Email: "admin@example.com", Password: "supersecret"}, testSession)
		assert.NoError(t, err)
	})

	t.Run("is idempotent", func(t *testing.T) {
		require.NoError(t, f.service.EnsureAdmin(ctx, "admin@example.com", "supersecret", "Administrator"))
	})

	t.Run("promotes existing user and revokes sessions", func(t *testing.T) {
		f.createUser(t, "promote@example.com", "promote", "password123", user.RoleEmployee)
		login, err := f.service.Login(ctx, auth.LoginRequest{Email: "promote@example.com", Password: "password123"}, testSession)
		require.NoError(t, err)

		require.NoError(t, f.service.EnsureAdmin(ctx, "promote@example.com", "ignored-password", "Promoted"))

		promoted, err := f.store.Users().GetByEmail(ctx, "promote@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.RoleAdmin, promoted.Role)

		_, err = f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: login.RefreshToken})
		assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)

		// existing password is kept
		_, err = f.service.Login(ctx, auth.LoginRequest{Email: "promote@example.com", Password: "password123"}, testSession)
		assert.NoError(t, err)
	})
}
