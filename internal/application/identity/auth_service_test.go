package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "auth-service-test-secret-key-0001",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "retailpos-test",
		MaxRefreshCount:        5,
	})
}

func newTestUser(t *testing.T, password string, role identity.Role) *identity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user, err := identity.NewUser("caixa1", string(hash), "Operador Caixa", role)
	require.NoError(t, err)
	return user
}

type authServiceFixture struct {
	service   *AuthService
	userRepo  *MockUserRepository
	blacklist *auth.InMemoryTokenBlacklist
	jwt       *auth.JWTService
}

func newAuthServiceFixture() *authServiceFixture {
	userRepo := new(MockUserRepository)
	blacklist := auth.NewInMemoryTokenBlacklist()
	jwtService := newTestJWTService()
	return &authServiceFixture{
		service:   NewAuthService(userRepo, jwtService, blacklist, zap.NewNop()),
		userRepo:  userRepo,
		blacklist: blacklist,
		jwt:       jwtService,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return tokens and record the login", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "segredo123", identity.RoleOperator)

		f.userRepo.On("FindByUsername", ctx, "caixa1").Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		resp, err := f.service.Login(ctx, LoginRequest{Username: "caixa1", Password: "segredo123"})

		require.NoError(t, err)
		assert.Equal(t, "caixa1", resp.User.Username)
		assert.Equal(t, "operator", resp.User.Role)
		assert.NotEmpty(t, resp.Tokens.AccessToken)
		assert.NotEmpty(t, resp.Tokens.RefreshToken)
		assert.NotNil(t, user.LastLoginAt)

		claims, err := f.jwt.ValidateAccessToken(resp.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		f.userRepo.AssertExpectations(t)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "segredo123", identity.RoleOperator)
		f.userRepo.On("FindByUsername", ctx, "caixa1").Return(user, nil)

		_, err := f.service.Login(ctx, LoginRequest{Username: "caixa1", Password: "errada"})

		assertDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("unknown username gets the same error as a wrong password", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.userRepo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := f.service.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever"})

		assertDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("deactivated user cannot log in", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "segredo123", identity.RoleOperator)
		require.NoError(t, user.Deactivate())
		f.userRepo.On("FindByUsername", ctx, "caixa1").Return(user, nil)

		_, err := f.service.Login(ctx, LoginRequest{Username: "caixa1", Password: "segredo123"})

		assertDomainCode(t, err, "UNAUTHORIZED")
	})
}

func TestAuthServiceRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid refresh token yields a new pair with the current role", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "segredo123", identity.RoleOperator)
		pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
			Role:     "operator",
		})
		require.NoError(t, err)

		// role was upgraded between login and refresh
		user.Role = identity.RoleAdmin
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		resp, err := f.service.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

		require.NoError(t, err)
		claims, err := f.jwt.ValidateAccessToken(resp.Tokens.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		f := newAuthServiceFixture()

		_, err := f.service.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})

		assertDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("refresh is rejected after user-wide invalidation", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "segredo123", identity.RoleOperator)
		pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
			Role:     "operator",
		})
		require.NoError(t, err)

		require.NoError(t, f.blacklist.InvalidateUserTokens(ctx, user.ID.String(), time.Hour))

		_, err = f.service.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

		assertDomainCode(t, err, "UNAUTHORIZED")
	})
}

func TestAuthServiceLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("logout blacklists the access token", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "segredo123", identity.RoleOperator)
		pair, err := f.jwt.GenerateTokenPair(auth.GenerateTokenInput{
			UserID:   user.ID,
			Username: user.Username,
			Role:     "operator",
		})
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(ctx, pair.AccessToken))

		claims, err := f.jwt.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		blacklisted, err := f.blacklist.IsBlacklisted(ctx, claims.ID)
		require.NoError(t, err)
		assert.True(t, blacklisted)
	})

	t.Run("logout with an invalid token is a no-op", func(t *testing.T) {
		f := newAuthServiceFixture()
		assert.NoError(t, f.service.Logout(ctx, "expired-or-garbage"))
	})
}

func TestAuthServiceCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("creates an operator with a hashed password", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.userRepo.On("ExistsByUsername", ctx, "caixa2").Return(false, nil)

		var saved *identity.User
		f.userRepo.On("Save", ctx, mock.AnythingOfType("*identity.User")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*identity.User) }).
			Return(nil)

		resp, err := f.service.CreateUser(ctx, CreateUserRequest{
			Username: "caixa2",
			Password: "segredo123",
			Name:     "Segundo Caixa",
			Role:     "operator",
		})

		require.NoError(t, err)
		assert.Equal(t, "caixa2", resp.Username)
		require.NotNil(t, saved)
		assert.NotEqual(t, "segredo123", saved.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.PasswordHash), []byte("segredo123")))
	})

	t.Run("duplicate username is rejected", func(t *testing.T) {
		f := newAuthServiceFixture()
		f.userRepo.On("ExistsByUsername", ctx, "caixa1").Return(true, nil)

		_, err := f.service.CreateUser(ctx, CreateUserRequest{
			Username: "caixa1", Password: "segredo123", Name: "Dup", Role: "operator",
		})

		assertDomainCode(t, err, "ALREADY_EXISTS")
	})

	t.Run("invalid role is rejected", func(t *testing.T) {
		f := newAuthServiceFixture()

		_, err := f.service.CreateUser(ctx, CreateUserRequest{
			Username: "caixa3", Password: "segredo123", Name: "X", Role: "superuser",
		})

		assertDomainCode(t, err, "INVALID_INPUT")
	})

	t.Run("short password is rejected", func(t *testing.T) {
		f := newAuthServiceFixture()

		_, err := f.service.CreateUser(ctx, CreateUserRequest{
			Username: "caixa3", Password: "abc", Name: "X", Role: "operator",
		})

		assertDomainCode(t, err, "INVALID_INPUT")
	})
}

func TestAuthServiceChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("changes the hash and invalidates existing sessions", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "antiga123", identity.RoleOperator)
		issuedAt := time.Now().Add(-time.Minute)

		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
		f.userRepo.On("Save", ctx, user).Return(nil)

		err := f.service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
			CurrentPassword: "antiga123",
			NewPassword:     "nova12345",
		})

		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("nova12345")))

		invalidated, err := f.blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), issuedAt)
		require.NoError(t, err)
		assert.True(t, invalidated)
	})

	t.Run("wrong current password is unauthorized", func(t *testing.T) {
		f := newAuthServiceFixture()
		user := newTestUser(t, "antiga123", identity.RoleOperator)
		f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)

		err := f.service.ChangePassword(ctx, user.ID, ChangePasswordRequest{
			CurrentPassword: "errada",
			NewPassword:     "nova12345",
		})

		assertDomainCode(t, err, "UNAUTHORIZED")
	})
}

func TestAuthServiceDeactivateUser(t *testing.T) {
	ctx := context.Background()

	f := newAuthServiceFixture()
	user := newTestUser(t, "segredo123", identity.RoleOperator)
	issuedAt := time.Now().Add(-time.Minute)

	f.userRepo.On("FindByID", ctx, user.ID).Return(user, nil)
	f.userRepo.On("Save", ctx, user).Return(nil)

	require.NoError(t, f.service.DeactivateUser(ctx, user.ID))

	assert.False(t, user.IsActive)
	invalidated, err := f.blacklist.IsUserTokenInvalidated(ctx, user.ID.String(), issuedAt)
	require.NoError(t, err)
	assert.True(t, invalidated)
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}
