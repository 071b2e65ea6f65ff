package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles operator authentication and account management
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login verifies the credentials and issues a token pair. Unknown
// usernames and bad passwords return the same error so the response
// never reveals which part was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.ErrUnauthorized
		}
		return nil, wrapStorageError(err)
	}
	if !user.IsActive {
		return nil, shared.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrUnauthorized
	}

	tokens, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	})
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_GENERATION_FAILED", "Failed to generate tokens")
	}

	user.RecordLogin(time.Now().UTC())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// Login still succeeds if the timestamp update fails.
		s.logger.Warn("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("username", user.Username))

	return &LoginResponse{
		User:   ToUserResponse(user),
		Tokens: tokens,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	invalidated, err := s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
	if err == nil && invalidated {
		return nil, shared.ErrUnauthorized
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, shared.ErrUnauthorized
	}

	tokens, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Role.String())
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	return &LoginResponse{
		User:   ToUserResponse(user),
		Tokens: tokens,
	}, nil
}

// Logout revokes the presented access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// An invalid token has nothing to revoke.
		return nil
	}
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return shared.NewDomainError("LOGOUT_FAILED", "Failed to revoke token")
	}
	return nil
}

// CreateUser registers a new operator or admin account
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	role := identity.Role(req.Role)
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Role must be admin or operator")
	}
	if len(req.Password) < 6 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Password must be at least 6 characters")
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, shared.NewDomainError("HASH_FAILED", "Failed to hash password")
	}

	user, err := identity.NewUser(req.Username, string(hash), req.Name, role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, wrapStorageError(err)
	}

	s.logger.Info("User created",
		zap.String("username", user.Username),
		zap.String("role", user.Role.String()))

	response := ToUserResponse(user)
	return &response, nil
}

// ChangePassword verifies the current password, stores the new hash
// and invalidates every session the user holds.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	if len(req.NewPassword) < 6 {
		return shared.NewDomainError("INVALID_INPUT", "Password must be at least 6 characters")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return shared.ErrNotFound
		}
		return wrapStorageError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return shared.ErrUnauthorized
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return shared.NewDomainError("HASH_FAILED", "Failed to hash password")
	}
	if err := user.ChangePassword(string(hash)); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return wrapStorageError(err)
	}

	if err := s.blacklist.InvalidateUserTokens(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to invalidate user sessions after password change", zap.Error(err))
	}
	return nil
}

// GetUser returns a single user account
func (s *AuthService) GetUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, wrapStorageError(err)
	}
	response := ToUserResponse(user)
	return &response, nil
}

// ListUsers returns all user accounts
func (s *AuthService) ListUsers(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 200, OrderBy: "username", OrderDir: "asc"})
	if err != nil {
		return nil, wrapStorageError(err)
	}
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses, nil
}

// DeactivateUser disables an account without deleting its history
func (s *AuthService) DeactivateUser(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return shared.ErrNotFound
		}
		return wrapStorageError(err)
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return wrapStorageError(err)
	}
	if err := s.blacklist.InvalidateUserTokens(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
		s.logger.Warn("Failed to invalidate sessions of deactivated user", zap.Error(err))
	}
	return nil
}

func isNotFound(err error) bool {
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr) && domainErr.Code == shared.ErrNotFound.Code
}

// wrapStorageError keeps domain errors intact and converts anything
// else to PERSISTENCE_FAILURE.
func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return shared.NewDomainError(shared.ErrPersistenceFailure.Code, "Storage operation failed: "+err.Error())
}
