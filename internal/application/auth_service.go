package application

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/auth"
	"github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain"
	userDomain "github.com/Gensutsu-code/AvarusVenditoreEmergent/internal/domain/user"
)

// RegisterRequest is the DTO for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
}

// LoginRequest is the DTO for authenticating.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenPairDTO carries the access and refresh tokens issued on login.
type TokenPairDTO struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserDTO is the API response DTO for account data.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthService handles registration, login and token refresh.
type AuthService struct {
	users      userDomain.Repository
	jwtManager *auth.JWTManager
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users userDomain.Repository, jwtManager *auth.JWTManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		jwtManager: jwtManager,
		logger:     logger,
	}
}

// Register creates a new customer account and returns a token pair.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserDTO, *TokenPairDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if exists {
		return nil, nil, domain.NewConflictError("email is already registered")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, nil, err
	}

	u := &userDomain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         auth.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Save(ctx, u); err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", u.ID.String()))

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	dto := toUserDTO(u)
	return &dto, tokens, nil
}

// Login verifies credentials and returns a token pair.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*UserDTO, *TokenPairDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		// The caller cannot distinguish a missing account from a bad password.
		return nil, nil, domain.NewUnauthorizedError("invalid email or password")
	}
	if !auth.CheckPassword(req.Password, u.PasswordHash) {
		return nil, nil, domain.NewUnauthorizedError("invalid email or password")
	}

	tokens, err := s.issueTokens(u)
	if err != nil {
		return nil, nil, err
	}
	dto := toUserDTO(u)
	return &dto, tokens, nil
}

// Refresh validates a refresh token and issues a fresh pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPairDTO, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.NewUnauthorizedError("account no longer exists")
	}
	return s.issueTokens(u)
}

// CurrentUser returns the profile for an authenticated user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// ListUsers returns every account (admin).
func (s *AuthService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = toUserDTO(u)
	}
	return out, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	email = strings.ToLower(strings.TrimSpace(email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	admin := &userDomain.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         auth.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Save(ctx, admin); err != nil {
		return err
	}
	s.logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}

func (s *AuthService) issueTokens(u *userDomain.User) (*TokenPairDTO, error) {
	access, err := s.jwtManager.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &TokenPairDTO{AccessToken: access, RefreshToken: refresh}, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
