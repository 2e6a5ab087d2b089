package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vibast-solutions/ms-go-user/app/dto"
	"github.com/vibast-solutions/ms-go-user/app/entity"
	"github.com/vibast-solutions/ms-go-user/app/repository"
	"github.com/vibast-solutions/ms-go-user/app/types"
	"github.com/vibast-solutions/ms-go-user/config"
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrResetNotPermitted  = errors.New("password reset is only allowed for the authenticated user")
)

// dummyPassword is hashed once so that logins for unknown emails still pay
// for a full hash comparison.
const dummyPassword = "user-service-dummy-password"

type userRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*entity.User, error)
	ResetPassword(ctx context.Context, id, passwordHash string) error
	UpdateRefreshToken(ctx context.Context, id, token string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type TokenIssuer interface {
	IssueAccessToken(user *entity.User) (string, error)
	VerifyAccessToken(token string) (*Claims, error)
	IssueRefreshToken() (string, error)
}

type UserAuthService interface {
	Signup(ctx context.Context, req *types.SignupRequest) (*dto.SignupResult, error)
	Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error)
	Refresh(ctx context.Context, req *types.RefreshRequest) (*dto.RefreshResult, error)
	Profile(ctx context.Context, id string) (*dto.Profile, error)
	ResetPassword(ctx context.Context, callerID string, req *types.ResetPasswordRequest) error
	ValidateAccessToken(tokenString string) (*Claims, error)
	Introspect(tokenString string) *dto.TokenIntrospection
}

type IDGenerator func() string

type UserAuthServiceOption func(*userAuthService)

type userAuthService struct {
	userRepo userRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	cfg      *config.Config
	newID    IDGenerator
	now      func() time.Time

	dummyHash string
}

func NewUserAuthService(
	userRepo userRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	cfg *config.Config,
	opts ...UserAuthServiceOption,
) UserAuthService {
	svc := &userAuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		cfg:      cfg,
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if hash, err := hasher.Hash(dummyPassword); err == nil {
		svc.dummyHash = hash
	}
	return svc
}

func WithIDGenerator(gen IDGenerator) UserAuthServiceOption {
	return func(s *userAuthService) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func (s *userAuthService) Signup(ctx context.Context, req *types.SignupRequest) (*dto.SignupResult, error) {
	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	user := &entity.User{
		ID:           s.newID(),
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hashedPassword,
		FirstName:    nullString(req.FirstName),
		LastName:     nullString(req.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Uniqueness is left to the store constraints.
	if err = s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	result := &dto.SignupResult{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}

	if s.cfg.Signup.IssueToken {
		token, err := s.tokens.IssueAccessToken(user)
		if err != nil {
			return nil, err
		}
		result.Token = token
	}

	return result, nil
}

func (s *userAuthService) Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(req.Password, s.dummyHash)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.tokens.IssueRefreshToken()
	if err != nil {
		return nil, err
	}

	if err = s.userRepo.UpdateRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("persist refresh token: %w", err)
	}

	return &dto.LoginResult{
		Token:        accessToken,
		RefreshToken: refreshToken,
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
	}, nil
}

// Refresh issues a new access token for the holder of a stored refresh token.
// The refresh token itself is not rotated.
func (s *userAuthService) Refresh(ctx context.Context, req *types.RefreshRequest) (*dto.RefreshResult, error) {
	user, err := s.userRepo.FindByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	accessToken, err := s.tokens.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.RefreshResult{AccessToken: accessToken}, nil
}

func (s *userAuthService) Profile(ctx context.Context, id string) (*dto.Profile, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return &dto.Profile{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		FirstName: stringPtr(user.FirstName),
		LastName:  stringPtr(user.LastName),
	}, nil
}

func (s *userAuthService) ResetPassword(ctx context.Context, callerID string, req *types.ResetPasswordRequest) error {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if user.ID != callerID {
		return ErrResetNotPermitted
	}

	hashedPassword, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.userRepo.ResetPassword(ctx, user.ID, hashedPassword)
}

func (s *userAuthService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokens.VerifyAccessToken(tokenString)
}

func (s *userAuthService) Introspect(tokenString string) *dto.TokenIntrospection {
	claims, err := s.tokens.VerifyAccessToken(tokenString)
	if err != nil {
		return &dto.TokenIntrospection{Valid: false}
	}

	return &dto.TokenIntrospection{
		Valid:    true,
		ID:       claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
