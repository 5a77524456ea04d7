package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/alims/leadcrm/internal/config"
	"github.com/alims/leadcrm/internal/crm/entity"
	"github.com/alims/leadcrm/internal/crm/repository"
	"github.com/alims/leadcrm/internal/middleware"
)

// AuthService account registration, login and token minting
type AuthService struct {
	users *repository.UserRepository
	cfg   config.JWTConfig
}

func NewAuthService(users *repository.UserRepository, cfg config.JWTConfig) *AuthService {
	return &AuthService{users: users, cfg: cfg}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Name     string `json:"name" binding:"required,max=128"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *entity.User `json:"user"`
}

// Register creates an account. Unknown roles fall back to counsellor;
// manager accounts are normally minted via the CLI.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*entity.User, error) {
	if _, err := s.users.FindByUsername(ctx, req.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if err != repository.ErrNotFound {
		return nil, err
	}
	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	role := req.Role
	if role != entity.RoleManager && role != entity.RoleCounsellor {
		role = entity.RoleCounsellor
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status != "active" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, err
	}

	return &LoginResponse{Token: token, User: user}, nil
}

// GenerateToken signed HS256 token carrying the user's identity and role
func (s *AuthService) GenerateToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := middleware.JWTClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTokenExpire)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}

func (s *AuthService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	return s.users.FindByID(ctx, id)
}

// ListCounsellors active counsellor accounts, for assignment pickers
func (s *AuthService) ListCounsellors(ctx context.Context) ([]entity.User, error) {
	return s.users.FindByRole(ctx, entity.RoleCounsellor)
}
