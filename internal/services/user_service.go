package services

import (
	"context"
	"fmt"

	"github.com/pquerna/otp/totp"

	"rental-backend/internal/auth"
	"rental-backend/internal/cache"
	"rental-backend/internal/ledger"
	"rental-backend/internal/models"
	"rental-backend/internal/repositories"
)

type UserService struct {
	Repo       *repositories.UserRepository
	JWTManager *auth.JWTManager
}

func NewUserService(repo *repositories.UserRepository, jwtManager *auth.JWTManager) *UserService {
	return &UserService{Repo: repo, JWTManager: jwtManager}
}

func validRole(role string) bool {
	switch role {
	case "owner", "manager", "admin":
		return true
	}
	return false
}

// CreateUser provisions an account; admin only, no self-signup
func (s *UserService) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" || req.Name == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ledger.ErrValidation)
	}
	if !validRole(req.Role) {
		return nil, fmt.Errorf("%w: unknown role %q", ledger.ErrValidation, req.Role)
	}

	if existing, _ := s.Repo.GetByEmail(ctx, req.Email); existing != nil {
		return nil, fmt.Errorf("%w: email already registered", ledger.ErrConflict)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:             req.Name,
		Email:            req.Email,
		PasswordHash:     hashed,
		Role:             req.Role,
		HasFinanceAccess: req.HasFinanceAccess,
		IsActive:         true,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user and returns a JWT token. Accounts with TOTP
// enabled must supply a valid code in the same request.
func (s *UserService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ledger.ErrValidation)
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password")
	}

	// Cached credential hash skips the bcrypt round on repeat logins
	cachedID, cached := cache.GetCachedAuth(ctx, req.Email, req.Password)
	if !cached || cachedID != int64(user.ID) {
		if !auth.VerifyPassword(user.PasswordHash, req.Password) {
			return nil, fmt.Errorf("invalid email or password")
		}
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is disabled")
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			temp, err := s.JWTManager.GenerateTempToken(user)
			if err != nil {
				return nil, err
			}
			return &models.AuthResponse{RequiresTOTP: true, TempToken: temp}, nil
		}
		if !totp.Validate(req.TOTPCode, user.TOTPSecret) {
			return nil, fmt.Errorf("invalid totp code")
		}
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

// VerifyTOTPLogin is step 2 of a two-step login: the temp token from
// Login plus a valid code trade up to a full session token.
func (s *UserService) VerifyTOTPLogin(ctx context.Context, req *models.TOTPVerifyRequest) (*models.AuthResponse, error) {
	if req.TempToken == "" || req.Code == "" {
		return nil, fmt.Errorf("%w: temp token and code are required", ledger.ErrValidation)
	}

	claims, err := s.JWTManager.ValidateTempToken(req.TempToken)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}
	user, err := s.Repo.Get(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is disabled")
	}
	if !totp.Validate(req.Code, user.TOTPSecret) {
		return nil, fmt.Errorf("invalid totp code")
	}

	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, User: user}, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	return s.Repo.Get(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.Repo.List(ctx)
}
