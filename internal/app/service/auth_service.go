package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"employee_manager/internal/common"
	"employee_manager/internal/common/security"
	"employee_manager/internal/domain/model"
	"employee_manager/internal/domain/repository"

	"github.com/google/uuid"
)

var emailRegexp = regexp.MustCompile(`^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`)

type AuthService struct {
	userRepo repository.UserRepository
	jwt      *security.JWTManager
}

func NewAuthService(userRepo repository.UserRepository, jwt *security.JWTManager) *AuthService {
	return &AuthService{userRepo: userRepo, jwt: jwt}
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// invalidCredentials is the single message for every login failure, whether
// the account is missing or the password is wrong.
const invalidCredentials = "Invalid Username and password"

func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*SignupResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if len(req.Username) < 3 {
		return nil, common.ValidationError("Username must be at least 3 characters")
	}
	if !emailRegexp.MatchString(req.Email) {
		return nil, common.ValidationError("Please provide a valid email")
	}
	if len(req.Password) < 6 {
		return nil, common.ValidationError("Password must be at least 6 characters")
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
	}

	// Repo returns common.ErrConflict when username or email is taken.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return &SignupResponse{
		Message: "User created successfully.",
		UserID:  user.ID,
	}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	loginField := strings.TrimSpace(req.Email)
	if loginField == "" {
		loginField = strings.TrimSpace(req.Username)
	}
	if req.Password == "" {
		return nil, common.ValidationError("Password is required")
	}
	if loginField == "" {
		return nil, common.AuthError(invalidCredentials)
	}

	// Try finding by email first, then by username.
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(loginField))
	if err != nil && errors.Is(err, common.ErrNotFound) {
		user, err = s.userRepo.FindByUsername(ctx, loginField)
	}
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.AuthError(invalidCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.AuthError(invalidCredentials)
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResponse{
		Message:  "Login successful.",
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	}, nil
}
