package services

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ycmovement/membership-api/internal/config"
	"github.com/ycmovement/membership-api/internal/models"
	"github.com/ycmovement/membership-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles admin authentication
type AuthService struct {
	adminRepo        repository.AdminRepository
	refreshTokenRepo repository.RefreshTokenRepository
	auditSvc         *AuditService
	cfg              *config.Config
}

// NewAuthService creates a new auth service
func NewAuthService(adminRepo repository.AdminRepository, rtRepo repository.RefreshTokenRepository, auditSvc *AuditService, cfg *config.Config) *AuthService {
	return &AuthService{
		adminRepo:        adminRepo,
		refreshTokenRepo: rtRepo,
		auditSvc:         auditSvc,
		cfg:              cfg,
	}
}

// LoginResult represents the result of a login attempt
type LoginResult struct {
	Token        string               `json:"token"`
	RefreshToken string               `json:"refresh_token"`
	Admin        models.AdminResponse `json:"admin"`
}

// Login authenticates an admin and returns tokens
func (s *AuthService) Login(ctx context.Context, email, password, ip, userAgent string) (*LoginResult, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !admin.IsActive() {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(admin)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(ctx, admin.ID)
	if err != nil {
		return nil, err
	}

	s.auditSvc.Log(ctx, admin.Email, models.ActorTypeAdmin, "login", "Admin logged in", ip, userAgent)

	return &LoginResult{
		Token:        token,
		RefreshToken: refreshToken,
		Admin:        admin.ToResponse(),
	}, nil
}

// Refresh validates a refresh token and rotates both tokens
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	rt, err := s.refreshTokenRepo.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if rt.IsExpired() {
		s.refreshTokenRepo.Delete(ctx, refreshToken)
		return nil, ErrInvalidToken
	}

	admin, err := s.adminRepo.FindByID(ctx, rt.AdminUserID)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !admin.IsActive() {
		return nil, ErrAccountInactive
	}

	// Rotate: old refresh token is single-use
	s.refreshTokenRepo.Delete(ctx, refreshToken)

	token, err := s.generateJWT(admin)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := s.generateRefreshToken(ctx, admin.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		Token:        token,
		RefreshToken: newRefreshToken,
		Admin:        admin.ToResponse(),
	}, nil
}

// Logout invalidates a refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.refreshTokenRepo.Delete(ctx, refreshToken)
}

// generateJWT creates a new JWT token for an admin
func (s *AuthService) generateJWT(admin *models.AdminUser) (string, error) {
	claims := jwt.MapClaims{
		"admin_id": admin.ID,
		"email":    admin.Email,
		"role":     admin.Role,
		"exp":      time.Now().Add(time.Duration(s.cfg.JWTExpirationHours) * time.Hour).Unix(),
		"iat":      time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// generateRefreshToken creates and persists a new refresh token (30 days)
func (s *AuthService) generateRefreshToken(ctx context.Context, adminUserID uint) (string, error) {
	token := generateToken(32)
	expiresAt := time.Now().Add(30 * 24 * time.Hour)

	rt := &models.RefreshToken{
		AdminUserID: adminUserID,
		Token:       token,
		ExpiresAt:   &expiresAt,
	}

	if err := s.refreshTokenRepo.Create(ctx, rt); err != nil {
		return "", err
	}

	return token, nil
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// VerifyPassword compares a password with a hash
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
