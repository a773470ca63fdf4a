package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/abdbodara/taskora-backend/internal/constants"
	"github.com/abdbodara/taskora-backend/internal/models"
	"github.com/abdbodara/taskora-backend/internal/repository"
)

var (
	ErrEmailTaken           = errors.New("email already in use")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles registration, credential verification and token
// issuance for both users and technicians.
type AuthService struct {
	userRepo       repository.UserRepository
	technicianRepo repository.TechnicianRepository
	jwtSecret      []byte
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, technicianRepo repository.TechnicianRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		technicianRepo: technicianRepo,
		jwtSecret:      []byte(jwtSecret),
	}
}

// RegisterInput represents the required information to create a new user
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// Register creates a new admin user and issues a token for it
func (s *AuthService) Register(input RegisterInput) (*models.User, string, error) {
	if len(input.Password) < constants.MinPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))

	if _, err := s.userRepo.FindByEmail(email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(input.Password)), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", ErrFailedToHashPassword
	}

	role := input.Role
	if role == "" {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// Login verifies user credentials and issues a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(email, password string) (*models.User, string, error) {
	user, err := s.userRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

// TechnicianLogin verifies technician credentials and issues a token
func (s *AuthService) TechnicianLogin(email, password string) (*models.Technician, string, error) {
	technician, err := s.technicianRepo.FindByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find technician: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(technician.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(technician.ID, technician.Role)
	if err != nil {
		return nil, "", err
	}

	return technician, token, nil
}

// IssueToken signs a credential carrying the subject id and role. The role is
// trusted for the token's lifetime; it is not re-checked per request.
func (s *AuthService) IssueToken(subjectID uint64, role string) (string, error) {
	claims := jwt.MapClaims{
		"id":   subjectID,
		"role": role,
		"exp":  time.Now().Add(constants.TokenTTLHours * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}
