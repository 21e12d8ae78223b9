package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/review-system/internal"
)

// Account is the credential-bearing view of a user row, only what the auth
// flow needs. The full user model lives in the user package.
type Account struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         Role
	Active       bool
}

type UserRepository interface {
	GetByUsername(username string) (*Account, error)
	UsernameExists(username string) (bool, error)
	EmailExists(email string) (bool, error)
	Create(account *Account) error
	GetCallerByID(id int64) (*Caller, error)
}

var ErrAccountNotFound = errors.New("account not found")

// Service performs authentication-related business logic.
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret: []byte(secret),
		TTL:    ttl,
	}
}

// Register creates a new account and returns a signed token for it.
// Uniqueness pre-checks shape the error message; the database unique
// constraints remain the authoritative guard.
func (s *Service) Register(dto RegisterDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	if taken, err := s.userRepo.UsernameExists(dto.Username); err != nil {
		return nil, internal.NewInternalError("failed to check username", err)
	} else if taken {
		return nil, internal.NewConflictError("Username is already taken", internal.ErrCodeUsernameTaken)
	}

	if used, err := s.userRepo.EmailExists(dto.Email); err != nil {
		return nil, internal.NewInternalError("failed to check email", err)
	} else if used {
		return nil, internal.NewConflictError("Email is already in use", internal.ErrCodeEmailInUse)
	}

	hash, err := s.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role := dto.Role
	if role == "" {
		role = RoleEmployee
	}

	account := &Account{
		Username:     dto.Username,
		Email:        dto.Email,
		PasswordHash: hash,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Role:         role,
		Active:       true,
	}

	if err := s.userRepo.Create(account); err != nil {
		return nil, internal.NewConflictError("Username or email is already in use", internal.ErrCodeUsernameTaken).WithCause(err)
	}

	token, err := s.tokenGenerator.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate token", err)
	}

	s.logger.Info("account registered", "user_id", account.ID, "username", account.Username, "role", account.Role)

	return &AuthResponse{
		Token:    token,
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
	}, nil
}

// Login validates credentials and returns a signed token.
func (s *Service) Login(dto LoginDTO) (*AuthResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	account, err := s.userRepo.GetByUsername(dto.Username)
	if err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, internal.ErrInvalidCredentials
	}

	if !account.Active {
		return nil, internal.ErrUserInactive
	}

	token, err := s.tokenGenerator.GenerateToken(account.ID, account.Username, account.Role)
	if err != nil {
		return nil, internal.NewInternalError("failed to generate token", err)
	}

	return &AuthResponse{
		Token:    token,
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Role:     account.Role,
	}, nil
}

// ValidateAccessToken validates a bearer token and returns its claims.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// GetCaller loads the caller identity for a validated token subject.
func (s *Service) GetCaller(userID int64) (*Caller, error) {
	return s.userRepo.GetCallerByID(userID)
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (j *JWTTokenGenerator) GenerateToken(userID int64, username string, role Role) (string, error) {
	expiresAt := time.Now().Add(j.TTL)

	claims := &Claims{
		UserID:   strconv.FormatInt(userID, 10),
		Username: username,
		Role:     string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, internal.ErrInvalidToken
}
