package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/Dan9191/payfirst/internal/config"
	"github.com/Dan9191/payfirst/internal/health"
	"github.com/Dan9191/payfirst/internal/models"
	"github.com/Dan9191/payfirst/internal/repository"
)

var (
	// ErrInvalidCredentials is returned by Login for any email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrValidation marks a rejected request payload.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned for missing records and records owned by someone else.
	ErrNotFound = repository.ErrNotFound
	// ErrConflict is returned when a unique value is already taken.
	ErrConflict = repository.ErrConflict
)

const tokenTTL = 24 * time.Hour

// Store is the persistence the service depends on.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateAccount(ctx context.Context, account *models.Account) error
	ListAccounts(ctx context.Context, userID int64) ([]models.Account, error)
	CreateCreditCard(ctx context.Context, card *models.CreditCard) error
	ListCreditCards(ctx context.Context, userID int64) ([]models.CreditCard, error)
	CreateLoan(ctx context.Context, loan *models.Loan) error
	ListLoans(ctx context.Context, userID int64) ([]models.Loan, error)
	CloseLoan(ctx context.Context, userID, loanID int64) error
	CreateDebt(ctx context.Context, debt *models.Debt) error
	ListDebts(ctx context.Context, userID int64) ([]models.Debt, error)
	SettleDebt(ctx context.Context, userID, debtID int64) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	ListTransactions(ctx context.Context, userID int64, from, to time.Time) ([]models.Transaction, error)

	Snapshot(ctx context.Context, userID int64, now time.Time) (health.Input, error)
}

// Narrator turns a health result into prose.
type Narrator interface {
	Narrate(ctx context.Context, res health.Result) (models.Narrative, error)
}

// KeyRateSource provides the benchmark rate for floating loans.
type KeyRateSource interface {
	GetKeyRate(ctx context.Context) (float64, error)
}

// Mailer delivers the health digest.
type Mailer interface {
	SendHealthDigest(to, username string, report *models.HealthReport) error
}

// Service handles business logic
type Service struct {
	repo     Store
	narrator Narrator
	keyRate  KeyRateSource
	mailer   Mailer
	log      *logrus.Logger
	config   *config.Config
	encKey   []byte
	now      func() time.Time
}

// NewService initializes a new service
func NewService(repo Store, narrator Narrator, keyRate KeyRateSource, mailer Mailer, log *logrus.Logger, cfg *config.Config) (*Service, error) {
	key, err := cfg.EncryptionKeyBytes()
	if err != nil {
		return nil, err
	}
	return &Service{
		repo:     repo,
		narrator: narrator,
		keyRate:  keyRate,
		mailer:   mailer,
		log:      log,
		config:   cfg,
		encKey:   key,
		now:      time.Now,
	}, nil
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Register creates a new user with hashed password
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	switch {
	case username == "":
		return nil, validationError("username is required")
	case !strings.Contains(email, "@"):
		return nil, validationError("email is invalid")
	case len(password) < 8:
		return nil, validationError("password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.log.Infof("User registered: %s", user.Email)
	return user, nil
}

// Login authenticates a user and returns a JWT token
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Errorf("Login lookup failed: %v", err)
		}
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(user.ID, 10),
		IssuedAt:  jwt.NewNumericDate(s.now()),
		ExpiresAt: jwt.NewNumericDate(s.now().Add(tokenTTL)),
	})
	tokenString, err := token.SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.log.Infof("User logged in: %s", user.Email)
	return tokenString, nil
}
