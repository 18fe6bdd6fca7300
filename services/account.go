package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"studyplan-backend/models"
	"studyplan-backend/repository"
)

type RegisterParams struct {
	Name     string
	Email    string
	Password string
	College  string
}

type AuthResult struct {
	Token string
	User  *models.User
}

// AccountService is the account directory: it owns user identities and the
// tokens that prove them.
type AccountService struct {
	logger   zerolog.Logger
	users    repository.UserRepository
	tokens   *TokenIssuer
	hashCost int
}

func NewAccountService(logger zerolog.Logger, users repository.UserRepository, tokens *TokenIssuer) *AccountService {
	return &AccountService{
		logger:   logger,
		users:    users,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a user and returns a token for it.
//
// It returns ErrEmailTaken if the e-mail is already registered.
func (s *AccountService) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	email := models.NormalizeEmail(params.Email)

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), s.hashCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         params.Name,
		Email:        email,
		College:      params.College,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			s.logger.Warn().Str("email", email).Msg("email already registered")
			return nil, ErrEmailTaken
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to insert user")
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("registered user")
	return &AuthResult{Token: token, User: user}, nil
}

// Authenticate checks the credentials and returns a fresh token.
//
// It returns ErrInvalidCredentials both for unknown e-mails and for wrong
// passwords.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	email = models.NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn().Str("email", email).Msg("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to select user by email")
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("user_id", user.ID).Msg("passwords do not match")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue token")
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("logged in")
	return &AuthResult{Token: token, User: user}, nil
}

// Resolve maps a bearer token to the user id it was issued for.
func (s *AccountService) Resolve(token string) (string, error) {
	return s.tokens.Resolve(token)
}

// Profile returns the user or ErrUserNotFound.
func (s *AccountService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to select user by id")
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *AccountService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	if err := s.users.UpdateFCMToken(ctx, userID, token); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to update fcm token")
		return fmt.Errorf("update fcm token: %w", err)
	}
	s.logger.Debug().Str("user_id", userID).Msg("updated fcm token")
	return nil
}
