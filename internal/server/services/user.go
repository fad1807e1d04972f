// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and session token checks.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
)

// Login failure reasons. They go to the log only; callers always see
// common.ErrAuthenticationFailed.
const (
	reasonUnknownEmail = "unknown_email"
	reasonBadPassword  = "bad_password"
)

// UserService provides authentication operations:
//   - Register: create users with a hashed password
//   - Login: verify credentials and mint a session token
//   - VerifyToken: check a session token and return its claims
//
// It keeps no per-request state and is safe for concurrent use.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	hasher                auth.PasswordHasher
	logger                logging.Logger
	metrics               metrics.MetricsCollector
	secretKey             []byte
	tokenValidityDuration time.Duration
	now                   func() time.Time

	// dummyHash is verified against when the email is unknown so that both
	// login failure paths cost one hash comparison.
	dummyHash []byte
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(
	db *sql.DB,
	m repomanager.RepositoryManager,
	hasher auth.PasswordHasher,
	cfg *config.Config,
	logger logging.Logger,
	mc metrics.MetricsCollector,
) (*UserService, error) {
	dummy, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("dummy password: %w", err)
	}
	dummyHash, err := hasher.Hash(context.Background(), dummy)
	if err != nil {
		return nil, fmt.Errorf("dummy hash: %w", err)
	}

	return &UserService{
		db:                    db,
		repomanager:           m,
		hasher:                hasher,
		logger:                logger,
		metrics:               mc,
		secretKey:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
		now:                   time.Now,
		dummyHash:             dummyHash,
	}, nil
}

// Register creates a new user and returns its public fields.
//
// Email uniqueness is checked up front and again inside the insert
// transaction; a unique constraint violation from the store is reported as
// common.ErrEmailAlreadyRegistered as well.
func (s *UserService) Register(ctx context.Context, userID, name, email, password string) (*models.PublicUser, error) {
	if err := validateRegistration(userID, email, password); err != nil {
		s.metrics.RecordRegistration(metrics.OutcomeInvalidInput)
		return nil, err
	}

	if err := s.ensureEmailFree(ctx, s.repomanager.Users(s.db), email); err != nil {
		return nil, s.registrationFailed(ctx, email, err)
	}

	hash, err := s.hash(ctx, password)
	if err != nil {
		return nil, s.registrationFailed(ctx, email, err)
	}

	user := &models.User{
		UserID:       userID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
	}

	var created *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if err := s.ensureEmailFree(ctx, repo, email); err != nil {
			return err
		}
		u, err := repo.Create(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorAlreadyExists) {
				s.logger.Info(ctx, "registration collided on insert", "email", email, "user_id", userID, "error", err)
				return common.ErrEmailAlreadyRegistered
			}
			if isContextError(err) {
				return err
			}
			return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		created = u
		return nil
	})
	if err != nil {
		if !isTaxonomyError(err) && !isContextError(err) {
			// begin / commit failures
			err = fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
		}
		return nil, s.registrationFailed(ctx, email, err)
	}

	s.metrics.RecordRegistration(metrics.OutcomeSuccess)
	s.logger.Info(ctx, "user registered", "user_id", created.UserID)
	return created.Public(), nil
}

// Login checks email and password and returns a signed session token.
// Unknown email and wrong password both yield common.ErrAuthenticationFailed.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if _, verr := s.verify(ctx, password, s.dummyHash); isContextError(verr) {
				return "", s.loginAbandoned(ctx, verr)
			}
			return "", s.collapseCredentialError(ctx, email, reasonUnknownEmail)
		}
		if isContextError(err) {
			return "", s.loginAbandoned(ctx, err)
		}
		s.logger.Error(ctx, "login lookup failed", "error", err)
		s.metrics.RecordLogin(metrics.OutcomeError)
		return "", fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}

	ok, err := s.verify(ctx, password, user.PasswordHash)
	if err != nil {
		if isContextError(err) {
			return "", s.loginAbandoned(ctx, err)
		}
		// A stored hash bcrypt cannot read never matches anything.
		s.logger.Error(ctx, "stored password hash unusable", "user_id", user.UserID, "error", err)
		return "", s.collapseCredentialError(ctx, email, reasonBadPassword)
	}
	if !ok {
		return "", s.collapseCredentialError(ctx, email, reasonBadPassword)
	}

	token, err := auth.GenerateToken(auth.Claims{
		UserID: user.UserID,
		Name:   user.Name,
		Email:  user.Email,
	}, s.secretKey, s.now(), s.tokenValidityDuration)
	if err != nil {
		s.logger.Error(ctx, "token signing failed", "error", err)
		s.metrics.RecordLogin(metrics.OutcomeError)
		return "", err
	}

	s.metrics.RecordLogin(metrics.OutcomeSuccess)
	s.logger.Info(ctx, "user logged in", "user_id", user.UserID)
	return token, nil
}

// VerifyToken returns the claims of a valid session token,
// common.ErrTokenExpired for a genuine token past its expiry and
// common.ErrTokenInvalid for anything else.
func (s *UserService) VerifyToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(token, s.secretKey, s.now())
	switch {
	case err == nil:
		s.metrics.RecordTokenVerification(metrics.OutcomeSuccess)
		return claims, nil
	case errors.Is(err, common.ErrTokenExpired):
		s.metrics.RecordTokenVerification(metrics.OutcomeExpired)
	default:
		s.metrics.RecordTokenVerification(metrics.OutcomeInvalid)
		s.logger.Debug(ctx, "token rejected", "error", err)
	}
	return nil, err
}

// --- helpers below ---

// collapseCredentialError is the single place both login failure causes
// turn into the same caller-visible error.
func (s *UserService) collapseCredentialError(ctx context.Context, email, reason string) error {
	s.logger.Info(ctx, "login failed", "email", email, "reason", reason)
	s.metrics.RecordLogin(metrics.OutcomeBadCreds)
	return common.ErrAuthenticationFailed
}

func (s *UserService) loginAbandoned(ctx context.Context, err error) error {
	s.logger.Info(ctx, "login abandoned", "error", err)
	s.metrics.RecordLogin(metrics.OutcomeCanceled)
	return err
}

func (s *UserService) ensureEmailFree(ctx context.Context, repo users.Repository, email string) error {
	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return common.ErrEmailAlreadyRegistered
	case errors.Is(err, common.ErrorNotFound):
		return nil
	case isContextError(err):
		return err
	default:
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
}

func (s *UserService) registrationFailed(ctx context.Context, email string, err error) error {
	switch {
	case errors.Is(err, common.ErrEmailAlreadyRegistered):
		s.metrics.RecordRegistration(metrics.OutcomeDuplicate)
		s.logger.Info(ctx, "email already registered", "email", email)
	case errors.Is(err, common.ErrInvalidInput):
		s.metrics.RecordRegistration(metrics.OutcomeInvalidInput)
	case isContextError(err):
		s.metrics.RecordRegistration(metrics.OutcomeCanceled)
		s.logger.Info(ctx, "registration abandoned", "email", email, "error", err)
	default:
		s.metrics.RecordRegistration(metrics.OutcomeError)
		s.logger.Error(ctx, "registration failed", "email", email, "error", err)
	}
	return err
}

func (s *UserService) hash(ctx context.Context, password string) ([]byte, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveHashDuration("hash", time.Since(start)) }()
	return s.hasher.Hash(ctx, password)
}

func (s *UserService) verify(ctx context.Context, password string, hash []byte) (bool, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveHashDuration("verify", time.Since(start)) }()
	return s.hasher.Verify(ctx, password, hash)
}

func validateRegistration(userID, email, password string) error {
	switch {
	case userID == "":
		return fmt.Errorf("%w: user id must not be empty", common.ErrInvalidInput)
	case email == "":
		return fmt.Errorf("%w: email must not be empty", common.ErrInvalidInput)
	case password == "":
		return fmt.Errorf("%w: password must not be empty", common.ErrInvalidInput)
	case len(password) > auth.MaxPasswordBytes:
		return fmt.Errorf("%w: password longer than %d bytes", common.ErrInvalidInput, auth.MaxPasswordBytes)
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: malformed email", common.ErrInvalidInput)
	}
	return nil
}

func isTaxonomyError(err error) bool {
	return errors.Is(err, common.ErrEmailAlreadyRegistered) ||
		errors.Is(err, common.ErrStorageUnavailable) ||
		errors.Is(err, common.ErrInvalidInput)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
