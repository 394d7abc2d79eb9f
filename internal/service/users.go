// Package service contains application services for users and places.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	pkgcrypto "github.com/placeshare/placeshare/internal/crypto"
	"github.com/placeshare/placeshare/internal/errs"
	"github.com/placeshare/placeshare/internal/model"
	"github.com/placeshare/placeshare/internal/repository"
)

// TokenIssuer signs credentials for authenticated users.
type TokenIssuer interface {
	Issue(userID uuid.UUID, email string) (token string, expiresAt time.Time, err error)
}

// Session is the result of a successful signup or login.
type Session struct {
	UserID uuid.UUID
	Email  string
	Token  string
}

// SignupInput is the validated-at-the-service signup payload.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Image    []byte
	ImageCT  string // content type of the uploaded image
}

// UserService defines account operations.
type UserService interface {
	// Signup creates an account, stores the profile image and issues a token.
	Signup(ctx context.Context, in SignupInput) (Session, error)
	// Login authenticates by email/password and issues a token.
	Login(ctx context.Context, email, password string) (Session, error)
	// List returns all accounts without password hashes.
	List(ctx context.Context) ([]model.User, error)
	// Get loads a single account.
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type UserServiceImpl struct {
	users  repository.UserRepository
	blobs  BlobStore
	tokens TokenIssuer
	log    *zap.Logger
}

// NewUserService constructs UserService with required dependencies.
func NewUserService(users repository.UserRepository, blobs BlobStore, tokens TokenIssuer, log *zap.Logger) *UserServiceImpl {
	return &UserServiceImpl{users: users, blobs: blobs, tokens: tokens, log: log}
}

// Signup validates input, hashes the password and creates the account.
// Validation rules:
// - name non-empty
// - email contains "@"
// - password length >= 6
// - image present
func (s *UserServiceImpl) Signup(ctx context.Context, in SignupInput) (Session, error) {
	email := model.NormalizeEmail(in.Email)
	if strings.TrimSpace(in.Name) == "" || !strings.Contains(email, "@") ||
		len(in.Password) < 6 || len(in.Image) == 0 {
		return Session{}, fmt.Errorf("%w: invalid signup data", errs.ErrValidation)
	}

	hash, err := pkgcrypto.HashPassword([]byte(in.Password))
	if err != nil {
		return Session{}, fmt.Errorf("%w: hash password", errs.ErrOperationFailed)
	}

	imageKey, err := s.blobs.Store(ctx, in.Image, in.ImageCT)
	if err != nil {
		return Session{}, fmt.Errorf("%w: store image", errs.ErrOperationFailed)
	}

	uid, err := uuid.NewV4()
	if err != nil {
		s.releaseImage(ctx, imageKey)
		return Session{}, err
	}
	u := &model.User{
		ID:       uid,
		Email:    email,
		Name:     strings.TrimSpace(in.Name),
		PwdHash:  hash,
		ImageKey: imageKey,
		PlaceIDs: []uuid.UUID{},
	}
	if err := s.users.Create(ctx, u); err != nil {
		// Rejected signups must not leave the just-stored image behind.
		s.releaseImage(ctx, imageKey)
		return Session{}, err
	}

	tok, _, err := s.tokens.Issue(uid, email)
	if err != nil {
		s.releaseImage(ctx, imageKey)
		return Session{}, fmt.Errorf("%w: issue token", errs.ErrOperationFailed)
	}
	return Session{UserID: uid, Email: email, Token: tok}, nil
}

// Login authenticates by normalized email. Unknown accounts and wrong
// passwords are indistinguishable to the caller.
func (s *UserServiceImpl) Login(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.GetByEmail(ctx, model.NormalizeEmail(email))
	if err != nil || !pkgcrypto.VerifyPassword([]byte(password), u.PwdHash) {
		return Session{}, fmt.Errorf("%w: invalid credentials", errs.ErrUnauthorized)
	}

	tok, _, err := s.tokens.Issue(u.ID, u.Email)
	if err != nil {
		return Session{}, fmt.Errorf("%w: issue token", errs.ErrOperationFailed)
	}
	return Session{UserID: u.ID, Email: u.Email, Token: tok}, nil
}

// List returns all accounts.
func (s *UserServiceImpl) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Get loads a single account by ID.
func (s *UserServiceImpl) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// releaseImage deletes a stored image best-effort; the signup outcome
// never depends on it. A failure may orphan a blob, which is accepted.
func (s *UserServiceImpl) releaseImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.blobs.Delete(ctx, key); err != nil {
		s.log.Warn("release image", zap.String("key", key), zap.Error(err))
	}
}
