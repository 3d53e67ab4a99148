package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/todo-api/internal/model"
	q "github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/utils"
)

const (
	maxEmailLen    = 255
	maxFullNameLen = 255
)

// SignupInput is the validated payload of a signup request.
type SignupInput struct {
	Email    string
	FullName *string
	Password string
}

// AuthService creates accounts, issues tokens and resolves tokens back to
// accounts.  It holds no mutable state; one value serves all requests.
type AuthService struct {
	Users  *repository.UserRepo
	Hasher utils.PasswordHasher
	Tokens *utils.TokenService
	Events EventPublisher

	// dummyHash is compared against when the email is unknown so a failed
	// login costs the same bcrypt work either way.
	dummyHash string
}

// NewAuthService wires the auth dependencies and precomputes the dummy hash.
func NewAuthService(users *repository.UserRepo, hasher utils.PasswordHasher, tokens *utils.TokenService, events EventPublisher) (*AuthService, error) {
	if users == nil || tokens == nil {
		return nil, errors.New("auth service: nil dependency")
	}
	dummy, err := hasher.Hash("not-a-real-password")
	if err != nil {
		return nil, fmt.Errorf("auth service: %w", err)
	}
	return &AuthService{Users: users, Hasher: hasher, Tokens: tokens, Events: events, dummyHash: dummy}, nil
}

// Signup registers a new account.  The pre-insert lookup only saves a
// bcrypt round for the common duplicate case; the unique index decides.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (model.User, error) {
	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if in.Password == "" {
		return model.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}
	fullName, err := normalizeFullName(in.FullName)
	if err != nil {
		return model.User{}, err
	}

	if _, err := s.Users.GetByEmail(ctx, email); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.User{}, fmt.Errorf("%w: password must be at most 72 bytes", ErrValidation)
		}
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.Users.Create(ctx, email, fullName, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	emit(s.Events, q.TodoEvent{Type: q.UserRegistered, UserID: u.ID})
	return u, nil
}

// Login checks the credentials and issues an access token with the
// default lifetime.  Unknown email and wrong password both return
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (utils.AccessToken, model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return utils.AccessToken{}, model.User{}, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	u, err := s.Users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.Hasher.Verify(password, s.dummyHash)
		return utils.AccessToken{}, model.User{}, ErrInvalidCredentials
	case err != nil:
		return utils.AccessToken{}, model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	if !s.Hasher.Verify(password, u.PasswordHash) {
		return utils.AccessToken{}, model.User{}, ErrInvalidCredentials
	}

	at, err := s.Tokens.IssueFor(u.ID)
	if err != nil {
		return utils.AccessToken{}, model.User{}, fmt.Errorf("issue token: %w", err)
	}
	return at, u, nil
}

// Resolve turns a bearer token into the account it names.  A token that
// fails verification and a token whose account no longer exists are the
// same ErrInvalidCredentials.  Resolve only reads.
func (s *AuthService) Resolve(ctx context.Context, raw string) (model.User, error) {
	id, ok := s.Tokens.SubjectID(raw)
	if !ok {
		return model.User{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}
	return u, nil
}

func validateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return fmt.Errorf("%w: email must be at most %d characters", ErrValidation, maxEmailLen)
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") || strings.ContainsAny(email, " \t\r\n") {
		return fmt.Errorf("%w: email is not valid", ErrValidation)
	}
	return nil
}

// normalizeFullName trims name; a blank name is stored as NULL.
func normalizeFullName(name *string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(trimmed) > maxFullNameLen {
		return nil, fmt.Errorf("%w: full_name must be at most %d characters", ErrValidation, maxFullNameLen)
	}
	return &trimmed, nil
}
