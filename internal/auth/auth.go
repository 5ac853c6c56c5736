// Package auth manages learner accounts: signup, login, onboarding and
// profile edits, with bcrypt password hashes and JWT bearer tokens.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abhisek/vault/internal/store"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrAlreadyOnboarded   = errors.New("already onboarded")
	ErrNothingToUpdate    = errors.New("nothing to update")
	ErrUserNotFound       = errors.New("user not found")
)

// SignupInput is a new account request.
type SignupInput struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=256"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginInput is a credential check.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OnboardInput completes a new account.
type OnboardInput struct {
	Username      string  `json:"username" validate:"required,min=2,max=40"`
	ProfilePicURL *string `json:"profile_pic_url" validate:"omitempty,url"`
}

// ProfileInput edits an account. Nil fields are left alone.
type ProfileInput struct {
	Username      *string `json:"username" validate:"omitempty,min=2,max=40"`
	ProfilePicURL *string `json:"profile_pic_url" validate:"omitempty,url"`
}

// Profile is the public view of an account.
type Profile struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	Username      *string `json:"username"`
	ProfilePicURL *string `json:"profile_pic_url"`
	IsOnboarded   bool    `json:"is_onboarded"`
}

// Session is a signed-in account.
type Session struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        Profile `json:"user"`
}

// Service implements the account operations.
type Service struct {
	users    store.UserRepo
	tokens   *Tokens
	validate *validator.Validate
	cost     int
	now      func() time.Time
	newID    func() string
}

// NewService creates a Service.
func NewService(users store.UserRepo, tokens *Tokens) *Service {
	return &Service{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
		cost:     bcrypt.DefaultCost,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// Signup registers an account and signs it in.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &store.User{
		ID:           s.newID(),
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials and signs the account in. Unknown email and
// wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return nil, err
	}

	u, err := s.users.ByEmail(ctx, in.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), prepare(in.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// Onboard sets the username and picture once.
func (s *Service) Onboard(ctx context.Context, userID string, in OnboardInput) (*Profile, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := s.check(in); err != nil {
		return nil, err
	}

	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.IsOnboarded {
		return nil, ErrAlreadyOnboarded
	}

	upd := store.UserUpdate{
		Username:    store.Some(in.Username),
		IsOnboarded: store.Some(true),
	}
	if in.ProfilePicURL != nil {
		upd.ProfilePicURL = store.Some(*in.ProfilePicURL)
	}
	return s.update(ctx, userID, upd)
}

// UpdateProfile changes the username or picture.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*Profile, error) {
	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		in.Username = &name
	}
	if in.Username == nil && in.ProfilePicURL == nil {
		return nil, ErrNothingToUpdate
	}
	if err := s.check(in); err != nil {
		return nil, err
	}

	var upd store.UserUpdate
	if in.Username != nil {
		upd.Username = store.Some(*in.Username)
	}
	if in.ProfilePicURL != nil {
		upd.ProfilePicURL = store.Some(*in.ProfilePicURL)
	}
	return s.update(ctx, userID, upd)
}

// Me returns the account's profile.
func (s *Service) Me(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := profileOf(u)
	return &p, nil
}

// Authenticate resolves a bearer token to an existing account id.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	if _, err := s.lookup(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Service) update(ctx context.Context, userID string, upd store.UserUpdate) (*Profile, error) {
	u, err := s.users.Update(ctx, userID, upd)
	switch {
	case errors.Is(err, store.ErrConflict):
		return nil, ErrUsernameTaken
	case errors.Is(err, store.ErrNotFound):
		return nil, ErrUserNotFound
	case err != nil:
		return nil, err
	}
	p := profileOf(u)
	return &p, nil
}

func (s *Service) lookup(ctx context.Context, userID string) (*store.User, error) {
	u, err := s.users.ByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *Service) session(u *store.User) (*Session, error) {
	tok, err := s.tokens.Sign(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: tok, TokenType: "bearer", User: profileOf(u)}, nil
}

func (s *Service) hashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(prepare(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func (s *Service) check(v any) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email"
	case "eqfield":
		return "passwords do not match"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "url":
		return fe.Field() + " must be a URL"
	}
	return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
}

// prepare pre-hashes a password so inputs longer than bcrypt's 72-byte
// limit still count in full.
func prepare(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func profileOf(u *store.User) Profile {
	return Profile{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		ProfilePicURL: u.ProfilePicURL,
		IsOnboarded:   u.IsOnboarded,
	}
}
