package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blogmanity/internal/apperr"
	"blogmanity/internal/domain"
	"blogmanity/internal/mailer"
	"blogmanity/internal/query"
	"blogmanity/internal/repository"
)

var (
	// ErrInvalidCredentials indicates that provided login credentials are incorrect.
	ErrInvalidCredentials = apperr.Unauthorized("email or password are incorrect")
	// ErrUserAlreadyExists is returned when signing up with a taken email.
	ErrUserAlreadyExists = apperr.BadRequest("This email already exists")
	// ErrInvalidResetToken covers wrong and expired reset secrets alike; the
	// two cases are deliberately indistinguishable to the caller.
	ErrInvalidResetToken = apperr.Unauthorized("Token is not valid")
	// ErrWrongPassword is returned when a password-confirming mutation gets a
	// bad current password.
	ErrWrongPassword = apperr.BadRequest("You provided a wrong password")
	// ErrDelivery is returned when the reset mail cannot be sent; the pending
	// reset is rolled back first.
	ErrDelivery = apperr.New(500, "Error happened, email was not sent. Try again later")
)

const (
	passwordHashCost = 12
	resetTokenTTL    = 10 * time.Minute

	// passwordChangeBackdate guarantees a token issued in the same instant
	// as a password change is still treated as stale.
	passwordChangeBackdate = time.Second
)

// SignupInput carries the fields accepted at registration.
type SignupInput struct {
	Firstname string
	Lastname  string
	Email     string
	Password  string
}

// AdminUserUpdate carries the partial update an admin may apply to any user.
// Nil fields are left untouched.
type AdminUserUpdate struct {
	Firstname *string
	Lastname  *string
	Email     *string
	Photo     *string
	Role      *domain.Role
	Active    *bool
}

// UserService owns the account lifecycle: registration, credential checks,
// the password reset protocol and admin user management.
type UserService interface {
	Signup(ctx context.Context, in SignupInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	ForgotPassword(ctx context.Context, email, resetURLBase string) error
	ResetPassword(ctx context.Context, email, secret, newPassword string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int64, current, newPassword string) (*domain.User, error)

	UpdateProfile(ctx context.Context, userID int64, firstname, lastname, photo *string) (*domain.User, error)
	Deactivate(ctx context.Context, userID int64, password string) error

	ListUsers(ctx context.Context, d query.Directives) ([]domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	UpdateUser(ctx context.Context, id int64, in AdminUserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

type userService struct {
	users   repository.UserRepository
	pockets repository.PocketRepository
	mail    mailer.Mailer
}

func NewUserService(users repository.UserRepository, pockets repository.PocketRepository, mail mailer.Mailer) UserService {
	return &userService{
		users:   users,
		pockets: pockets,
		mail:    mail,
	}
}

func (s *userService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Firstname:    strings.TrimSpace(in.Firstname),
		Lastname:     strings.TrimSpace(in.Lastname),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Active:       true,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	// every account starts with an empty pocket
	if _, err := s.pockets.Create(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("create pocket: %w", err)
	}

	return user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.Active {
		return nil, ErrInvalidCredentials
	}

	if !CorrectPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) ForgotPassword(ctx context.Context, email, resetURLBase string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.BadRequest("User does not exist")
		}
		return err
	}

	secret, secretHash, err := newResetSecret()
	if err != nil {
		return fmt.Errorf("generate reset secret: %w", err)
	}

	if err := s.users.SetResetToken(ctx, user.ID, secretHash, time.Now().Add(resetTokenTTL)); err != nil {
		return err
	}

	resetURL := strings.TrimSuffix(resetURLBase, "/") + "/" + secret
	body := fmt.Sprintf("Reset your password from this url : %s", resetURL)

	if err := s.mail.Send(ctx, user.Email, "Blogmanity: Reset Your Password", body); err != nil {
		// delivery failed: roll the pending reset back to idle
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			return fmt.Errorf("rollback reset token: %w", clearErr)
		}
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	return nil
}

func (s *userService) ResetPassword(ctx context.Context, email, secret, newPassword string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.BadRequest("Email does not belong to any user")
		}
		return nil, err
	}

	// both checks are mandatory; a correct secret past expiry and a wrong
	// secret inside the window fail identically
	if user.ResetTokenHash == "" || user.ResetTokenExpiresAt == nil {
		return nil, ErrInvalidResetToken
	}
	candidate := hashResetSecret(secret)
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(user.ResetTokenHash)) != 1 {
		return nil, ErrInvalidResetToken
	}
	if time.Now().After(*user.ResetTokenExpiresAt) {
		return nil, ErrInvalidResetToken
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdatePassword(ctx context.Context, userID int64, current, newPassword string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !CorrectPassword(current, user.PasswordHash) {
		return nil, ErrWrongPassword
	}

	if err := s.setPassword(ctx, user, newPassword); err != nil {
		return nil, err
	}
	return user, nil
}

// setPassword rehashes, backdates passwordChangedAt by one second and clears
// any pending reset, invalidating every previously issued token.
func (s *userService) setPassword(ctx context.Context, user *domain.User, newPassword string) error {
	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}

	changedAt := time.Now().Add(-passwordChangeBackdate)
	if err := s.users.SetPassword(ctx, user.ID, hash, changedAt); err != nil {
		return err
	}

	user.PasswordHash = hash
	user.PasswordChangedAt = &changedAt
	user.ResetTokenHash = ""
	user.ResetTokenExpiresAt = nil
	return nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID int64, firstname, lastname, photo *string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if firstname != nil {
		user.Firstname = strings.TrimSpace(*firstname)
	}
	if lastname != nil {
		user.Lastname = strings.TrimSpace(*lastname)
	}
	if photo != nil {
		user.Photo = *photo
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Deactivate(ctx context.Context, userID int64, password string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if !CorrectPassword(password, user.PasswordHash) {
		return ErrWrongPassword
	}

	return s.users.SetActive(ctx, userID, false)
}

func (s *userService) ListUsers(ctx context.Context, d query.Directives) ([]domain.User, error) {
	return s.users.List(ctx, d)
}

func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) UpdateUser(ctx context.Context, id int64, in AdminUserUpdate) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Firstname != nil {
		user.Firstname = strings.TrimSpace(*in.Firstname)
	}
	if in.Lastname != nil {
		user.Lastname = strings.TrimSpace(*in.Lastname)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Photo != nil {
		user.Photo = *in.Photo
	}
	if in.Role != nil {
		if *in.Role != domain.RoleUser && *in.Role != domain.RoleAdmin {
			return nil, apperr.BadRequest("Invalid role")
		}
		user.Role = *in.Role
	}
	if in.Active != nil {
		user.Active = *in.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	// pocket, posts and feedback go with the user via foreign keys
	return s.users.Delete(ctx, id)
}

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CorrectPassword reports whether candidate matches the stored hash. It never
// fails: malformed hashes simply compare false.
func CorrectPassword(candidate, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}

// newResetSecret returns a high-entropy secret and its stored hash. Only the
// hash is persisted; the plaintext travels once, out of band.
func newResetSecret() (secret, secretHash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	secret = hex.EncodeToString(buf)
	return secret, hashResetSecret(secret), nil
}

func hashResetSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
