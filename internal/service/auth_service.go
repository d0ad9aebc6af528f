package service

import (
	"context"
	"errors"
	netmail "net/mail"
	"strings"
	"time"

	"github.com/jumakrk/IST-MOBILE-APP/internal/authstate"
	"github.com/jumakrk/IST-MOBILE-APP/internal/googleauth"
	"github.com/jumakrk/IST-MOBILE-APP/internal/mailer"
	"github.com/jumakrk/IST-MOBILE-APP/internal/model"
	"github.com/jumakrk/IST-MOBILE-APP/internal/notify"
	"github.com/jumakrk/IST-MOBILE-APP/internal/repository"
	"github.com/jumakrk/IST-MOBILE-APP/internal/utils"
	"github.com/jumakrk/IST-MOBILE-APP/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 1 * time.Hour
)

// LoginResult carries the session issued by a successful sign-in.
type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// AuthService drives the authentication state machine. Flow operations
// (login, signup, reset, ...) move the shared state holder through
// Loading and into a terminal state, which they also return; every backend
// failure is terminal for that action and nothing retries automatically.
type AuthService interface {
	States() *authstate.Holder
	CheckStatus(ctx context.Context, sessionToken string) authstate.State
	Login(ctx context.Context, email, password string) (authstate.State, *LoginResult)
	Signup(ctx context.Context, email, password, firstname, lastname string) authstate.State
	Logout(ctx context.Context, userID string) authstate.State
	ResetPassword(ctx context.Context, email string) authstate.State
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error
	ResendVerificationEmail(ctx context.Context, userID string) authstate.State
	VerifyEmail(ctx context.Context, token string) error
	CheckEmailVerification(ctx context.Context, userID string) authstate.State
	GoogleSignIn(ctx context.Context, idToken string) (authstate.State, *LoginResult)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
	DeleteAccount(ctx context.Context, userID string) error
	LoginMessageShown(ctx context.Context, userID string) (bool, error)
	MarkLoginMessageShown(ctx context.Context, userID string) error
}

// AuthServiceDeps bundles the collaborators NewAuthService wires together.
type AuthServiceDeps struct {
	Users        repository.UserRepository
	Tokens       repository.TokenRepository
	Prefs        repository.PreferenceRepository
	Mailer       mailer.Mailer
	Google       googleauth.Verifier
	JWT          *utils.JWTUtil
	States       *authstate.Holder
	UsersChanged *notify.Bus
	AdminEmails  []string
	BaseURL      string
	Log          *logger.Logger
}

type authService struct {
	users        repository.UserRepository
	tokens       repository.TokenRepository
	prefs        repository.PreferenceRepository
	mail         mailer.Mailer
	google       googleauth.Verifier
	jwt          *utils.JWTUtil
	states       *authstate.Holder
	usersChanged *notify.Bus
	adminEmails  []string
	baseURL      string
	log          *logger.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(d AuthServiceDeps) AuthService {
	return &authService{
		users:        d.Users,
		tokens:       d.Tokens,
		prefs:        d.Prefs,
		mail:         d.Mailer,
		google:       d.Google,
		jwt:          d.JWT,
		states:       d.States,
		usersChanged: d.UsersChanged,
		adminEmails:  d.AdminEmails,
		baseURL:      d.BaseURL,
		log:          d.Log,
	}
}

func (s *authService) States() *authstate.Holder {
	return s.states
}

// fail publishes and returns a terminal Error state.
func (s *authService) fail(message string) authstate.State {
	state := authstate.Error(message)
	s.states.Set(state)
	return state
}

func (s *authService) succeed(state authstate.State) authstate.State {
	s.states.Set(state)
	return state
}

// backendErrorMessage translates infrastructure failures into the messages
// the clients show. Cancellations and timeouts read as network problems;
// anything else gets the action's fallback text, with the detail logged.
func (s *authService) backendErrorMessage(err error, fallback string) string {
	s.log.Error().Err(err).Msg("backend request failed")
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return "Network error. Please check your internet connection"
	}
	return fallback
}

// roleFor assigns the admin role to allow-listed signup emails.
func (s *authService) roleFor(email string) string {
	for _, admin := range s.adminEmails {
		if strings.EqualFold(admin, email) {
			return model.RoleAdmin
		}
	}
	return model.RoleUser
}

// CheckStatus resolves a session token on app start: a valid token that maps
// to an existing user is Authenticated, anything else Unauthenticated.
func (s *authService) CheckStatus(ctx context.Context, sessionToken string) authstate.State {
	if sessionToken == "" {
		return s.succeed(authstate.Unauthenticated())
	}
	claims, err := s.jwt.ValidateToken(sessionToken)
	if err != nil {
		return s.succeed(authstate.Unauthenticated())
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil || user == nil {
		return s.succeed(authstate.Unauthenticated())
	}
	return s.succeed(authstate.Authenticated())
}

// Login validates locally first: empty inputs fail immediately without any
// backend call.
func (s *authService) Login(ctx context.Context, email, password string) (authstate.State, *LoginResult) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return s.fail("Please fill in all fields"), nil
	}

	s.states.Set(authstate.Loading())

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Login failed")), nil
	}
	if user == nil {
		return s.fail("No account found with this email"), nil
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return s.fail("Incorrect password"), nil
	}
	if !user.EmailVerified {
		// Never issue a session to an unverified account.
		return s.fail("Please verify your email before logging in"), nil
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Login failed")), nil
	}

	return s.succeed(authstate.Authenticated()), &LoginResult{Token: token, User: user}
}

// Signup creates the account, assigns the role from the admin allow-list,
// persists the user record and sends the verification email.
func (s *authService) Signup(ctx context.Context, email, password, firstname, lastname string) authstate.State {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" ||
		strings.TrimSpace(firstname) == "" || strings.TrimSpace(lastname) == "" {
		return s.fail("Please fill in all fields")
	}
	if len(password) < 6 {
		return s.fail("Password must be at least 6 characters long")
	}
	if _, err := netmail.ParseAddress(email); err != nil {
		return s.fail("Please enter a valid email address")
	}

	s.states.Set(authstate.Loading())

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to create account"))
	}
	if existing != nil {
		return s.fail("This email is already registered")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to create account"))
	}

	role := s.roleFor(email)
	if role == model.RoleAdmin {
		s.log.Info().Str("email", email).Msg("signup email is allow-listed, granting admin role")
	}

	user := &model.User{
		ID:           uuid.NewString(),
		Username:     firstname + " " + lastname,
		Email:        email,
		Role:         role,
		Firstname:    firstname,
		Lastname:     lastname,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to create account"))
	}
	s.usersChanged.Publish()

	if err := s.sendVerificationMail(ctx, user); err != nil {
		return s.fail("Account created but failed to send verification email: " + err.Error())
	}

	return s.succeed(authstate.Success("Account created! Please check your email for verification"))
}

// Logout clears the login-message flag and returns to Unauthenticated.
func (s *authService) Logout(ctx context.Context, userID string) authstate.State {
	if userID != "" {
		if err := s.prefs.SetBool(ctx, userID, repository.KeyLoginMessageShown, false); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("failed to reset login message flag")
		}
	}
	return s.succeed(authstate.Unauthenticated())
}

// ResetPassword mails a reset link. It does not change the
// authenticated/unauthenticated status, only emits Success or Error.
func (s *authService) ResetPassword(ctx context.Context, email string) authstate.State {
	if strings.TrimSpace(email) == "" {
		return s.fail("Please enter your email address")
	}

	s.states.Set(authstate.Loading())

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to send reset email"))
	}
	if user == nil {
		return s.fail("No account found with this email")
	}

	token, err := s.issueToken(ctx, user.ID, model.TokenPurposeResetPassword, resetTokenTTL)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to send reset email"))
	}
	link := s.baseURL + "/reset-password?token=" + token
	if err := s.mail.SendPasswordResetEmail(user.Email, link); err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to send reset email"))
	}

	return s.succeed(authstate.Success("Password reset email sent to " + email))
}

// ConfirmPasswordReset consumes a reset token and stores the new password.
func (s *authService) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}
	t, err := s.tokens.Find(ctx, token, model.TokenPurposeResetPassword)
	if err != nil {
		return err
	}
	if t == nil || t.Expired(time.Now()) {
		return ErrInvalidToken
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, t.UserID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}
	return s.tokens.DeleteForUser(ctx, t.UserID, model.TokenPurposeResetPassword)
}

// ResendVerificationEmail re-issues the verification link for a signed-in,
// still unverified user.
func (s *authService) ResendVerificationEmail(ctx context.Context, userID string) authstate.State {
	if userID == "" {
		return s.fail("No user is currently signed in")
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to send verification email"))
	}
	if user == nil {
		return s.fail("No user is currently signed in")
	}
	if user.EmailVerified {
		return s.fail("Email is already verified")
	}

	s.states.Set(authstate.Loading())

	if err := s.sendVerificationMail(ctx, user); err != nil {
		return s.fail(s.backendErrorMessage(err, "Failed to send verification email"))
	}
	return s.succeed(authstate.Success("Verification email sent. Please check your inbox"))
}

// VerifyEmail consumes a verification token and flips the verified flag.
func (s *authService) VerifyEmail(ctx context.Context, token string) error {
	t, err := s.tokens.Find(ctx, token, model.TokenPurposeVerifyEmail)
	if err != nil {
		return err
	}
	if t == nil || t.Expired(time.Now()) {
		return ErrInvalidToken
	}
	if err := s.users.SetEmailVerified(ctx, t.UserID, true); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}
	if err := s.tokens.Delete(ctx, t.Token); err != nil {
		s.log.Warn().Err(err).Msg("failed to delete consumed verification token")
	}
	s.usersChanged.Publish()
	return nil
}

// CheckEmailVerification reloads the verified flag: verified accounts become
// Authenticated, unverified ones stay Unauthenticated.
func (s *authService) CheckEmailVerification(ctx context.Context, userID string) authstate.State {
	if userID == "" {
		return s.succeed(authstate.Unauthenticated())
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return s.fail("Failed to check email verification status")
	}
	if user == nil {
		return s.succeed(authstate.Unauthenticated())
	}
	if user.EmailVerified {
		return s.succeed(authstate.Authenticated())
	}
	return s.succeed(authstate.Unauthenticated())
}

// GoogleSignIn exchanges a federated ID token for a session, creating the
// user record on first sign-in. Google-asserted addresses count as verified.
func (s *authService) GoogleSignIn(ctx context.Context, idToken string) (authstate.State, *LoginResult) {
	if strings.TrimSpace(idToken) == "" {
		return s.fail("Google sign in failed"), nil
	}

	s.states.Set(authstate.Loading())

	claims, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, googleauth.ErrDisabled) {
			return s.fail("Google sign in is not available"), nil
		}
		return s.fail(s.backendErrorMessage(err, "Google sign in failed")), nil
	}
	if claims.Email == "" {
		return s.fail("Google sign in failed"), nil
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Google sign in failed")), nil
	}
	if user == nil {
		user = &model.User{
			ID:            uuid.NewString(),
			Username:      strings.TrimSpace(claims.GivenName + " " + claims.FamilyName),
			Email:         claims.Email,
			Role:          s.roleFor(claims.Email),
			Firstname:     claims.GivenName,
			Lastname:      claims.FamilyName,
			EmailVerified: true,
			CreatedAt:     time.Now(),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return s.fail(s.backendErrorMessage(err, "Google sign in failed")), nil
		}
		s.usersChanged.Publish()
	} else if !user.EmailVerified {
		if err := s.users.SetEmailVerified(ctx, user.ID, true); err == nil {
			user.EmailVerified = true
			s.usersChanged.Publish()
		}
	}

	token, err := s.jwt.GenerateToken(user.ID, user.Role)
	if err != nil {
		return s.fail(s.backendErrorMessage(err, "Google sign in failed")), nil
	}

	return s.succeed(authstate.Authenticated()), &LoginResult{Token: token, User: user}
}

// CurrentUser loads the signed-in user's record.
func (s *authService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// DeleteAccount removes the user record; tokens and preferences cascade.
func (s *authService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	s.usersChanged.Publish()
	s.states.Set(authstate.Unauthenticated())
	return nil
}

// LoginMessageShown reads the per-user welcome-message flag.
func (s *authService) LoginMessageShown(ctx context.Context, userID string) (bool, error) {
	return s.prefs.GetBool(ctx, userID, repository.KeyLoginMessageShown)
}

// MarkLoginMessageShown records that the welcome message has been shown.
func (s *authService) MarkLoginMessageShown(ctx context.Context, userID string) error {
	return s.prefs.SetBool(ctx, userID, repository.KeyLoginMessageShown, true)
}

// issueToken replaces any outstanding token of the same purpose and persists
// a fresh one.
func (s *authService) issueToken(ctx context.Context, userID, purpose string, ttl time.Duration) (string, error) {
	if err := s.tokens.DeleteForUser(ctx, userID, purpose); err != nil {
		return "", err
	}
	token, err := utils.NewOpaqueToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	t := &model.ActionToken{
		Token:     token,
		UserID:    userID,
		Purpose:   purpose,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, t); err != nil {
		return "", err
	}
	return token, nil
}

func (s *authService) sendVerificationMail(ctx context.Context, user *model.User) error {
	token, err := s.issueToken(ctx, user.ID, model.TokenPurposeVerifyEmail, verificationTokenTTL)
	if err != nil {
		return err
	}
	link := s.baseURL + "/api/v1/auth/verify?token=" + token
	return s.mail.SendVerificationEmail(user.Email, link)
}
