package service

import (
	"context"
	"errors"

	"github.com/jumakrk/IST-MOBILE-APP/internal/authstate"
	"github.com/jumakrk/IST-MOBILE-APP/internal/googleauth"
	"github.com/jumakrk/IST-MOBILE-APP/internal/model"
	"github.com/jumakrk/IST-MOBILE-APP/internal/notify"
	"github.com/jumakrk/IST-MOBILE-APP/internal/repository"
	"github.com/jumakrk/IST-MOBILE-APP/internal/utils"
	"github.com/jumakrk/IST-MOBILE-APP/pkg/logger"

	"github.com/jackc/pgx/v5"
)

// fakeUserRepo is an in-memory UserRepository that counts every call so
// tests can assert an operation never reached the backend.
type fakeUserRepo struct {
	users   []*model.User
	calls   int
	findErr error
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.calls++
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	f.calls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	f.calls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindAll(_ context.Context) ([]model.User, error) {
	f.calls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	out := []model.User{}
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id, role string) error {
	f.calls++
	for _, u := range f.users {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) SetEmailVerified(_ context.Context, id string, verified bool) error {
	f.calls++
	for _, u := range f.users {
		if u.ID == id {
			u.EmailVerified = verified
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	f.calls++
	for _, u := range f.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	f.calls++
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

// byEmail is a test helper, not part of the repository contract.
func (f *fakeUserRepo) byEmail(email string) *model.User {
	for _, u := range f.users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

type fakeTokenRepo struct {
	tokens map[string]*model.ActionToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: map[string]*model.ActionToken{}}
}

func (f *fakeTokenRepo) Create(_ context.Context, t *model.ActionToken) error {
	copied := *t
	f.tokens[t.Token] = &copied
	return nil
}

func (f *fakeTokenRepo) Find(_ context.Context, token, purpose string) (*model.ActionToken, error) {
	t, ok := f.tokens[token]
	if !ok || t.Purpose != purpose {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (f *fakeTokenRepo) Delete(_ context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokenRepo) DeleteForUser(_ context.Context, userID, purpose string) error {
	for k, t := range f.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			delete(f.tokens, k)
		}
	}
	return nil
}

// forUser returns the stored token value for a user and purpose, "" if none.
func (f *fakeTokenRepo) forUser(userID, purpose string) string {
	for k, t := range f.tokens {
		if t.UserID == userID && t.Purpose == purpose {
			return k
		}
	}
	return ""
}

type fakePrefRepo struct {
	flags map[string]bool // userID + "/" + key
}

func newFakePrefRepo() *fakePrefRepo {
	return &fakePrefRepo{flags: map[string]bool{}}
}

func (f *fakePrefRepo) GetBool(_ context.Context, userID, key string) (bool, error) {
	return f.flags[userID+"/"+key], nil
}

func (f *fakePrefRepo) SetBool(_ context.Context, userID, key string, value bool) error {
	f.flags[userID+"/"+key] = value
	return nil
}

type fakeMailer struct {
	verificationsSent []string // recipient addresses
	resetsSent        []string
	lastLink          string
	failSend          bool
}

func (f *fakeMailer) SendVerificationEmail(to, link string) error {
	if f.failSend {
		return errors.New("smtp unreachable")
	}
	f.verificationsSent = append(f.verificationsSent, to)
	f.lastLink = link
	return nil
}

func (f *fakeMailer) SendPasswordResetEmail(to, link string) error {
	if f.failSend {
		return errors.New("smtp unreachable")
	}
	f.resetsSent = append(f.resetsSent, to)
	f.lastLink = link
	return nil
}

type fakeVerifier struct {
	claims *googleauth.Claims
	err    error
}

func (f *fakeVerifier) Verify(context.Context, string) (*googleauth.Claims, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.claims, nil
}

type authFixture struct {
	svc    AuthService
	users  *fakeUserRepo
	tokens *fakeTokenRepo
	prefs  *fakePrefRepo
	mail   *fakeMailer
	google *fakeVerifier
	states *authstate.Holder
	jwt    *utils.JWTUtil
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:  &fakeUserRepo{},
		tokens: newFakeTokenRepo(),
		prefs:  newFakePrefRepo(),
		mail:   &fakeMailer{},
		google: &fakeVerifier{err: googleauth.ErrDisabled},
		states: authstate.NewHolder(),
		jwt:    utils.NewJWTUtil("test-secret", 1),
	}
	f.svc = NewAuthService(AuthServiceDeps{
		Users:        f.users,
		Tokens:       f.tokens,
		Prefs:        f.prefs,
		Mailer:       f.mail,
		Google:       f.google,
		JWT:          f.jwt,
		States:       f.states,
		UsersChanged: notify.NewBus(),
		AdminEmails:  []string{"jumakrk@gmail.com"},
		BaseURL:      "http://localhost:8080",
		Log:          testLogger(),
	})
	return f
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// seedUser registers a verified account with the given password and returns
// its record.
func (f *authFixture) seedUser(email, password, role string, verified bool) *model.User {
	hash, _ := utils.HashPassword(password)
	u := &model.User{
		ID:            "seed-" + email,
		Username:      "Seed User",
		Email:         email,
		Role:          role,
		PasswordHash:  hash,
		EmailVerified: verified,
	}
	f.users.users = append(f.users.users, u)
	return u
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.TokenRepository = (*fakeTokenRepo)(nil)
var _ repository.PreferenceRepository = (*fakePrefRepo)(nil)
