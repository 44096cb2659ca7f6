package services

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/database/dbtest"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/imagestore"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubVerifier struct {
	profile *GoogleProfile
	err     error
}

func (s *stubVerifier) Verify(context.Context, string) (*GoogleProfile, error) {
	return s.profile, s.err
}

type captureMailer struct {
	mu    sync.Mutex
	to    []string
	links []string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.links = append(m.links, link)
	return nil
}

func (m *captureMailer) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.links)
	u, err := url.Parse(m.links[len(m.links)-1])
	require.NoError(t, err)
	return u.Query().Get("token")
}

type authFixture struct {
	db      *gorm.DB
	store   *imagestore.Memory
	google  *stubVerifier
	mail    *captureMailer
	tokens  *TokenIssuer
	service *AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		db:     dbtest.Open(t),
		store:  imagestore.NewMemory(),
		google: &stubVerifier{},
		mail:   &captureMailer{},
		tokens: NewTokenIssuer("test-secret", time.Hour),
	}
	f.service = NewAuthService(f.db, f.tokens, f.store, f.google, f.mail, "http://localhost:5173/")
	return f
}

func (f *authFixture) register(t *testing.T, email, password string) *Session {
	t.Helper()
	session, err := f.service.Register(context.Background(), &dto.RegisterRequest{
		Email:    email,
		Password: password,
		FullName: "Jordan Doe",
	}, nil)
	require.NoError(t, err)
	return session
}

func TestRegister_CreatesUserAndSession(t *testing.T) {
	f := newAuthFixture(t)

	session := f.register(t, "  Jordan@Example.com ", "secret123")
	assert.Equal(t, "jordan@example.com", session.User.Email)
	assert.Equal(t, models.RoleUser, session.User.Role)
	assert.NotEqual(t, "secret123", session.User.PasswordHash)

	sub, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.User.ID, sub)
}

func TestRegister_Validation(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name string
		req  dto.RegisterRequest
	}{
		{"bad email", dto.RegisterRequest{Email: "not-an-email", Password: "secret123", FullName: "A"}},
		{"short password", dto.RegisterRequest{Email: "a@example.com", Password: "123", FullName: "A"}},
		{"missing name", dto.RegisterRequest{Email: "a@example.com", Password: "secret123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Register(context.Background(), &tt.req, nil)
			require.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "dup@example.com", "secret123")

	_, err := f.service.Register(context.Background(), &dto.RegisterRequest{
		Email: "DUP@example.com", Password: "secret123", FullName: "Other",
	}, nil)
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 409, apperr.Status(err))
}

func TestRegister_AvatarUploadedAndDiscardedOnConflict(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	session, err := f.service.Register(ctx, &dto.RegisterRequest{
		Email: "avatar@example.com", Password: "secret123", FullName: "Ava", Username: "ava",
	}, []byte("avatar-bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, session.User.AvatarURL)
	assert.Equal(t, 1, f.store.Len())

	// Same username, different email: the row insert fails after the upload.
	_, err = f.service.Register(ctx, &dto.RegisterRequest{
		Email: "other@example.com", Password: "secret123", FullName: "Ava Two", Username: "ava",
	}, []byte("second-avatar"))
	require.ErrorIs(t, err, apperr.ErrConflict)
	assert.Equal(t, 1, f.store.Len())
	assert.Len(t, f.store.Deletes(), 1)
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "login@example.com", "secret123")
	ctx := context.Background()

	session, err := f.service.Login(ctx, &dto.LoginRequest{Email: "LOGIN@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, session.Token)

	_, err = f.service.Login(ctx, &dto.LoginRequest{Email: "login@example.com", Password: "wrong-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.ErrorIs(t, err, apperr.ErrAuth)

	_, err = f.service.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, &dto.LoginRequest{Email: "", Password: ""})
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGoogleSignIn_CreatesVerifiedUserWithoutPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.google.profile = &GoogleProfile{
		GoogleID: "google-sub-1", Email: "New@Example.com", FullName: "New User", AvatarURL: "https://lh3.example.com/a.png",
	}

	session, err := f.service.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", session.User.Email)
	assert.True(t, session.User.IsVerified)
	assert.False(t, session.User.HasPassword())

	_, err = f.service.Login(context.Background(), &dto.LoginRequest{Email: "new@example.com", Password: "anything"})
	require.ErrorIs(t, err, ErrGoogleOnlyAccount)
}

func TestGoogleSignIn_LinksExistingEmail(t *testing.T) {
	f := newAuthFixture(t)
	existing := f.register(t, "link@example.com", "secret123").User
	f.google.profile = &GoogleProfile{GoogleID: "google-sub-2", Email: "link@example.com", AvatarURL: "https://lh3.example.com/b.png"}

	session, err := f.service.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, session.User.ID)

	var reloaded models.User
	require.NoError(t, f.db.First(&reloaded, "id = ?", existing.ID).Error)
	require.NotNil(t, reloaded.GoogleID)
	assert.Equal(t, "google-sub-2", *reloaded.GoogleID)
	assert.True(t, reloaded.IsVerified)
	assert.Equal(t, "https://lh3.example.com/b.png", reloaded.AvatarURL)
	assert.True(t, reloaded.HasPassword())

	var n int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestGoogleSignIn_RefreshesAvatarForKnownGoogleID(t *testing.T) {
	f := newAuthFixture(t)
	f.google.profile = &GoogleProfile{GoogleID: "google-sub-3", Email: "known@example.com", AvatarURL: "https://lh3.example.com/old.png"}
	first, err := f.service.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)

	f.google.profile = &GoogleProfile{GoogleID: "google-sub-3", Email: "known@example.com", AvatarURL: "https://lh3.example.com/new.png"}
	second, err := f.service.GoogleSignIn(context.Background(), "id-token")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "https://lh3.example.com/new.png", second.User.AvatarURL)
}

func TestGoogleSignIn_RejectedToken(t *testing.T) {
	f := newAuthFixture(t)
	f.google.err = errors.New("bad signature")

	_, err := f.service.GoogleSignIn(context.Background(), "id-token")
	require.ErrorIs(t, err, apperr.ErrAuth)

	_, err = f.service.GoogleSignIn(context.Background(), "  ")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "reset@example.com", "old-password")
	ctx := context.Background()

	require.NoError(t, f.service.ForgotPassword(ctx, "Reset@example.com"))
	require.Len(t, f.mail.links, 1)
	assert.Contains(t, f.mail.links[0], "http://localhost:5173/reset-password?token=")
	token := f.mail.lastToken(t)
	require.Len(t, token, 64)

	var stored models.User
	require.NoError(t, f.db.First(&stored, "email = ?", "reset@example.com").Error)
	require.NotNil(t, stored.ResetTokenHash)
	assert.NotEqual(t, token, *stored.ResetTokenHash)

	require.NoError(t, f.service.ResetPassword(ctx, token, "new-password"))

	_, err := f.service.Login(ctx, &dto.LoginRequest{Email: "reset@example.com", Password: "new-password"})
	require.NoError(t, err)
	_, err = f.service.Login(ctx, &dto.LoginRequest{Email: "reset@example.com", Password: "old-password"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	err = f.service.ResetPassword(ctx, token, "another-password")
	require.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordReset_ExpiredTokenAndUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	f.register(t, "late@example.com", "old-password")
	ctx := context.Background()

	require.NoError(t, f.service.ForgotPassword(ctx, "late@example.com"))
	token := f.mail.lastToken(t)
	require.NoError(t, f.db.Model(&models.User{}).
		Where("email = ?", "late@example.com").
		Update("reset_token_expiry", time.Now().Add(-time.Minute)).Error)

	err := f.service.ResetPassword(ctx, token, "new-password")
	require.ErrorIs(t, err, ErrInvalidResetToken)

	err = f.service.ForgotPassword(ctx, "ghost@example.com")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first := f.register(t, "first@example.com", "secret123").User
	second := f.register(t, "second@example.com", "secret123").User

	name, phone, username := "Jordan Smith", "+1 555 0100", "jordan"
	updated, err := f.service.UpdateProfile(ctx, first.ID, &dto.UpdateProfileRequest{
		FullName: &name, Phone: &phone, Username: &username,
	})
	require.NoError(t, err)
	assert.Equal(t, name, updated.FullName)
	assert.Equal(t, phone, updated.Phone)
	require.NotNil(t, updated.Username)
	assert.Equal(t, "jordan", *updated.Username)

	_, err = f.service.UpdateProfile(ctx, second.ID, &dto.UpdateProfileRequest{Username: &username})
	require.ErrorIs(t, err, apperr.ErrConflict)

	empty := "  "
	_, err = f.service.UpdateProfile(ctx, second.ID, &dto.UpdateProfileRequest{FullName: &empty})
	require.ErrorIs(t, err, apperr.ErrValidation)
}
