package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/imagestore"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/mailer"
	"github.com/ahmetcoskunkizilkaya/realestate-backend/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	minPasswordLength = 6
	resetTokenTTL     = time.Hour
)

var (
	ErrEmailTaken         = &apperr.Error{Kind: apperr.ErrConflict, Msg: "User already exists"}
	ErrInvalidCredentials = &apperr.Error{Kind: apperr.ErrAuth, Msg: "Invalid credentials"}
	ErrGoogleOnlyAccount  = &apperr.Error{Kind: apperr.ErrAuth, Msg: "This account uses Google login. Please log in with Google."}
	ErrInvalidResetToken  = &apperr.Error{Kind: apperr.ErrValidation, Msg: "Invalid or expired reset token"}
	ErrUserNotFound       = &apperr.Error{Kind: apperr.ErrNotFound, Msg: "User not found"}
)

// Session is a signed-in user plus the token to put in the auth cookie.
type Session struct {
	User  *models.User
	Token string
}

type AuthService struct {
	db          *gorm.DB
	tokens      *TokenIssuer
	images      imagestore.Store
	google      IdentityVerifier
	mail        mailer.Mailer
	frontendURL string
}

func NewAuthService(db *gorm.DB, tokens *TokenIssuer, images imagestore.Store, google IdentityVerifier, mail mailer.Mailer, frontendURL string) *AuthService {
	return &AuthService{
		db:          db,
		tokens:      tokens,
		images:      images,
		google:      google,
		mail:        mail,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Register creates a password account. avatar may be nil.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, avatar []byte) (*Session, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, apperr.Validation("Full name is required")
	}
	if len(req.Password) < minPasswordLength {
		return nil, apperr.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperr.FromDB(err, "failed to look up user")
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		Phone:        strings.TrimSpace(req.Phone),
		Username:     optionalString(req.Username),
	}

	var avatarAsset *imagestore.Asset
	if len(avatar) > 0 {
		asset, err := s.images.Upload(ctx, avatar, imagestore.FolderAvatars)
		if errors.Is(err, imagestore.ErrNotImage) {
			return nil, &apperr.Error{Kind: apperr.ErrValidation, Msg: "Avatar must be an image", Cause: err}
		}
		if err != nil {
			return nil, apperr.Upstream("Failed to upload avatar", err)
		}
		avatarAsset = &asset
		user.AvatarURL = asset.URL
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if avatarAsset != nil {
			s.discardAsset(ctx, avatarAsset.ID)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Email or username already in use")
		}
		return nil, apperr.FromDB(err, "failed to create user")
	}

	return s.newSession(&user)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apperr.Validation("All fields are mandatory.")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.FromDB(err, "failed to look up user")
	}

	if !user.HasPassword() {
		return nil, ErrGoogleOnlyAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.newSession(&user)
}

// GoogleSignIn verifies a Google ID token and signs the matching user in,
// linking or creating the account as needed.
func (s *AuthService) GoogleSignIn(ctx context.Context, idToken string) (*Session, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, apperr.Validation("id_token is required")
	}

	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("google token verification failed", "error", err)
		return nil, &apperr.Error{Kind: apperr.ErrAuth, Msg: "Google authentication failed", Cause: err}
	}
	email := strings.ToLower(strings.TrimSpace(profile.Email))

	var user models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("google_id = ?", profile.GoogleID).First(&user).Error
		if err == nil {
			if profile.AvatarURL != "" && profile.AvatarURL != user.AvatarURL {
				user.AvatarURL = profile.AvatarURL
				return tx.Model(&user).Update("avatar_url", profile.AvatarURL).Error
			}
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		err = tx.Where("email = ?", email).First(&user).Error
		if err == nil {
			googleID := profile.GoogleID
			updates := map[string]interface{}{
				"google_id":   googleID,
				"is_verified": true,
			}
			if profile.AvatarURL != "" {
				updates["avatar_url"] = profile.AvatarURL
				user.AvatarURL = profile.AvatarURL
			}
			user.GoogleID = &googleID
			user.IsVerified = true
			return tx.Model(&user).Updates(updates).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		googleID := profile.GoogleID
		user = models.User{
			Email:      email,
			GoogleID:   &googleID,
			FullName:   profile.FullName,
			AvatarURL:  profile.AvatarURL,
			IsVerified: true,
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, apperr.FromDB(err, "failed to sign in with Google")
	}

	return s.newSession(&user)
}

func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.FromDB(err, "failed to load profile")
	}
	return &user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *dto.UpdateProfileRequest) (*models.User, error) {
	updates := map[string]interface{}{}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, apperr.Validation("Full name cannot be empty")
		}
		updates["full_name"] = name
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Username != nil {
		updates["username"] = optionalString(*req.Username)
	}

	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Username is already taken")
		}
		return nil, apperr.FromDB(err, "failed to update profile")
	}
	return s.Profile(ctx, userID)
}

// ForgotPassword stores a one-hour reset token and emails the reset link.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apperr.Validation("Email is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return apperr.FromDB(err, "failed to look up user")
	}

	raw, err := newResetToken()
	if err != nil {
		return err
	}
	hash := hashToken(raw)
	expiry := time.Now().Add(resetTokenTTL)

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token_hash":   hash,
		"reset_token_expiry": expiry,
	}).Error; err != nil {
		return apperr.FromDB(err, "failed to store reset token")
	}

	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(raw)
	if err := s.mail.SendPasswordReset(ctx, user.Email, user.FullName, link); err != nil {
		return apperr.Upstream("Failed to send reset email", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}
	if len(newPassword) < minPasswordLength {
		return apperr.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	var user models.User
	err := s.db.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_token_expiry > ?", hashToken(token), time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return apperr.FromDB(err, "failed to look up reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return apperr.FromDB(s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":      string(hash),
		"reset_token_hash":   nil,
		"reset_token_expiry": nil,
	}).Error, "failed to reset password")
}

func (s *AuthService) newSession(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token}, nil
}

func (s *AuthService) discardAsset(ctx context.Context, id string) {
	if err := s.images.Delete(context.WithoutCancel(ctx), id); err != nil {
		slog.Error("failed to delete orphaned avatar", "asset_id", id, "error", err)
	}
}

func normalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", apperr.Validation("Valid email is required")
	}
	return email, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func newResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
