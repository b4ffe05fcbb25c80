package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/url"
	"strings"
	"time"

	"gorm.io/gorm"

	"discovery-api/apperrors"
	"discovery-api/models"
	"discovery-api/utils"
)

const passwordResetTTL = time.Hour

// AuthService handles login, password changes and password resets.
type AuthService struct {
	db          *gorm.DB
	users       *UserService
	tokens      *TokenIssuer
	mailer      MailSender
	frontendURL string
	clock       clock
}

// NewAuthService instantiates the service. mailer may be nil, in which case
// reset links are only logged.
func NewAuthService(db *gorm.DB, users *UserService, tokens *TokenIssuer, mailer MailSender, frontendURL string) *AuthService {
	return &AuthService{
		db:          db,
		users:       users,
		tokens:      tokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// Login checks the credentials and returns a signed token with the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = utils.SanitizeInput(email)
	if email == "" || password == "" {
		return "", nil, apperrors.Validation("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return "", nil, apperrors.Unauthorized("Invalid email or password")
	}
	if err != nil {
		return "", nil, err
	}
	if !CheckPasswordHash(password, user.Password) {
		return "", nil, apperrors.Unauthorized("Invalid email or password")
	}
	if user.Status != models.UserActive {
		return "", nil, apperrors.Forbidden("Account is inactive")
	}

	token, err := s.tokens.Issue(*user)
	if err != nil {
		return "", nil, apperrors.Internal("Failed to generate token", err)
	}
	return token, user, nil
}

// ChangePassword replaces the password after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if current == "" || next == "" {
		return apperrors.Validation("Current and new password are required")
	}
	if ok, msg := utils.ValidatePassword(next); !ok {
		return apperrors.Validation(msg)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if !CheckPasswordHash(current, user.Password) {
		return apperrors.Validation("Current password is incorrect")
	}
	return s.users.UpdatePassword(ctx, userID, next)
}

// ForgotPassword stores a one-hour reset token for the account and mails the
// link. Unknown emails succeed silently so accounts cannot be enumerated.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = utils.SanitizeInput(email)
	if !utils.ValidateEmail(email) {
		return apperrors.Validation("Invalid email format")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if apperrors.KindOf(err) == apperrors.KindNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	rawToken, err := generateResetToken()
	if err != nil {
		return apperrors.Internal("Failed to create reset token", err)
	}

	now := s.clock.now()
	token := models.UserToken{
		ID:        newID(),
		UserID:    user.ID,
		TokenType: models.TokenTypePasswordReset,
		TokenHash: hashResetToken(rawToken),
		ExpiresAt: now.Add(passwordResetTTL),
		CreatedAt: now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := revokeResetTokens(tx, user.ID); err != nil {
			return err
		}
		return tx.Exec(
			"INSERT INTO user_tokens (id, userId, tokenType, tokenHash, expiresAt) VALUES (?, ?, ?, ?, ?)",
			token.ID, token.UserID, token.TokenType, token.TokenHash, token.ExpiresAt,
		).Error
	})
	if err != nil {
		return apperrors.FromDB(err, "Failed to store reset token", "")
	}

	return s.sendResetMail(*user, rawToken)
}

// ResetPassword consumes a reset token and stores the new password.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, next, confirm string) error {
	rawToken = utils.SanitizeInput(rawToken)
	if rawToken == "" {
		return apperrors.Validation("Token is required")
	}
	if next != confirm {
		return apperrors.Validation("Passwords do not match")
	}
	if ok, msg := utils.ValidatePassword(next); !ok {
		return apperrors.Validation(msg)
	}

	var token models.UserToken
	err := s.db.WithContext(ctx).
		Where("tokenHash = ? AND tokenType = ? AND isRevoked = ? AND expiresAt > ?",
			hashResetToken(rawToken), models.TokenTypePasswordReset, false, s.clock.now()).
		Take(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Validation("Invalid or expired token")
	}
	if err != nil {
		return apperrors.FromDB(err, "Failed to verify token", "")
	}

	hashed, err := HashPassword(next)
	if err != nil {
		return apperrors.Internal("Failed to update password", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("UPDATE users SET password = ? WHERE id = ?", hashed, token.UserID).Error; err != nil {
			return err
		}
		return revokeResetTokens(tx, token.UserID)
	})
	if err != nil {
		return apperrors.FromDB(err, "Failed to update password", "")
	}
	return nil
}

func (s *AuthService) sendResetMail(user models.User, rawToken string) error {
	link := s.frontendURL + "/reset-password?token=" + url.QueryEscape(rawToken)
	if s.mailer == nil || !s.mailer.Configured() {
		log.Printf("SMTP not configured; password reset link for %s: %s", user.Email, link)
		return nil
	}

	mail := emailContent{
		Subject: "Reset your password",
		Paragraphs: []string{
			"Hello " + user.DisplayName() + ",",
			"We received a request to reset the password of your account. The link below expires in **one hour**.",
		},
		ButtonText: "Reset password",
		ButtonURL:  link,
		Footer:     "If you did not ask for a reset you can ignore this email.",
	}
	if err := s.mailer.Send([]string{user.Email}, mail.Subject, mail.render()); err != nil {
		return apperrors.Internal("Failed to send reset email", err)
	}
	return nil
}

func revokeResetTokens(tx *gorm.DB, userID string) error {
	return tx.Exec(
		"UPDATE user_tokens SET isRevoked = TRUE WHERE userId = ? AND tokenType = ? AND isRevoked = FALSE",
		userID, models.TokenTypePasswordReset,
	).Error
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
