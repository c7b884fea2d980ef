package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/mvaldesd/relato/internal/auth"
	"github.com/mvaldesd/relato/internal/models"
	"github.com/mvaldesd/relato/pkg/crypto"
	apperrors "github.com/mvaldesd/relato/pkg/errors"
	"github.com/mvaldesd/relato/pkg/mail"
)

const defaultVerificationTokenBytes = 20

var (
	// ErrVerificationInvalid covers unknown, already consumed, and malformed
	// verification tokens alike.
	ErrVerificationInvalid = apperrors.New("VERIFICATION_INVALID", "Verification token is invalid or already used", http.StatusBadRequest)
	// ErrSocialProviderUnsupported rejects any federated provider other than Google.
	ErrSocialProviderUnsupported = apperrors.New("SOCIAL_PROVIDER_UNSUPPORTED", "Social login provider is not supported", http.StatusBadRequest)
	// ErrSocialEmailMissing signals a verified claim without a usable email.
	ErrSocialEmailMissing = apperrors.New("SOCIAL_EMAIL_MISSING", "The identity token does not include an email address", http.StatusBadRequest)
	// ErrSocialLoginDisabled is returned when no identity verifier is configured.
	ErrSocialLoginDisabled = apperrors.New("SOCIAL_LOGIN_DISABLED", "Social login is not configured", http.StatusBadRequest)
)

// AuthOption customises the AuthService.
type AuthOption func(*AuthService)

// WithVerificationBaseURL sets the base URL embedded in verification links.
func WithVerificationBaseURL(url string) AuthOption {
	return func(s *AuthService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithVerificationTokenSize adjusts the number of random bytes in generated tokens.
func WithVerificationTokenSize(size int) AuthOption {
	return func(s *AuthService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// AuthService orchestrates registration, email verification, password and
// federated login, and account deletion.
type AuthService struct {
	db          *gorm.DB
	jwt         *auth.JWTService
	mailer      mail.Mailer
	verifier    auth.IdentityVerifier
	baseURL     string
	tokenLength int
}

// NewAuthService constructs an AuthService with the provided collaborators.
// verifier may be nil, in which case social login is rejected.
func NewAuthService(db *gorm.DB, jwtSvc *auth.JWTService, mailer mail.Mailer, verifier auth.IdentityVerifier, opts ...AuthOption) (*AuthService, error) {
	if db == nil {
		return nil, errors.New("auth service: db is required")
	}
	if jwtSvc == nil {
		return nil, errors.New("auth service: jwt service is required")
	}
	if mailer == nil {
		return nil, errors.New("auth service: mailer is required")
	}

	service := &AuthService{
		db:          db,
		jwt:         jwtSvc,
		mailer:      mailer,
		verifier:    verifier,
		tokenLength: defaultVerificationTokenBytes,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Register creates an unverified account and dispatches the verification
// email. A failed send is fatal: the caller is told registration failed,
// though the user row is intentionally left in place (see DESIGN.md).
func (s *AuthService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, apperrors.NewBadRequest("email is required")
	}
	if strings.TrimSpace(password) == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("auth service: check existing email: %w", err)
	}
	if count > 0 {
		return nil, apperrors.ErrEmailTaken
	}

	hashed, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth service: generate verification token: %w", err)
	}

	user := &models.User{
		Email:             email,
		Password:          &hashed,
		IsVerified:        false,
		VerificationToken: &token,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		// the unique index is the backstop for registrations racing past
		// the pre-check
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("auth service: create user: %w", err)
	}

	message := mail.Message{
		To:      []string{email},
		Subject: "Confirm your account",
		Body:    s.verificationBody(s.verificationLink(token)),
	}
	if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
		return nil, apperrors.Wrap(mailErr, "could not send the verification email")
	}

	return user, nil
}

// VerifyEmail consumes a verification token. The token is the match
// predicate of a single UPDATE, so a concurrently repeated call is a no-op
// failure rather than a double apply.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewBadRequest("verification token is required")
	}

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("verification_token = ? AND is_verified = ?", token, false).
		Updates(map[string]any{
			"is_verified":        true,
			"verification_token": nil,
		})
	if res.Error != nil {
		return fmt.Errorf("auth service: consume verification token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrVerificationInvalid
	}

	return nil
}

// Login verifies local credentials and issues a session token. Unknown
// emails and wrong passwords produce the same generic error.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", apperrors.NewBadRequest("email is required")
	}
	if password == "" {
		return "", apperrors.NewBadRequest("password is required")
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("auth service: find user: %w", err)
	}

	if user.Password == nil {
		return "", apperrors.ErrFederatedAccount
	}

	if !crypto.VerifyPassword(*user.Password, password) {
		return "", apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		return "", apperrors.ErrAccountNotVerified
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return "", fmt.Errorf("auth service: issue token: %w", err)
	}

	return token, nil
}

// SocialLogin validates an external identity token and signs the caller in,
// creating or linking the account as needed.
func (s *AuthService) SocialLogin(ctx context.Context, provider, externalToken string) (string, error) {
	if strings.TrimSpace(externalToken) == "" {
		return "", apperrors.NewBadRequest("token is required")
	}
	if !strings.EqualFold(strings.TrimSpace(provider), "google") {
		return "", ErrSocialProviderUnsupported
	}
	if s.verifier == nil {
		return "", ErrSocialLoginDisabled
	}

	identity, err := s.verifier.Verify(ctx, externalToken)
	if err != nil {
		return "", apperrors.Wrap(err, "could not verify the identity token")
	}
	if identity.Email == "" {
		return "", ErrSocialEmailMissing
	}

	user, err := s.resolveFederatedUser(ctx, identity)
	if err != nil {
		return "", err
	}

	googleID := ""
	if user.GoogleID != nil {
		googleID = *user.GoogleID
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:   user.ID,
		Email:    user.Email,
		GoogleID: googleID,
	})
	if err != nil {
		return "", fmt.Errorf("auth service: issue token: %w", err)
	}

	return token, nil
}

// resolveFederatedUser finds the account for a verified identity: first by
// federated subject, then by email (linking the subject to an unlinked
// account), and finally by creating a verified passwordless user.
func (s *AuthService) resolveFederatedUser(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("google_id = ?", identity.Subject).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("auth service: find by google id: %w", err)
	}

	err = s.db.WithContext(ctx).Where("email = ?", identity.Email).First(&user).Error
	if err == nil {
		if user.GoogleID == nil {
			if err := s.db.WithContext(ctx).
				Model(&user).
				Update("google_id", identity.Subject).Error; err != nil {
				return nil, fmt.Errorf("auth service: link google id: %w", err)
			}
			user.GoogleID = &identity.Subject
		}
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("auth service: find by email: %w", err)
	}

	created := models.User{
		Email:      identity.Email,
		Password:   nil,
		IsVerified: true,
		GoogleID:   &identity.Subject,
	}
	if err := s.db.WithContext(ctx).Create(&created).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, fmt.Errorf("auth service: create federated user: %w", err)
	}

	return &created, nil
}

// DeleteAccount removes the user row; the store cascades the deletion to the
// user's posts.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperrors.NewBadRequest("user id is required")
	}

	if err := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID).Error; err != nil {
		return fmt.Errorf("auth service: delete user: %w", err)
	}

	return nil
}

func (s *AuthService) verificationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/auth/verify-email?token=%s", s.baseURL, token)
}

func (s *AuthService) verificationBody(link string) string {
	return fmt.Sprintf("Hello!\n\nPlease confirm your email address by visiting the link below:\n%s\n\nIf you did not create an account, you can ignore this message.\n", link)
}
