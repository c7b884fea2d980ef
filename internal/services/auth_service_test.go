package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mvaldesd/relato/internal/auth"
	"github.com/mvaldesd/relato/internal/database/testutil"
	"github.com/mvaldesd/relato/internal/models"
	apperrors "github.com/mvaldesd/relato/pkg/errors"
	"github.com/mvaldesd/relato/pkg/mail"
)

type captureMailer struct {
	sent []mail.Message
	err  error
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fakeVerifier struct {
	identity *auth.Identity
	err      error
}

func (v *fakeVerifier) Verify(context.Context, string) (*auth.Identity, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.identity, nil
}

func newTestJWTService(t *testing.T) *auth.JWTService {
	t.Helper()

	svc, err := auth.NewJWTService(auth.JWTConfig{
		Secret:         "test-secret",
		Issuer:         "relato-test",
		AccessTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func newTestAuthService(t *testing.T, db *gorm.DB, mailer mail.Mailer, verifier auth.IdentityVerifier) *AuthService {
	t.Helper()

	svc, err := NewAuthService(db, newTestJWTService(t), mailer, verifier,
		WithVerificationBaseURL("https://relato.example"))
	require.NoError(t, err)
	return svc
}

func TestRegisterCreatesUnverifiedUserAndSendsEmail(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	mailer := &captureMailer{}
	svc := newTestAuthService(t, db, mailer, nil)

	user, err := svc.Register(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)

	var stored models.User
	require.NoError(t, db.First(&stored, "email = ?", "a@x.com").Error)
	require.False(t, stored.IsVerified)
	require.NotNil(t, stored.Password)
	require.NotEqual(t, "pw123", *stored.Password)
	require.NotNil(t, stored.VerificationToken)
	// 20 random bytes, hex encoded
	require.Len(t, *stored.VerificationToken, 40)

	require.Len(t, mailer.sent, 1)
	require.Equal(t, []string{"a@x.com"}, mailer.sent[0].To)
	require.Contains(t, mailer.sent[0].Body,
		"https://relato.example/auth/verify-email?token="+*stored.VerificationToken)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	_, err := svc.Register(context.Background(), "", "pw123")
	require.ErrorContains(t, err, "email is required")

	_, err = svc.Register(context.Background(), "a@x.com", "   ")
	require.ErrorContains(t, err, "password is required")
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	_, err := svc.Register(context.Background(), "dup@x.com", "pw123")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "dup@x.com", "pw456")
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestRegisterUniqueConstraintBackstop(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	// simulate a racing registration that landed after the pre-check by
	// inserting the row directly
	require.NoError(t, db.Create(&models.User{Email: "race@x.com"}).Error)

	// exercise the insert path with the pre-check bypassed
	err := db.Create(&models.User{Email: "race@x.com"}).Error
	require.True(t, isUniqueConstraintError(err))

	_, err = svc.Register(context.Background(), "race@x.com", "pw123")
	require.ErrorIs(t, err, apperrors.ErrEmailTaken)
}

func TestRegisterMailFailureIsFatal(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	mailer := &captureMailer{err: errors.New("smtp: connection refused")}
	svc := newTestAuthService(t, db, mailer, nil)

	_, err := svc.Register(context.Background(), "a@x.com", "pw123")
	require.Error(t, err)

	appErr := apperrors.FromError(err)
	require.Equal(t, 500, appErr.StatusCode)
	// the internal cause must not surface in the client message
	require.NotContains(t, appErr.Message, "connection refused")
}

func TestRegisterIgnoresDisabledSMTP(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	mailer := &captureMailer{err: mail.ErrSMTPDisabled}
	svc := newTestAuthService(t, db, mailer, nil)

	_, err := svc.Register(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)
}

func TestVerifyEmailConsumesTokenOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	_, err := svc.Register(context.Background(), "a@x.com", "pw123")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "a@x.com").Error)
	token := *user.VerificationToken

	require.NoError(t, svc.VerifyEmail(context.Background(), token))

	require.NoError(t, db.First(&user, "email = ?", "a@x.com").Error)
	require.True(t, user.IsVerified)
	require.Nil(t, user.VerificationToken)

	// the token is cleared, so an immediate retry must fail
	err = svc.VerifyEmail(context.Background(), token)
	require.ErrorIs(t, err, ErrVerificationInvalid)
}

func TestVerifyEmailRejectsMissingAndUnknownTokens(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	err := svc.VerifyEmail(context.Background(), "   ")
	require.ErrorContains(t, err, "token is required")

	err = svc.VerifyEmail(context.Background(), "deadbeef")
	require.ErrorIs(t, err, ErrVerificationInvalid)
}

func TestLoginFlows(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	// unknown email and wrong password yield the same generic failure
	_, err = svc.Login(ctx, "nobody@x.com", "pw123")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	// correct password on an unverified account is still rejected
	_, err = svc.Login(ctx, "a@x.com", "pw123")
	require.ErrorIs(t, err, apperrors.ErrAccountNotVerified)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "a@x.com").Error)
	require.NoError(t, svc.VerifyEmail(ctx, *user.VerificationToken))

	// the identical request succeeds after verification
	token, err := svc.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	claims, err := newTestJWTService(t).ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "a@x.com", claims.Email)
	require.Empty(t, claims.GoogleID)
}

func TestLoginFederatedOnlyAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	googleID := "google-sub-9"
	require.NoError(t, db.Create(&models.User{
		Email:      "g@x.com",
		IsVerified: true,
		GoogleID:   &googleID,
	}).Error)

	for _, password := range []string{"pw123", "", "anything-at-all"} {
		_, err := svc.Login(context.Background(), "g@x.com", password)
		if password == "" {
			require.ErrorContains(t, err, "password is required")
			continue
		}
		require.ErrorIs(t, err, apperrors.ErrFederatedAccount)
	}
}

func TestSocialLoginCreatesVerifiedPasswordlessUser(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	verifier := &fakeVerifier{identity: &auth.Identity{Subject: "google-sub-1", Email: "g@x.com"}}
	svc := newTestAuthService(t, db, &captureMailer{}, verifier)

	token, err := svc.SocialLogin(context.Background(), "google", "raw-id-token")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "g@x.com").Error)
	require.Nil(t, user.Password)
	require.True(t, user.IsVerified)
	require.NotNil(t, user.GoogleID)
	require.Equal(t, "google-sub-1", *user.GoogleID)

	claims, err := newTestJWTService(t).ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Equal(t, "google-sub-1", claims.GoogleID)
}

func TestSocialLoginLinksExistingEmailAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	verifier := &fakeVerifier{identity: &auth.Identity{Subject: "google-sub-2", Email: "a@x.com"}}
	svc := newTestAuthService(t, db, &captureMailer{}, verifier)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = svc.SocialLogin(ctx, "google", "raw-id-token")
	require.NoError(t, err)

	var user models.User
	require.NoError(t, db.First(&user, "email = ?", "a@x.com").Error)
	require.NotNil(t, user.GoogleID)
	require.Equal(t, "google-sub-2", *user.GoogleID)
	// the local password must survive linking
	require.NotNil(t, user.Password)

	// a second social login resolves by subject id without touching the row
	_, err = svc.SocialLogin(ctx, "google", "raw-id-token")
	require.NoError(t, err)
}

func TestSocialLoginRejections(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	verifier := &fakeVerifier{identity: &auth.Identity{Subject: "google-sub-3"}}
	svc := newTestAuthService(t, db, &captureMailer{}, verifier)
	ctx := context.Background()

	_, err := svc.SocialLogin(ctx, "github", "raw-id-token")
	require.ErrorIs(t, err, ErrSocialProviderUnsupported)

	_, err = svc.SocialLogin(ctx, "google", "")
	require.ErrorContains(t, err, "token is required")

	// verified claim without an email
	_, err = svc.SocialLogin(ctx, "google", "raw-id-token")
	require.ErrorIs(t, err, ErrSocialEmailMissing)

	// verification failure is surfaced as an internal error
	verifier.err = errors.New("audience mismatch")
	_, err = svc.SocialLogin(ctx, "google", "raw-id-token")
	appErr := apperrors.FromError(err)
	require.Equal(t, 500, appErr.StatusCode)

	// no verifier configured at all
	unconfigured := newTestAuthService(t, db, &captureMailer{}, nil)
	_, err = unconfigured.SocialLogin(ctx, "google", "raw-id-token")
	require.ErrorIs(t, err, ErrSocialLoginDisabled)
}

func TestDeleteAccountCascadesToPosts(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc := newTestAuthService(t, db, &captureMailer{}, nil)

	user := &models.User{Email: "owner@x.com", IsVerified: true}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.Post{UserID: user.ID, Title: "t", Content: "c"}).Error)

	require.NoError(t, svc.DeleteAccount(context.Background(), user.ID))

	var users, posts int64
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Count(&users).Error)
	require.NoError(t, db.Model(&models.Post{}).Where("user_id = ?", user.ID).Count(&posts).Error)
	require.Zero(t, users)
	require.Zero(t, posts)
}

func TestVerificationLinkWithoutBaseURL(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAuthService(db, newTestJWTService(t), &captureMailer{}, nil)
	require.NoError(t, err)

	link := svc.verificationLink("abc123")
	require.Equal(t, "abc123", link)
	require.False(t, strings.Contains(link, "?token="))
}
