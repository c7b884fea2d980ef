package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/mvaldesd/relato/internal/auth"
	"github.com/mvaldesd/relato/internal/database/testutil"
	"github.com/mvaldesd/relato/internal/middleware"
	"github.com/mvaldesd/relato/internal/services"
	"github.com/mvaldesd/relato/pkg/mail"
)

var verificationTokenPattern = regexp.MustCompile(`(?m)([0-9a-f]{40})`)

// captureMailer records outgoing messages instead of dialling SMTP.
type captureMailer struct {
	mu       sync.Mutex
	messages []mail.Message
}

func (m *captureMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *captureMailer) last(t *testing.T) mail.Message {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.messages)
	return m.messages[len(m.messages)-1]
}

type testEnv struct {
	db     *gorm.DB
	jwt    *iauth.JWTService
	auth   *services.AuthService
	users  *services.UserService
	posts  *services.PostService
	mailer *captureMailer
	router *gin.Engine
}

// newTestEnv wires the handlers against real services on an in-memory
// database, with the same route shape the server mounts.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret: "handler-test-secret",
		Issuer: "test",
	})
	require.NoError(t, err)

	mailer := &captureMailer{}

	authSvc, err := services.NewAuthService(db, jwtSvc, mailer, nil)
	require.NoError(t, err)

	userSvc, err := services.NewUserService(db)
	require.NoError(t, err)

	postSvc, err := services.NewPostService(db)
	require.NoError(t, err)

	router := gin.New()

	authHandler := NewAuthHandler(authSvc)
	router.POST("/auth/register", authHandler.Register)
	router.GET("/auth/verify-email", authHandler.VerifyEmail)
	router.POST("/auth/login", authHandler.Login)
	router.POST("/auth/social-login", authHandler.SocialLogin)

	protected := router.Group("/", middleware.Auth(jwtSvc))

	profileHandler := NewProfileHandler(userSvc, authSvc)
	protected.GET("/profile", profileHandler.Get)
	protected.DELETE("/profile", profileHandler.Delete)

	postHandler := NewPostHandler(postSvc)
	protected.POST("/posts", postHandler.Create)
	protected.GET("/posts", postHandler.List)
	protected.GET("/posts/me", postHandler.ListMine)
	protected.PUT("/posts/:id", postHandler.Update)
	protected.DELETE("/posts/:id", postHandler.Delete)

	return &testEnv{
		db:     db,
		jwt:    jwtSvc,
		auth:   authSvc,
		users:  userSvc,
		posts:  postSvc,
		mailer: mailer,
		router: router,
	}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

// signUpVerified registers and verifies an account, returning a session token.
func (e *testEnv) signUpVerified(t *testing.T, email, password string) string {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	token := verificationTokenPattern.FindString(e.mailer.last(t).Body)
	require.NotEmpty(t, token)

	rec = e.do(t, http.MethodGet, "/auth/verify-email?token="+token, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = e.do(t, http.MethodPost, "/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data, ok := decodeBody(t, rec)["data"].(map[string]any)
	require.True(t, ok)
	session, _ := data["token"].(string)
	require.NotEmpty(t, session)
	return session
}
