package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Ashish5180/vibe-bites/models"
	"github.com/Ashish5180/vibe-bites/notify"
	"github.com/Ashish5180/vibe-bites/testutil"
	"github.com/Ashish5180/vibe-bites/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := validation.Register(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var tokenInLink = regexp.MustCompile(`token=([0-9a-f]{64})`)

type mailbox struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (m *mailbox) Send(_ context.Context, msg notify.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return m.err
}

func (m *mailbox) lastToken(t *testing.T) string {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.sent)
	match := tokenInLink.FindStringSubmatch(m.sent[len(m.sent)-1].HTML)
	require.NotNil(t, match, "no token link in email")
	return match[1]
}

type fixture struct {
	db      *gorm.DB
	h       *Handler
	mail    *mailbox
	router  *gin.Engine
	session *models.User
}

func newFixture(t *testing.T) *fixture {
	db := testutil.NewDB(t)
	mail := &mailbox{}
	f := &fixture{
		db:   db,
		mail: mail,
		h: &Handler{
			DB:       db,
			Tokens:   NewTokens("secret", time.Hour),
			Notifier: notify.NewNotifier(mail, zap.NewNop()),
			Log:      zap.NewNop(),
			AppURL:   "http://shop.test",
		},
	}

	r := gin.New()
	r.POST("/register", f.h.Register)
	r.POST("/login", f.h.Login)
	r.POST("/forgot-password", f.h.ForgotPassword)
	r.POST("/reset-password", f.h.ResetPassword)
	r.POST("/verify-email", f.h.VerifyEmail)
	session := r.Group("", func(c *gin.Context) {
		if f.session != nil {
			SetUser(c, f.session)
		}
	})
	session.GET("/me", f.h.Me)
	session.PUT("/profile", f.h.UpdateProfile)
	f.router = r
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func registerBody(email string) gin.H {
	return gin.H{"email": email, "password": "Secret1", "firstName": "Asha", "lastName": "Rao", "phone": "9876543210"}
}

func TestRegisterLoginVerify(t *testing.T) {
	f := newFixture(t)

	w, out := f.do(t, http.MethodPost, "/register", registerBody("Asha@Example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := out["data"].(map[string]any)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "asha@example.com", data["user"].(map[string]any)["email"])

	f.h.Notifier.Wait()
	verifyToken := f.mail.lastToken(t)

	var stored models.User
	require.NoError(t, f.db.Where("email = ?", "asha@example.com").First(&stored).Error)
	assert.NotEqual(t, "Secret1", stored.PasswordHash)
	assert.NotEqual(t, verifyToken, stored.EmailVerificationToken)
	assert.False(t, stored.IsEmailVerified)

	w, _ = f.do(t, http.MethodPost, "/verify-email", gin.H{"token": verifyToken})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, f.db.First(&stored, stored.ID).Error)
	assert.True(t, stored.IsEmailVerified)

	w, _ = f.do(t, http.MethodPost, "/verify-email", gin.H{"token": verifyToken})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, out = f.do(t, http.MethodPost, "/login", gin.H{"email": "ASHA@example.com", "password": "Secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	claims, err := f.h.Tokens.Parse(out["data"].(map[string]any)["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)

	require.NoError(t, f.db.First(&stored, stored.ID).Error)
	assert.NotNil(t, stored.LastLogin)
}

func TestRegisterRejects(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(t, http.MethodPost, "/register", registerBody("a@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, out := f.do(t, http.MethodPost, "/register", registerBody("A@example.com"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User with this email already exists", out["message"])

	weak := registerBody("b@example.com")
	weak["password"] = "secret"
	w, out = f.do(t, http.MethodPost, "/register", weak)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, out["errors"])
}

func TestLoginFailures(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(t, http.MethodPost, "/register", registerBody("a@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, out := f.do(t, http.MethodPost, "/login", gin.H{"email": "a@example.com", "password": "Wrong1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", out["message"])

	w, _ = f.do(t, http.MethodPost, "/login", gin.H{"email": "nobody@example.com", "password": "Secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	require.NoError(t, f.db.Model(&models.User{}).Where("email = ?", "a@example.com").Update("is_active", false).Error)
	w, out = f.do(t, http.MethodPost, "/login", gin.H{"email": "a@example.com", "password": "Secret1"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Account is deactivated", out["message"])
}

func TestPasswordReset(t *testing.T) {
	f := newFixture(t)
	w, _ := f.do(t, http.MethodPost, "/register", registerBody("a@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)
	f.h.Notifier.Wait()

	w, _ = f.do(t, http.MethodPost, "/forgot-password", gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = f.do(t, http.MethodPost, "/forgot-password", gin.H{"email": "a@example.com"})
	require.Equal(t, http.StatusOK, w.Code)
	resetToken := f.mail.lastToken(t)

	w, _ = f.do(t, http.MethodPost, "/reset-password", gin.H{"token": resetToken, "password": "weak"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/reset-password", gin.H{"token": resetToken, "password": "Newpass2"})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = f.do(t, http.MethodPost, "/reset-password", gin.H{"token": resetToken, "password": "Newpass3"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = f.do(t, http.MethodPost, "/login", gin.H{"email": "a@example.com", "password": "Newpass2"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetExpired(t *testing.T) {
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "a@example.com", models.RoleUser)
	raw, hashed, err := newOneTimeToken()
	require.NoError(t, err)
	require.NoError(t, f.db.Model(u).Updates(map[string]any{
		"password_reset_token":   hashed,
		"password_reset_expires": time.Now().Add(-time.Minute),
	}).Error)

	w, out := f.do(t, http.MethodPost, "/reset-password", gin.H{"token": raw, "password": "Newpass2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid or expired reset token", out["message"])
}

func TestForgotPasswordDeliveryFailure(t *testing.T) {
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "a@example.com", models.RoleUser)
	f.mail.err = errors.New("smtp down")

	w, out := f.do(t, http.MethodPost, "/forgot-password", gin.H{"email": "a@example.com"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error sending password reset email", out["message"])
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	f.session = testutil.CreateUser(t, f.db, "a@example.com", models.RoleUser)

	w, _ := f.do(t, http.MethodPut, "/profile", gin.H{"firstName": "  Meera ", "phone": "9123456789"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	require.NoError(t, f.db.First(&stored, f.session.ID).Error)
	assert.Equal(t, "Meera", stored.FirstName)
	assert.Equal(t, "User", stored.LastName)
	assert.Equal(t, "9123456789", stored.Phone)

	w, _ = f.do(t, http.MethodPut, "/profile", gin.H{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@example.com")
}
