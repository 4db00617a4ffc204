package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/edustore/edustore-backend/internal/models"
	"github.com/edustore/edustore-backend/internal/sessions"
	"github.com/edustore/edustore-backend/internal/tokens"
	"github.com/edustore/edustore-backend/internal/users"
	"github.com/edustore/edustore-backend/pkg/middleware"
)

func newAuthEnv(t *testing.T, bl *sessions.Blacklist) (*gin.Engine, *tokens.Manager) {
	t.Helper()
	repo, err := users.NewFileRepository(filepath.Join(t.TempDir(), "users.json"))
	require.NoError(t, err)
	svc := users.NewService(repo)
	_, err = svc.Register("alice", "alice@example.com", "s3cret", models.RoleAdmin)
	require.NoError(t, err)

	mgr := tokens.NewManager("test-secret-32-bytes-should-be-long", time.Minute)
	g := gin.New()
	NewAuthHandler(svc, mgr, bl).Register(g.Group("/api"), middleware.RequireAuth(mgr, bl))
	return g, mgr
}

func postJSON(g *gin.Engine, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestLogin(t *testing.T) {
	g, mgr := newAuthEnv(t, nil)

	w := postJSON(g, "/api/auth/login", `{"username":"alice","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, "admin", resp.User.Role)

	claims, err := mgr.Parse(resp.Token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	g, _ := newAuthEnv(t, nil)

	// wrong password and unknown user must be indistinguishable
	w1 := postJSON(g, "/api/auth/login", `{"username":"alice","password":"wrong"}`, "")
	w2 := postJSON(g, "/api/auth/login", `{"username":"nobody","password":"s3cret"}`, "")
	require.Equal(t, http.StatusUnauthorized, w1.Code)
	require.Equal(t, http.StatusUnauthorized, w2.Code)
	require.Equal(t, w1.Body.String(), w2.Body.String())
}

func TestLoginValidation(t *testing.T) {
	g, _ := newAuthEnv(t, nil)
	w := postJSON(g, "/api/auth/login", `{"username":"alice"}`, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegisterUser(t *testing.T) {
	g, _ := newAuthEnv(t, nil)

	w := postJSON(g, "/api/auth/register", `{"username":"bob","password":"pw123"}`, "")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"user"`)

	// new accounts are regular users and can log in
	w = postJSON(g, "/api/auth/login", `{"username":"bob","password":"pw123"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"role":"user"`)

	w = postJSON(g, "/api/auth/register", `{"username":"bob","password":"other"}`, "")
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	s, err := mr.Run()
	require.NoError(t, err)
	defer s.Close()
	bl := sessions.NewBlacklist(redis.NewClient(&redis.Options{Addr: s.Addr()}))

	g, _ := newAuthEnv(t, bl)

	w := postJSON(g, "/api/auth/login", `{"username":"alice","password":"s3cret"}`, "")
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Equal(t, http.StatusOK, postJSON(g, "/api/auth/logout", `{}`, resp.Token).Code)

	// the revoked token no longer authenticates
	require.Equal(t, http.StatusUnauthorized, postJSON(g, "/api/auth/logout", `{}`, resp.Token).Code)
}
