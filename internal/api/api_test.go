package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"inkwell/internal/auth"
	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/storage"
)

type testEnv struct {
	server *Server
	db     *gorm.DB
	cfg    *config.Config
	store  *storage.Storage
	issuer *auth.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))

	cfg := &config.Config{
		JWTSecret:         "test-secret",
		AccessTokenTTL:    30 * time.Minute,
		RefreshTokenTTL:   7 * 24 * time.Hour,
		PostsDir:          filepath.Join(t.TempDir(), "posts"),
		AssetsDir:         filepath.Join(t.TempDir(), "assets"),
		DefaultCoverImage: "/assets/blog/dynamic-routing/cover.webp",
	}

	store, err := storage.NewStorage(cfg.PostsDir, cfg.AssetsDir)
	require.NoError(t, err)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return &testEnv{
		server: NewServer(db, store, issuer, cfg, log),
		db:     db,
		cfg:    cfg,
		store:  store,
		issuer: issuer,
	}
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func (e *testEnv) register(t *testing.T, username, password string) string {
	t.Helper()

	w := e.doJSON(t, http.MethodPost, "/api/users/register", gin.H{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken
}

// publish builds a multipart publish request; image is optional.
func (e *testEnv) publish(t *testing.T, token string, fields map[string]string, imageName string, imageBytes []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, mw.WriteField(key, value))
	}
	if imageName != "" {
		fw, err := mw.CreateFormFile("ogImage", imageName)
		require.NoError(t, err)
		_, err = fw.Write(imageBytes)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/posts/publish", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.server.ServeHTTP(w, req)
	return w
}

func publishFields() map[string]string {
	return map[string]string{
		"title":    "Hello",
		"excerpt":  "Hi",
		"tags":     `["a"]`,
		"date":     "2024-01-01",
		"markdown": "# Hi",
	}
}
