package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"blog-api/internal/auth"
	"blog-api/internal/repository/memory"
	"blog-api/internal/service"
	"blog-api/internal/storage"
	"blog-api/internal/storage/storagetest"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

type testServer struct {
	router  *gin.Engine
	users   *memory.UserRepository
	posts   *memory.PostRepository
	media   *storagetest.Fake
	cleaner *storage.Cleaner
	opts    RouterOptions
	userSvc service.UserService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	srv := &testServer{
		users: memory.NewUserRepository(),
		posts: memory.NewPostRepository(),
		media: storagetest.NewFake(),
		opts: RouterOptions{
			CORSOrigin:    "https://blog.example.com",
			BodyLimit:     18 * 1024,
			CookieSecure:  true,
			UploadDir:     filepath.Join(t.TempDir(), "temp"),
			MaxUploadSize: 1 << 20,
		},
	}
	srv.cleaner = storage.NewCleaner(srv.media, storage.NewLogObserver(logger))
	srv.userSvc = service.NewUserService(srv.users, tokens, srv.media, srv.cleaner)
	postSvc := service.NewPostService(srv.posts, srv.users, srv.media, srv.cleaner)
	srv.router = NewRouter(srv.opts, srv.userSvc, postSvc, logger)
	return srv
}

type apiResponse struct {
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func (s *testServer) do(t *testing.T, req *http.Request, cookies ...*http.Cookie) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	}
	return rec, resp
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string]string, fileField string, file []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileField != "" {
		part, err := w.CreateFormFile(fileField, "picture.PNG")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeData(t *testing.T, resp apiResponse, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(resp.Data, dst))
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login registers name and returns the auth cookies of a fresh session.
func (s *testServer) login(t *testing.T, name string) []*http.Cookie {
	t.Helper()
	rec, _ := s.do(t, jsonRequest(t, http.MethodPost, "/api/v1/user/auth/register", map[string]string{
		"username": name,
		"fullName": "Full " + name,
		"email":    name + "@example.com",
		"password": "password-" + name,
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, _ = s.do(t, jsonRequest(t, http.MethodPost, "/api/v1/user/auth/login", map[string]string{
		"email":    name + "@example.com",
		"password": "password-" + name,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Result().Cookies()
}

func assertUploadDirEmpty(t *testing.T, s *testServer) {
	t.Helper()
	entries, err := os.ReadDir(s.opts.UploadDir)
	if errors.Is(err, os.ErrNotExist) {
		return
	}
	require.NoError(t, err)
	require.Empty(t, entries)
}
