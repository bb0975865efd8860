package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"blog-api/internal/auth"
	"blog-api/internal/repository/memory"
	"blog-api/internal/storage"
	"blog-api/internal/storage/storagetest"
)

type testEnv struct {
	users    *memory.UserRepository
	posts    *memory.PostRepository
	media    *storagetest.Fake
	cleaner  *storage.Cleaner
	observer *storage.LogObserver
	tokens   *auth.TokenIssuer
	userSvc  UserService
	postSvc  PostService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tokens, err := auth.NewTokenIssuer(auth.TokenConfig{
		AccessSecret:  "access-secret",
		AccessTTL:     time.Minute,
		RefreshSecret: "refresh-secret",
		RefreshTTL:    time.Hour,
	})
	require.NoError(t, err)

	logger, _ := test.NewNullLogger()
	env := &testEnv{
		users:    memory.NewUserRepository(),
		posts:    memory.NewPostRepository(),
		media:    storagetest.NewFake(),
		observer: storage.NewLogObserver(logger),
		tokens:   tokens,
	}
	env.cleaner = storage.NewCleaner(env.media, env.observer)
	env.userSvc = NewUserService(env.users, tokens, env.media, env.cleaner)
	env.postSvc = NewPostService(env.posts, env.users, env.media, env.cleaner)
	return env
}

func tempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))
	return path
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}
