package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-api/internal/auth"
	"blog-api/internal/domain"
	"blog-api/internal/repository"
)

func registerInput(name string) RegisterInput {
	return RegisterInput{
		Username: name,
		FullName: "Full " + name,
		Email:    name + "@example.com",
		Password: "password-" + name,
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	user, err := env.userSvc.Register(ctx, RegisterInput{
		Username: "  Alice ",
		FullName: " Alice Liddell ",
		Email:    " alice@example.com ",
		Password: "wonderland",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "Alice Liddell", user.FullName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, domain.DefaultAvatarURL, user.Profile.AvatarURL)
	assert.Empty(t, user.PasswordHash)
	assert.Empty(t, user.RefreshToken)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "wonderland", stored.PasswordHash)

	ok, err := auth.VerifyPassword("wonderland", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = auth.VerifyPassword("wonderland!", stored.PasswordHash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.userSvc.Register(ctx, registerInput("bob"))
	require.NoError(t, err)

	in := registerInput("robert")
	in.Email = "bob@example.com"
	_, err = env.userSvc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)

	stored, err := env.users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, stored.ID)
	assert.Equal(t, "bob", stored.Username)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.userSvc.Register(ctx, registerInput("carol"))
	require.NoError(t, err)

	in := registerInput("Carol")
	in.Email = "other@example.com"
	_, err = env.userSvc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestRegister_InvalidEmail(t *testing.T) {
	env := newTestEnv(t)
	in := registerInput("dave")
	in.Email = "not-an-email"
	_, err := env.userSvc.Register(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	registered, err := env.userSvc.Register(ctx, registerInput("erin"))
	require.NoError(t, err)

	user, pair, err := env.userSvc.Login(ctx, "erin@example.com", "password-erin")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.RefreshToken)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored.RefreshToken)

	id, err := env.tokens.VerifyAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestLogin_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.userSvc.Register(ctx, registerInput("frank"))
	require.NoError(t, err)

	_, _, err = env.userSvc.Login(ctx, "frank@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, _, err = env.userSvc.Login(ctx, "nobody@example.com", "password-frank")
	assert.ErrorIs(t, err, ErrUserNotFoundByEmail)

	stored, err := env.users.GetByEmail(ctx, "frank@example.com")
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)
}

func loggedIn(t *testing.T, env *testEnv, name string) (*domain.User, auth.TokenPair) {
	t.Helper()
	ctx := context.Background()
	_, err := env.userSvc.Register(ctx, registerInput(name))
	require.NoError(t, err)
	user, pair, err := env.userSvc.Login(ctx, name+"@example.com", "password-"+name)
	require.NoError(t, err)
	return user, pair
}

func TestRefreshTokens_Rotation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := loggedIn(t, env, "gina")

	next, err := env.userSvc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, next.RefreshToken, stored.RefreshToken)

	_, err = env.userSvc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	_, err = env.userSvc.RefreshTokens(ctx, next.RefreshToken)
	assert.NoError(t, err)
}

func TestRefreshTokens_Failures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, pair := loggedIn(t, env, "hank")

	_, err := env.userSvc.RefreshTokens(ctx, "  ")
	assert.ErrorIs(t, err, ErrRefreshTokenMissing)

	_, err = env.userSvc.RefreshTokens(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	_, err = env.userSvc.RefreshTokens(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	ghost, err := env.tokens.IssueRefreshToken("ghost-id")
	require.NoError(t, err)
	_, err = env.userSvc.RefreshTokens(ctx, ghost)
	assert.ErrorIs(t, err, ErrRefreshTokenUser)
}

func TestLogout_InvalidatesRefreshToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := loggedIn(t, env, "iris")

	require.NoError(t, env.userSvc.Logout(ctx, user.ID))

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)

	_, err = env.userSvc.RefreshTokens(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRefreshTokenReused)

	assert.ErrorIs(t, env.userSvc.Logout(ctx, "missing"), ErrUserNotFound)
}

func TestRefreshTokens_ConcurrentSingleWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := loggedIn(t, env, "jack")

	const attempts = 2
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []auth.TokenPair
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			next, err := env.userSvc.RefreshTokens(ctx, pair.RefreshToken)
			if err != nil {
				assert.ErrorIs(t, err, ErrRefreshTokenReused)
				return
			}
			mu.Lock()
			winners = append(winners, next)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, winners, 1)
	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, winners[0].RefreshToken, stored.RefreshToken)
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := loggedIn(t, env, "kate")

	err := env.userSvc.ChangePassword(ctx, user.ID, "wrong-old", "new-password")
	assert.ErrorIs(t, err, ErrInvalidOldPassword)

	require.NoError(t, env.userSvc.ChangePassword(ctx, user.ID, "password-kate", "new-password"))

	_, _, err = env.userSvc.Login(ctx, "kate@example.com", "password-kate")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	_, _, err = env.userSvc.Login(ctx, "kate@example.com", "new-password")
	assert.NoError(t, err)

	assert.ErrorIs(t, env.userSvc.ChangePassword(ctx, "missing", "a", "b"), ErrUserNotFound)
}

func TestUpdateAvatar_ReplacesPreviousAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := loggedIn(t, env, "liam")

	firstPath := tempImage(t)
	first, err := env.userSvc.UpdateAvatar(ctx, user.ID, firstPath, "image/png")
	require.NoError(t, err)
	assertRemoved(t, firstPath)
	assert.Equal(t, "https://media.test/"+first.Profile.AvatarStorageID, first.Profile.AvatarURL)
	assert.Empty(t, first.PasswordHash)
	assert.True(t, env.media.Has(first.Profile.AvatarStorageID))

	second, err := env.userSvc.UpdateAvatar(ctx, user.ID, tempImage(t), "image/png")
	require.NoError(t, err)
	env.cleaner.Wait()

	assert.NotEqual(t, first.Profile.AvatarStorageID, second.Profile.AvatarStorageID)
	assert.False(t, env.media.Has(first.Profile.AvatarStorageID))
	assert.True(t, env.media.Has(second.Profile.AvatarStorageID))
	assert.Equal(t, []string{first.Profile.AvatarStorageID}, env.media.Deleted())
}

func TestUpdateAvatar_UploadFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := loggedIn(t, env, "mona")

	env.media.UploadErr = errors.New("media host down")
	path := tempImage(t)
	_, err := env.userSvc.UpdateAvatar(ctx, user.ID, path, "image/png")
	assert.ErrorIs(t, err, ErrUploadFailed)
	assertRemoved(t, path)

	stored, err := env.users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultAvatarURL, stored.Profile.AvatarURL)
}

func TestUpdateAvatar_EmptyURL(t *testing.T) {
	env := newTestEnv(t)
	user, _ := loggedIn(t, env, "nina")

	env.media.EmptyURL = true
	_, err := env.userSvc.UpdateAvatar(context.Background(), user.ID, tempImage(t), "image/png")
	assert.ErrorIs(t, err, ErrUploadFailed)
}

func TestUpdateAvatar_Missing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.userSvc.UpdateAvatar(ctx, "someone", "", "")
	assert.ErrorIs(t, err, ErrAvatarRequired)

	path := tempImage(t)
	_, err = env.userSvc.UpdateAvatar(ctx, "missing", path, "image/png")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assertRemoved(t, path)
	assert.Zero(t, env.media.Count())
}

func TestUpdateBioAndCurrentUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := loggedIn(t, env, "oscar")

	updated, err := env.userSvc.UpdateBio(ctx, user.ID, "writes about distributed systems")
	require.NoError(t, err)
	assert.Equal(t, "writes about distributed systems", updated.Profile.Bio)

	current, err := env.userSvc.CurrentUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "writes about distributed systems", current.Profile.Bio)
	assert.Empty(t, current.PasswordHash)
	assert.Empty(t, current.RefreshToken)

	_, err = env.userSvc.CurrentUser(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = env.userSvc.UpdateBio(ctx, "missing", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, pair := loggedIn(t, env, "paul")

	got, err := env.userSvc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Empty(t, got.PasswordHash)

	_, err = env.userSvc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = env.userSvc.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidAccessToken)

	ghost, err := env.tokens.IssueAccessToken("ghost-id")
	require.NoError(t, err)
	_, err = env.userSvc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

var _ repository.UserRepository = (*failingUserRepo)(nil)

type failingUserRepo struct {
	repository.UserRepository
	updateErr error
}

func (r *failingUserRepo) Update(ctx context.Context, id string, upd repository.UserUpdate) (*domain.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	return r.UserRepository.Update(ctx, id, upd)
}

func TestUpdateAvatar_StoreFailureRemovesNewAsset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user, _ := loggedIn(t, env, "quinn")

	repo := &failingUserRepo{UserRepository: env.users, updateErr: errors.New("disk full")}
	svc := NewUserService(repo, env.tokens, env.media, env.cleaner)

	_, err := svc.UpdateAvatar(ctx, user.ID, tempImage(t), "image/png")
	require.Error(t, err)
	env.cleaner.Wait()

	assert.Zero(t, env.media.Count())
	assert.Len(t, env.media.Deleted(), 1)
}
