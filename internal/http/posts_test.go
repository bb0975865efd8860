package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) createPost(t *testing.T, cookies []*http.Cookie, title, tags string) PostResponse {
	t.Helper()
	rec, resp := s.do(t, multipartRequest(t, "/api/v1/blog/create-post", map[string]string{
		"title":   title,
		"content": "Some content that describes the post.",
		"tags":    tags,
	}, "image", pngBytes), cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post PostResponse
	decodeData(t, resp, &post)
	return post
}

func TestCreatePost(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "mona")

	rec, resp := srv.do(t, multipartRequest(t, "/api/v1/blog/create-post", map[string]string{
		"title":   "Hello blog",
		"content": "First post content.",
		"tags":    "x, y",
	}, "image", pngBytes), cookies...)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "blog post created successfully", resp.Message)

	var post PostResponse
	decodeData(t, resp, &post)
	assert.NotEmpty(t, post.ID)
	assert.Equal(t, []string{"x", "y"}, post.Tags)
	assert.True(t, strings.HasPrefix(post.Image, "https://media.test/"))

	current, err := srv.users.GetByEmail(t.Context(), "mona@example.com")
	require.NoError(t, err)
	assert.Equal(t, current.ID, post.Author)
	assertUploadDirEmpty(t, srv)
}

func TestCreatePost_WithoutImage(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "nina")

	rec, resp := srv.do(t, multipartRequest(t, "/api/v1/blog/create-post", map[string]string{
		"title":   "Hello blog",
		"content": "First post content.",
	}, "", nil), cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing image local path", resp.Message)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodPost, "/api/v1/blog/create-post", map[string]string{
		"title":   "Hello blog",
		"content": "First post content.",
	}), cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing image local path", resp.Message)

	posts, err := srv.posts.List(t.Context())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePost_Validation(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "oscar")

	rec, resp := srv.do(t, multipartRequest(t, "/api/v1/blog/create-post", map[string]string{
		"content": "First post content.",
	}, "image", pngBytes), cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", resp.Message)
	assert.Zero(t, srv.media.Count())
	assertUploadDirEmpty(t, srv)
}

func TestListAndGetPosts(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "paul")
	first := srv.createPost(t, cookies, "First title", "")
	second := srv.createPost(t, cookies, "Second title", "go")

	rec, resp := srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts", nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []PostResponse
	decodeData(t, resp, &posts)
	require.Len(t, posts, 2)
	assert.Equal(t, first.ID, posts[0].ID)
	assert.Equal(t, second.ID, posts[1].ID)
	assert.Equal(t, []string{}, posts[0].Tags)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts/"+second.ID, nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var got PostResponse
	decodeData(t, resp, &got)
	assert.Equal(t, "Second title", got.Title)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts/missing", nil), cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", resp.Message)
}

func TestGetPosts_EmptyIsArray(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "quinn")

	rec, resp := srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts", nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(resp.Data))
}

func TestUpdatePost(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "rita")
	post := srv.createPost(t, cookies, "Original title", "x, y")
	path := "/api/v1/blog/update-posts/" + post.ID

	rec, resp := srv.do(t, jsonRequest(t, http.MethodPatch, path, map[string]string{
		"title":   "8 chars!",
		"content": strings.Repeat("c", 60),
	}), cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title must be at least 10 characters", resp.Message)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodPatch, path, map[string]string{
		"title":   "Fifteen chars!!",
		"content": strings.Repeat("c", 49),
	}), cookies...)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content must be at least 50 characters", resp.Message)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodPatch, path, map[string]string{
		"title":   "Fifteen chars!!",
		"content": strings.Repeat("c", 60),
	}), cookies...)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated PostResponse
	decodeData(t, resp, &updated)
	assert.Equal(t, "Fifteen chars!!", updated.Title)
	assert.Equal(t, post.Image, updated.Image)
	assert.Equal(t, post.Tags, updated.Tags)

	rec, _ = srv.do(t, jsonRequest(t, http.MethodPatch, "/api/v1/blog/update-posts/missing", map[string]string{
		"title":   "Fifteen chars!!",
		"content": strings.Repeat("c", 60),
	}), cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePost(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "sara")
	keep := srv.createPost(t, cookies, "Keep this one", "")
	gone := srv.createPost(t, cookies, "Delete this one", "")

	rec, resp := srv.do(t, jsonRequest(t, http.MethodDelete, "/api/v1/blog/delete-posts/missing", nil), cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "post not found", resp.Message)

	all, err := srv.posts.List(t.Context())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodDelete, "/api/v1/blog/delete-posts/"+gone.ID, nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post deleted successfully", resp.Message)
	assert.Equal(t, "null", string(resp.Data))
	srv.cleaner.Wait()

	all, err = srv.posts.List(t.Context())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep.ID, all[0].ID)
	assert.Equal(t, 1, srv.media.Count())
}

func TestGetPostsByTag(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "tom")
	tagged := srv.createPost(t, cookies, "Tagged post", "x, y")
	srv.createPost(t, cookies, "Other post", "xy")

	rec, resp := srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts-by-tag/x", nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	var posts []PostResponse
	decodeData(t, resp, &posts)
	require.Len(t, posts, 1)
	assert.Equal(t, tagged.ID, posts[0].ID)

	rec, resp = srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts-by-tag/none", nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", string(resp.Data))
}

func TestGetPostAuthorDetails(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "uma")
	post := srv.createPost(t, cookies, "Authored post", "")

	rec, resp := srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts-author-details/"+post.ID, nil), cookies...)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, string(resp.Data), "username")
	assert.NotContains(t, string(resp.Data), "createdAt")

	var author AuthorResponse
	decodeData(t, resp, &author)
	assert.Equal(t, post.Author, author.ID)
	assert.Equal(t, "Full uma", author.FullName)
	assert.Equal(t, "uma@example.com", author.Email)
	assert.Equal(t, "https://placehold.co/80x80", author.Profile.Avatar)

	rec, _ = srv.do(t, jsonRequest(t, http.MethodGet, "/api/v1/blog/get-posts-author-details/missing", nil), cookies...)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
