package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"blog-api/internal/service"
)

func (h *Handler) createPost(c *gin.Context) {
	var req createPostRequest
	if err := bindRequest(c, &req); err != nil {
		fail(c, err)
		return
	}

	path, contentType, err := h.saveUploadedImage(c, "image")
	if err != nil {
		fail(c, err)
		return
	}

	post, err := h.posts.Create(c.Request.Context(), currentUser(c).ID, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}, path, contentType)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "blog post created successfully", postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "all posts fetched successfully", postsToResponse(posts))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "post fetched successfully", postToResponse(*post))
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}
	var req updatePostRequest
	if err := bindRequest(c, &req); err != nil {
		fail(c, err)
		return
	}

	post, err := h.posts.Update(c.Request.Context(), id, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "post updated successfully", postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "post deleted successfully", nil)
}

func (h *Handler) listPostsByTag(c *gin.Context) {
	posts, err := h.posts.ListByTag(c.Request.Context(), c.Param("tag"))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "posts fetched successfully", postsToResponse(posts))
}

func (h *Handler) getPostAuthorDetails(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		return
	}

	author, err := h.posts.AuthorDetails(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "post author fetched successfully", authorToResponse(author))
}

func postID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("postId"))
	if id == "" {
		fail(c, ErrMissingPostID)
		return "", false
	}
	return id, true
}
