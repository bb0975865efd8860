package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"blog-api/internal/domain"
)

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
	Success    bool   `json:"success"`
}

type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Data       any      `json:"data"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Success:    status < 400,
	})
}

func respondError(c *gin.Context, apiErr *APIError) {
	c.JSON(apiErr.Status, errorEnvelope{
		StatusCode: apiErr.Status,
		Message:    apiErr.Message,
		Data:       nil,
		Success:    false,
		Errors:     []string{},
	})
}

type ProfileResponse struct {
	Avatar string `json:"avatar"`
	Bio    string `json:"bio,omitempty"`
}

type UserResponse struct {
	ID        string          `json:"_id"`
	Username  string          `json:"username"`
	FullName  string          `json:"fullName"`
	Email     string          `json:"email"`
	Profile   ProfileResponse `json:"profile"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type AuthorResponse struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Profile  struct {
		Avatar string `json:"avatar"`
	} `json:"profile"`
}

type PostResponse struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Image     string    `json:"image"`
	Tags      []string  `json:"tags"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Email:    user.Email,
		Profile: ProfileResponse{
			Avatar: user.Profile.AvatarURL,
			Bio:    user.Profile.Bio,
		},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func authorToResponse(user *domain.User) AuthorResponse {
	resp := AuthorResponse{
		ID:       user.ID,
		FullName: user.FullName,
		Email:    user.Email,
	}
	resp.Profile.Avatar = user.Profile.AvatarURL
	return resp
}

func postToResponse(post domain.Post) PostResponse {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Image:     post.Image,
		Tags:      tags,
		Author:    post.AuthorID,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}
