package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"blog-api/internal/service"
)

// RouterOptions carries everything the HTTP layer needs besides the services.
type RouterOptions struct {
	CORSOrigin    string
	BodyLimit     int64
	CookieSecure  bool
	PublicDir     string
	UploadDir     string
	MaxUploadSize int64
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users service.UserService
	posts service.PostService
	opts  RouterOptions
}

func NewHandler(users service.UserService, posts service.PostService, opts RouterOptions) *Handler {
	return &Handler{
		users: users,
		posts: posts,
		opts:  opts,
	}
}

// NewRouter builds a fully wired engine. It touches no process wide state
// apart from registering JSON field names with gin's validator once.
func NewRouter(opts RouterOptions, users service.UserService, posts service.PostService, logger logrus.FieldLogger) *gin.Engine {
	useJSONFieldNames()

	router := gin.New()
	if opts.MaxUploadSize > 0 {
		router.MaxMultipartMemory = opts.MaxUploadSize
	}
	router.Use(
		requestLogger(logger),
		recovery(logger),
		errorResponder(logger),
		corsMiddleware(opts.CORSOrigin),
		bodyLimit(opts.BodyLimit),
	)
	router.NoRoute(func(c *gin.Context) {
		_ = c.Error(ErrRouteNotFound)
	})

	NewHandler(users, posts, opts).RegisterRoutes(router)
	return router
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	if h.opts.PublicDir != "" {
		router.Static("/public", h.opts.PublicDir)
	}

	api := router.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, "ok", gin.H{"status": "ok"})
	})

	authed := requireAuth(h.users)

	user := api.Group("/user")
	{
		user.POST("/auth/register", h.register)
		user.POST("/auth/login", h.login)
		user.POST("/auth/refresh-tokens", h.refreshTokens)
		user.POST("/auth/logout", authed, h.logout)
		user.PATCH("/change-password", authed, h.changePassword)
		user.POST("/update-avatar", authed, h.updateAvatar)
		user.POST("/update-bio", authed, h.updateBio)
		user.GET("/get-current-user", authed, h.getCurrentUser)
	}

	blog := api.Group("/blog", authed)
	{
		blog.POST("/create-post", h.createPost)
		blog.GET("/get-posts", h.listPosts)
		blog.GET("/get-posts/:postId", h.getPost)
		blog.PATCH("/update-posts/:postId", h.updatePost)
		blog.DELETE("/delete-posts/:postId", h.deletePost)
		blog.GET("/get-posts-by-tag/:tag", h.listPostsByTag)
		blog.GET("/get-posts-author-details/:postId", h.getPostAuthorDetails)
	}
}

// fail records err for the error responder and stops the handler chain.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
