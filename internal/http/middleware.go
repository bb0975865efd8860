package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdobak/go-xerrors"
	"github.com/sirupsen/logrus"

	"blog-api/internal/domain"
	"blog-api/internal/service"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshAccessToken"
	currentUserKey     = "currentUser"
)

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}).Info("request")
	}
}

func recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		writeError(c, logger, xerrors.Newf("panic: %v", recovered))
		c.Abort()
	})
}

// errorResponder turns the last error recorded by a handler into the error envelope.
func errorResponder(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		writeError(c, logger, c.Errors.Last().Err)
	}
}

func writeError(c *gin.Context, logger logrus.FieldLogger, err error) {
	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		entry := logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		})
		if apiErr.Err != nil {
			entry = entry.WithField("stack", xerrors.Sprint(apiErr.Err))
		}
		entry.WithError(err).Error("request failed")
	}
	respondError(c, apiErr)
}

func corsMiddleware(origin string) gin.HandlerFunc {
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		if origin != "*" {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// bodyLimit caps JSON and url-encoded bodies. Multipart uploads are bounded separately.
func bodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		switch c.ContentType() {
		case gin.MIMEJSON, gin.MIMEPOSTForm:
			if c.Request.ContentLength > limit {
				_ = c.Error(ErrPayloadTooLarge)
				c.Abort()
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// requireAuth resolves the access token into the current user or ends the request.
func requireAuth(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := users.Authenticate(c.Request.Context(), accessToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func accessToken(c *gin.Context) string {
	if token, err := c.Cookie(accessTokenCookie); err == nil && token != "" {
		return token
	}
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func currentUser(c *gin.Context) *domain.User {
	user, _ := c.Get(currentUserKey)
	u, _ := user.(*domain.User)
	return u
}
