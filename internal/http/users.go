package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-api/internal/auth"
	"blog-api/internal/service"
)

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := bindRequest(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "user registered successfully", userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := bindRequest(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, pair, err := h.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		fail(c, err)
		return
	}
	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, "logged in successfully", userToResponse(user))
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), currentUser(c).ID); err != nil {
		fail(c, err)
		return
	}
	h.clearAuthCookies(c)
	respond(c, http.StatusOK, "logged out successfully", nil)
}

func (h *Handler) refreshTokens(c *gin.Context) {
	token, _ := c.Cookie(refreshTokenCookie)
	if token == "" && c.Request.ContentLength != 0 {
		var req refreshRequest
		if err := bindRequest(c, &req); err != nil {
			fail(c, err)
			return
		}
		token = req.RefreshToken
	}

	pair, err := h.users.RefreshTokens(c.Request.Context(), token)
	if err != nil {
		fail(c, err)
		return
	}
	h.setAuthCookies(c, pair)
	respond(c, http.StatusOK, "access token refreshed", nil)
}

func (h *Handler) changePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := bindRequest(c, &req); err != nil {
		fail(c, err)
		return
	}

	if err := h.users.ChangePassword(c.Request.Context(), currentUser(c).ID, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "password changed successfully", nil)
}

func (h *Handler) updateAvatar(c *gin.Context) {
	path, contentType, err := h.saveUploadedImage(c, "avatar")
	if err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), currentUser(c).ID, path, contentType)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "avatar updated successfully", userToResponse(user))
}

func (h *Handler) updateBio(c *gin.Context) {
	var req updateBioRequest
	if err := bindRequest(c, &req); err != nil {
		fail(c, err)
		return
	}

	user, err := h.users.UpdateBio(c.Request.Context(), currentUser(c).ID, req.Bio)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "bio updated successfully", userToResponse(user))
}

func (h *Handler) getCurrentUser(c *gin.Context) {
	user, err := h.users.CurrentUser(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, "current user fetched successfully", userToResponse(user))
}

func (h *Handler) setAuthCookies(c *gin.Context, pair auth.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, pair.AccessToken, 0, "/", "", h.opts.CookieSecure, true)
	c.SetCookie(refreshTokenCookie, pair.RefreshToken, 0, "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(accessTokenCookie, "", -1, "/", "", h.opts.CookieSecure, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/", "", h.opts.CookieSecure, true)
}
