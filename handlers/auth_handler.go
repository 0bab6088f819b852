package handlers

import (
	"net/http"

	"newsroom-cms/helper"
	"newsroom-cms/middleware"
	"newsroom-cms/models"
	"newsroom-cms/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  services.AuthService
	Helper       *helper.HTTPHelper
	cookieMaxAge int
}

func NewAuthHandler(authService services.AuthService, httpHelper *helper.HTTPHelper, cookieMaxAge int) *AuthHandler {
	return &AuthHandler{authService: authService, Helper: httpHelper, cookieMaxAge: cookieMaxAge}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.authService.Signup(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !h.Helper.BindJSON(c, &req) {
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, res.Data.Token, h.cookieMaxAge, "/", "", false, true)
	h.Helper.SendResponse(c, res.Response())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", false, true)
	h.Helper.SendSuccess(c, models.MsgLogout, nil)
}

func (h *AuthHandler) GetProfile(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		h.Helper.SendUnauthorizedError(c, models.MsgNotAuthorized)
		return
	}
	h.Helper.SendSuccess(c, models.MsgSuccessful, user)
}

func (h *AuthHandler) GetUsers(c *gin.Context) {
	var query models.ListQuery
	if !h.Helper.BindQuery(c, &query) {
		return
	}

	res, err := h.authService.List(c.Request.Context(), query)
	if err != nil {
		h.Helper.SendError(c, err)
		return
	}
	h.Helper.SendResponse(c, res.Response())
}
