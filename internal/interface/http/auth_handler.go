package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/pkg/helpers"
	"github.com/oksasatya/go-user-accounts/pkg/response"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

type AuthHandler struct {
	Auth    *userapp.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(auth *userapp.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Auth: auth, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Name     string `json:"name" binding:"omitempty,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type activateRequest struct {
	ID   string `json:"_id" binding:"required,objectid"`
	Code string `json:"code" binding:"required"`
}

type retryActiveRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	out, err := h.Auth.Users.HandleRegister(c.Request.Context(), userapp.RegisterInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "registration successful, check your email to activate the account", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccess(c, res.AccessToken, res.ExpiresAt)
	response.Success(c, http.StatusOK, res, "login successful", map[string]any{"access_expires_at": res.ExpiresAt})
}

func (h *AuthHandler) Activate(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Auth.Activate(c.Request.Context(), req.ID, strings.TrimSpace(req.Code)); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"activated": true}, "account activated", nil)
}

func (h *AuthHandler) RetryActive(c *gin.Context) {
	var req retryActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	id, err := h.Auth.ResendActivation(c.Request.Context(), req.Email)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"_id": id}, "activation email sent", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Me returns the account behind the access token.
func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.Auth.Users.FindOne(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "profile", nil)
}
