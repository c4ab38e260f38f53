package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/go-user-accounts/internal/application"
	"github.com/oksasatya/go-user-accounts/pkg/response"
	"github.com/oksasatya/go-user-accounts/pkg/validation"
)

const maxAvatarBytes = 5 << 20

var allowedAvatarTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type updateUserRequest struct {
	ID      string `json:"_id" binding:"required,objectid"`
	Name    string `json:"name" binding:"omitempty,max=100"`
	Phone   string `json:"phone" binding:"omitempty,max=32"`
	Address string `json:"address" binding:"omitempty,max=255"`
	Image   string `json:"image" binding:"omitempty,url"`
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	out, err := h.Svc.Create(c.Request.Context(), userapp.CreateUserInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, out, "user created", nil)
}

// FindAll lists users. current and pageSize are pagination controls; every
// other query parameter is a filter or sort directive.
func (h *UserHandler) FindAll(c *gin.Context) {
	current := atoiOrZero(c.Query("current"))
	pageSize := atoiOrZero(c.Query("pageSize"))

	page, err := h.Svc.FindAll(c.Request.Context(), c.Request.URL.RawQuery, current, pageSize)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	if current <= 0 {
		current = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	response.Success(c, http.StatusOK, page, "users", gin.H{
		"current":  current,
		"pageSize": pageSize,
		"pages":    page.TotalPages,
		"total":    page.TotalItems,
	})
}

func (h *UserHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "invalid query", map[string]string{"q": "is required"})
		return
	}
	hits, err := h.Svc.SearchUsers(c.Request.Context(), q, atoiOrZero(c.Query("size")))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", gin.H{"count": len(hits)})
}

func (h *UserHandler) FindOne(c *gin.Context) {
	u, err := h.Svc.FindOne(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, u, "user", nil)
}

func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Svc.Update(c.Request.Context(), userapp.UpdateUserInput{
		ID:      req.ID,
		Name:    strings.TrimSpace(req.Name),
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Image:   strings.TrimSpace(req.Image),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "user updated", nil)
}

func (h *UserHandler) Remove(c *gin.Context) {
	res, err := h.Svc.Remove(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "user removed", nil)
}

// UploadAvatar accepts a multipart "file" field.
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAvatarBytes+1<<10)
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}
	contentType := fh.Header.Get("Content-Type")
	if !allowedAvatarTypes[contentType] {
		response.Error[any](c, http.StatusUnsupportedMediaType, "unsupported image type", map[string]string{"file": contentType})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", nil)
		return
	}
	defer func() { _ = f.Close() }()

	url, err := h.Svc.UploadAvatar(c.Request.Context(), c.Param("id"), f, fh.Filename, contentType)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"image": url}, "avatar uploaded", nil)
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
