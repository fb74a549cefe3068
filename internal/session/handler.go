package session

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"anistream/internal/gateway"
)

type Handler struct {
	Manager *Manager
}

func NewHandler(m *Manager) *Handler {
	return &Handler{Manager: m}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)
	rg.POST("/admin-login", h.adminLogin)
	rg.POST("/logout", h.logout)
	rg.GET("/state", h.state)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password required"})
		return
	}

	if err := h.Manager.LoginWithCredentials(c.Request.Context(), email, req.Password); err != nil {
		if errors.Is(err, gateway.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "login failed"})
		return
	}

	snap := h.Manager.Current()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "user": snap.User})
}

type adminLoginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) adminLogin(c *gin.Context) {
	var req adminLoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	if err := h.Manager.LoginWithAdminCredentials(c.Request.Context(), req.Username, req.Password); err != nil {
		// don't reveal which part failed
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "role": RoleAdmin})
}

func (h *Handler) logout(c *gin.Context) {
	h.Manager.Logout(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *Handler) state(c *gin.Context) {
	snap := h.Manager.Current()
	out := gin.H{
		"state":   snap.State.String(),
		"loading": snap.Loading,
	}
	if snap.User != nil {
		out["user"] = snap.User
	}
	c.JSON(http.StatusOK, out)
}
