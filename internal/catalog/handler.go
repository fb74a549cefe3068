package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"anistream/internal/gateway"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterPublicRoutes mounts the browse/detail surface.
func (h *Handler) RegisterPublicRoutes(r *gin.Engine) {
	r.GET("/home", h.home)
	r.GET("/titles", h.list)
	r.GET("/titles/:id", h.detail)
	r.GET("/banners", h.banners)
	r.GET("/watch", h.watch)
}

// GET /titles?search=&genre=&sort=&limit=&offset=
func (h *Handler) list(c *gin.Context) {
	q := gateway.TitleQuery{
		Search: c.Query("search"),
		Genre:  c.Query("genre"),
		Sort:   c.Query("sort"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	items, err := h.Svc.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) detail(c *gin.Context) {
	t, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	if t == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, t)
}

// GET /home assembles the landing page: active banners in display order
// plus the featured and new shelves.
func (h *Handler) home(c *gin.Context) {
	ctx := c.Request.Context()

	banners, err := h.Svc.Banners(ctx, true)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	featured, err := h.Svc.Featured(ctx, 12)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}
	fresh, err := h.Svc.NewArrivals(ctx, 12)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"banners":  banners,
		"featured": featured,
		"new":      fresh,
	})
}

func (h *Handler) banners(c *gin.Context) {
	activeOnly := c.Query("all") == ""
	items, err := h.Svc.Banners(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "banners unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GET /watch?url=&title=&episode=&quality= normalizes the untrusted
// playback parameters; playback itself is the player's business.
func (h *Handler) watch(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url required"})
		return
	}

	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		title = "Unknown Anime"
	}

	episode := parseInt(c.Query("episode"), 1)
	if episode < 1 {
		episode = 1
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     rawURL,
		"title":   title,
		"episode": episode,
		"quality": strings.TrimSpace(c.Query("quality")),
	})
}

func parseInt(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
