package episodes

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"anistream/pkg/models"
)

// LinkSource is the slice of the gateway the handler needs.
type LinkSource interface {
	ListLinks(ctx context.Context, titleID string) ([]models.DownloadLink, error)
}

type Handler struct {
	Links  LinkSource
	Recent *RecentList
}

func NewHandler(links LinkSource, recent *RecentList) *Handler {
	return &Handler{Links: links, Recent: recent}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/titles/:id/links", h.list)
	r.GET("/client/recent", h.listRecent)
	r.POST("/client/recent", h.recordRecent)
}

// GET /titles/:id/links?q=&page=&size=
func (h *Handler) list(c *gin.Context) {
	id := c.Param("id")

	size := parseInt(c.Query("size"), defaultPageSize)
	if !ValidPageSize(size) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be one of 5,10,20,50,100"})
		return
	}
	page := parseInt(c.Query("page"), 1)

	links, err := h.Links.ListLinks(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "links unavailable"})
		return
	}

	filtered := Filter(Group(links), c.Query("q"))
	count := PageCount(len(filtered), size)

	if count == 0 {
		c.JSON(http.StatusOK, gin.H{
			"total":      0,
			"page":       1,
			"page_count": 0,
			"size":       size,
			"items":      []models.EpisodeGroup{},
		})
		return
	}

	items, ok := Paginate(filtered, size, page)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page out of range"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      len(filtered),
		"page":       page,
		"page_count": count,
		"size":       size,
		"items":      items,
	})
}

func (h *Handler) listRecent(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Recent.Entries()})
}

type recordReq struct {
	Title   string `json:"title"`
	Episode int    `json:"episode"`
	Quality string `json:"quality"`
}

func (h *Handler) recordRecent(c *gin.Context) {
	var req recordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	if req.Episode <= 0 {
		req.Episode = DefaultEpisode
	}

	h.Recent.Record(c.Request.Context(), models.RecentSelection{
		Title:     title,
		Episode:   req.Episode,
		Quality:   strings.TrimSpace(req.Quality),
		Timestamp: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{"status": "recorded"})
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
