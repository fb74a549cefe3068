package progress

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Tracker *Tracker
}

func NewHandler(t *Tracker) *Handler {
	return &Handler{Tracker: t}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/client/progress/:title_id", h.forTitle)
	r.POST("/client/progress", h.set)
}

func (h *Handler) forTitle(c *gin.Context) {
	titleID := strings.TrimSpace(c.Param("title_id"))
	if titleID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title_id required"})
		return
	}

	m, err := h.Tracker.ForTitle(c.Request.Context(), titleID)
	if err != nil {
		// storage trouble is non-fatal: act like nothing was watched
		c.JSON(http.StatusOK, gin.H{"title_id": titleID, "episodes": map[int]float64{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"title_id": titleID, "episodes": m})
}

type setReq struct {
	TitleID string  `json:"title_id"`
	Episode int     `json:"episode"`
	Seconds float64 `json:"seconds"`
}

func (h *Handler) set(c *gin.Context) {
	var req setReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.TitleID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title_id required"})
		return
	}
	if req.Episode < 1 {
		req.Episode = 1
	}
	if req.Seconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seconds must be >= 0"})
		return
	}

	if err := h.Tracker.Set(c.Request.Context(), req.TitleID, req.Episode, req.Seconds); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}
