package catalog

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"anistream/pkg/models"
)

// RegisterAdminRoutes mounts the CRUD surface on a session-protected
// group.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/titles", h.createTitle)
	rg.PUT("/titles/:id", h.updateTitle)
	rg.DELETE("/titles/:id", h.deleteTitle)
	rg.PUT("/titles/:id/links", h.replaceLinks)

	rg.POST("/banners", h.createBanner)
	rg.PUT("/banners/:id", h.updateBanner)
	rg.DELETE("/banners/:id", h.deleteBanner)
}

func (h *Handler) createTitle(c *gin.Context) {
	var t models.Title
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t.ID = ""

	saved, err := h.Svc.SaveTitle(c.Request.Context(), t)
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) updateTitle(c *gin.Context) {
	var t models.Title
	if err := c.ShouldBindJSON(&t); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t.ID = c.Param("id")

	saved, err := h.Svc.SaveTitle(c.Request.Context(), t)
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) deleteTitle(c *gin.Context) {
	if err := h.Svc.DeleteTitle(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type replaceLinksReq struct {
	Links []models.DownloadLink `json:"links"`
}

func (h *Handler) replaceLinks(c *gin.Context) {
	var req replaceLinksReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	for _, l := range req.Links {
		if strings.TrimSpace(l.URL) == "" || strings.TrimSpace(l.Quality) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "every link needs a url and quality"})
			return
		}
	}

	links, err := h.Svc.ReplaceLinks(c.Request.Context(), c.Param("id"), req.Links)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "save links failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

func (h *Handler) createBanner(c *gin.Context) {
	var b models.Banner
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	b.ID = ""

	saved, err := h.Svc.SaveBanner(c.Request.Context(), b)
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (h *Handler) updateBanner(c *gin.Context) {
	var b models.Banner
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	b.ID = c.Param("id")

	saved, err := h.Svc.SaveBanner(c.Request.Context(), b)
	if err != nil {
		status, msg := mutationError(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, saved)
}

func (h *Handler) deleteBanner(c *gin.Context) {
	if err := h.Svc.DeleteBanner(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "delete failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func mutationError(err error) (int, string) {
	if strings.Contains(err.Error(), "required") {
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusBadGateway, "save failed"
}
