package episodes_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/episodes"
	"anistream/pkg/models"
)

type fakeLinks struct {
	links []models.DownloadLink
	err   error
}

func (f *fakeLinks) ListLinks(_ context.Context, _ string) ([]models.DownloadLink, error) {
	return f.links, f.err
}

func newTestRouter(t *testing.T, links *fakeLinks) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := episodes.NewHandler(links, episodes.NewRecentList(context.Background(), nil))
	h.RegisterRoutes(r)
	return r
}

func doGet(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestLinksEndpointGroupsAndPaginates(t *testing.T) {
	var links []models.DownloadLink
	for i := 1; i <= 23; i++ {
		links = append(links, link("l", i, "1080p"))
	}
	r := newTestRouter(t, &fakeLinks{links: links})

	w := doGet(r, "/titles/x/links?size=10&page=3")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total     int                   `json:"total"`
		Page      int                   `json:"page"`
		PageCount int                   `json:"page_count"`
		Items     []models.EpisodeGroup `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 23, resp.Total)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 3, resp.PageCount)
	assert.Len(t, resp.Items, 3)
}

func TestLinksEndpointRejectsBadPageSize(t *testing.T) {
	r := newTestRouter(t, &fakeLinks{})
	w := doGet(r, "/titles/x/links?size=7")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinksEndpointRejectsPageOutOfRange(t *testing.T) {
	r := newTestRouter(t, &fakeLinks{links: []models.DownloadLink{link("a", 1, "1080p")}})
	w := doGet(r, "/titles/x/links?page=2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLinksEndpointEmptyResult(t *testing.T) {
	r := newTestRouter(t, &fakeLinks{})
	w := doGet(r, "/titles/x/links")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestLinksEndpointGatewayError(t *testing.T) {
	r := newTestRouter(t, &fakeLinks{err: errors.New("down")})
	w := doGet(r, "/titles/x/links")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestRecordRecentDefaultsEpisode(t *testing.T) {
	r := newTestRouter(t, &fakeLinks{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/client/recent",
		strings.NewReader(`{"title":"Naruto","episode":0,"quality":"720p"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(r, "/client/recent")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"episode":1`)
}

func TestRecordRecentRequiresTitle(t *testing.T) {
	r := newTestRouter(t, &fakeLinks{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/client/recent",
		strings.NewReader(`{"title":"  ","episode":2}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
