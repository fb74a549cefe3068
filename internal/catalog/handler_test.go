package catalog_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/catalog"
)

func newRouter(t *testing.T, backend http.Handler) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	catalog.NewHandler(newService(t, backend)).RegisterPublicRoutes(r)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestWatchRequiresURL(t *testing.T) {
	r := newRouter(t, http.NotFoundHandler())
	w := get(r, "/watch")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWatchDefaultsTitleAndEpisode(t *testing.T) {
	r := newRouter(t, http.NotFoundHandler())
	w := get(r, "/watch?url=https://cdn/x&episode=-3")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		URL     string `json:"url"`
		Title   string `json:"title"`
		Episode int    `json:"episode"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "https://cdn/x", resp.URL)
	assert.Equal(t, "Unknown Anime", resp.Title)
	assert.Equal(t, 1, resp.Episode)
}

func TestListPassesQueryThrough(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cs.{Action}", r.URL.Query().Get("genres"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": "t1", "title": "Bebop"}]`))
	})
	r := newRouter(t, backend)

	w := get(r, "/titles?genre=Action")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"Bebop"`)
}

func TestDetailUnknownTitleIs404(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	})
	r := newRouter(t, backend)

	w := get(r, "/titles/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListGatewayDownIs502(t *testing.T) {
	backend := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r := newRouter(t, backend)

	w := get(r, "/titles")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
