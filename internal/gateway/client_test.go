package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/gateway"
	"anistream/pkg/models"
	"anistream/pkg/utils"
)

const testSecret = "test-jwt-secret"

func newClient(t *testing.T, handler http.Handler) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gateway.New(utils.GatewayConfig{
		URL:       srv.URL,
		APIKey:    "test-key",
		JWTSecret: testSecret,
	})
}

func TestListTitlesMapsRowsAndQuery(t *testing.T) {
	var gotQuery map[string]string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/titles", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		q := r.URL.Query()
		gotQuery = map[string]string{
			"order":  q.Get("order"),
			"or":     q.Get("or"),
			"genres": q.Get("genres"),
			"limit":  q.Get("limit"),
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{
			"id": "t1",
			"title": "Cowboy Bebop",
			"release_year": 1998,
			"episode_count": 26,
			"genres": ["Action", "Sci-Fi"],
			"is_popular": true,
			"is_new": false
		}]`))
	}))

	titles, err := c.ListTitles(context.Background(), gateway.TitleQuery{
		Search: "bebop",
		Genre:  "Action",
		Sort:   "year",
		Limit:  5,
	})
	require.NoError(t, err)
	require.Len(t, titles, 1)

	got := titles[0]
	assert.Equal(t, "t1", got.ID)
	assert.Equal(t, "Cowboy Bebop", got.Title)
	assert.Equal(t, 1998, got.Year)
	assert.Equal(t, 26, got.Episodes)
	assert.True(t, got.Popular)

	assert.Equal(t, "release_year.desc", gotQuery["order"])
	assert.Equal(t, "(title.ilike.*bebop*,description.ilike.*bebop*)", gotQuery["or"])
	assert.Equal(t, "cs.{Action}", gotQuery["genres"])
	assert.Equal(t, "5", gotQuery["limit"])
}

func TestGetTitleMissingReturnsNil(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))

	got, err := c.GetTitle(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGatewayErrorIsWrapped(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusForbidden)
	}))

	_, err := c.ListTitles(context.Background(), gateway.TitleQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list titles")
	assert.Contains(t, err.Error(), "permission denied")
}

func TestListLinksMapsEpisodeNumber(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/download_links", r.URL.Path)
		assert.Equal(t, "eq.t1", r.URL.Query().Get("title_id"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "l1", "title_id": "t1", "quality": "1080p", "url": "https://cdn/x", "episode_number": 4},
			{"id": "l2", "title_id": "t1", "quality": "720p", "url": "https://cdn/y"}
		]`))
	}))

	links, err := c.ListLinks(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, links, 2)
	assert.Equal(t, 4, links[0].Episode)
	assert.Equal(t, 0, links[1].Episode, "absent episode_number stays unset")
}

func TestSignInInvalidCredentials(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))

	_, err := c.SignIn(context.Background(), "u@example.com", "bad")
	assert.ErrorIs(t, err, gateway.ErrInvalidCredentials)
}

func TestSignInReturnsSession(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"access_token": "tok",
			"refresh_token": "ref",
			"expires_in": 3600,
			"user": {"id": "u1", "email": "u@example.com"}
		}`))
	}))

	sess, err := c.SignIn(context.Background(), "u@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.Equal(t, "u1", sess.User.ID)
	assert.Equal(t, "user", sess.User.Role, "missing role defaults to user")
}

func TestSessionExpiredTokenReturnsNilUser(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"expired"}`, http.StatusUnauthorized)
	}))

	user, err := c.Session(context.Background(), "old-token")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func signToken(t *testing.T, key []byte) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":   "u1",
		"email": "u@example.com",
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestUserFromTokenValid(t *testing.T) {
	c := newClient(t, http.NotFoundHandler())
	raw := signToken(t, []byte(testSecret))

	user, err := c.UserFromToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "u@example.com", user.Email)
	assert.Equal(t, "admin", user.Role)
}

func TestUserFromTokenWrongSecret(t *testing.T) {
	c := newClient(t, http.NotFoundHandler())
	raw := signToken(t, []byte("other-secret"))

	_, err := c.UserFromToken(raw)
	assert.Error(t, err)
}

func TestUserFromTokenRejectsExpired(t *testing.T) {
	c := newClient(t, http.NotFoundHandler())

	claims := jwt.MapClaims{
		"sub": "u1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = c.UserFromToken(raw)
	assert.Error(t, err)
}

func TestReplaceLinksDeletesThenInserts(t *testing.T) {
	var methods []string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/download_links", r.URL.Path)
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	err := c.ReplaceLinks(context.Background(), "t1", []models.DownloadLink{
		{ID: "l1", Quality: "1080p", URL: "https://cdn/x", Episode: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{http.MethodDelete, http.MethodPost}, methods)
}

func TestReplaceLinksEmptySetOnlyDeletes(t *testing.T) {
	var methods []string
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))

	require.NoError(t, c.ReplaceLinks(context.Background(), "t1", nil))
	assert.Equal(t, []string{http.MethodDelete}, methods)
}

func TestListBannersActiveFilter(t *testing.T) {
	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/v1/banners", r.URL.Path)
		assert.Equal(t, "is.true", r.URL.Query().Get("is_active"))
		assert.Equal(t, "display_order.asc", r.URL.Query().Get("order"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": "b1", "title": "Spotlight", "is_active": true, "display_order": 1, "rating": 8.5}
		]`))
	}))

	banners, err := c.ListBanners(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, banners, 1)
	assert.True(t, banners[0].Active)
	require.NotNil(t, banners[0].Rating)
	assert.Equal(t, 8.5, *banners[0].Rating)
}
