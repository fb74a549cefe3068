package episodes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anistream/internal/episodes"
	"anistream/pkg/models"
)

func seededState(t *testing.T, n int) *episodes.ListState {
	t.Helper()
	var links []models.DownloadLink
	for i := 1; i <= n; i++ {
		links = append(links, link("l", i, "1080p"))
	}
	s := episodes.NewListState()
	s.SetLinks(links)
	return s
}

func TestSelectTogglesSingleExpansion(t *testing.T) {
	s := seededState(t, 5)

	_, ok := s.Expanded()
	assert.False(t, ok, "nothing expanded initially")

	s.Select(3)
	ep, ok := s.Expanded()
	require.True(t, ok)
	assert.Equal(t, 3, ep)

	// selecting another episode moves the expansion in one step
	s.Select(5)
	ep, ok = s.Expanded()
	require.True(t, ok)
	assert.Equal(t, 5, ep)

	// selecting the expanded one collapses it
	s.Select(5)
	_, ok = s.Expanded()
	assert.False(t, ok)
}

func TestSetPageIgnoresOutOfBounds(t *testing.T) {
	s := seededState(t, 25) // 3 pages of 10

	s.SetPage(2)
	page, count, size, total := s.PageInfo()
	assert.Equal(t, 2, page)
	assert.Equal(t, 3, count)
	assert.Equal(t, 10, size)
	assert.Equal(t, 25, total)

	s.SetPage(0)
	page, _, _, _ = s.PageInfo()
	assert.Equal(t, 2, page, "page 0 rejected")

	s.SetPage(4)
	page, _, _, _ = s.PageInfo()
	assert.Equal(t, 2, page, "page past the end rejected")
}

func TestSetQueryResetsPageAndExpansion(t *testing.T) {
	s := seededState(t, 25)
	s.SetPage(3)
	s.Select(21)

	s.SetQuery("2")
	page, _, _, total := s.PageInfo()
	assert.Equal(t, 1, page)
	assert.Equal(t, 8, total) // 2, 12, 20..25
	_, ok := s.Expanded()
	assert.False(t, ok)
}

func TestSetPageSizeRejectsInvalid(t *testing.T) {
	s := seededState(t, 25)

	s.SetPageSize(7)
	_, _, size, _ := s.PageInfo()
	assert.Equal(t, 10, size)

	s.SetPageSize(5)
	page, count, size, _ := s.PageInfo()
	assert.Equal(t, 5, size)
	assert.Equal(t, 1, page)
	assert.Equal(t, 5, count)
}

func TestLoadingLifecycle(t *testing.T) {
	s := episodes.NewListState()

	loading, timedOut := s.Loading()
	assert.False(t, loading)
	assert.False(t, timedOut)

	s.BeginLoading()
	loading, timedOut = s.Loading()
	assert.True(t, loading)
	assert.False(t, timedOut)

	s.FinishLoading()
	loading, timedOut = s.Loading()
	assert.False(t, loading)
	assert.False(t, timedOut)
}

func TestPageReturnsCurrentSlice(t *testing.T) {
	s := seededState(t, 12)
	s.SetPage(2)

	page := s.Page()
	require.Len(t, page, 2)
	assert.Equal(t, 11, page[0].Episode)
	assert.Equal(t, 12, page[1].Episode)
}
