package episodes

import (
	"sort"
	"strconv"
	"strings"

	"anistream/pkg/models"
)

// DefaultEpisode is what a missing or malformed episode number becomes.
const DefaultEpisode = 1

// PageSizes is the only allowed set of page sizes.
var PageSizes = []int{5, 10, 20, 50, 100}

func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if n == s {
			return true
		}
	}
	return false
}

// Group partitions a flat link list by episode number, ascending. Every
// link lands in exactly one group; links with episode <= 0 go to episode
// 1. Within a group, input order is preserved.
func Group(links []models.DownloadLink) []models.EpisodeGroup {
	byEpisode := make(map[int][]models.DownloadLink)
	for _, l := range links {
		ep := l.Episode
		if ep <= 0 {
			ep = DefaultEpisode
		}
		byEpisode[ep] = append(byEpisode[ep], l)
	}

	numbers := make([]int, 0, len(byEpisode))
	for ep := range byEpisode {
		numbers = append(numbers, ep)
	}
	sort.Ints(numbers)

	out := make([]models.EpisodeGroup, 0, len(numbers))
	for _, ep := range numbers {
		out = append(out, models.EpisodeGroup{Episode: ep, Links: byEpisode[ep]})
	}
	return out
}

// Filter keeps groups whose episode number's decimal text contains query
// as a substring. An empty query keeps everything; no match yields an
// empty slice, never an error.
func Filter(groups []models.EpisodeGroup, query string) []models.EpisodeGroup {
	query = strings.TrimSpace(query)
	if query == "" {
		return groups
	}

	out := make([]models.EpisodeGroup, 0, len(groups))
	for _, g := range groups {
		if strings.Contains(strconv.Itoa(g.Episode), query) {
			out = append(out, g)
		}
	}
	return out
}

// PageCount is ceil(total/size); zero for an empty list.
func PageCount(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Paginate returns the one-indexed page of groups, or ok=false when the
// page size is not allowed or the page is outside [1, PageCount].
func Paginate(groups []models.EpisodeGroup, size, page int) ([]models.EpisodeGroup, bool) {
	if !ValidPageSize(size) {
		return nil, false
	}
	count := PageCount(len(groups), size)
	if page < 1 || page > count {
		return nil, false
	}

	start := (page - 1) * size
	end := start + size
	if end > len(groups) {
		end = len(groups)
	}
	return groups[start:end], true
}
