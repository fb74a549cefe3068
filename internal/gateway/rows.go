package gateway

import "anistream/pkg/models"

// Row types match the gateway's snake_case column naming exactly. All
// mapping between wire rows and internal models happens here, in both
// directions; nothing outside this package touches a raw row.

type titleRow struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	CoverURL     string   `json:"cover_url,omitempty"`
	ReleaseYear  int      `json:"release_year,omitempty"`
	EpisodeCount int      `json:"episode_count,omitempty"`
	Genres       []string `json:"genres"`
	IsPopular    bool     `json:"is_popular"`
	IsNew        bool     `json:"is_new"`
}

type linkRow struct {
	ID            string `json:"id"`
	TitleID       string `json:"title_id"`
	Quality       string `json:"quality"`
	URL           string `json:"url"`
	EpisodeNumber *int   `json:"episode_number,omitempty"`
	IsStreamable  bool   `json:"is_streamable,omitempty"`
	ThumbnailURL  string `json:"thumbnail_url,omitempty"`
}

type bannerRow struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Subtitle     string   `json:"subtitle,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`
	Theme        string   `json:"theme,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	EpisodeCount int      `json:"episode_count,omitempty"`
	IsActive     bool     `json:"is_active"`
	DisplayOrder int      `json:"display_order"`
	TitleID      string   `json:"title_id,omitempty"`
}

func (r titleRow) toModel() models.Title {
	return models.Title{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Image:       r.ImageURL,
		Cover:       r.CoverURL,
		Year:        r.ReleaseYear,
		Episodes:    r.EpisodeCount,
		Genres:      r.Genres,
		Popular:     r.IsPopular,
		IsNew:       r.IsNew,
	}
}

func titleToRow(t models.Title) titleRow {
	return titleRow{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		ImageURL:     t.Image,
		CoverURL:     t.Cover,
		ReleaseYear:  t.Year,
		EpisodeCount: t.Episodes,
		Genres:       t.Genres,
		IsPopular:    t.Popular,
		IsNew:        t.IsNew,
	}
}

func (r linkRow) toModel() models.DownloadLink {
	l := models.DownloadLink{
		ID:         r.ID,
		TitleID:    r.TitleID,
		Quality:    r.Quality,
		URL:        r.URL,
		Streamable: r.IsStreamable,
		Thumbnail:  r.ThumbnailURL,
	}
	if r.EpisodeNumber != nil {
		l.Episode = *r.EpisodeNumber
	}
	return l
}

func linkToRow(l models.DownloadLink) linkRow {
	row := linkRow{
		ID:           l.ID,
		TitleID:      l.TitleID,
		Quality:      l.Quality,
		URL:          l.URL,
		IsStreamable: l.Streamable,
		ThumbnailURL: l.Thumbnail,
	}
	if l.Episode > 0 {
		ep := l.Episode
		row.EpisodeNumber = &ep
	}
	return row
}

func (r bannerRow) toModel() models.Banner {
	return models.Banner{
		ID:           r.ID,
		Title:        r.Title,
		Subtitle:     r.Subtitle,
		Image:        r.ImageURL,
		Theme:        r.Theme,
		Rating:       r.Rating,
		Episodes:     r.EpisodeCount,
		Active:       r.IsActive,
		DisplayOrder: r.DisplayOrder,
		TitleID:      r.TitleID,
	}
}

func bannerToRow(b models.Banner) bannerRow {
	return bannerRow{
		ID:           b.ID,
		Title:        b.Title,
		Subtitle:     b.Subtitle,
		ImageURL:     b.Image,
		Theme:        b.Theme,
		Rating:       b.Rating,
		EpisodeCount: b.Episodes,
		IsActive:     b.Active,
		DisplayOrder: b.DisplayOrder,
		TitleID:      b.TitleID,
	}
}
